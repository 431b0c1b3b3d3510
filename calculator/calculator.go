// Package calculator implements the arithmetic and primality operations
// exposed by the calculator MCP server, along with the table that registers
// them as MCP tools.
package calculator

// CalculationError represents an error during calculation. Its message is
// fixed when the error is created.
type CalculationError struct {
	message string
}

func (e *CalculationError) Error() string {
	return e.message
}

// ErrDivideByZero is returned by Divide when the divisor is zero.
var ErrDivideByZero = &CalculationError{message: "Cannot divide by zero"}

// Add returns a + b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns a - b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns a * b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns a / b, or ErrDivideByZero when b is zero (0/0 included).
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// IsPrime reports whether n is prime using 6k±1 trial division.
//
// Candidates are bounded with i <= n/i rather than a float square root, which
// keeps the bound exact and free of overflow for n near math.MaxInt64.
func IsPrime(n int64) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0 || n%3 == 0:
		return false
	}

	for i := int64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
