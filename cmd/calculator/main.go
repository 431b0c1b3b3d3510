// Command calculator serves the calculator tools over MCP on stdin/stdout.
// Diagnostics are written to stderr.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zillow/mcp-calculator/calculator"
	"github.com/zillow/mcp-calculator/config"
	"github.com/zillow/mcp-calculator/internal/logging"
	"github.com/zillow/mcp-calculator/server"
)

// version is set at build time via -ldflags.
var version = "dev"

type options struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "calculator",
		Short: "Calculator tools served over MCP stdio",
		Long: "calculator exposes add, subtract, multiply, divide and is_prime as\n" +
			"Model Context Protocol tools. Requests are read from stdin and\n" +
			"responses written to stdout; logs go to stderr.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	// cobra prints help and version through OutOrStdout; keep stdout clean
	// for the protocol.
	cmd.SetOut(os.Stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text, json, logfmt")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	host, err := server.New(server.Config{
		Name:                cfg.Name,
		Version:             version,
		Instructions:        cfg.Instructions,
		Logger:              logger,
		Tools:               calculator.Tools(),
		ParentWatchInterval: cfg.ParentWatch,
	})
	if err != nil {
		return err
	}

	return host.ServeStdio(cmd.Context())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Server error:", err)
		os.Exit(1)
	}
}
