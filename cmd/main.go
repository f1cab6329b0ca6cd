package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"store-auditor/auditor"
	"store-auditor/internal/config"
	"store-auditor/internal/report"
	"store-auditor/internal/types"
)

var rootFlags struct {
	configPath string
	verbose    bool
}

var auditFlags struct {
	format string
	output string
}

var rootCmd = &cobra.Command{
	Use:           "store-auditor",
	Short:         "Audit an online store and estimate the revenue it is losing",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var auditCmd = &cobra.Command{
	Use:   "audit <store url>",
	Short: "Run a full audit of a storefront",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "YAML configuration file (default: $STORE_AUDITOR_CONFIG)")
	pf.BoolVar(&rootFlags.verbose, "verbose", false, "Enable verbose logging")

	f := auditCmd.Flags()
	f.StringVarP(&auditFlags.format, "format", "f", string(report.FormatJSON), "Output format: json, yaml or table")
	f.StringVarP(&auditFlags.output, "output", "o", "", "Output file path (default: stdout)")

	rootCmd.AddCommand(auditCmd, linksCmd)
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// setup loads the configuration and logger shared by every command
func setup() (*types.Config, *logrus.Logger, error) {
	logger := newLogger(rootFlags.verbose)
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(auditFlags.format)
	if err != nil {
		return err
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a := auditor.NewAuditor(cfg, logger)
	defer a.Close()

	result, err := a.AuditStore(ctx, args[0])
	if err != nil {
		logger.Debugf("Audit failed: %v", err)
		return errors.New(types.UserMessage(err))
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, result, format); err != nil {
		return err
	}

	if auditFlags.output == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(auditFlags.output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Infof("Report written to: %s", auditFlags.output)
	return nil
}
