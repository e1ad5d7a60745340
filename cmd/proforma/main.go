package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/internal/server"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/output"
	"github.com/iwvelando/proforma/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	switch level {
	case "":
		level = "info"
	case "warning":
		level = "warn"
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil || zapLevel > zapcore.ErrorLevel {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var zapConfig zap.Config
	switch loggingConfig.Format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "", "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", loggingConfig.Format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "proforma",
		Short:         "Pro-forma financial projections for a business plan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is not an error.
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Compute the plan and print the preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			configLocation, _ := cmd.Flags().GetString("config")
			outputFormat, _ := cmd.Flags().GetString("output-format")
			outputFile, _ := cmd.Flags().GetString("output-file")
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runPreview(cmd.OutOrStdout(), configLocation, outputFormat, outputFile, logLevel)
		},
	}
	cmd.Flags().String("config", constants.DefaultConfigFile, "path to the plan file")
	cmd.Flags().String("output-format", "", "output format override: pretty, csv, json, markdown, xlsx")
	cmd.Flags().String("output-file", "", "write the output to a file instead of stdout")
	return cmd
}

func runPreview(stdout io.Writer, configLocation, outputFormat, outputFile, logLevel string) error {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		if configLocation == constants.DefaultConfigFile {
			return fmt.Errorf("failed to load configuration at %s (start from %s): %w",
				configLocation, constants.ExampleConfigFile, err)
		}
		return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over the file.
	if outputFormat != "" {
		conf.Output.Format = outputFormat
	}
	if outputFile != "" {
		conf.Output.File = outputFile
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		return err
	}
	if conf.Output.Format == constants.OutputFormatXLSX && conf.Output.File == "" {
		return errors.New("xlsx output requires --output-file")
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.preview"),
		)
	}

	result := forecast.Compute(logger, conf.Plan)

	w := stdout
	if conf.Output.File != "" {
		file, err := os.Create(conf.Output.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Warn("failed to close output file",
					zap.String("op", "main.preview"),
					zap.Error(closeErr),
				)
			}
		}()
		w = file
	}
	return output.Write(w, conf.Output.Format, result)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preview API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			configLocation, _ := cmd.Flags().GetString("server-config")
			address, _ := cmd.Flags().GetString("address")
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runServe(cmd.Context(), configLocation, address, logLevel)
		},
	}
	cmd.Flags().String("server-config", constants.DefaultServerConfigFile, "path to the server configuration file")
	cmd.Flags().String("address", "", "listen address override")
	return cmd
}

func runServe(ctx context.Context, configLocation, address, logLevel string) error {
	cfg, err := server.LoadConfig(configLocation)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Address = address
	}

	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting preview server",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down preview server", zap.String("op", "main.serve"))
	return srv.Shutdown(shutdownCtx)
}

type catalogOutput struct {
	Categories []assets.Category `json:"categories"`
	CostItems  []costs.Item      `json:"operatingCostItems"`
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the fixed investment categories and default cost rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(catalogOutput{Categories: assets.Catalog(), CostItems: costs.DefaultItems()})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proforma %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
