package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b2gateway/config"
	"b2gateway/router"
	"b2gateway/services/files"
	"b2gateway/storage"
	"b2gateway/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port   string
		driver string
		debug  bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				os.Setenv("PORT", port)
			}
			if driver != "" {
				os.Setenv("STORAGE_DRIVER", driver)
			}
			if debug {
				os.Setenv("LOG_LEVEL", "debug")
			}
			return serve(cmd.Context())
		},
	}
	serveCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&driver, "driver", "", "storage driver: minio, s3 or memory (overrides STORAGE_DRIVER)")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and gin debug mode")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "b2gateway",
		Short:         "HTTP gateway for Backblaze B2 and other S3-compatible storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		// serve is the default action
		RunE: serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.SetupLogging(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	logger.Info("b2gateway starting up", zap.String("version", version))

	if logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to storage backend",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("endpoint", cfg.Storage.Endpoint),
	)
	objectStorage, err := storage.New(cfg.Storage, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	filesService := files.NewService(objectStorage, logger.Named("files"))
	defer filesService.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := router.New(router.Options{
		Files:              filesService,
		Logger:             logger,
		Registry:           registry,
		CorsOrigin:         cfg.CorsOrigin,
		MaxUploadBytes:     cfg.MaxUploadBytes(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Version:            version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
