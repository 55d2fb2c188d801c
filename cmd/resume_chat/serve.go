package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat-builder/internal/config"
	"github.com/jonathan/resume-chat-builder/internal/server"
)

var (
	serveAddr       string
	serveConfigPath string
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes session, message, import and reset endpoints for building resumes conversationally.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath, serveVerbose)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	logger := newLogger(cfg)

	ctx := context.Background()
	manager, cleanup, err := buildManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	serverCfg := server.Config{Addr: cfg.Addr}
	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}
		serverCfg.JWT = server.NewJWTService(jwtCfg)
	}

	return server.New(serverCfg, manager, logger).Start(ctx)
}
