package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr/tesseract"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
	"github.com/ironsheep/docscan-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("docscan-mcp - MCP server for scanning photographed documents")
			fmt.Println()
			fmt.Println("Usage: docscan-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  DOCSCAN_LOG_LEVEL=debug        Enable debug logging")
			fmt.Println("  DOCSCAN_OCR_LANGUAGE=por       Default OCR language")
			fmt.Println("  DOCSCAN_TESSDATA_PREFIX=path   Tesseract language data")
			fmt.Println("  DOCSCAN_ENHANCE_MODE=sharpen   sharpen, threshold, both or none")
			fmt.Println("  DOCSCAN_TARGET_WIDTH/HEIGHT    Size of the rectified page")
			fmt.Println()
			fmt.Println("A .env file in the working directory is read when present.")
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	service, err := scanner.NewServiceFromConfig(cfg, tesseract.New(cfg.TessdataPrefix))
	if err != nil {
		logger.WithError(err).Fatal("Failed to build scanner")
	}

	if Version != "dev" {
		server.Version = Version
	}

	logger.WithFields(logrus.Fields{
		"version":  Version,
		"commit":   GitCommit,
		"language": cfg.OCRLanguage,
		"target":   fmt.Sprintf("%dx%d", cfg.TargetWidth, cfg.TargetHeight),
		"mode":     cfg.EnhanceMode,
	}).Debug("Starting docscan MCP server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(service, cfg.Workers, cfg.RequestTimeout)
	defer srv.Close()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("Server error")
	}
}
