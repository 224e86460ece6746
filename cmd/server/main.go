// Package main provides the wind diagnostics HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ajdawson/windspharm"
	httpHandler "github.com/ajdawson/windspharm/internal/http"
	"github.com/ajdawson/windspharm/internal/usecase"

	// Register the spherical harmonic transform implementation.
	_ "github.com/ajdawson/windspharm/spharm/shtns"
)

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("windspharm server version %s\n", windspharm.Version)
		return
	}

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer func() { _ = logger.Sync() }()

	// Load configuration from environment.
	port := getEnv("PORT", "8080")

	logger.Infow("starting wind diagnostics server", "port", port, "version", windspharm.Version)

	// Initialize use case.
	diagnosticsUC := usecase.NewDiagnosticsUseCase(logger)

	// Setup router.
	router := httpHandler.SetupRouter(diagnosticsUC)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	logger.Infow("server listening", "addr", addr)
	logger.Infow("endpoints",
		"diagnostics", "POST /v1/wind/diagnostics",
		"interfaces", "GET /v1/interfaces",
		"health", "GET /health")

	if err := router.Run(addr); err != nil {
		logger.Fatalw("failed to start server", "error", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Wind diagnostics server v%s\n\n", windspharm.Version)
	fmt.Println("USAGE:")
	fmt.Println("  windspharm-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                 Health check")
	fmt.Println("  GET  /v1/interfaces          List available front ends")
	fmt.Println("  POST /v1/wind/diagnostics    Compute diagnostics of a wind field")
	fmt.Println()
}
