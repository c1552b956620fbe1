package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/circularity-mcp/internal/config"
	"github.com/ironsheep/circularity-mcp/internal/logger"
	"github.com/ironsheep/circularity-mcp/internal/server"
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
			fmt.Printf("circularity-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("circularity-mcp - MCP server that measures how circular an object is")
			fmt.Println()
			fmt.Println("Usage: circularity-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  CIRCULARITY_MCP_LOG_LEVEL=info        debug, info, warn or error")
			fmt.Println("  CIRCULARITY_MCP_LOG_FORMAT=json       json or console")
			fmt.Println("  CIRCULARITY_MCP_EDGE_SIZE=3           Edge smoothing in pixels")
			fmt.Println("  CIRCULARITY_MCP_RADIUS_STEP=5         Hough radius spacing")
			fmt.Println("  CIRCULARITY_MCP_SEED=0                Estimator seed (0 = clock)")
			fmt.Println("  CIRCULARITY_MCP_SUPERPIXELS=2500      Superpixels for painting")
			fmt.Println("  CIRCULARITY_MCP_COMPACTNESS=15        Superpixel compactness")
			fmt.Println("  CIRCULARITY_MCP_MAX_HISTORIES=31415   Simulation trial limit")
			fmt.Println("  CIRCULARITY_MCP_CRITERION=0.0000314   Simulation stop deviation")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "circularity-mcp: %v\n", err)
		os.Exit(1)
	}

	// Log to stderr (stdout is for MCP protocol)
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log, err := logger.NewWithFormat(os.Stderr, level, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "circularity-mcp: %v\n", err)
		os.Exit(1)
	}
	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("starting circularity-mcp")
	log.Debug().Interface("config", cfg).Msg("configuration loaded")

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.WithLevel(zerolog.FatalLevel).Err(err).Msg("server error")
		os.Exit(1)
	}
}
