// Command iconect-mcp runs the iCONECT MCP gateway. By default it speaks
// MCP over stdio for agent hosts that spawn it as a subprocess; with
// --listen-addr it serves the streamable HTTP transport instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Dizzident/iconect-mcp/internal/config"
	"github.com/Dizzident/iconect-mcp/internal/gateway"
	"github.com/Dizzident/iconect-mcp/internal/logging"
	"github.com/Dizzident/iconect-mcp/internal/mcpserver"
	"github.com/Dizzident/iconect-mcp/internal/server"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	EnvFile     string
	ConfigFile  string
	ListenAddr  string
	LogLevel    string
	ShowVersion bool
}

func parseFlags() *flags {
	f := &flags{}

	flag.StringVar(&f.EnvFile, "env-file", "", "load environment variables from this file")
	flag.StringVar(&f.ConfigFile, "config", "", "path to YAML config file with connection defaults")
	flag.StringVar(&f.ListenAddr, "listen-addr", "", "serve MCP over HTTP on this address instead of stdio")
	flag.StringVar(&f.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.BoolVar(&f.ShowVersion, "version", false, "print the version and exit")
	flag.Parse()

	return f
}

func run() error {
	f := parseFlags()

	if f.ShowVersion {
		fmt.Println(Version)
		return nil
	}

	settings, err := config.Load(config.LoadOptions{EnvFile: f.EnvFile, ConfigFile: f.ConfigFile})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags win over file and environment.
	if f.LogLevel != "" {
		settings.LogLevel = f.LogLevel
	}
	if f.ListenAddr != "" {
		settings.ListenAddr = f.ListenAddr
	}

	// Logs go to stderr: in stdio mode stdout carries the MCP wire protocol.
	logger := logging.NewLogger(settings.LogLevel)
	logger.Info("iconect-mcp starting",
		slog.String("version", Version),
		slog.Bool("defaults_provisioned", settings.BaseURL != ""),
	)

	bridge := mcpserver.New(gateway.New(*settings, logger), Version, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.ListenAddr != "" {
		return serveHTTP(ctx, bridge, settings.ListenAddr, logger)
	}

	logger.Info("serving MCP over stdio")
	if err := bridge.Server().Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	return nil
}

func serveHTTP(ctx context.Context, bridge *mcpserver.Bridge, addr string, logger *slog.Logger) error {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return bridge.Server()
	}, nil)

	mux := server.NewMux(server.MuxConfig{
		MCPHandler: mcpHandler,
		Gateway:    bridge.Gateway(),
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Signal handling for graceful shutdown.
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving MCP over HTTP",
		slog.String("listen", addr),
		slog.String("path", "/mcp"),
	)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
