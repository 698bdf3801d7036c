// Package server provides HTTP server construction for the gateway's
// listen mode.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/Dizzident/iconect-mcp/internal/gateway"
)

// MuxConfig holds dependencies for building the HTTP mux.
type MuxConfig struct {
	MCPHandler http.Handler
	Gateway    *gateway.Gateway
}

// NewMux builds the HTTP mux with the MCP endpoint and a health probe.
// The probe reports whether a platform connection has been configured,
// which is what an orchestrator actually wants to know about this
// process.
func NewMux(cfg MuxConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/mcp", cfg.MCPHandler)
	mux.HandleFunc("/healthz", handleHealth(cfg.Gateway))

	return mux
}

func handleHealth(g *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "ok",
			"configured": g.Configured(),
		})
	}
}
