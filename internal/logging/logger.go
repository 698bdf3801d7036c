// Package logging builds the process logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a structured text logger at the given level. Output
// goes to stderr: in stdio mode stdout carries the MCP wire protocol and
// must stay clean.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps a level name to its slog level. Unknown names fall back
// to info rather than failing startup.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
