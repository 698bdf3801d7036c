// Package gateway owns the configured session and dispatches commands.
// It is the single entry point of the command surface: transports hand it
// a name and raw arguments and always get an envelope back, whatever
// happens underneath.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// CommandConfigure is the only command available before configuration.
const CommandConfigure = "iconect_configure"

// Gateway dispatches commands against the current session. Configuration
// swaps the session wholesale under the lock; dispatches read it once and
// then run lock-free against the immutable snapshot.
type Gateway struct {
	defaults config.Settings
	logger   *slog.Logger

	mu   sync.RWMutex
	sess *Session

	configure command.Descriptor
}

// New creates an unconfigured Gateway. defaults supplies operator-provided
// settings the configure command merges its input over.
func New(defaults config.Settings, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := &Gateway{defaults: defaults, logger: logger}
	g.configure = newConfigureCommand(g)

	return g
}

// Configured reports whether a session is active.
func (g *Gateway) Configured() bool {
	return g.session() != nil
}

// Session returns the current session, nil before configuration.
func (g *Gateway) Session() *Session {
	return g.session()
}

func (g *Gateway) session() *Session {
	g.mu.RLock()
	sess := g.sess
	g.mu.RUnlock()

	return sess
}

// swap installs a new session, discarding the prior one and everything it
// held, including stored credentials.
func (g *Gateway) swap(sess *Session) {
	g.mu.Lock()
	g.sess = sess
	g.mu.Unlock()
}

// Commands returns the advertised command set: configure alone before a
// session exists, configure plus the full session registry afterwards.
func (g *Gateway) Commands() []command.Descriptor {
	out := []command.Descriptor{g.configure}
	if sess := g.session(); sess != nil {
		out = append(out, sess.Registry.All()...)
	}

	return out
}

// Dispatch runs one named command and always returns an envelope: a
// success envelope never carries an error, a failure envelope never
// carries data, and a panicking handler surfaces as INTERNAL_ERROR
// instead of crashing the process.
func (g *Gateway) Dispatch(ctx context.Context, name string, raw json.RawMessage) (env command.Envelope) {
	logger := g.logger.With(slog.String("command", name))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("command panicked", slog.Any("panic", r))
			env = command.Fail(iconerr.Newf(iconerr.CodeInternal, "internal error running %s", name))
		}
	}()

	d, err := g.lookup(name)
	if err != nil {
		return command.Fail(err)
	}

	data, message, err := d.Invoke(ctx, raw)
	if err != nil {
		logger.Warn("command failed", slog.String("error", err.Error()))

		return command.Fail(err)
	}

	logger.Debug("command succeeded")

	return command.OK(message, data)
}

// lookup resolves a name to its descriptor, enforcing the configuration
// gate: before configure, every other name fails with NOT_CONFIGURED;
// after it, unregistered names fail with UNKNOWN_TOOL.
func (g *Gateway) lookup(name string) (command.Descriptor, error) {
	if name == CommandConfigure {
		return g.configure, nil
	}

	sess := g.session()
	if sess == nil {
		return command.Descriptor{}, iconerr.New(iconerr.CodeNotConfigured,
			"platform connection not configured, call iconect_configure first")
	}

	if d, ok := sess.Registry.Lookup(name); ok {
		return d, nil
	}

	return command.Descriptor{}, iconerr.Newf(iconerr.CodeUnknownTool, "unknown command: %s", name)
}
