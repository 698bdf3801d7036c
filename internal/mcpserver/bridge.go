// Package mcpserver exposes the gateway's command surface as MCP tools.
// It adapts command descriptors to the MCP SDK's tool interface and keeps
// the published tool list in sync with the configuration gate: only
// iconect_configure before configuration, the full registry after.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/gateway"
)

// serverName identifies this gateway in the MCP handshake.
const serverName = "iconect-mcp"

// Bridge connects a Gateway to an MCP server. Handlers route by command
// name through Gateway.Dispatch, so a session swap never leaves a stale
// handler behind: every call resolves against the current session.
type Bridge struct {
	server *mcp.Server
	gw     *gateway.Gateway
	logger *slog.Logger

	mu        sync.Mutex
	published map[string]bool
}

// New creates the MCP server and publishes the gateway's initial command
// set.
func New(gw *gateway.Gateway, version string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Bridge{
		server:    mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		gw:        gw,
		logger:    logger,
		published: make(map[string]bool),
	}
	b.syncTools()

	return b
}

// Server returns the underlying MCP server for transport wiring.
func (b *Bridge) Server() *mcp.Server {
	return b.server
}

// Gateway returns the gateway this bridge publishes.
func (b *Bridge) Gateway() *gateway.Gateway {
	return b.gw
}

// handlerFor builds the MCP handler for one command name: dispatch
// through the gateway, serialize the envelope, and republish the tool
// list after a successful configure.
func (b *Bridge) handlerFor(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := b.gw.Dispatch(ctx, name, req.Params.Arguments)

		if name == gateway.CommandConfigure && env.Success {
			b.syncTools()
		}

		return envelopeResult(env), nil
	}
}

// syncTools reconciles the published tools with the gateway's advertised
// set. The SDK notifies connected sessions when the list changes.
func (b *Bridge) syncTools() {
	b.mu.Lock()
	defer b.mu.Unlock()

	commands := b.gw.Commands()

	current := make(map[string]bool, len(commands))
	for _, d := range commands {
		current[d.Name] = true
		if b.published[d.Name] {
			continue
		}

		b.server.AddTool(&mcp.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.Schema,
		}, b.handlerFor(d.Name))
		b.published[d.Name] = true
	}

	var stale []string
	for name := range b.published {
		if !current[name] {
			stale = append(stale, name)
		}
	}

	if len(stale) > 0 {
		b.server.RemoveTools(stale...)
		for _, name := range stale {
			delete(b.published, name)
		}
	}

	b.logger.Debug("tool list synced", slog.Int("tools", len(b.published)))
}

// envelopeResult serializes an envelope as the tool result. Failure
// envelopes set IsError so agents treat them as tool failures while still
// seeing the structured error body.
func envelopeResult(env command.Envelope) *mcp.CallToolResult {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error marshaling envelope: %v", err)}},
			IsError: true,
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: !env.Success,
	}
}
