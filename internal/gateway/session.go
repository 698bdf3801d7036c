package gateway

import (
	"log/slog"

	"github.com/Dizzident/iconect-mcp/internal/auth"
	"github.com/Dizzident/iconect-mcp/internal/client"
	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
	"github.com/Dizzident/iconect-mcp/internal/iconect"
	"github.com/Dizzident/iconect-mcp/internal/token"
)

// Session bundles everything one configure call builds: token store,
// pipeline, auth manager and the command registry. Sessions are immutable
// after construction; reconfiguring builds a new one and swaps it in
// wholesale, so nothing from a prior configuration stays reachable.
type Session struct {
	Settings config.Settings
	Store    *token.Store
	Pipeline *client.Pipeline
	Manager  *auth.Manager
	Registry *command.Registry
}

// newSession builds a complete session from validated settings.
func newSession(settings config.Settings, logger *slog.Logger) (*Session, error) {
	store := token.NewStore()

	pipeline := client.New(client.Options{
		BaseURL:    settings.BaseURL,
		Store:      store,
		Logger:     logger,
		Timeout:    settings.Timeout(),
		MaxRetries: settings.MaxRetries,
		RetryDelay: settings.RetryDelay(),
	})

	manager := auth.NewManager(pipeline, store, auth.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
	}, logger)
	pipeline.SetRefresher(manager)

	service := iconect.NewService(pipeline)

	groups := append([][]command.Descriptor{authCommands(manager)}, service.Commands()...)

	registry, err := command.NewRegistry(groups...)
	if err != nil {
		return nil, err
	}

	return &Session{
		Settings: settings,
		Store:    store,
		Pipeline: pipeline,
		Manager:  manager,
		Registry: registry,
	}, nil
}
