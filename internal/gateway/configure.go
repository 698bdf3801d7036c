package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
)

// ConfigureInput holds parameters for iconect_configure.
type ConfigureInput struct {
	BaseURL      string `json:"baseUrl" jsonschema:"required,platform REST base URL, e.g. https://review.example.com"`
	ClientID     string `json:"clientId" jsonschema:"required,OAuth client identifier"`
	ClientSecret string `json:"clientSecret,omitempty" jsonschema:"OAuth client secret, omit for public clients"`
	TimeoutMs    int    `json:"timeoutMs,omitempty" jsonschema:"HTTP timeout in milliseconds, default 30000"`
	MaxRetries   int    `json:"maxRetries,omitempty" jsonschema:"transient retry attempts per request, default 3"`
	RetryDelayMs int    `json:"retryDelayMs,omitempty" jsonschema:"delay between transient retries in milliseconds, default 1000"`
}

// ConfigureData is the non-secret configuration echo returned on success.
// The client secret is deliberately absent.
type ConfigureData struct {
	BaseURL   string `json:"baseUrl"`
	ClientID  string `json:"clientId"`
	TimeoutMs int    `json:"timeoutMs"`
}

// newConfigureCommand builds the configure descriptor. A failed configure
// leaves any prior session untouched; a successful one replaces it
// wholesale, dropping stored credentials along with everything else.
func newConfigureCommand(g *Gateway) command.Descriptor {
	return command.New(CommandConfigure,
		"Connect the gateway to an iCONECT platform. Reconfiguring builds a fresh session and discards prior credentials.",
		func(ctx context.Context, in ConfigureInput) (any, string, error) {
			settings := g.defaults.Merged(config.Settings{
				BaseURL:      in.BaseURL,
				ClientID:     in.ClientID,
				ClientSecret: in.ClientSecret,
				TimeoutMs:    in.TimeoutMs,
				MaxRetries:   in.MaxRetries,
				RetryDelayMs: in.RetryDelayMs,
			})
			settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
			settings.ApplyDefaults()

			if err := settings.Validate(); err != nil {
				return nil, "", err
			}

			sess, err := newSession(settings, g.logger)
			if err != nil {
				return nil, "", err
			}

			g.swap(sess)
			g.logger.Info("gateway configured",
				slog.String("base_url", settings.BaseURL),
				slog.String("client_id", settings.ClientID),
				slog.Int("commands", sess.Registry.Len()+1))

			data := ConfigureData{
				BaseURL:   settings.BaseURL,
				ClientID:  settings.ClientID,
				TimeoutMs: settings.TimeoutMs,
			}

			return data, fmt.Sprintf("gateway configured for %s", settings.BaseURL), nil
		})
}
