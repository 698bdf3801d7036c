// Package token holds the gateway's in-memory credential set. One Store
// instance is shared between the request pipeline and the auth lifecycle
// manager; nothing is persisted, so credentials do not survive a restart.
package token

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpirySkew is the safety margin applied before token injection: a token
// expiring within this window is treated as unusable so that a request
// does not arrive at the platform with a token that just died in flight.
const ExpirySkew = 30 * time.Second

// Credentials is one issued credential set from the platform token endpoint.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
}

// ValidFor reports whether the access token is present and will still be
// valid skew from now. A zero ExpiresAt means the platform reported no
// expiry; such a token is treated as valid.
func (c *Credentials) ValidFor(skew time.Duration) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}

	if c.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(skew).Before(c.ExpiresAt)
}

// Expired reports whether the expiry has passed. Unlike ValidFor it applies
// no safety margin: status reporting wants the raw fact, not the injection
// decision.
func (c *Credentials) Expired() bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}

	return !time.Now().Before(c.ExpiresAt)
}

// OAuth2Token converts the credentials to the x/oauth2 token shape for
// callers that hand them to libraries consuming that type.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	if c == nil {
		return nil
	}

	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.ExpiresAt,
	}
}
