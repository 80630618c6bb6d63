package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
)

// Scope selects how far a sign-out reaches
type Scope string

const (
	// ScopeGlobal revokes the session everywhere
	ScopeGlobal Scope = "global"
	// ScopeLocal only invalidates this client's session
	ScopeLocal Scope = "local"
)

// Session is the authenticated identity as reported by the provider
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Nickname    string    `json:"nickname"`
	AccessToken string    `json:"access_token"`
}

// Provider is the external identity/session service. Session returns
// (nil, nil) when no session exists.
type Provider interface {
	Session(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context, scope Scope) error
}

// HTTPProvider implements Provider against the authority's auth endpoints
type HTTPProvider struct {
	client *api.Client
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a Provider backed by the given client
func NewHTTPProvider(client *api.Client) *HTTPProvider {
	return &HTTPProvider{client: client}
}

// Session fetches the current session for the client's token
func (p *HTTPProvider) Session(ctx context.Context) (*Session, error) {
	if p.client.Token() == "" {
		return nil, nil
	}
	var sess *Session
	if err := p.client.Get(ctx, "/api/auth/session", &sess); err != nil {
		if api.IsCode(err, "SESSION_NOT_FOUND") || api.IsCode(err, "HTTP_401") {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

// SignOut revokes the session with the given scope
func (p *HTTPProvider) SignOut(ctx context.Context, scope Scope) error {
	return p.client.Post(ctx, "/api/auth/signout", map[string]any{"scope": scope}, nil)
}
