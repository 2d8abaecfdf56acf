package client

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// WithLoginHint decorates an authentication failure from the server with a
// pointer to the login command. Other errors pass through unchanged.
func WithLoginHint(err error) error {
	if !sdk.IsUnauthorized(err) {
		return err
	}
	return fmt.Errorf("%w; please run `xusersctl auth login`", err)
}

// Provider yields SDK clients backed by the session store.
type Provider struct {
	serverURL string
	store     sdk.SessionStore
	logger    *zap.Logger
	base      *http.Client
	token     string // ephemeral token that bypasses the session store

	anonOnce sync.Once
	anon     *sdk.Client

	mu          sync.Mutex
	authed      *sdk.Client
	authedToken string
}

// Option customises a Provider.
type Option func(*Provider)

// WithHTTPClient sets the base HTTP client wrapped by the token transport.
func WithHTTPClient(base *http.Client) Option {
	return func(p *Provider) {
		p.base = base
	}
}

// WithLogger sets the logger handed to every SDK client.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider constructs a Provider bound to the given server URL and store.
func NewProvider(serverURL string, store sdk.SessionStore, opts ...Option) *Provider {
	p := &Provider{
		serverURL: serverURL,
		store:     store,
		logger:    zap.NewNop(),
		base:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetToken injects an ephemeral token (from XUSERS_TOKEN) that takes
// precedence over the session store.
func (p *Provider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

// ServerURL returns the API root.
func (p *Provider) ServerURL() string {
	return p.serverURL
}

// Store returns the session store backing the provider.
func (p *Provider) Store() sdk.SessionStore {
	return p.store
}

// AnonymousClient returns a client without credentials, used for login.
func (p *Provider) AnonymousClient() *sdk.Client {
	p.anonOnce.Do(func() {
		p.anon = sdk.NewClient(p.serverURL,
			sdk.WithHTTPClient(p.base),
			sdk.WithLogger(p.logger),
		)
	})
	return p.anon
}

// SDKClient returns a client that authenticates with the current token.
// The client is rebuilt when the stored token changes (login, logout).
// Without a token it returns the anonymous client and the server decides.
func (p *Provider) SDKClient() *sdk.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.token
	if token == "" {
		stored, ok := sdk.Token(p.store)
		if !ok {
			p.authed, p.authedToken = nil, ""
			return p.AnonymousClient()
		}
		token = stored
	}

	if p.authed == nil || p.authedToken != token {
		p.authed = sdk.NewClient(p.serverURL,
			sdk.WithHTTPClient(p.base),
			sdk.WithToken(token),
			sdk.WithLogger(p.logger),
		)
		p.authedToken = token
	}
	return p.authed
}

// Describe renders the session for status output.
func (p *Provider) Describe() (string, error) {
	session, err := p.store.Load()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s as %s (%s)", p.serverURL, session.Username, roleName(session.EffectiveRole())), nil
}

func roleName(role sdk.Role) string {
	if role == sdk.RoleUnknown {
		return "role not yet determined"
	}
	return string(role)
}
