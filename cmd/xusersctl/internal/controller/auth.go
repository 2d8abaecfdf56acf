package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// Auth drives login and logout.
type Auth struct {
	clients ClientSource
	store   sdk.SessionStore
	nav     Navigator
	log     *zap.SugaredLogger
}

// NewAuth returns an Auth controller.
func NewAuth(clients ClientSource, store sdk.SessionStore, nav Navigator, logger *zap.Logger) *Auth {
	return &Auth{clients: clients, store: store, nav: nav, log: logger.Sugar()}
}

// Login submits the login form. On success the token (and the role claim,
// when the server sends one) is stored and the console navigates to the
// root route. On failure the erroring fields are marked on f.
func (a *Auth) Login(ctx context.Context, f *form.Form) error {
	f.ClearValidation()
	client := a.clients.AnonymousClient()
	username := f.Value("username")

	result, err := client.Login(ctx, sdk.LoginInput{
		Username: username,
		Password: f.Value("password"),
	})
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(a.log, "login", err)
		}
		return err
	}

	if err := a.store.Save(sdk.NewSession(result, username, client.BaseURL())); err != nil {
		return err
	}
	f.MarkSucceeded()
	a.log.Debugw("logged in", "username", username, "role", result.Claim())
	a.nav.Navigate(RouteRoot)
	return nil
}

// Logout clears the token and role, then navigates to login.
func (a *Auth) Logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.nav.Navigate(RouteLogin)
	return nil
}
