package controller_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		wantErr       bool
		wantInvalid   []string
		wantValid     []string
		wantFieldText string
	}{
		{
			name:     "valid credentials",
			username: "root",
			password: "s3cret",
		},
		{
			name:          "wrong password marks both inputs",
			username:      "root",
			password:      "nope",
			wantErr:       true,
			wantInvalid:   []string{"username", "password"},
			wantFieldText: "Unable to log in with provided credentials.",
		},
		{
			name:          "blank username",
			username:      "",
			password:      "s3cret",
			wantErr:       true,
			wantInvalid:   []string{"username"},
			wantValid:     []string{"password"},
			wantFieldText: "This field may not be blank.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			auth := controller.NewAuth(fx.provider, fx.store, fx.nav, zap.NewNop())
			f := form.BuildLoginForm()
			require.NoError(t, f.Set("username", tt.username))
			require.NoError(t, f.Set("password", tt.password))

			err := auth.Login(context.Background(), f)
			if !tt.wantErr {
				require.NoError(t, err)
				token, ok := sdk.Token(fx.store)
				require.True(t, ok)
				assert.Equal(t, "token-root", token)
				assert.True(t, f.Succeeded)
				assert.Equal(t, []controller.Route{controller.RouteRoot}, fx.nav.Routes())
				return
			}

			require.Error(t, err)
			assert.False(t, f.Succeeded)
			assert.Empty(t, fx.nav.Routes())
			_, ok := sdk.Token(fx.store)
			assert.False(t, ok)
			for _, name := range tt.wantInvalid {
				field := f.Field(name)
				assert.True(t, field.Invalid, name)
				assert.Contains(t, field.Messages, tt.wantFieldText)
			}
			for _, name := range tt.wantValid {
				assert.False(t, f.Field(name).Invalid, name)
			}
		})
	}
}

func TestLogin_RetryClearsErrors(t *testing.T) {
	fx := newFixture(t)
	auth := controller.NewAuth(fx.provider, fx.store, fx.nav, zap.NewNop())
	f := form.BuildLoginForm()
	require.NoError(t, f.SetAll(map[string]string{"username": "root", "password": "bad"}))
	require.Error(t, auth.Login(context.Background(), f))
	require.True(t, f.Invalid())

	require.NoError(t, f.Set("password", "s3cret"))
	require.NoError(t, auth.Login(context.Background(), f))
	assert.False(t, f.Invalid())
}

func TestLogin_RoleClaim(t *testing.T) {
	fx := newFixture(t)
	fx.srv.RoleClaim = true

	fx.login(t, "jdoe", "pass")
	assert.Equal(t, sdk.RoleViewer, sdk.CurrentRole(fx.store))
}

func TestLogin_WithoutClaimLeavesRoleUndetermined(t *testing.T) {
	fx := newFixture(t)
	fx.login(t, "root", "s3cret")

	session, err := fx.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "root", session.Username)
	assert.Equal(t, fx.srv.URL, session.ServerURL)
	assert.Equal(t, sdk.RoleUnknown, sdk.CurrentRole(fx.store))
}

func TestLogout(t *testing.T) {
	fx := newFixture(t)
	fx.login(t, "root", "s3cret")
	require.NoError(t, sdk.SetAdmin(fx.store, true))

	auth := controller.NewAuth(fx.provider, fx.store, fx.nav, zap.NewNop())
	require.NoError(t, auth.Logout())

	_, ok := sdk.Token(fx.store)
	assert.False(t, ok)
	assert.False(t, sdk.IsAdmin(fx.store))
	assert.Equal(t, []controller.Route{controller.RouteRoot, controller.RouteLogin}, fx.nav.Routes())
}
