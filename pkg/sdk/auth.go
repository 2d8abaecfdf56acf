package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultAuthPath is the token endpoint of the users API.
const DefaultAuthPath = "/api-auth/"

// LoginInput carries the credentials posted to the token endpoint.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the token endpoint response. Role and IsAdmin are optional
// explicit capability claims; servers that only return a token leave both unset.
type LoginResult struct {
	Token   string `json:"token"`
	Role    Role   `json:"role,omitempty"`
	IsAdmin *bool  `json:"is_admin,omitempty"`
}

// Claim returns the role the server declared, or RoleUnknown if it declared none.
func (r *LoginResult) Claim() Role {
	switch {
	case r.Role != RoleUnknown:
		return r.Role
	case r.IsAdmin != nil:
		return RoleFromAdmin(*r.IsAdmin)
	}
	return RoleUnknown
}

// Login exchanges a username and password for an auth token.
// Field errors (including non_field_errors) come back as *APIError.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var result LoginResult
	if err := c.Do(ctx, http.MethodPost, c.authPath, input, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login: server returned no token")
	}
	return &result, nil
}

// NewSession builds the session to persist after a successful login.
func NewSession(result *LoginResult, username, serverURL string) *Session {
	role := result.Claim()
	return &Session{
		Token:     result.Token,
		Role:      role,
		IsAdmin:   role == RoleAdmin,
		Username:  username,
		ServerURL: serverURL,
	}
}
