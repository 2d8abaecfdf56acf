package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SearchUsersInput filters the user search endpoint. IsActive is honoured by
// the server for admin callers only.
type SearchUsersInput struct {
	Query    string
	IsActive *bool
}

func userPath(username string) string {
	return "/api/users/" + url.PathEscape(username) + "/"
}

// ListUsers returns every user visible to the caller.
func (c *Client) ListUsers(ctx context.Context) ([]Record, error) {
	var users []Record
	if err := c.Do(ctx, http.MethodGet, "/api/users/", nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SearchUsers queries /api/users/search.
func (c *Client) SearchUsers(ctx context.Context, input SearchUsersInput) ([]Record, error) {
	query := url.Values{}
	if input.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*input.IsActive))
	}
	if input.Query != "" {
		query.Set("q", input.Query)
	}
	path := "/api/users/search"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var users []Record
	if err := c.Do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// GetUser fetches one user by username.
func (c *Client) GetUser(ctx context.Context, username string) (Record, error) {
	var user Record
	if err := c.Do(ctx, http.MethodGet, userPath(username), nil, &user); err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return user, nil
}

// CreateUser posts a new user. The payload nests the address object.
func (c *Client) CreateUser(ctx context.Context, payload Record) (Record, error) {
	var user Record
	if err := c.Do(ctx, http.MethodPost, "/api/users/", payload, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUser patches the given fields of a user and returns the server's
// full representation.
func (c *Client) UpdateUser(ctx context.Context, username string, payload Record) (Record, error) {
	var user Record
	if err := c.Do(ctx, http.MethodPatch, userPath(username), payload, &user); err != nil {
		return nil, fmt.Errorf("update user %s: %w", username, err)
	}
	return user, nil
}

// GetUserGroups returns the names of the groups a user belongs to.
func (c *Client) GetUserGroups(ctx context.Context, username string) ([]string, error) {
	var body Record
	if err := c.Do(ctx, http.MethodGet, userPath(username)+"groups/", nil, &body); err != nil {
		return nil, fmt.Errorf("get groups of %s: %w", username, err)
	}
	return body.Strings("groups"), nil
}

// SetUserGroups replaces a user's memberships with exactly groups.
func (c *Client) SetUserGroups(ctx context.Context, username string, groups []string) (Record, error) {
	if groups == nil {
		groups = []string{}
	}
	var body Record
	payload := map[string]any{"groups": groups}
	if err := c.Do(ctx, http.MethodPut, userPath(username)+"groups/", payload, &body); err != nil {
		return nil, fmt.Errorf("set groups of %s: %w", username, err)
	}
	return body, nil
}
