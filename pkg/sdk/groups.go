package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ReplaceGroupInput is the full target state of a group for PUT.
type ReplaceGroupInput struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

func groupPath(name string) string {
	return "/api/groups/" + url.PathEscape(name) + "/"
}

// ListGroups returns every group with its member count.
func (c *Client) ListGroups(ctx context.Context) ([]Record, error) {
	var groups []Record
	if err := c.Do(ctx, http.MethodGet, "/api/groups/", nil, &groups); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// GetGroup fetches a group including its member usernames.
func (c *Client) GetGroup(ctx context.Context, name string) (Record, error) {
	var group Record
	if err := c.Do(ctx, http.MethodGet, groupPath(name), nil, &group); err != nil {
		return nil, fmt.Errorf("get group %s: %w", name, err)
	}
	return group, nil
}

// CreateGroup creates an empty group.
func (c *Client) CreateGroup(ctx context.Context, name string) (Record, error) {
	var group Record
	if err := c.Do(ctx, http.MethodPost, "/api/groups/", map[string]any{"name": name}, &group); err != nil {
		return nil, fmt.Errorf("create group %s: %w", name, err)
	}
	return group, nil
}

// UpdateGroup patches a group. Renames send {"name": ...}; membership edits
// over PATCH must also carry an "action" of add or remove.
func (c *Client) UpdateGroup(ctx context.Context, name string, payload Record) (Record, error) {
	var group Record
	if err := c.Do(ctx, http.MethodPatch, groupPath(name), payload, &group); err != nil {
		return nil, fmt.Errorf("update group %s: %w", name, err)
	}
	return group, nil
}

// ReplaceGroup sets the group's name and complete member list.
func (c *Client) ReplaceGroup(ctx context.Context, name string, input ReplaceGroupInput) (Record, error) {
	if input.Users == nil {
		input.Users = []string{}
	}
	var group Record
	if err := c.Do(ctx, http.MethodPut, groupPath(name), input, &group); err != nil {
		return nil, fmt.Errorf("replace group %s: %w", name, err)
	}
	return group, nil
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, name string) error {
	if err := c.Do(ctx, http.MethodDelete, groupPath(name), nil, nil); err != nil {
		return fmt.Errorf("delete group %s: %w", name, err)
	}
	return nil
}
