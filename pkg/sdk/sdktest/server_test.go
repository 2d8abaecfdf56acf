package sdktest

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerContext(t *testing.T) {
	assert.Empty(t, callerFrom(context.Background()))
	assert.Equal(t, "root", callerFrom(withCaller(context.Background(), "root")))
}

func TestAdminOnlyRoutes(t *testing.T) {
	srv := New(t)
	srv.AddAccount("root", "s3cret", true)
	srv.AddAccount("jdoe", "pass", false)

	tests := []struct {
		name          string
		authorization string
		want          int
	}{
		{"admin", "Token token-root", http.StatusCreated},
		{"viewer", "Token token-jdoe", http.StatusForbidden},
		{"unknown token", "Token nope", http.StatusUnauthorized},
		{"anonymous", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/groups/", strings.NewReader(`{"name":"qa"}`))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
