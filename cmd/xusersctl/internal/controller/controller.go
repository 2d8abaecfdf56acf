// Package controller runs the console's form lifecycle: it gathers form
// values, issues one API call per submit, reconciles successful responses
// into the table and maps failures back onto the form.
package controller

import (
	"errors"

	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// ErrNoDetail is returned when a submit targets a row that is not expanded.
var ErrNoDetail = errors.New("row is not expanded")

// Route is a console destination.
type Route string

const (
	RouteRoot  Route = "/"
	RouteLogin Route = "/login/"
)

// Navigator moves the console to another route.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route Route)

func (f NavigatorFunc) Navigate(route Route) { f(route) }

// ClientSource yields API clients. *client.Provider implements it.
type ClientSource interface {
	AnonymousClient() *sdk.Client
	SDKClient() *sdk.Client
}

// DetectRole returns the role cached in the session. Without one, it falls
// back to inspecting the first user record for date_joined, which the
// server only includes for admins, and caches the result. An empty
// listing leaves the role undetermined.
func DetectRole(store sdk.SessionStore, users []sdk.Record) (sdk.Role, error) {
	if role := sdk.CurrentRole(store); role != sdk.RoleUnknown {
		return role, nil
	}
	if len(users) == 0 {
		return sdk.RoleUnknown, nil
	}
	admin := users[0].Has("date_joined")
	if err := sdk.SetAdmin(store, admin); err != nil {
		return sdk.RoleUnknown, err
	}
	return sdk.RoleFromAdmin(admin), nil
}

// reconcile replaces the row's record with a mutation response. Responses
// that do not carry the natural key are not records and leave the row as is.
func reconcile(log *zap.SugaredLogger, tbl *table.Table, id table.RowID, rec sdk.Record) {
	if !rec.Has(tbl.KeyField()) {
		log.Warnw("mutation response is not a record; row left unchanged", "row", id, "keys", len(rec))
		return
	}
	if err := tbl.PatchRow(id, rec); err != nil {
		log.Debugw("row vanished before response", "row", id)
	}
}

// unmapped logs a failure whose body could not be attached to a form.
func unmapped(log *zap.SugaredLogger, op string, err error) {
	log.Warnw("unexpected error shape", "op", op, "error", err)
}
