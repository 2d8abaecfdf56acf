package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/client"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk/sdktest"
)

func testServer(t *testing.T) *sdktest.Server {
	t.Helper()
	srv := sdktest.New(t)
	srv.AddAccount("root", "s3cret", true)
	srv.AddAccount("jdoe", "pass", false)
	srv.AddUser(sdk.Record{
		"username": "root", "first_name": "Root", "last_name": "Admin",
		"email": "root@example.com", "birthday": "1980-01-01",
	})
	srv.AddUser(sdk.Record{
		"username": "jdoe", "first_name": "John", "last_name": "Doe",
		"email": "jdoe@example.com", "birthday": "1990-05-17",
		"address": map[string]any{
			"city": "Moscow", "country": "Russia", "district": "Center",
			"street": "Arbat", "zip_code": "123456",
		},
	})
	srv.AddGroup("staff", "jdoe")
	srv.AddGroup("ops")
	return srv
}

func newTestModel(t *testing.T, srv *sdktest.Server, store sdk.SessionStore) Model {
	t.Helper()
	provider := client.NewProvider(srv.URL, store)
	return NewModel(Options{Clients: provider, Store: store})
}

// run executes cmd and feeds each resulting message back into the model
// until no command is left.
func run(model Model, cmd tea.Cmd) Model {
	for cmd != nil {
		message := cmd()
		if message == nil {
			return model
		}
		if _, quit := message.(tea.QuitMsg); quit {
			return model
		}
		var next tea.Model
		next, cmd = model.Update(message)
		model = next.(Model)
	}
	return model
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(model Model, keys ...string) Model {
	for _, k := range keys {
		next, cmd := model.Update(keyMsg(k))
		model = run(next.(Model), cmd)
	}
	return model
}

// typeText enters text into the field being edited and commits it.
func typeText(model Model, text string) Model {
	model = press(model, "ctrl+u")
	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	model = run(next.(Model), cmd)
	return press(model, "enter")
}

// focusField moves the panel focus to the named field.
func focusField(t *testing.T, model Model, name string) Model {
	t.Helper()
	for i, c := range controlsOf(model.sections()) {
		if c.kind == controlField && c.field.Name == name {
			model.target = i
			return model
		}
	}
	t.Fatalf("field %q not in panel", name)
	return model
}

func focusSubmit(t *testing.T, model Model, label string) Model {
	t.Helper()
	for i, c := range controlsOf(model.sections()) {
		if c.kind == controlSubmit && c.form.Submit == label {
			model.target = i
			return model
		}
	}
	t.Fatalf("submit %q not in panel", label)
	return model
}

func login(t *testing.T, model Model, username, password string) Model {
	t.Helper()
	model = focusField(t, model, "username")
	model = typeText(press(model, "enter"), username)
	model = focusField(t, model, "password")
	model = typeText(press(model, "enter"), password)
	model = focusSubmit(t, model, "Log in")
	return press(model, "enter")
}

func TestModel_StartsOnLoginWithoutToken(t *testing.T) {
	srv := testServer(t)
	model := newTestModel(t, srv, sdk.NewMemoryStore())

	assert.Equal(t, controller.RouteLogin, model.route)
	assert.Nil(t, model.Init())
	assert.Contains(t, model.View(), "Log in")
}

func TestModel_LoginLoadsUsers(t *testing.T) {
	srv := testServer(t)
	store := sdk.NewMemoryStore()
	model := login(t, newTestModel(t, srv, store), "root", "s3cret")

	assert.Equal(t, controller.RouteRoot, model.route)
	assert.Equal(t, focusTable, model.focus)
	assert.Equal(t, 2, model.users.Table().Len())
	assert.Equal(t, sdk.RoleAdmin, sdk.CurrentRole(store))

	view := model.View()
	assert.Contains(t, view, "USERNAME")
	assert.Contains(t, view, "jdoe@example.com")
	assert.Contains(t, view, "root (admin)")
}

func TestModel_LoginFailureMarksFields(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "wrong")

	assert.Equal(t, controller.RouteLogin, model.route)
	assert.True(t, model.statusErr)
	assert.True(t, model.loginForm.Field("username").Invalid)
	assert.True(t, model.loginForm.Field("password").Invalid)
	assert.Contains(t, model.View(), "Unable to log in with provided credentials.")
}

func TestModel_ResumesStoredSession(t *testing.T) {
	srv := testServer(t)
	store := sdk.NewMemoryStore()
	require.NoError(t, store.Save(&sdk.Session{Token: "token-jdoe", Username: "jdoe"}))

	model := newTestModel(t, srv, store)
	require.Equal(t, controller.RouteRoot, model.route)
	model = run(model, model.Init())

	assert.Equal(t, 2, model.users.Table().Len())
	assert.Equal(t, sdk.RoleViewer, sdk.CurrentRole(store))
}

func TestModel_ExpandAndEditProfile(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")

	model = press(model, "j", "enter")
	require.Equal(t, focusPanel, model.focus)
	row, ok := model.currentRow()
	require.True(t, ok)
	require.True(t, row.Expanded)
	assert.Contains(t, model.View(), "Update User")

	model = focusField(t, model, "first_name")
	model = typeText(press(model, "enter"), "Jane")
	model = press(model, "ctrl+s")

	assert.False(t, model.statusErr, model.status)
	assert.Equal(t, "Jane", srv.User("jdoe").String("first_name"))
	row, _ = model.currentRow()
	assert.Equal(t, "Jane", row.Record.String("first_name"))
}

func TestModel_ReadOnlyFieldRejectsEdit(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")
	model = press(model, "j", "enter")

	model = focusField(t, model, "date_joined")
	model = press(model, "enter")
	assert.Equal(t, focusPanel, model.focus)
	assert.True(t, model.statusErr)
}

func TestModel_ViewerSeesNoSubmit(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "jdoe", "pass")
	model = press(model, "j", "enter")

	for _, c := range controlsOf(model.sections()) {
		assert.NotEqual(t, controlSubmit, c.kind)
	}
	view := model.View()
	assert.NotContains(t, view, "Update User")
	assert.NotContains(t, view, "Change Password")

	model = press(model, "ctrl+s")
	assert.True(t, model.statusErr)
	assert.Empty(t, srv.RequestsTo(http.MethodPatch, "/api/users/jdoe/"))
}

func TestModel_MembershipEditing(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")
	model = press(model, "j", "enter")

	var target = -1
	for i, c := range controlsOf(model.sections()) {
		if c.kind == controlItem && c.name == "ops" {
			target = i
		}
	}
	require.GreaterOrEqual(t, target, 0)
	model.target = target
	model = press(model, "enter", "<")
	model = focusSubmit(t, model, "Update Groups")
	model = press(model, "enter")

	assert.False(t, model.statusErr, model.status)
	reqs := srv.RequestsTo(http.MethodPut, "/api/users/jdoe/groups/")
	require.Len(t, reqs, 1)
	assert.Equal(t, []any{"staff", "ops"}, reqs[0].Body["groups"])
}

func TestModel_CollapseAndReexpandRefetches(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")

	model = press(model, "enter", "esc", "enter", "enter")
	row, _ := model.currentRow()
	assert.True(t, row.Expanded)
	assert.Len(t, srv.RequestsTo(http.MethodGet, "/api/groups/"), 2)
}

func TestModel_GroupsTabCreateAndDelete(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")

	model = press(model, "tab")
	require.Equal(t, TabGroups, model.tab)
	assert.Equal(t, 2, model.groups.Table().Len())
	assert.Contains(t, model.View(), "USERS_COUNT")

	model = press(model, "n")
	require.NotNil(t, model.createForm)
	model = focusField(t, model, "name")
	model = typeText(press(model, "enter"), "qa")
	model = press(model, "ctrl+s")
	assert.False(t, model.statusErr, model.status)
	assert.Equal(t, 3, model.groups.Table().Len())
	assert.Empty(t, model.createForm.Value("name"))

	model = press(model, "esc")
	assert.Nil(t, model.createForm)
	model = press(model, "j", "j", "D")
	assert.False(t, model.statusErr, model.status)
	assert.Equal(t, []string{"staff", "ops"}, srv.Groups())
	assert.Equal(t, 1, model.cursor)
}

func TestModel_ActiveOnlyAndFilter(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")

	model = press(model, "a")
	reqs := srv.RequestsTo(http.MethodGet, "/api/users/search")
	require.Len(t, reqs, 1)
	assert.Equal(t, "is_active=true", reqs[0].RawQuery)

	model = press(model, "a", "/")
	require.Equal(t, focusFilter, model.focus)
	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(`username == "jdoe"`)})
	model = press(next.(Model), "enter")
	assert.Equal(t, 1, model.users.Table().Len())
	assert.Contains(t, model.View(), `filter: username == "jdoe"`)

	model = press(model, "/", "ctrl+u")
	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(`username ==`)})
	model = press(next.(Model), "enter")
	assert.True(t, model.statusErr)
	assert.Equal(t, focusFilter, model.focus)
}

func TestModel_Logout(t *testing.T) {
	srv := testServer(t)
	store := sdk.NewMemoryStore()
	model := login(t, newTestModel(t, srv, store), "root", "s3cret")

	model = press(model, "L")
	assert.Equal(t, controller.RouteLogin, model.route)
	_, ok := sdk.Token(store)
	assert.False(t, ok)
	assert.Equal(t, 0, model.users.Table().Len())
}

func TestModel_ExpiredTokenReturnsToLogin(t *testing.T) {
	srv := testServer(t)
	store := sdk.NewMemoryStore()
	require.NoError(t, store.Save(&sdk.Session{Token: "token-gone"}))

	model := newTestModel(t, srv, store)
	model = run(model, model.Init())
	assert.Equal(t, controller.RouteLogin, model.route)
	assert.True(t, model.statusErr)
	_, err := store.Load()
	assert.ErrorIs(t, err, sdk.ErrNotLoggedIn)
}

func TestModel_ExpandUnauthorizedReturnsToLogin(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")

	srv.FailNext(http.MethodGet, "/api/groups/", http.StatusUnauthorized, map[string]any{"detail": "Invalid token."})
	model = press(model, "j", "enter")

	assert.Equal(t, controller.RouteLogin, model.route)
	assert.True(t, model.statusErr)
}

type stuckStore struct {
	*sdk.MemoryStore
}

func (stuckStore) Clear() error { return errors.New("read-only file system") }

func TestModel_ClearFailureLogged(t *testing.T) {
	srv := testServer(t)
	store := stuckStore{sdk.NewMemoryStore()}
	require.NoError(t, store.Save(&sdk.Session{Token: "token-gone"}))

	core, logs := observer.New(zap.WarnLevel)
	model := NewModel(Options{
		Clients: client.NewProvider(srv.URL, store),
		Store:   store,
		Logger:  zap.New(core),
	})
	model = run(model, model.Init())

	assert.Equal(t, controller.RouteLogin, model.route)
	entries := logs.FilterMessage("failed to clear session").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "read-only file system", entries[0].ContextMap()["error"])
}

func TestModel_BusyIgnoresKeys(t *testing.T) {
	srv := testServer(t)
	model := login(t, newTestModel(t, srv, sdk.NewMemoryStore()), "root", "s3cret")
	model.busy = true

	next, cmd := model.Update(keyMsg("j"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, next.(Model).cursor)

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestLineEditor(t *testing.T) {
	e := newLineEditor("abc", false)
	e.handle(tea.KeyMsg{Type: tea.KeyLeft})
	e.handle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	assert.Equal(t, "abXc", e.Value())

	e.handle(tea.KeyMsg{Type: tea.KeyBackspace})
	e.handle(tea.KeyMsg{Type: tea.KeyHome})
	e.handle(tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, "bc", e.Value())

	assert.False(t, e.handle(tea.KeyMsg{Type: tea.KeyEnter}))

	masked := newLineEditor("secret", true)
	assert.False(t, strings.Contains(masked.View(), "secret"))
}
