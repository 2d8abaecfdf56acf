// Package tui is the interactive users/groups console. It draws the tables
// and detail forms built by the controller package and routes key presses
// to them. API calls run as tea commands off the UI goroutine; while one is
// in flight the console ignores everything but quit.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/filter"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// Tab is a top-level console page.
type Tab int

const (
	TabUsers Tab = iota
	TabGroups
)

func (tab Tab) String() string {
	if tab == TabGroups {
		return "Groups"
	}
	return "Users"
}

type focusRegion int

const (
	// focusTable moves the row cursor.
	focusTable focusRegion = iota
	// focusPanel moves between the controls of the login form, the create
	// form or the cursor row's detail.
	focusPanel
	// focusEdit sends keys to the line editor of one field.
	focusEdit
	// focusFilter sends keys to the filter expression editor.
	focusFilter
)

type loadedMsg struct {
	tab Tab
	err error
}

type expandedMsg struct {
	shown bool
	err   error
}

type submittedMsg struct {
	label string
	err   error
}

type loggedInMsg struct {
	err error
}

// router records the route the auth controller navigated to.
type router struct {
	mu    sync.Mutex
	route controller.Route
}

func (r *router) Navigate(route controller.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
}

func (r *router) Current() controller.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// Options configure a console Model.
type Options struct {
	Clients controller.ClientSource
	Store   sdk.SessionStore
	Logger  *zap.Logger
	// Timeout bounds each API call. Zero means no bound.
	Timeout time.Duration
	Keys    *KeyMap
	Theme   *Theme
}

// Model is the bubbletea model of the console.
type Model struct {
	keys    KeyMap
	styles  styles
	clients controller.ClientSource
	store   sdk.SessionStore
	logger  *zap.Logger
	timeout time.Duration

	nav    *router
	auth   *controller.Auth
	users  *controller.Users
	groups *controller.Groups

	route      controller.Route
	tab        Tab
	focus      focusRegion
	cursor     int
	target     int
	activeOnly bool
	filter     *filter.Filter
	loginForm  *form.Form
	createForm *form.Form
	editing    *form.Field
	editor     lineEditor

	busy      bool
	status    string
	statusErr bool

	width    int
	height   int
	viewport viewport.Model
}

// NewModel builds a console. It starts on the login form unless the store
// already holds a token.
func NewModel(opts Options) Model {
	keys := DefaultKeyMap
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	theme := DefaultTheme
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	model := Model{
		keys:    keys,
		styles:  newStyles(theme),
		clients: opts.Clients,
		store:   opts.Store,
		logger:  logger,
		timeout: opts.Timeout,
		nav:     &router{route: controller.RouteLogin},
	}
	model.auth = controller.NewAuth(opts.Clients, opts.Store, model.nav, logger)
	model.resetSession()

	if _, ok := sdk.Token(opts.Store); ok {
		model.route = controller.RouteRoot
		model.focus = focusTable
	}
	return model
}

// resetSession drops everything tied to the previous login.
func (model *Model) resetSession() {
	model.users = controller.NewUsers(model.clients, model.store, model.logger)
	model.groups = controller.NewGroups(model.clients, model.store, model.logger)
	model.loginForm = form.BuildLoginForm()
	model.createForm = nil
	model.editing = nil
	model.route = controller.RouteLogin
	model.focus = focusPanel
	model.tab = TabUsers
	model.cursor = 0
	model.target = 0
}

func (model Model) Init() tea.Cmd {
	if model.route == controller.RouteRoot {
		return model.loadCmd()
	}
	return nil
}

func (model Model) requestContext() (context.Context, context.CancelFunc) {
	if model.timeout > 0 {
		return context.WithTimeout(context.Background(), model.timeout)
	}
	return context.WithCancel(context.Background())
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.viewport.Width = message.Width
		model.viewport.Height = max(message.Height-4, 1)
		return model, nil

	case loadedMsg:
		model.busy = false
		if message.err != nil {
			return model.handleError("load "+message.tab.String(), message.err), nil
		}
		model.clampCursor()
		model.setStatus(fmt.Sprintf("%d %s", model.table().Len(), message.tab), false)
		return model, nil

	case expandedMsg:
		model.busy = false
		if message.err != nil {
			model.focus = focusTable
			return model.handleError("expand", message.err), nil
		}
		if message.shown {
			model.focus = focusPanel
			model.target = 0
		} else {
			model.focus = focusTable
		}
		return model, nil

	case submittedMsg:
		model.busy = false
		model.clampCursor()
		model.clampTarget()
		if message.err != nil {
			return model.handleError(message.label, message.err), nil
		}
		model.setStatus(message.label+": done", false)
		return model, nil

	case loggedInMsg:
		model.busy = false
		if message.err != nil {
			model.setStatus("login failed", true)
			return model, nil
		}
		if model.nav.Current() != controller.RouteRoot {
			return model, nil
		}
		model.route = controller.RouteRoot
		model.focus = focusTable
		model.setStatus("logged in", false)
		return model.startLoad()

	case tea.KeyMsg:
		if message.Type == tea.KeyCtrlC {
			return model, tea.Quit
		}
		if model.busy {
			return model, nil
		}
		switch model.focus {
		case focusEdit:
			return model.handleEditKeys(message), nil
		case focusFilter:
			return model.handleFilterKeys(message)
		}
		if key.Matches(message, model.keys.Quit) {
			return model, tea.Quit
		}
		if model.route == controller.RouteLogin {
			return model.handlePanelKeys(message)
		}
		switch {
		case key.Matches(message, model.keys.Logout):
			return model.logout(), nil
		case key.Matches(message, model.keys.NextTab):
			return model.switchTab()
		}
		if model.focus == focusTable {
			return model.handleTableKeys(message)
		}
		return model.handlePanelKeys(message)
	}
	return model, nil
}

// handleError reports err in the status bar. Authentication failures send
// the console back to the login form.
func (model Model) handleError(op string, err error) Model {
	if sdk.IsUnauthorized(err) {
		if clearErr := model.store.Clear(); clearErr != nil {
			model.logger.Sugar().Warnw("failed to clear session", "op", op, "error", clearErr)
		}
		model.resetSession()
		model.setStatus("session expired, please log in again", true)
		return model
	}
	if errors.Is(err, form.ErrReadOnly) || errors.Is(err, duallist.ErrReadOnly) {
		model.setStatus(op+": read-only", true)
		return model
	}
	model.logger.Sugar().Debugw("console operation failed", "op", op, "error", err)
	model.setStatus(fmt.Sprintf("%s failed: %v", op, err), true)
	return model
}

func (model *Model) setStatus(text string, isErr bool) {
	model.status = text
	model.statusErr = isErr
}

func (model Model) table() *table.Table {
	if model.tab == TabGroups {
		return model.groups.Table()
	}
	return model.users.Table()
}

func (model *Model) clampCursor() {
	n := model.table().Len()
	if model.cursor >= n {
		model.cursor = n - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

func (model *Model) clampTarget() {
	n := len(controlsOf(model.sections()))
	if model.target >= n {
		model.target = n - 1
	}
	if model.target < 0 {
		model.target = 0
	}
}

func (model Model) currentRow() (table.Row, bool) {
	rows := model.table().Rows()
	if model.cursor < 0 || model.cursor >= len(rows) {
		return table.Row{}, false
	}
	return rows[model.cursor], true
}

func (model Model) loadCmd() tea.Cmd {
	tab := model.tab
	users, groups := model.users, model.groups
	opts := controller.ListOptions{ActiveOnly: model.activeOnly, Filter: model.filter}
	f := model.filter
	return func() tea.Msg {
		ctx, cancel := model.requestContext()
		defer cancel()
		if tab == TabGroups {
			return loadedMsg{tab: tab, err: groups.Load(ctx, f)}
		}
		return loadedMsg{tab: tab, err: users.Load(ctx, opts)}
	}
}

func (model Model) startLoad() (tea.Model, tea.Cmd) {
	model.busy = true
	model.setStatus("loading "+model.tab.String()+"...", false)
	return model, model.loadCmd()
}

func (model Model) switchTab() (tea.Model, tea.Cmd) {
	model.tab = (model.tab + 1) % 2
	model.cursor = 0
	model.createForm = nil
	model.focus = focusTable
	return model.startLoad()
}

func (model Model) logout() Model {
	if err := model.auth.Logout(); err != nil {
		model.setStatus(fmt.Sprintf("logout failed: %v", err), true)
		return model
	}
	model.resetSession()
	model.route = model.nav.Current()
	model.setStatus("logged out", false)
	return model
}

func (model Model) handleTableKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
	case key.Matches(message, model.keys.Down):
		if model.cursor < model.table().Len()-1 {
			model.cursor++
		}
	case key.Matches(message, model.keys.Select):
		return model.toggleRow()
	case key.Matches(message, model.keys.Reload):
		return model.startLoad()
	case key.Matches(message, model.keys.ActiveOnly):
		if model.tab != TabUsers {
			return model, nil
		}
		model.activeOnly = !model.activeOnly
		return model.startLoad()
	case key.Matches(message, model.keys.Filter):
		model.focus = focusFilter
		model.editor = newLineEditor(model.filter.String(), false)
	case key.Matches(message, model.keys.Create):
		return model.openCreate(), nil
	case key.Matches(message, model.keys.Delete):
		return model.deleteRow()
	}
	return model, nil
}

func (model Model) toggleRow() (tea.Model, tea.Cmd) {
	row, ok := model.currentRow()
	if !ok {
		return model, nil
	}
	tab := model.tab
	users, groups := model.users, model.groups
	model.busy = true
	return model, func() tea.Msg {
		ctx, cancel := model.requestContext()
		defer cancel()
		var (
			shown bool
			err   error
		)
		if tab == TabGroups {
			shown, err = groups.Toggle(ctx, row.ID)
		} else {
			shown, err = users.Toggle(ctx, row.ID)
		}
		return expandedMsg{shown: shown, err: err}
	}
}

func (model Model) openCreate() Model {
	var f *form.Form
	if model.tab == TabGroups {
		f = model.groups.NewCreateForm()
	} else {
		f = model.users.NewCreateForm()
	}
	if f == nil {
		model.setStatus("creating "+model.tab.String()+" is not permitted", true)
		return model
	}
	model.createForm = f
	model.focus = focusPanel
	model.target = 0
	return model
}

func (model Model) deleteRow() (tea.Model, tea.Cmd) {
	if model.tab != TabGroups {
		return model, nil
	}
	row, ok := model.currentRow()
	if !ok {
		return model, nil
	}
	groups := model.groups
	label := "delete " + row.Key(sdk.GroupKey)
	model.busy = true
	return model, func() tea.Msg {
		ctx, cancel := model.requestContext()
		defer cancel()
		return submittedMsg{label: label, err: groups.Delete(ctx, row.ID)}
	}
}

func (model Model) handlePanelKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	controls := controlsOf(model.sections())
	if len(controls) == 0 {
		model.focus = focusTable
		return model, nil
	}
	model.clampTarget()
	current := controls[model.target]

	switch {
	case key.Matches(message, model.keys.Up):
		if model.target > 0 {
			model.target--
		}
	case key.Matches(message, model.keys.Down):
		if model.target < len(controls)-1 {
			model.target++
		}
	case key.Matches(message, model.keys.Back):
		switch {
		case model.route == controller.RouteLogin:
		case model.createForm != nil:
			model.createForm = nil
			model.focus = focusTable
		default:
			model.focus = focusTable
		}
	case key.Matches(message, model.keys.Select):
		return model.activate(current)
	case key.Matches(message, model.keys.Submit):
		return model.submit(current.form)
	case key.Matches(message, model.keys.MoveRight):
		return model.move(current, duallist.Assigned, false), nil
	case key.Matches(message, model.keys.MoveLeft):
		return model.move(current, duallist.Available, false), nil
	case key.Matches(message, model.keys.MoveAllRight):
		return model.move(current, duallist.Assigned, true), nil
	case key.Matches(message, model.keys.MoveAllLeft):
		return model.move(current, duallist.Available, true), nil
	}
	return model, nil
}

func (model Model) activate(c control) (tea.Model, tea.Cmd) {
	switch c.kind {
	case controlSubmit:
		return model.submit(c.form)
	case controlItem:
		if err := c.list.Toggle(c.side, c.name); err != nil {
			return model.handleError("select", err), nil
		}
	case controlField:
		field := c.field
		if field.ReadOnly {
			model.setStatus(field.Label+" is read-only", true)
			return model, nil
		}
		if field.Kind == form.KindCheckbox {
			_ = c.form.Set(field.Name, fmt.Sprint(!field.Checked))
			return model, nil
		}
		model.editing = field
		model.editor = newLineEditor(field.Value, field.Kind == form.KindPassword)
		model.focus = focusEdit
	}
	return model, nil
}

// move shifts names out of from: the selected ones, or all of them.
func (model Model) move(c control, from duallist.Side, all bool) Model {
	if c.list == nil {
		return model
	}
	var err error
	switch {
	case from == duallist.Assigned && all:
		err = c.list.MoveAllRight()
	case from == duallist.Assigned:
		err = c.list.MoveSelectedRight()
	case all:
		err = c.list.MoveAllLeft()
	default:
		err = c.list.MoveSelectedLeft()
	}
	if err != nil {
		return model.handleError("move", err)
	}
	model.clampTarget()
	return model
}

func (model Model) handleEditKeys(message tea.KeyMsg) Model {
	switch message.Type {
	case tea.KeyEnter:
		f := model.formOf(model.editing)
		if f != nil {
			if err := f.Set(model.editing.Name, model.editor.Value()); err != nil {
				model.setStatus(err.Error(), true)
			}
		}
		model.editing = nil
		model.focus = focusPanel
	case tea.KeyEsc:
		model.editing = nil
		model.focus = focusPanel
	default:
		model.editor.handle(message)
	}
	return model
}

func (model Model) formOf(field *form.Field) *form.Form {
	for _, c := range controlsOf(model.sections()) {
		if c.field == field {
			return c.form
		}
	}
	return nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		f, err := filter.Parse(model.editor.Value())
		if err != nil {
			model.setStatus(err.Error(), true)
			return model, nil
		}
		model.filter = f
		model.focus = focusTable
		model.cursor = 0
		return model.startLoad()
	case tea.KeyEsc:
		model.focus = focusTable
	default:
		model.editor.handle(message)
	}
	return model, nil
}

// submit runs the controller operation behind f's submit control.
func (model Model) submit(f *form.Form) (tea.Model, tea.Cmd) {
	if f == nil || !f.CanSubmit() {
		model.setStatus("nothing to submit", true)
		return model, nil
	}

	if f == model.loginForm {
		auth := model.auth
		model.busy = true
		return model, func() tea.Msg {
			ctx, cancel := model.requestContext()
			defer cancel()
			return loggedInMsg{err: auth.Login(ctx, f)}
		}
	}

	op := model.operationFor(f)
	if op == nil {
		return model, nil
	}
	label := f.Submit
	model.busy = true
	return model, func() tea.Msg {
		ctx, cancel := model.requestContext()
		defer cancel()
		return submittedMsg{label: label, err: op(ctx)}
	}
}

func (model Model) operationFor(f *form.Form) func(context.Context) error {
	users, groups := model.users, model.groups
	if f == model.createForm {
		if model.tab == TabGroups {
			return func(ctx context.Context) error {
				_, err := groups.Create(ctx, f)
				return err
			}
		}
		return func(ctx context.Context) error {
			_, err := users.Create(ctx, f)
			return err
		}
	}

	row, ok := model.currentRow()
	if !ok {
		return nil
	}
	switch detail := row.Detail.(type) {
	case *controller.UserDetail:
		switch f {
		case detail.Profile:
			return func(ctx context.Context) error { return users.SubmitProfile(ctx, row.ID) }
		case detail.Password:
			return func(ctx context.Context) error { return users.SubmitPassword(ctx, row.ID) }
		case detail.GroupsForm:
			return func(ctx context.Context) error { return users.SubmitGroups(ctx, row.ID) }
		}
	case *controller.GroupDetail:
		switch f {
		case detail.Form:
			return func(ctx context.Context) error { return groups.SubmitName(ctx, row.ID) }
		case detail.MembersForm:
			return func(ctx context.Context) error { return groups.SubmitMembers(ctx, row.ID) }
		}
	}
	return nil
}
