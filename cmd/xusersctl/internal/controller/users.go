package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/capability"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/filter"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// UserDetail is the expanded panel of a user row.
type UserDetail struct {
	Profile    *form.Form
	Password   *form.Form // nil unless the role may change passwords
	Groups     *duallist.Editor
	GroupsForm *form.Form
}

// ListOptions selects which users Load fetches.
type ListOptions struct {
	ActiveOnly bool
	Query      string
	Filter     *filter.Filter
}

// Users manages the users table and its detail forms.
type Users struct {
	clients ClientSource
	store   sdk.SessionStore
	log     *zap.SugaredLogger
	table   *table.Table

	mu   sync.Mutex
	caps capability.Set
}

// NewUsers returns a Users controller with an empty table.
func NewUsers(clients ClientSource, store sdk.SessionStore, logger *zap.Logger) *Users {
	return &Users{
		clients: clients,
		store:   store,
		log:     logger.Sugar(),
		table:   table.NewUsers(),
		caps:    capability.MustNew(sdk.CurrentRole(store)),
	}
}

// Table returns the users table.
func (u *Users) Table() *table.Table {
	return u.table
}

// Capabilities returns the capability set resolved by the last load.
func (u *Users) Capabilities() capability.Set {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.caps
}

func (u *Users) resolveCaps(records []sdk.Record) (capability.Set, error) {
	role, err := DetectRole(u.store, records)
	if err != nil {
		return capability.Set{}, err
	}
	caps, err := capability.New(role)
	if err != nil {
		return capability.Set{}, err
	}
	u.mu.Lock()
	u.caps = caps
	u.mu.Unlock()
	return caps, nil
}

// Load fetches the user collection into the table. ActiveOnly and Query go
// through the search endpoint.
func (u *Users) Load(ctx context.Context, opts ListOptions) error {
	client := u.clients.SDKClient()

	var (
		records []sdk.Record
		err     error
	)
	if opts.ActiveOnly || opts.Query != "" {
		input := sdk.SearchUsersInput{Query: opts.Query}
		if opts.ActiveOnly {
			active := true
			input.IsActive = &active
		}
		records, err = client.SearchUsers(ctx, input)
	} else {
		records, err = client.ListUsers(ctx)
	}
	if err != nil {
		return err
	}

	if _, err := u.resolveCaps(records); err != nil {
		return err
	}
	u.table.Load(opts.Filter.Apply(records))
	return nil
}

// Open loads a single user into the table and returns its row.
func (u *Users) Open(ctx context.Context, username string) (table.RowID, error) {
	client := u.clients.SDKClient()
	rec, err := client.GetUser(ctx, username)
	if err != nil {
		return 0, err
	}
	if _, err := u.resolveCaps([]sdk.Record{rec}); err != nil {
		return 0, err
	}
	u.table.Load([]sdk.Record{rec})
	id, _ := u.table.Find(rec.Key(sdk.UserKey))
	return id, nil
}

// Toggle collapses an expanded row, or expands it: the group universe is
// fetched again and every form is rebuilt from the row's record.
func (u *Users) Toggle(ctx context.Context, id table.RowID) (bool, error) {
	return u.table.ToggleDetail(ctx, id, u.render(u.Capabilities()))
}

// Expand makes sure the row is expanded and returns its fresh detail.
func (u *Users) Expand(ctx context.Context, id table.RowID) (*UserDetail, error) {
	if row, ok := u.table.Row(id); ok && row.Expanded {
		if err := u.table.Collapse(id); err != nil {
			return nil, err
		}
	}
	shown, err := u.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shown {
		return nil, ErrNoDetail
	}
	return u.Detail(id)
}

// Render builds a detail outside the table, for callers that run the
// fetch themselves and hand the result to Table().SetDetail.
func (u *Users) Render(ctx context.Context, rec sdk.Record) (*UserDetail, error) {
	detail, err := u.render(u.Capabilities())(ctx, rec)
	if err != nil {
		return nil, err
	}
	return detail.(*UserDetail), nil
}

func (u *Users) render(caps capability.Set) table.RenderFunc {
	return func(ctx context.Context, rec sdk.Record) (any, error) {
		username := rec.Key(sdk.UserKey)
		editable := caps.EditMemberships()
		detail := &UserDetail{
			Profile:    form.BuildUserForm(rec, caps),
			Password:   form.BuildPasswordForm(rec, caps),
			GroupsForm: form.BuildMembershipForm("groups:"+username, "User Groups", form.SubmitUserGroups, editable),
		}

		assigned := rec.Strings("groups")
		client := u.clients.SDKClient()
		groups, err := client.ListGroups(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if sdk.IsUnauthorized(err) {
				return nil, err
			}
			// The profile stays usable; the editor falls back to the
			// assigned list and refuses edits.
			detail.Groups = duallist.New(assigned, nil, false)
			detail.GroupsForm.Submit = ""
			detail.GroupsForm.Messages = append(detail.GroupsForm.Messages, "could not load groups")
			return detail, nil
		}
		detail.Groups = duallist.New(assigned, sdk.Names(groups, sdk.GroupKey), editable)
		return detail, nil
	}
}

// Detail returns the expanded detail of a row.
func (u *Users) Detail(id table.RowID) (*UserDetail, error) {
	row, ok := u.table.Row(id)
	if !ok {
		return nil, table.ErrNoRow
	}
	detail, ok := row.Detail.(*UserDetail)
	if !ok || detail == nil {
		return nil, ErrNoDetail
	}
	return detail, nil
}

func (u *Users) current(id table.RowID) (sdk.Record, *UserDetail, error) {
	row, ok := u.table.Row(id)
	if !ok {
		return nil, nil, table.ErrNoRow
	}
	detail, ok := row.Detail.(*UserDetail)
	if !ok || detail == nil {
		return nil, nil, ErrNoDetail
	}
	return row.Record, detail, nil
}

// SubmitProfile PATCHes the profile form of an expanded row.
func (u *Users) SubmitProfile(ctx context.Context, id table.RowID) error {
	rec, detail, err := u.current(id)
	if err != nil {
		return err
	}
	f := detail.Profile
	if !f.CanSubmit() {
		return form.ErrReadOnly
	}
	f.ClearValidation()

	client := u.clients.SDKClient()
	updated, err := client.UpdateUser(ctx, rec.Key(sdk.UserKey), form.Gather(f))
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(u.log, "update user", err)
		}
		return err
	}

	reconcile(u.log, u.table, id, updated)
	f.Refresh(updated)
	f.MarkSucceeded()
	return nil
}

// SubmitPassword PATCHes the new password of an expanded row.
func (u *Users) SubmitPassword(ctx context.Context, id table.RowID) error {
	rec, detail, err := u.current(id)
	if err != nil {
		return err
	}
	f := detail.Password
	if f == nil || !f.CanSubmit() {
		return form.ErrReadOnly
	}
	f.ClearValidation()

	client := u.clients.SDKClient()
	updated, err := client.UpdateUser(ctx, rec.Key(sdk.UserKey), sdk.Record{"password": f.Value("password")})
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(u.log, "change password", err)
		}
		return err
	}

	reconcile(u.log, u.table, id, updated)
	detail.Profile.Refresh(updated)
	f.Reset()
	f.MarkSucceeded()
	return nil
}

// SubmitGroups PUTs the full assigned list of the row's membership editor.
func (u *Users) SubmitGroups(ctx context.Context, id table.RowID) error {
	rec, detail, err := u.current(id)
	if err != nil {
		return err
	}
	if !detail.Groups.Editable() || !detail.GroupsForm.CanSubmit() {
		return duallist.ErrReadOnly
	}
	f := detail.GroupsForm
	f.ClearValidation()

	client := u.clients.SDKClient()
	updated, err := client.SetUserGroups(ctx, rec.Key(sdk.UserKey), detail.Groups.Payload())
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(u.log, "set user groups", err)
		}
		return err
	}

	reconcile(u.log, u.table, id, updated)
	detail.Profile.Refresh(updated)
	f.MarkSucceeded()
	return nil
}

// NewCreateForm returns the create-user form, or nil for roles without
// the right to create users.
func (u *Users) NewCreateForm() *form.Form {
	return form.BuildCreateUserForm(u.Capabilities())
}

// Create POSTs the create-user form with is_active forced on. On success
// the new user is appended to the table and the form is reset.
func (u *Users) Create(ctx context.Context, f *form.Form) (table.RowID, error) {
	if f == nil || !f.CanSubmit() {
		return 0, form.ErrReadOnly
	}
	f.ClearValidation()

	payload := form.Gather(f)
	payload["is_active"] = true

	client := u.clients.SDKClient()
	created, err := client.CreateUser(ctx, payload)
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(u.log, "create user", err)
		}
		return 0, err
	}

	id := u.table.AddRow(created)
	f.Reset()
	f.MarkSucceeded()
	return id, nil
}
