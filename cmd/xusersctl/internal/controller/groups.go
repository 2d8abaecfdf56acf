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

// GroupDetail is the expanded panel of a group row.
type GroupDetail struct {
	Form        *form.Form
	Members     *duallist.Editor
	MembersForm *form.Form
}

// Groups manages the groups table and its detail forms.
type Groups struct {
	clients ClientSource
	store   sdk.SessionStore
	log     *zap.SugaredLogger
	table   *table.Table

	mu   sync.Mutex
	caps capability.Set
}

// NewGroups returns a Groups controller with an empty table.
func NewGroups(clients ClientSource, store sdk.SessionStore, logger *zap.Logger) *Groups {
	return &Groups{
		clients: clients,
		store:   store,
		log:     logger.Sugar(),
		table:   table.NewGroups(),
		caps:    capability.MustNew(sdk.CurrentRole(store)),
	}
}

// Table returns the groups table.
func (g *Groups) Table() *table.Table {
	return g.table
}

// Capabilities returns the capability set resolved by the last load.
func (g *Groups) Capabilities() capability.Set {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.caps
}

// resolveCaps uses the session role, probing the users listing when the
// role has not been determined yet.
func (g *Groups) resolveCaps(ctx context.Context, client *sdk.Client) error {
	role := sdk.CurrentRole(g.store)
	if role == sdk.RoleUnknown {
		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		if role, err = DetectRole(g.store, users); err != nil {
			return err
		}
	}
	caps, err := capability.New(role)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.caps = caps
	g.mu.Unlock()
	return nil
}

// Load fetches every group into the table.
func (g *Groups) Load(ctx context.Context, f *filter.Filter) error {
	client := g.clients.SDKClient()
	groups, err := client.ListGroups(ctx)
	if err != nil {
		return err
	}
	if err := g.resolveCaps(ctx, client); err != nil {
		return err
	}
	g.table.Load(f.Apply(groups))
	return nil
}

// Open loads a single group into the table and returns its row.
func (g *Groups) Open(ctx context.Context, name string) (table.RowID, error) {
	client := g.clients.SDKClient()
	group, err := client.GetGroup(ctx, name)
	if err != nil {
		return 0, err
	}
	if err := g.resolveCaps(ctx, client); err != nil {
		return 0, err
	}
	g.table.Load([]sdk.Record{group})
	id, _ := g.table.Find(group.Key(sdk.GroupKey))
	return id, nil
}

// Toggle collapses an expanded row or expands it with a fresh member list.
func (g *Groups) Toggle(ctx context.Context, id table.RowID) (bool, error) {
	return g.table.ToggleDetail(ctx, id, g.render(g.Capabilities()))
}

// Expand makes sure the row is expanded and returns its fresh detail.
func (g *Groups) Expand(ctx context.Context, id table.RowID) (*GroupDetail, error) {
	if row, ok := g.table.Row(id); ok && row.Expanded {
		if err := g.table.Collapse(id); err != nil {
			return nil, err
		}
	}
	shown, err := g.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shown {
		return nil, ErrNoDetail
	}
	return g.Detail(id)
}

func (g *Groups) render(caps capability.Set) table.RenderFunc {
	return func(ctx context.Context, rec sdk.Record) (any, error) {
		name := rec.Key(sdk.GroupKey)
		client := g.clients.SDKClient()
		group, err := client.GetGroup(ctx, name)
		if err != nil {
			return nil, err
		}
		members := group.Strings("users")

		editable := caps.EditMemberships()
		universe := members
		if editable {
			users, err := client.ListUsers(ctx)
			if err != nil {
				return nil, err
			}
			universe = sdk.Names(users, sdk.UserKey)
		}

		return &GroupDetail{
			Form:        form.BuildGroupForm(rec, caps),
			Members:     duallist.New(members, universe, editable),
			MembersForm: form.BuildMembershipForm("members:"+name, "Group Members", form.SubmitGroupMembers, editable),
		}, nil
	}
}

// Detail returns the expanded detail of a row.
func (g *Groups) Detail(id table.RowID) (*GroupDetail, error) {
	_, detail, err := g.current(id)
	return detail, err
}

func (g *Groups) current(id table.RowID) (sdk.Record, *GroupDetail, error) {
	row, ok := g.table.Row(id)
	if !ok {
		return nil, nil, table.ErrNoRow
	}
	detail, ok := row.Detail.(*GroupDetail)
	if !ok || detail == nil {
		return nil, nil, ErrNoDetail
	}
	return row.Record, detail, nil
}

// SubmitName renames the group of an expanded row.
func (g *Groups) SubmitName(ctx context.Context, id table.RowID) error {
	rec, detail, err := g.current(id)
	if err != nil {
		return err
	}
	f := detail.Form
	if !f.CanSubmit() {
		return form.ErrReadOnly
	}
	f.ClearValidation()

	client := g.clients.SDKClient()
	updated, err := client.UpdateGroup(ctx, rec.Key(sdk.GroupKey), sdk.Record{sdk.GroupKey: f.Value(sdk.GroupKey)})
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(g.log, "rename group", err)
		}
		return err
	}

	reconcile(g.log, g.table, id, updated)
	f.MarkSucceeded()
	return nil
}

// SubmitMembers replaces the member list of an expanded row's group.
func (g *Groups) SubmitMembers(ctx context.Context, id table.RowID) error {
	rec, detail, err := g.current(id)
	if err != nil {
		return err
	}
	if !detail.Members.Editable() || !detail.MembersForm.CanSubmit() {
		return duallist.ErrReadOnly
	}
	f := detail.MembersForm
	f.ClearValidation()

	client := g.clients.SDKClient()
	name := rec.Key(sdk.GroupKey)
	updated, err := client.ReplaceGroup(ctx, name, sdk.ReplaceGroupInput{
		Name:  name,
		Users: detail.Members.Payload(),
	})
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(g.log, "replace group members", err)
		}
		return err
	}

	reconcile(g.log, g.table, id, updated)
	f.MarkSucceeded()
	return nil
}

// Delete removes the row's group on the server and then from the table.
func (g *Groups) Delete(ctx context.Context, id table.RowID) error {
	if !g.Capabilities().DeleteGroups() {
		return form.ErrReadOnly
	}
	row, ok := g.table.Row(id)
	if !ok {
		return table.ErrNoRow
	}
	client := g.clients.SDKClient()
	if err := client.DeleteGroup(ctx, row.Key(sdk.GroupKey)); err != nil {
		return err
	}
	return g.table.RemoveRow(id)
}

// NewCreateForm returns the create-group form, or nil for roles without
// the right to create groups.
func (g *Groups) NewCreateForm() *form.Form {
	return form.BuildCreateGroupForm(g.Capabilities())
}

// Create POSTs the create-group form. On success the group is appended to
// the table and the form is reset.
func (g *Groups) Create(ctx context.Context, f *form.Form) (table.RowID, error) {
	if f == nil || !f.CanSubmit() {
		return 0, form.ErrReadOnly
	}
	f.ClearValidation()

	client := g.clients.SDKClient()
	created, err := client.CreateGroup(ctx, f.Value(sdk.GroupKey))
	if err != nil {
		if !f.ApplyError(err) {
			unmapped(g.log, "create group", err)
		}
		return 0, err
	}

	id := g.table.AddRow(created)
	f.Reset()
	f.MarkSucceeded()
	return id, nil
}
