package controller_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

func loadGroups(t *testing.T, fx *fixture, username, password string) *controller.Groups {
	t.Helper()
	fx.login(t, username, password)
	groups := controller.NewGroups(fx.provider, fx.store, zap.NewNop())
	require.NoError(t, groups.Load(context.Background(), nil))
	return groups
}

func expandGroup(t *testing.T, groups *controller.Groups, name string) (table.RowID, *controller.GroupDetail) {
	t.Helper()
	id := rowOf(t, groups.Table(), name)
	detail, err := groups.Expand(context.Background(), id)
	require.NoError(t, err)
	return id, detail
}

func TestGroupsLoad(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")

	rows := groups.Table().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"staff", "1"}, groups.Table().Cells(rows[0].Record))
	assert.Equal(t, []string{"ops", "0"}, groups.Table().Cells(rows[1].Record))

	// The role was unknown after login, so the users listing was probed once.
	assert.Len(t, fx.srv.RequestsTo(http.MethodGet, "/api/users/"), 1)
	assert.Equal(t, sdk.RoleAdmin, groups.Capabilities().Role())
	assert.NotNil(t, groups.NewCreateForm())

	require.NoError(t, groups.Load(context.Background(), nil))
	assert.Len(t, fx.srv.RequestsTo(http.MethodGet, "/api/users/"), 1)
}

func TestGroupsLoad_RoleClaimSkipsProbe(t *testing.T) {
	fx := newFixture(t)
	fx.srv.RoleClaim = true
	groups := loadGroups(t, fx, "jdoe", "pass")

	assert.Empty(t, fx.srv.RequestsTo(http.MethodGet, "/api/users/"))
	assert.Equal(t, sdk.RoleViewer, groups.Capabilities().Role())
	assert.Nil(t, groups.NewCreateForm())
}

func TestGroupsDetail(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		wantEditable  bool
		wantAvailable []string
	}{
		{"admin", "root", "s3cret", true, []string{"root"}},
		{"viewer", "jdoe", "pass", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			groups := loadGroups(t, fx, tt.username, tt.password)
			_, detail := expandGroup(t, groups, "staff")

			assert.Equal(t, "staff", detail.Form.Value("name"))
			assert.Equal(t, []string{"jdoe"}, detail.Members.Assigned())
			assert.Equal(t, tt.wantAvailable, detail.Members.Available())
			assert.Equal(t, tt.wantEditable, detail.Members.Editable())
			assert.Equal(t, tt.wantEditable, detail.Form.CanSubmit())
			assert.Equal(t, tt.wantEditable, detail.MembersForm.CanSubmit())
			assert.Len(t, fx.srv.RequestsTo(http.MethodGet, "/api/groups/staff/"), 1)
		})
	}
}

func TestGroupsSubmitName(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id, detail := expandGroup(t, groups, "staff")

	require.NoError(t, detail.Form.Set("name", "employees"))
	require.NoError(t, groups.SubmitName(context.Background(), id))

	reqs := fx.srv.RequestsTo(http.MethodPatch, "/api/groups/staff/")
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"name": "employees"}, reqs[0].Body)

	row, _ := groups.Table().Row(id)
	assert.Equal(t, "employees", row.Key(sdk.GroupKey))
	assert.True(t, detail.Form.Succeeded)
	assert.ElementsMatch(t, []string{"employees", "ops"}, fx.srv.Groups())
	assert.Equal(t, []string{"employees"}, fx.srv.User("jdoe").Strings("groups"))

	// Further submits address the group by its new name.
	require.NoError(t, detail.Members.MoveAllRight())
	require.NoError(t, groups.SubmitMembers(context.Background(), id))
	assert.Len(t, fx.srv.RequestsTo(http.MethodPut, "/api/groups/employees/"), 1)
}

func TestGroupsSubmitName_Duplicate(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id, detail := expandGroup(t, groups, "staff")

	require.NoError(t, detail.Form.Set("name", "ops"))
	require.Error(t, groups.SubmitName(context.Background(), id))
	assert.Equal(t, []string{"group with this name already exists."}, detail.Form.Field("name").Messages)

	row, _ := groups.Table().Row(id)
	assert.Equal(t, "staff", row.Key(sdk.GroupKey))
}

func TestGroupsSubmitMembers(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id, detail := expandGroup(t, groups, "staff")

	require.NoError(t, detail.Members.MoveAllLeft())
	require.NoError(t, groups.SubmitMembers(context.Background(), id))

	reqs := fx.srv.RequestsTo(http.MethodPut, "/api/groups/staff/")
	require.Len(t, reqs, 1)
	assert.Equal(t, "staff", reqs[0].Body["name"])
	assert.ElementsMatch(t, []any{"jdoe", "root"}, reqs[0].Body["users"])
	assert.ElementsMatch(t, []string{"jdoe", "root"}, fx.srv.Members("staff"))

	row, _ := groups.Table().Row(id)
	assert.Equal(t, "2", groups.Table().Cells(row.Record)[1])
	assert.True(t, detail.MembersForm.Succeeded)
}

func TestGroupsSubmitMembers_ViewerRejected(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "jdoe", "pass")
	id, detail := expandGroup(t, groups, "staff")

	assert.ErrorIs(t, detail.Members.MoveAllRight(), duallist.ErrReadOnly)
	assert.ErrorIs(t, groups.SubmitMembers(context.Background(), id), duallist.ErrReadOnly)
	assert.ErrorIs(t, groups.SubmitName(context.Background(), id), form.ErrReadOnly)
	assert.Empty(t, fx.srv.RequestsTo(http.MethodPut, "/api/groups/staff/"))
}

func TestGroupsDelete(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id := rowOf(t, groups.Table(), "ops")

	require.NoError(t, groups.Delete(context.Background(), id))
	assert.Equal(t, 1, groups.Table().Len())
	_, ok := groups.Table().Find("ops")
	assert.False(t, ok)
	assert.Equal(t, []string{"staff"}, fx.srv.Groups())

	assert.ErrorIs(t, groups.Delete(context.Background(), id), table.ErrNoRow)
}

func TestGroupsDelete_ServerErrorKeepsRow(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id := rowOf(t, groups.Table(), "ops")

	fx.srv.FailNext(http.MethodDelete, "/api/groups/ops/", http.StatusInternalServerError, "oops")
	require.Error(t, groups.Delete(context.Background(), id))
	assert.Equal(t, 2, groups.Table().Len())
}

func TestGroupsDelete_Viewer(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "jdoe", "pass")
	id := rowOf(t, groups.Table(), "ops")

	assert.ErrorIs(t, groups.Delete(context.Background(), id), form.ErrReadOnly)
	assert.Empty(t, fx.srv.RequestsTo(http.MethodDelete, "/api/groups/ops/"))
}

func TestGroupsCreate(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")

	f := groups.NewCreateForm()
	require.NoError(t, f.Set("name", "qa"))
	id, err := groups.Create(context.Background(), f)
	require.NoError(t, err)

	row, ok := groups.Table().Row(id)
	require.True(t, ok)
	assert.Equal(t, "qa", row.Key(sdk.GroupKey))
	assert.Empty(t, f.Value("name"))
	assert.True(t, f.Succeeded)

	require.NoError(t, f.Set("name", "qa"))
	_, err = groups.Create(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, []string{"group with this name already exists."}, f.Field("name").Messages)
	assert.Equal(t, 3, groups.Table().Len())
}

func TestGroupsOpen(t *testing.T) {
	fx := newFixture(t)
	fx.login(t, "root", "s3cret")
	groups := controller.NewGroups(fx.provider, fx.store, zap.NewNop())

	id, err := groups.Open(context.Background(), "staff")
	require.NoError(t, err)
	assert.Equal(t, 1, groups.Table().Len())

	row, _ := groups.Table().Row(id)
	assert.Equal(t, []string{"jdoe"}, row.Record.Strings("users"))
}

func TestGroupsExpand_NotFound(t *testing.T) {
	fx := newFixture(t)
	groups := loadGroups(t, fx, "root", "s3cret")
	id := rowOf(t, groups.Table(), "staff")

	fx.srv.FailNext(http.MethodGet, "/api/groups/staff/", http.StatusNotFound, map[string]any{"detail": "Not found."})
	_, err := groups.Expand(context.Background(), id)
	require.Error(t, err)
	assert.True(t, sdk.IsNotFound(err), "got %v", err)

	row, ok := groups.Table().Row(id)
	require.True(t, ok)
	assert.False(t, row.Expanded)
}
