package form

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/capability"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

func adminCaps() capability.Set  { return capability.MustNew(sdk.RoleAdmin) }
func viewerCaps() capability.Set { return capability.MustNew(sdk.RoleViewer) }

func fullUser() sdk.Record {
	return sdk.Record{
		"id":          float64(7),
		"url":         "http://api/api/users/jdoe/",
		"username":    "jdoe",
		"first_name":  "John",
		"last_name":   "Doe",
		"email":       "jdoe@example.com",
		"birthday":    "1990-01-01",
		"groups":      []any{"staff"},
		"is_active":   true,
		"date_joined": "2018-01-01 10:00:00",
		"last_update": "2018-01-02 10:00:00",
		"address": map[string]any{
			"city": "Moscow", "country": "RU", "district": "Center", "street": "Tverskaya", "zip_code": "123456",
		},
	}
}

func fieldNames(f *Form) []string {
	var names []string
	for _, field := range f.Fields {
		names = append(names, field.Name)
	}
	return names
}

func TestBuildUserForm_Admin(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())

	assert.Equal(t, "user:jdoe", f.ID)
	assert.Equal(t, SubmitUpdateUser, f.Submit)
	assert.Equal(t, []string{
		"username", "first_name", "last_name", "email", "birthday",
		"city", "country", "district", "street", "zip_code",
		"date_joined", "last_update", "is_active",
	}, fieldNames(f))

	for _, field := range f.Fields {
		assert.Equal(t, IsProtected(field.Name), field.ReadOnly, field.Name)
	}
	active := f.Field("is_active")
	require.NotNil(t, active)
	assert.True(t, active.Checked)
	assert.Equal(t, "Moscow", f.Value("city"))
}

func TestBuildForms_NonAdminNeverEditable(t *testing.T) {
	viewer := viewerCaps()
	records := []sdk.Record{
		fullUser(),
		{"username": "bare"},
		{"username": "partial", "first_name": "P", "address": map[string]any{"city": "X"}},
	}
	for _, rec := range records {
		forms := []*Form{BuildUserForm(rec, viewer), BuildGroupForm(sdk.Record{"name": "g"}, viewer)}
		for _, f := range forms {
			assert.False(t, f.CanSubmit(), f.ID)
			assert.Empty(t, f.Editable(), f.ID)
		}
	}
	assert.Nil(t, BuildPasswordForm(fullUser(), viewer))
	assert.Nil(t, BuildCreateUserForm(viewer))
	assert.Nil(t, BuildCreateGroupForm(viewer))
}

func TestBuildUserForm_ViewerRecord(t *testing.T) {
	rec := fullUser()
	for _, hidden := range []string{"id", "is_active", "date_joined", "last_update"} {
		delete(rec, hidden)
	}
	f := BuildUserForm(rec, viewerCaps())
	assert.Nil(t, f.Field("is_active"))
	assert.Nil(t, f.Field("date_joined"))
	assert.NotNil(t, f.Field("zip_code"))
}

func TestBuildCreateUserForm(t *testing.T) {
	f := BuildCreateUserForm(adminCaps())
	require.NotNil(t, f)
	assert.Equal(t, []string{
		"username", "first_name", "last_name", "email", "password", "birthday",
		"city", "country", "district", "street", "zip_code",
	}, fieldNames(f))
}

func TestSet(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())

	require.NoError(t, f.Set("first_name", "Johnny"))
	assert.Equal(t, "Johnny", f.Value("first_name"))

	require.NoError(t, f.Set("is_active", "false"))
	assert.False(t, f.Field("is_active").Checked)

	assert.ErrorIs(t, f.Set("last_update", "now"), ErrReadOnly)
	assert.ErrorIs(t, f.Set("nickname", "jj"), ErrUnknownField)

	viewer := BuildUserForm(fullUser(), viewerCaps())
	assert.ErrorIs(t, viewer.Set("first_name", "X"), ErrReadOnly)
}

func TestSet_Checkbox(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"yes", true, false},
		{"On", true, false},
		{"y", true, false},
		{"false", false, false},
		{"False", false, false},
		{"FALSE", false, false},
		{"0", false, false},
		{"no", false, false},
		{"off", false, false},
		{"n", false, false},
		{"", false, true},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := BuildUserForm(fullUser(), adminCaps())
			err := f.Set("is_active", tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBool)
				assert.True(t, f.Field("is_active").Checked, "rejected value leaves the field unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Field("is_active").Checked)
			assert.Equal(t, tt.want, Gather(f)["is_active"])
		})
	}
}

func TestGather(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())
	require.NoError(t, f.Set("zip_code", "654321"))
	require.NoError(t, f.Set("is_active", "false"))

	payload := Gather(f)
	assert.Equal(t, sdk.Record{
		"username":   "jdoe",
		"first_name": "John",
		"last_name":  "Doe",
		"email":      "jdoe@example.com",
		"birthday":   "1990-01-01",
		"is_active":  false,
		"address": map[string]any{
			"city": "Moscow", "country": "RU", "district": "Center", "street": "Tverskaya", "zip_code": "654321",
		},
	}, payload)
}

func TestGather_NoAddressWhenAbsent(t *testing.T) {
	f := BuildGroupForm(sdk.Record{"name": "staff"}, adminCaps())
	assert.Equal(t, sdk.Record{"name": "staff"}, Gather(f))
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantOK       bool
		wantInvalid  []string
		wantMessages int
	}{
		{
			name:        "field key",
			body:        `{"username": ["A user with that username already exists.", "second"]}`,
			wantOK:      true,
			wantInvalid: []string{"username"},
		},
		{
			name:        "address fan out",
			body:        `{"address": {"zip_code": ["Enter a valid value."], "city": ["This field may not be blank."]}}`,
			wantOK:      true,
			wantInvalid: []string{"city", "zip_code"},
		},
		{
			name:         "detail",
			body:         `{"detail": "Editing inactive user state is not allowed. Activate user first"}`,
			wantOK:       true,
			wantMessages: 1,
		},
		{
			name:         "unknown key",
			body:         `{"groups": ["nope"], "non_field_errors": ["bad"]}`,
			wantOK:       true,
			wantMessages: 2,
		},
		{
			name:   "malformed",
			body:   `<html>502</html>`,
			wantOK: false,
		},
		{
			name:   "array body",
			body:   `["oops"]`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := BuildUserForm(fullUser(), adminCaps())
			ok := f.ApplyErrors([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)

			var invalid []string
			for _, field := range f.Fields {
				if field.Invalid {
					invalid = append(invalid, field.Name)
					assert.Len(t, field.Messages, 1, field.Name)
				}
			}
			assert.Equal(t, tt.wantInvalid, invalid)
			assert.Len(t, f.Messages, tt.wantMessages)
		})
	}
}

func TestApplyErrors_FirstMessageOnly(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())
	f.ApplyErrors([]byte(`{"email": ["Enter a valid email address.", "Other"]}`))
	assert.Equal(t, []string{"Enter a valid email address."}, f.Field("email").Messages)
}

func TestLoginNonFieldErrors(t *testing.T) {
	f := BuildLoginForm()
	require.True(t, f.ApplyErrors([]byte(`{"non_field_errors": ["Unable to log in with provided credentials."]}`)))

	for _, name := range []string{"username", "password"} {
		field := f.Field(name)
		assert.True(t, field.Invalid, name)
		assert.Equal(t, []string{"Unable to log in with provided credentials."}, field.Messages)
	}
	assert.Empty(t, f.Messages)
}

func TestClearValidationAndReset(t *testing.T) {
	f := BuildCreateUserForm(adminCaps())
	require.NoError(t, f.Set("username", "new"))
	f.ApplyErrors([]byte(`{"username": ["taken"], "detail": "x"}`))
	f.MarkSucceeded()
	require.True(t, f.Invalid())

	f.ClearValidation()
	assert.False(t, f.Invalid())
	assert.False(t, f.Succeeded)
	assert.Equal(t, "new", f.Value("username"))

	f.Reset()
	assert.Equal(t, "", f.Value("username"))
}

func TestRefresh(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())
	require.NoError(t, f.Set("first_name", "Unsaved"))

	f.Refresh(sdk.Record{"last_update": "2018-02-02 12:00:00", "first_name": "Server"})
	assert.Equal(t, "2018-02-02 12:00:00", f.Value("last_update"))
	assert.Equal(t, "Unsaved", f.Value("first_name"))
}

func TestFieldDisplay(t *testing.T) {
	f := BuildLoginForm()
	require.NoError(t, f.Set("password", "secret"))
	assert.Equal(t, "********", f.Field("password").Display())

	admin := BuildUserForm(fullUser(), adminCaps())
	assert.Equal(t, "[x]", admin.Field("is_active").Display())
}

func TestApplyError(t *testing.T) {
	f := BuildUserForm(fullUser(), adminCaps())
	assert.False(t, f.ApplyError(errors.New("dial tcp: connection refused")))
	assert.False(t, f.Invalid())

	apiErr := &sdk.APIError{Status: 400, Body: []byte(`{"email": ["Enter a valid email address."]}`)}
	assert.True(t, f.ApplyError(fmt.Errorf("update user jdoe: %w", apiErr)))
	assert.True(t, f.Field("email").Invalid)
}

func TestBuildMembershipForm(t *testing.T) {
	assert.True(t, BuildMembershipForm("groups:jdoe", "User Groups", SubmitUserGroups, true).CanSubmit())
	assert.False(t, BuildMembershipForm("groups:jdoe", "User Groups", SubmitUserGroups, false).CanSubmit())
}
