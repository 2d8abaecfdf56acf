package form

import (
	"slices"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/capability"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// Submit labels.
const (
	SubmitUpdateUser     = "Update User"
	SubmitChangePassword = "Change Password"
	SubmitCreateUser     = "Create User"
	SubmitUpdateGroup    = "Update Group Name"
	SubmitCreateGroup    = "Create Group"
	SubmitLogin          = "Log in"
	SubmitUserGroups     = "Update Groups"
	SubmitGroupMembers   = "Update Members"
)

func newField(spec Spec, value any, readOnly bool) *Field {
	field := &Field{Spec: spec, Value: sdk.FormatValue(value), ReadOnly: readOnly}
	if spec.Kind == KindCheckbox {
		field.Checked = sdk.Truthy(value)
	}
	return field
}

// BuildUserForm builds the profile form for a user record. Fields are the
// registry entries present in the flattened record, in registry order.
func BuildUserForm(rec sdk.Record, caps capability.Set) *Form {
	canEdit := caps.EditUsers()
	flat := sdk.Flatten(rec)

	f := &Form{ID: "user:" + rec.Key(sdk.UserKey), Title: "User"}
	for _, spec := range Registry {
		if !flat.Has(spec.Name) {
			continue
		}
		f.Fields = append(f.Fields, newField(spec, flat[spec.Name], ReadOnly(canEdit, spec.Name)))
	}
	if canEdit {
		f.Submit = SubmitUpdateUser
	}
	return f
}

// BuildPasswordForm builds the password change form. It returns nil when
// the role cannot change passwords.
func BuildPasswordForm(rec sdk.Record, caps capability.Set) *Form {
	if !caps.ChangePasswords() {
		return nil
	}
	spec, _ := Lookup("password")
	return &Form{
		ID:     "password:" + rec.Key(sdk.UserKey),
		Title:  "Password",
		Fields: []*Field{newField(spec, nil, false)},
		Submit: SubmitChangePassword,
	}
}

// BuildCreateUserForm builds the empty create-user form, or nil for roles
// that cannot create users. is_active is omitted; creation forces it on.
func BuildCreateUserForm(caps capability.Set) *Form {
	if !caps.CreateUsers() {
		return nil
	}
	f := &Form{ID: "user:new", Title: "Create New User", Submit: SubmitCreateUser}
	for _, spec := range Registry {
		if IsProtected(spec.Name) || spec.Name == "is_active" {
			continue
		}
		f.Fields = append(f.Fields, newField(spec, nil, false))
	}
	return f
}

var groupNameSpec = Spec{Name: "name", Label: "Group Name", Kind: KindText}

// BuildGroupForm builds the rename form of a group.
func BuildGroupForm(rec sdk.Record, caps capability.Set) *Form {
	canEdit := caps.EditGroups()
	f := &Form{
		ID:     "group:" + rec.Key(sdk.GroupKey),
		Title:  "Group",
		Fields: []*Field{newField(groupNameSpec, rec[sdk.GroupKey], !canEdit)},
	}
	if canEdit {
		f.Submit = SubmitUpdateGroup
	}
	return f
}

// BuildCreateGroupForm builds the create-group form, or nil for roles that
// cannot create groups.
func BuildCreateGroupForm(caps capability.Set) *Form {
	if !caps.CreateGroups() {
		return nil
	}
	return &Form{
		ID:     "group:new",
		Title:  "Create New Group",
		Fields: []*Field{newField(groupNameSpec, nil, false)},
		Submit: SubmitCreateGroup,
	}
}

// BuildMembershipForm builds the field-less form that carries the submit
// control and messages of a membership editor.
func BuildMembershipForm(id, title, submit string, editable bool) *Form {
	f := &Form{ID: id, Title: title}
	if editable {
		f.Submit = submit
	}
	return f
}

// BuildLoginForm builds the login form. Credential errors that are not tied
// to a field mark both inputs.
func BuildLoginForm() *Form {
	username, _ := Lookup("username")
	password, _ := Lookup("password")
	return &Form{
		ID:              "login",
		Title:           "Log in",
		Fields:          []*Field{newField(username, nil, false), newField(password, nil, false)},
		Submit:          SubmitLogin,
		NonFieldTargets: []string{"username", "password"},
	}
}

// Gather turns the form's current values into a request payload. Address
// sub-fields are re-nested under "address", checkboxes become booleans and
// only fields present on the form are included. Protected fields are never
// sent.
func Gather(f *Form) sdk.Record {
	payload := sdk.Record{}
	address := map[string]any{}
	for _, field := range f.Fields {
		if IsProtected(field.Name) {
			continue
		}
		switch {
		case field.Kind == KindCheckbox:
			payload[field.Name] = field.Checked
		case slices.Contains(sdk.AddressFields, field.Name):
			address[field.Name] = field.Value
		default:
			payload[field.Name] = field.Value
		}
	}
	if len(address) > 0 {
		payload[sdk.AddressField] = address
	}
	return payload
}
