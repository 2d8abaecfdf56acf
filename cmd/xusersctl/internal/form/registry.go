package form

import "slices"

// Kind is the input kind of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindDate     Kind = "date"
	KindCheckbox Kind = "checkbox"
)

// Spec declares one registry field.
type Spec struct {
	Name  string
	Label string
	Kind  Kind
}

// Registry lists every user field the console knows, in display order.
var Registry = []Spec{
	{Name: "username", Label: "Username", Kind: KindText},
	{Name: "first_name", Label: "First Name", Kind: KindText},
	{Name: "last_name", Label: "Last Name", Kind: KindText},
	{Name: "email", Label: "E-mail", Kind: KindEmail},
	{Name: "password", Label: "Password", Kind: KindPassword},
	{Name: "birthday", Label: "Birthday", Kind: KindDate},
	{Name: "city", Label: "City", Kind: KindText},
	{Name: "country", Label: "Country", Kind: KindText},
	{Name: "district", Label: "District", Kind: KindText},
	{Name: "street", Label: "Street", Kind: KindText},
	{Name: "zip_code", Label: "Zip-code", Kind: KindText},
	{Name: "date_joined", Label: "Date Joined", Kind: KindText},
	{Name: "last_update", Label: "Last Updated", Kind: KindText},
	{Name: "is_active", Label: "Is Active", Kind: KindCheckbox},
}

// AlwaysReadOnly fields are server-managed and never editable.
var AlwaysReadOnly = []string{"date_joined", "last_update"}

// Lookup returns the registry entry for name.
func Lookup(name string) (Spec, bool) {
	for _, spec := range Registry {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

// IsProtected reports whether name is in the always-read-only set.
func IsProtected(name string) bool {
	return slices.Contains(AlwaysReadOnly, name)
}

// ReadOnly is the field mutability rule: everything is read-only for a
// role that cannot edit, and protected fields are read-only for everyone.
func ReadOnly(canEdit bool, name string) bool {
	return !canEdit || IsProtected(name)
}
