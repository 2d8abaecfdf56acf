// Package form builds declarative descriptions of the console's edit forms.
// Builders are pure: they take a record and a capability set and return a
// Form. Renderers (the pterm text views and the TUI) draw a Form; the
// controller mutates it in response to server results.
package form

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

var (
	// ErrReadOnly is returned when a read-only field or form is edited.
	ErrReadOnly = errors.New("read-only")
	// ErrUnknownField is returned for fields the form does not carry.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidBool is returned when a checkbox value is not a boolean.
	ErrInvalidBool = errors.New("invalid boolean")
)

// Keys of the server's error bodies that are not field names.
const (
	DetailKey         = "detail"
	NonFieldErrorsKey = "non_field_errors"
)

// Field is one input of a form.
type Field struct {
	Spec
	Value    string
	Checked  bool
	ReadOnly bool
	Invalid  bool
	Messages []string
}

// Display returns the text a renderer should show for the field.
func (f *Field) Display() string {
	switch {
	case f.Kind == KindCheckbox && f.Checked:
		return "[x]"
	case f.Kind == KindCheckbox:
		return "[ ]"
	case f.Kind == KindPassword && f.Value != "":
		return strings.Repeat("*", 8)
	}
	return f.Value
}

// Form describes one sub-form of a detail panel.
type Form struct {
	ID     string
	Title  string
	Fields []*Field
	// Submit is the submit control label. Empty means no submit control.
	Submit    string
	Messages  []string
	Succeeded bool

	// NonFieldTargets receive non_field_errors instead of the form itself.
	NonFieldTargets []string
}

// Field returns the named field or nil.
func (f *Form) Field(name string) *Field {
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// Value returns the named field's value, or "" if absent.
func (f *Form) Value(name string) string {
	if field := f.Field(name); field != nil {
		return field.Value
	}
	return ""
}

// CanSubmit reports whether the form renders a submit control.
func (f *Form) CanSubmit() bool {
	return f.Submit != ""
}

// Editable returns the fields that accept input, in order.
func (f *Form) Editable() []*Field {
	var out []*Field
	for _, field := range f.Fields {
		if !field.ReadOnly {
			out = append(out, field)
		}
	}
	return out
}

// Set changes a field's value. Checkbox fields take a truthy string.
func (f *Form) Set(name, value string) error {
	field := f.Field(name)
	if field == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	if field.ReadOnly {
		return fmt.Errorf("%s: %w", name, ErrReadOnly)
	}
	if field.Kind == KindCheckbox {
		checked, err := ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		field.Checked = checked
		field.Value = strconv.FormatBool(checked)
		return nil
	}
	field.Value = value
	return nil
}

// ParseBool reads a checkbox value typed by an operator. It accepts the
// strconv.ParseBool forms plus yes/no, y/n and on/off in any case.
func ParseBool(value string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	checked, err := strconv.ParseBool(normalized)
	if err != nil {
		return false, fmt.Errorf("%w %q, expected true or false", ErrInvalidBool, value)
	}
	return checked, nil
}

// SetAll applies name=value assignments, stopping at the first error.
func (f *Form) SetAll(assignments map[string]string) error {
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := f.Set(name, assignments[name]); err != nil {
			return err
		}
	}
	return nil
}

// ClearValidation removes every invalid marker and message.
func (f *Form) ClearValidation() {
	f.Messages = nil
	f.Succeeded = false
	for _, field := range f.Fields {
		field.Invalid = false
		field.Messages = nil
	}
}

// Invalid reports whether any field or the form carries an error.
func (f *Form) Invalid() bool {
	if len(f.Messages) > 0 {
		return true
	}
	for _, field := range f.Fields {
		if field.Invalid {
			return true
		}
	}
	return false
}

// Reset empties every editable field and clears validation.
func (f *Form) Reset() {
	f.ClearValidation()
	for _, field := range f.Fields {
		if field.ReadOnly {
			continue
		}
		field.Value = ""
		field.Checked = false
	}
}

// Refresh copies display-only values (the protected fields) from rec.
func (f *Form) Refresh(rec sdk.Record) {
	flat := sdk.Flatten(rec)
	for _, name := range AlwaysReadOnly {
		if field := f.Field(name); field != nil && flat.Has(name) {
			field.Value = flat.String(name)
		}
	}
}

// MarkSucceeded flags the submit control as having completed.
func (f *Form) MarkSucceeded() {
	f.Succeeded = true
}

// ApplyErrors maps a server error body onto the form. A field key marks
// that field and appends its first message; "address" fans out to the
// address sub-fields; "detail", non_field_errors and unknown keys become
// form-level messages. It returns false, changing nothing, when body is
// not a JSON object.
func (f *Form) ApplyErrors(body []byte) bool {
	errBody, ok := (&sdk.APIError{Body: body}).ErrorBody()
	if !ok {
		return false
	}
	f.applyErrorMap(errBody)
	return true
}

// ApplyError maps err onto the form when it is an *sdk.APIError with an
// object body. Any other error leaves the form unchanged and reports false.
func (f *Form) ApplyError(err error) bool {
	apiErr, ok := sdk.AsAPIError(err)
	return ok && f.ApplyErrors(apiErr.Body)
}

func (f *Form) applyErrorMap(body map[string]any) {
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := body[key]
		switch {
		case key == sdk.AddressField:
			f.applyAddressErrors(value)
		case key == NonFieldErrorsKey && len(f.NonFieldTargets) > 0:
			for _, name := range f.NonFieldTargets {
				f.markField(name, firstMessage(value))
			}
		case key == DetailKey || key == NonFieldErrorsKey:
			f.Messages = append(f.Messages, firstMessage(value))
		case f.Field(key) != nil:
			f.markField(key, firstMessage(value))
		default:
			f.Messages = append(f.Messages, fmt.Sprintf("%s: %s", key, firstMessage(value)))
		}
	}
}

func (f *Form) applyAddressErrors(value any) {
	nested, ok := value.(map[string]any)
	if !ok {
		f.Messages = append(f.Messages, fmt.Sprintf("%s: %s", sdk.AddressField, firstMessage(value)))
		return
	}
	names := make([]string, 0, len(nested))
	for name := range nested {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if f.Field(name) != nil {
			f.markField(name, firstMessage(nested[name]))
		} else {
			f.Messages = append(f.Messages, fmt.Sprintf("%s: %s", name, firstMessage(nested[name])))
		}
	}
}

func (f *Form) markField(name, message string) {
	field := f.Field(name)
	if field == nil {
		f.Messages = append(f.Messages, message)
		return
	}
	field.Invalid = true
	field.Messages = append(field.Messages, message)
}

func firstMessage(value any) string {
	switch typed := value.(type) {
	case []any:
		if len(typed) > 0 {
			return sdk.FormatValue(typed[0])
		}
		return ""
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
		return ""
	}
	return sdk.FormatValue(value)
}
