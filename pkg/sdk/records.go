package sdk

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Natural keys used by the API to address records.
const (
	UserKey  = "username"
	GroupKey = "name"
)

// AddressField is the nested object flattened for display.
const AddressField = "address"

// AddressFields lists the sub-fields of a user's address.
var AddressFields = []string{"city", "country", "district", "street", "zip_code"}

// Record is a user or group exactly as the server represents it.
type Record map[string]any

// Key returns the record's natural key value for the given key field.
func (r Record) Key(field string) string {
	return FormatValue(r[field])
}

// String renders a single field for display.
func (r Record) String(field string) string {
	return FormatValue(r[field])
}

// Has reports whether the server included field in the record.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Strings returns a list-valued field (group names, usernames).
func (r Record) Strings(field string) []string {
	switch v := r[field].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, FormatValue(item))
		}
		return out
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case Record:
		return Record(cloneValue(map[string]any(typed)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	}
	return v
}

// Flatten lifts the fields of nested objects (the address) to the top level.
// Lists are kept as they are.
func Flatten(r Record) Record {
	out := Record{}
	flattenInto(out, r)
	return out
}

func flattenInto(out Record, in map[string]any) {
	for k, v := range in {
		switch nested := v.(type) {
		case Record:
			flattenInto(out, nested)
		case map[string]any:
			flattenInto(out, nested)
		default:
			out[k] = cloneValue(v)
		}
	}
}

// Names extracts the natural key of each record, in order.
func Names(records []Record, field string) []string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Key(field))
	}
	return names
}

// FormatValue renders a JSON value as form/table text.
func FormatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e15 {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(typed, ", ")
	}
	return fmt.Sprint(v)
}

// Truthy mirrors how checkbox fields interpret a value.
func Truthy(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != "" && typed != "false"
	case float64:
		return typed != 0
	}
	return true
}

// Address is the typed view of a user's address.
type Address struct {
	ZipCode  string `mapstructure:"zip_code" json:"zip_code" yaml:"zip_code"`
	Country  string `mapstructure:"country" json:"country" yaml:"country"`
	City     string `mapstructure:"city" json:"city" yaml:"city"`
	District string `mapstructure:"district" json:"district" yaml:"district"`
	Street   string `mapstructure:"street" json:"street" yaml:"street"`
}

// User is the typed view of a user record. Fields the server withholds from
// non-admin callers (ID, IsActive, DateJoined, LastUpdate) stay zero.
type User struct {
	ID         int      `mapstructure:"id" json:"id,omitempty" yaml:"id,omitempty"`
	URL        string   `mapstructure:"url" json:"url" yaml:"url"`
	Username   string   `mapstructure:"username" json:"username" yaml:"username"`
	FirstName  string   `mapstructure:"first_name" json:"first_name" yaml:"first_name"`
	LastName   string   `mapstructure:"last_name" json:"last_name" yaml:"last_name"`
	Email      string   `mapstructure:"email" json:"email" yaml:"email"`
	Birthday   string   `mapstructure:"birthday" json:"birthday" yaml:"birthday"`
	Address    Address  `mapstructure:"address" json:"address" yaml:"address"`
	Groups     []string `mapstructure:"groups" json:"groups" yaml:"groups"`
	IsActive   *bool    `mapstructure:"is_active" json:"is_active,omitempty" yaml:"is_active,omitempty"`
	DateJoined string   `mapstructure:"date_joined" json:"date_joined,omitempty" yaml:"date_joined,omitempty"`
	LastUpdate string   `mapstructure:"last_update" json:"last_update,omitempty" yaml:"last_update,omitempty"`
}

// Group is the typed view of a group record. Users is only present on
// detail responses.
type Group struct {
	URL        string   `mapstructure:"url" json:"url" yaml:"url"`
	Name       string   `mapstructure:"name" json:"name" yaml:"name"`
	UsersCount int      `mapstructure:"users_count" json:"users_count" yaml:"users_count"`
	Users      []string `mapstructure:"users" json:"users,omitempty" yaml:"users,omitempty"`
}

// DecodeUser converts a user record into its typed view.
func DecodeUser(r Record) (User, error) {
	var user User
	if err := mapstructure.Decode(map[string]any(r), &user); err != nil {
		return User{}, fmt.Errorf("decode user %q: %w", r.Key(UserKey), err)
	}
	return user, nil
}

// DecodeGroup converts a group record into its typed view.
func DecodeGroup(r Record) (Group, error) {
	var group Group
	if err := mapstructure.Decode(map[string]any(r), &group); err != nil {
		return Group{}, fmt.Errorf("decode group %q: %w", r.Key(GroupKey), err)
	}
	return group, nil
}
