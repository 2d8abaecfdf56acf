// Package capability decides what the signed-in role may do in the console.
// Forms, editors and controllers receive a Set explicitly; nothing reads a
// global role flag.
package capability

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

//go:embed model.conf
var modelContent string

//go:embed policy.csv
var policyContent string

// Objects.
const (
	ObjUser       = "user"
	ObjGroup      = "group"
	ObjMembership = "membership"
)

// Actions.
const (
	ActRead           = "read"
	ActCreate         = "create"
	ActUpdate         = "update"
	ActDelete         = "delete"
	ActChangePassword = "change-password"
)

var (
	sharedOnce     sync.Once
	sharedEnforcer casbin.IEnforcer
	sharedErr      error
)

// NewEnforcer builds an enforcer from the embedded RBAC model and policy.
func NewEnforcer() (casbin.IEnforcer, error) {
	m, err := model.NewModelFromString(modelContent)
	if err != nil {
		return nil, fmt.Errorf("parse capability model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(policyContent))
	if err != nil {
		return nil, fmt.Errorf("create capability enforcer: %w", err)
	}
	return enforcer, nil
}

func enforcer() (casbin.IEnforcer, error) {
	sharedOnce.Do(func() {
		sharedEnforcer, sharedErr = NewEnforcer()
	})
	return sharedEnforcer, sharedErr
}

// Set is the capability set of one role.
type Set struct {
	role     sdk.Role
	enforcer casbin.IEnforcer
}

// New returns the capabilities of role. RoleUnknown gets viewer rights.
func New(role sdk.Role) (Set, error) {
	e, err := enforcer()
	if err != nil {
		return Set{}, err
	}
	return For(e, role), nil
}

// MustNew is New for callers that cannot recover from a broken embedded policy.
func MustNew(role sdk.Role) Set {
	set, err := New(role)
	if err != nil {
		panic(err)
	}
	return set
}

// For binds role to an existing enforcer.
func For(e casbin.IEnforcer, role sdk.Role) Set {
	if role == sdk.RoleUnknown {
		role = sdk.RoleViewer
	}
	return Set{role: role, enforcer: e}
}

// Role returns the role the set was built for.
func (s Set) Role() sdk.Role {
	return s.role
}

// Can reports whether the role may perform act on obj. Enforcement errors deny.
func (s Set) Can(obj, act string) bool {
	if s.enforcer == nil {
		return false
	}
	ok, err := s.enforcer.Enforce("role:"+string(s.role), obj, act)
	return err == nil && ok
}

// EditUsers reports whether user profiles are editable.
func (s Set) EditUsers() bool { return s.Can(ObjUser, ActUpdate) }

// CreateUsers reports whether the create-user form is offered.
func (s Set) CreateUsers() bool { return s.Can(ObjUser, ActCreate) }

// ChangePasswords reports whether the password form is offered.
func (s Set) ChangePasswords() bool { return s.Can(ObjUser, ActChangePassword) }

// EditMemberships reports whether dual-list editors accept moves.
func (s Set) EditMemberships() bool { return s.Can(ObjMembership, ActUpdate) }

// EditGroups reports whether group names are editable.
func (s Set) EditGroups() bool { return s.Can(ObjGroup, ActUpdate) }

// CreateGroups reports whether new groups may be created.
func (s Set) CreateGroups() bool { return s.Can(ObjGroup, ActCreate) }

// DeleteGroups reports whether groups may be deleted.
func (s Set) DeleteGroups() bool { return s.Can(ObjGroup, ActDelete) }

// SeesInactive reports whether the active-user filter is meaningful.
func (s Set) SeesInactive() bool { return s.Can(ObjUser, ActUpdate) }
