package sdk

import (
	"errors"
	"sync"
	"time"
)

// ErrNotLoggedIn is returned by session stores when no session has been saved.
var ErrNotLoggedIn = errors.New("not logged in")

// Role is the capability claim cached in a session.
type Role string

const (
	// RoleUnknown means no claim has been established yet.
	RoleUnknown Role = ""
	// RoleViewer may read users and groups.
	RoleViewer Role = "viewer"
	// RoleAdmin may read and mutate users, groups and memberships.
	RoleAdmin Role = "admin"
)

// RoleFromAdmin maps the legacy boolean admin flag onto a Role.
func RoleFromAdmin(admin bool) Role {
	if admin {
		return RoleAdmin
	}
	return RoleViewer
}

// Session represents the persisted console login.
type Session struct {
	Token     string    `json:"token"`
	IsAdmin   bool      `json:"is_admin"`
	Role      Role      `json:"role,omitempty"` // explicit claim; wins over IsAdmin when set
	Username  string    `json:"username,omitempty"`
	ServerURL string    `json:"server_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasToken reports whether the session carries an auth token.
func (s *Session) HasToken() bool {
	return s != nil && s.Token != ""
}

// EffectiveRole returns the recorded role. Sessions written with only the
// admin flag set resolve to RoleAdmin; anything else without a claim is
// RoleUnknown and still needs detection.
func (s *Session) EffectiveRole() Role {
	if s == nil {
		return RoleUnknown
	}
	if s.Role != RoleUnknown {
		return s.Role
	}
	if s.IsAdmin {
		return RoleAdmin
	}
	return RoleUnknown
}

// SessionStore persists a Session between console invocations.
// Load returns ErrNotLoggedIn when nothing has been saved.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// Token returns the stored auth token, if any.
func Token(store SessionStore) (string, bool) {
	session, err := store.Load()
	if err != nil || !session.HasToken() {
		return "", false
	}
	return session.Token, true
}

// IsAdmin reports the stored admin flag. A missing session is not admin.
func IsAdmin(store SessionStore) bool {
	session, err := store.Load()
	if err != nil {
		return false
	}
	return session.EffectiveRole() == RoleAdmin
}

// CurrentRole returns the effective role of the stored session.
func CurrentRole(store SessionStore) Role {
	session, err := store.Load()
	if err != nil {
		return RoleUnknown
	}
	return session.EffectiveRole()
}

// SetToken stores a fresh token for username, dropping any previous claim.
func SetToken(store SessionStore, token, username string) error {
	return update(store, func(session *Session) {
		*session = Session{Token: token, Username: username, ServerURL: session.ServerURL}
	})
}

// SetAdmin records the admin flag on the stored session.
func SetAdmin(store SessionStore, admin bool) error {
	return update(store, func(session *Session) {
		session.IsAdmin = admin
		session.Role = RoleFromAdmin(admin)
	})
}

// SetRole records an explicit role claim and keeps IsAdmin in step with it.
func SetRole(store SessionStore, role Role) error {
	return update(store, func(session *Session) {
		session.Role = role
		session.IsAdmin = role == RoleAdmin
	})
}

func update(store SessionStore, mutate func(*Session)) error {
	session, err := store.Load()
	if errors.Is(err, ErrNotLoggedIn) {
		session = &Session{}
	} else if err != nil {
		return err
	}
	mutate(session)
	return store.Save(session)
}

// MemoryStore is a SessionStore that keeps the session in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNotLoggedIn
	}
	copied := *m.session
	return &copied, nil
}

func (m *MemoryStore) Save(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.session = &copied
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
