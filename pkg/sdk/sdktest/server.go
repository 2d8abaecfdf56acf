// Package sdktest provides an in-memory users/groups API for tests.
// It mirrors the behaviour of the real backend closely enough to exercise
// the console end to end: token auth, admin-only mutations, field-keyed
// validation errors, nested address errors and role-dependent field sets.
package sdktest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

const timeLayout = "2006-01-02 15:04:05"

// basicUserFields are the only fields non-admin callers receive.
var basicUserFields = []string{"url", "first_name", "last_name", "username", "email", "birthday", "address", "groups"}

var zipCodePattern = regexp.MustCompile(`^\d{6}$`)

// Request is a recorded inbound call.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
	Body          map[string]any
}

type account struct {
	password string
	admin    bool
	token    string
}

type failure struct {
	status int
	body   []byte
}

// Server is a fake users API backed by memory.
type Server struct {
	*httptest.Server

	// RoleClaim makes login responses carry an explicit "role" field.
	RoleClaim bool

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]string
	users    []sdk.Record
	groups   []string
	requests []Request
	failures map[string]failure
	gates    map[string]chan struct{}
	nextID   int
	clock    time.Time
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		failures: map[string]failure{},
		gates:    map[string]chan struct{}{},
		nextID:   1,
		clock:    time.Date(2018, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/api-auth/", s.login)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/users/", s.listUsers)
		r.With(s.adminOnly).Post("/users/", s.createUser)
		r.Get("/users/search", s.searchUsers)
		r.Get("/users/{username}/", s.getUser)
		r.With(s.adminOnly).Patch("/users/{username}/", s.patchUser)
		r.Get("/users/{username}/groups/", s.getUserGroups)
		r.With(s.adminOnly).Put("/users/{username}/groups/", s.putUserGroups)

		r.Get("/groups/", s.listGroups)
		r.With(s.adminOnly).Post("/groups/", s.createGroup)
		r.Get("/groups/{name}/", s.getGroup)
		r.With(s.adminOnly).Patch("/groups/{name}/", s.patchGroup)
		r.With(s.adminOnly).Put("/groups/{name}/", s.putGroup)
		r.With(s.adminOnly).Delete("/groups/{name}/", s.deleteGroup)
	})
	return r
}

// AddAccount registers login credentials and returns the account's token.
func (s *Server) AddAccount(username, password string, admin bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "token-" + username
	s.accounts[username] = &account{password: password, admin: admin, token: token}
	s.tokens[token] = username
	return token
}

// AddUser stores a user record, filling server-managed fields.
func (s *Server) AddUser(rec sdk.Record) sdk.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := rec.Clone()
	s.fillUser(stored)
	s.users = append(s.users, stored)
	return stored.Clone()
}

// AddGroup creates a group and adds the given users to it.
func (s *Server) AddGroup(name string, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.groups, name) {
		s.groups = append(s.groups, name)
	}
	for _, username := range members {
		if user := s.findUser(username); user != nil {
			groups := user.Strings("groups")
			if !slices.Contains(groups, name) {
				user["groups"] = toAny(append(groups, name))
			}
		}
	}
}

// User returns the stored (admin) representation of a user.
func (s *Server) User(username string) sdk.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user := s.findUser(username); user != nil {
		return user.Clone()
	}
	return nil
}

// Members returns the usernames in a group.
func (s *Server) Members(group string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members(group)
}

// Groups returns every group name.
func (s *Server) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.groups)
}

// Requests returns every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestsTo returns recorded calls matching method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// FailNext makes the next call to method+path respond with status and body.
func (s *Server) FailNext(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var data []byte
	switch typed := body.(type) {
	case nil:
	case string:
		data = []byte(typed)
	default:
		data, _ = json.Marshal(typed)
	}
	s.failures[method+" "+path] = failure{status: status, body: data}
}

// Hold blocks calls to method+path until the returned release is called.
func (s *Server) Hold(method, path string) (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[method+" "+path] = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(data))

		req := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get(sdk.RequestIDHeader),
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &req.Body)
		}

		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, req)
		fail, failing := s.failures[key]
		delete(s.failures, key)
		gate := s.gates[key]
		delete(s.gates, key)
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write(fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey struct{}

func withCaller(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

// callerFrom returns the authenticated username, or "" on anonymous routes.
func callerFrom(ctx context.Context) string {
	username, _ := ctx.Value(contextKey{}).(string)
	return username
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}
		token, ok := strings.CutPrefix(header, sdk.TokenType+" ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}
		s.mu.Lock()
		username, known := s.tokens[token]
		s.mu.Unlock()
		if !known {
			writeJSON(w, http.StatusUnauthorized, detail("Invalid token."))
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), username)))
	})
}

func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			writeJSON(w, http.StatusForbidden, detail("You do not have permission to perform this action."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isAdmin(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[callerFrom(r.Context())]
	return acct != nil && acct.admin
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in sdk.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}
	errs := map[string]any{}
	if in.Username == "" {
		errs["username"] = []string{"This field may not be blank."}
	}
	if in.Password == "" {
		errs["password"] = []string{"This field may not be blank."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	acct := s.accounts[in.Username]
	s.mu.Unlock()
	if acct == nil || acct.password != in.Password {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"non_field_errors": []string{"Unable to log in with provided credentials."},
		})
		return
	}

	resp := map[string]any{"token": acct.token}
	if s.RoleClaim {
		resp["role"] = sdk.RoleFromAdmin(acct.admin)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	admin := s.isAdmin(r)
	s.mu.Lock()
	out := make([]sdk.Record, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, s.present(user, admin))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	admin := s.isAdmin(r)
	active := r.URL.Query().Get("is_active")
	query := r.URL.Query().Get("q")

	s.mu.Lock()
	out := []sdk.Record{}
	for _, user := range s.users {
		if admin && active != "" && sdk.FormatValue(user["is_active"]) != strings.ToLower(active) {
			continue
		}
		if query != "" && !matchesQuery(user, query) {
			continue
		}
		out = append(out, s.present(user, admin))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func matchesQuery(user sdk.Record, query string) bool {
	if user.String("birthday") == query || user.String("email") == query {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(user.String("first_name")), q) ||
		strings.Contains(strings.ToLower(user.String("last_name")), q)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	admin := s.isAdmin(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUser(chi.URLParam(r, "username"))
	if user == nil {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	writeJSON(w, http.StatusOK, s.present(user, admin))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	errs := map[string]any{}
	for _, field := range []string{"username", "first_name", "last_name", "email", "birthday", "password"} {
		if sdk.FormatValue(in[field]) == "" {
			errs[field] = []string{"This field is required."}
		}
	}
	if username := sdk.FormatValue(in["username"]); username != "" && s.findUser(username) != nil {
		errs["username"] = []string{"A user with that username already exists."}
	}
	address, _ := in["address"].(map[string]any)
	if address == nil {
		errs["address"] = []string{"This field is required."}
	} else if addrErrs := validateAddress(address, true); len(addrErrs) > 0 {
		errs["address"] = addrErrs
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user := sdk.Record{}
	for _, field := range []string{"username", "first_name", "last_name", "email", "birthday"} {
		user[field] = in[field]
	}
	user["address"] = address
	user["is_active"] = sdk.Truthy(in["is_active"])
	s.fillUser(user)
	s.users = append(s.users, user)
	username := user.String("username")
	if _, exists := s.accounts[username]; !exists {
		token := "token-" + username
		s.accounts[username] = &account{password: sdk.FormatValue(in["password"]), token: token}
		s.tokens[token] = username
	}
	writeJSON(w, http.StatusCreated, s.present(user, true))
}

func (s *Server) patchUser(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUser(chi.URLParam(r, "username"))
	if user == nil {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	if !sdk.Truthy(user["is_active"]) && !sdk.Truthy(in["is_active"]) {
		writeJSON(w, http.StatusForbidden, detail("Editing inactive user state is not allowed. Activate user first"))
		return
	}

	errs := map[string]any{}
	for _, field := range []string{"username", "first_name", "last_name", "email", "password"} {
		if v, ok := in[field]; ok && sdk.FormatValue(v) == "" {
			errs[field] = []string{"This field may not be blank."}
		}
	}
	if email, ok := in["email"]; ok && sdk.FormatValue(email) != "" && !strings.Contains(sdk.FormatValue(email), "@") {
		errs["email"] = []string{"Enter a valid email address."}
	}
	if username, ok := in["username"]; ok {
		if other := s.findUser(sdk.FormatValue(username)); other != nil && other.String("username") != user.String("username") {
			errs["username"] = []string{"A user with that username already exists."}
		}
	}
	address, _ := in["address"].(map[string]any)
	if address != nil {
		if addrErrs := validateAddress(address, false); len(addrErrs) > 0 {
			errs["address"] = addrErrs
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	oldName := user.String("username")
	for _, field := range []string{"username", "first_name", "last_name", "email", "birthday"} {
		if v, ok := in[field]; ok {
			user[field] = v
		}
	}
	if v, ok := in["is_active"]; ok {
		user["is_active"] = sdk.Truthy(v)
	}
	if address != nil {
		stored, _ := user["address"].(map[string]any)
		if stored == nil {
			stored = map[string]any{}
		}
		for k, v := range address {
			stored[k] = v
		}
		user["address"] = stored
	}
	if newName := user.String("username"); newName != oldName {
		if acct, ok := s.accounts[oldName]; ok {
			delete(s.accounts, oldName)
			s.accounts[newName] = acct
			s.tokens[acct.token] = newName
		}
	}
	if password, ok := in["password"]; ok {
		if acct, exists := s.accounts[user.String("username")]; exists {
			acct.password = sdk.FormatValue(password)
		}
	}
	user["last_update"] = s.now()
	writeJSON(w, http.StatusOK, s.present(user, true))
}

func (s *Server) getUserGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUser(chi.URLParam(r, "username"))
	if user == nil {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": user.Strings("groups")})
}

func (s *Server) putUserGroups(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findUser(chi.URLParam(r, "username"))
	if user == nil {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	raw, ok := in["groups"]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"groups": []string{"This field is required."}})
		return
	}
	names := sdk.Record{"groups": raw}.Strings("groups")
	for _, name := range names {
		if !slices.Contains(s.groups, name) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"groups": []string{fmt.Sprintf("Object with name=%s does not exist.", name)},
			})
			return
		}
	}
	user["groups"] = toAny(names)
	user["last_update"] = s.now()
	writeJSON(w, http.StatusOK, s.present(user, true))
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]sdk.Record, 0, len(s.groups))
	for _, name := range s.groups {
		out = append(out, s.presentGroup(name, false))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}
	name := sdk.FormatValue(in["name"])

	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"name": []string{"This field may not be blank."}})
		return
	}
	if slices.Contains(s.groups, name) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"name": []string{"group with this name already exists."}})
		return
	}
	s.groups = append(s.groups, name)
	writeJSON(w, http.StatusCreated, s.presentGroup(name, false))
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := chi.URLParam(r, "name")
	if !slices.Contains(s.groups, name) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	writeJSON(w, http.StatusOK, s.presentGroup(name, true))
}

func (s *Server) patchGroup(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := chi.URLParam(r, "name")
	if !slices.Contains(s.groups, name) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	if users, ok := in["users"]; ok {
		action := strings.ToLower(sdk.FormatValue(in["action"]))
		if action == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"non_field_errors": []string{`You must provide "action" value if you want to update users using "PATCH" request`},
			})
			return
		}
		if action != "add" && action != "remove" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"action": []string{`Action must be either "add" or "remove"`}})
			return
		}
		usernames := sdk.Record{"users": users}.Strings("users")
		if errs := s.validateUsernames(usernames); errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		for _, username := range usernames {
			user := s.findUser(username)
			groups := user.Strings("groups")
			if action == "add" && !slices.Contains(groups, name) {
				groups = append(groups, name)
			}
			if action == "remove" {
				groups = slices.DeleteFunc(groups, func(g string) bool { return g == name })
			}
			user["groups"] = toAny(groups)
		}
	}
	if newName, ok := in["name"]; ok {
		if errs := s.renameGroup(name, sdk.FormatValue(newName)); errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		name = sdk.FormatValue(newName)
	}
	writeJSON(w, http.StatusOK, s.presentGroup(name, true))
}

func (s *Server) putGroup(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := chi.URLParam(r, "name")
	if !slices.Contains(s.groups, name) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	errs := map[string]any{}
	if sdk.FormatValue(in["name"]) == "" {
		errs["name"] = []string{"This field is required."}
	}
	if _, ok := in["users"]; !ok {
		errs["users"] = []string{"This field is required."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	usernames := sdk.Record{"users": in["users"]}.Strings("users")
	if errs := s.validateUsernames(usernames); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	for _, user := range s.users {
		groups := slices.DeleteFunc(user.Strings("groups"), func(g string) bool { return g == name })
		if slices.Contains(usernames, user.String("username")) {
			groups = append(groups, name)
		}
		user["groups"] = toAny(groups)
	}
	if newName := sdk.FormatValue(in["name"]); newName != name {
		if errs := s.renameGroup(name, newName); errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		name = newName
	}
	writeJSON(w, http.StatusOK, s.presentGroup(name, true))
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := chi.URLParam(r, "name")
	if !slices.Contains(s.groups, name) {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	s.groups = slices.DeleteFunc(s.groups, func(g string) bool { return g == name })
	for _, user := range s.users {
		user["groups"] = toAny(slices.DeleteFunc(user.Strings("groups"), func(g string) bool { return g == name }))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renameGroup(from, to string) map[string]any {
	if to == "" {
		return map[string]any{"name": []string{"This field may not be blank."}}
	}
	if to == from {
		return nil
	}
	if slices.Contains(s.groups, to) {
		return map[string]any{"name": []string{"group with this name already exists."}}
	}
	for i, g := range s.groups {
		if g == from {
			s.groups[i] = to
		}
	}
	for _, user := range s.users {
		groups := user.Strings("groups")
		for i, g := range groups {
			if g == from {
				groups[i] = to
			}
		}
		user["groups"] = toAny(groups)
	}
	return nil
}

func (s *Server) validateUsernames(usernames []string) map[string]any {
	for _, username := range usernames {
		if s.findUser(username) == nil {
			return map[string]any{
				"users": []string{fmt.Sprintf("Object with username=%s does not exist.", username)},
			}
		}
	}
	return nil
}

func validateAddress(address map[string]any, required bool) map[string]any {
	errs := map[string]any{}
	for _, field := range sdk.AddressFields {
		v, ok := address[field]
		if (required || ok) && sdk.FormatValue(v) == "" {
			errs[field] = []string{"This field may not be blank."}
			continue
		}
		if field == "zip_code" && ok && !zipCodePattern.MatchString(sdk.FormatValue(v)) {
			errs[field] = []string{"Enter a valid value."}
		}
	}
	return errs
}

func (s *Server) fillUser(user sdk.Record) {
	user["id"] = s.nextID
	s.nextID++
	user["url"] = s.URL + "/api/users/" + user.String("username") + "/"
	if !user.Has("is_active") {
		user["is_active"] = true
	}
	if !user.Has("groups") {
		user["groups"] = []any{}
	}
	if !user.Has("address") {
		user["address"] = map[string]any{}
	}
	if !user.Has("date_joined") {
		user["date_joined"] = s.now()
	}
	user["last_update"] = s.now()
}

func (s *Server) present(user sdk.Record, admin bool) sdk.Record {
	out := user.Clone()
	out["url"] = s.URL + "/api/users/" + user.String("username") + "/"
	if admin {
		return out
	}
	for field := range out {
		if !slices.Contains(basicUserFields, field) {
			delete(out, field)
		}
	}
	return out
}

func (s *Server) presentGroup(name string, detailed bool) sdk.Record {
	members := s.members(name)
	out := sdk.Record{
		"url":         s.URL + "/api/groups/" + name + "/",
		"name":        name,
		"users_count": len(members),
	}
	if detailed {
		out["users"] = members
	}
	return out
}

func (s *Server) members(group string) []string {
	members := []string{}
	for _, user := range s.users {
		if slices.Contains(user.Strings("groups"), group) {
			members = append(members, user.String("username"))
		}
	}
	return members
}

func (s *Server) findUser(username string) sdk.Record {
	for _, user := range s.users {
		if user.String("username") == username {
			return user
		}
	}
	return nil
}

func (s *Server) now() string {
	s.clock = s.clock.Add(time.Minute)
	return s.clock.Format(timeLayout)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func detail(message string) map[string]any {
	return map[string]any{"detail": message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
