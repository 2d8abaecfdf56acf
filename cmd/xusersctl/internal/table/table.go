// Package table holds the rows of a users or groups listing. Each row owns
// its record and at most one expanded detail.
package table

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// ErrNoRow is returned for row IDs the table does not hold.
var ErrNoRow = errors.New("no such row")

// Column sets.
var (
	UserColumns  = []string{"first_name", "last_name", "username", "birthday", "email"}
	GroupColumns = []string{"name", "users_count"}
)

// RowID identifies a row for the lifetime of the table.
type RowID int

// RenderFunc builds a row's detail. ctx is cancelled when the row is
// collapsed, re-expanded or removed.
type RenderFunc func(ctx context.Context, rec sdk.Record) (any, error)

// Row is a snapshot of one table row.
type Row struct {
	ID       RowID
	Record   sdk.Record
	Expanded bool
	Detail   any
}

// Key returns the row's natural key.
func (r Row) Key(field string) string {
	return r.Record.Key(field)
}

type row struct {
	id       RowID
	record   sdk.Record
	expanded bool
	detail   any
	gen      uint64
	cancel   context.CancelFunc
}

// Expansion identifies one expand of a row. Its Gen must be presented back
// to SetDetail; a later expand or collapse makes it stale.
type Expansion struct {
	ID     RowID
	Gen    uint64
	Ctx    context.Context
	Record sdk.Record
}

// Table is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	key     string
	columns []string
	rows    []*row
	nextID  RowID
}

// New returns an empty table keyed by keyField.
func New(keyField string, columns []string) *Table {
	return &Table{key: keyField, columns: slices.Clone(columns), nextID: 1}
}

// NewUsers returns an empty users table.
func NewUsers() *Table {
	return New(sdk.UserKey, UserColumns)
}

// NewGroups returns an empty groups table.
func NewGroups() *Table {
	return New(sdk.GroupKey, GroupColumns)
}

// Columns returns the displayed fields in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// KeyField returns the natural key field of the records.
func (t *Table) KeyField() string {
	return t.key
}

// Cells renders rec's column values.
func (t *Table) Cells(rec sdk.Record) []string {
	flat := sdk.Flatten(rec)
	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = flat.String(col)
	}
	return cells
}

// Load replaces every row, one per record, in order.
func (t *Table) Load(records []sdk.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		r.cancelPending()
	}
	t.rows = make([]*row, 0, len(records))
	for _, rec := range records {
		t.rows = append(t.rows, t.newRow(rec))
	}
}

// AddRow appends a row bound to rec.
func (t *Table) AddRow(rec sdk.Record) RowID {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.newRow(rec)
	t.rows = append(t.rows, r)
	return r.id
}

func (t *Table) newRow(rec sdk.Record) *row {
	r := &row{id: t.nextID, record: rec.Clone()}
	t.nextID++
	return r
}

// RemoveRow deletes a row and abandons its pending expand.
func (t *Table) RemoveRow(id RowID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return ErrNoRow
	}
	t.rows[i].cancelPending()
	t.rows = slices.Delete(t.rows, i, i+1)
	return nil
}

// PatchRow replaces the row's record. The detail is left in place.
func (t *Table) PatchRow(id RowID, rec sdk.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.find(id)
	if r == nil {
		return ErrNoRow
	}
	r.record = rec.Clone()
	return nil
}

// Rows returns snapshots of every row in display order.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r.snapshot())
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Row returns a snapshot of one row.
func (t *Table) Row(id RowID) (Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.find(id)
	if r == nil {
		return Row{}, false
	}
	return r.snapshot(), true
}

// Find returns the row whose record has the given natural key.
func (t *Table) Find(key string) (RowID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.record.Key(t.key) == key {
			return r.id, true
		}
	}
	return 0, false
}

// Expand starts a new expansion of the row, superseding any previous one.
func (t *Table) Expand(ctx context.Context, id RowID) (Expansion, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.find(id)
	if r == nil {
		return Expansion{}, ErrNoRow
	}
	r.cancelPending()
	r.gen++
	r.expanded = true
	r.detail = nil
	rowCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return Expansion{ID: id, Gen: r.gen, Ctx: rowCtx, Record: r.record.Clone()}, nil
}

// Collapse hides the detail and abandons any pending expand.
func (t *Table) Collapse(id RowID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.find(id)
	if r == nil {
		return ErrNoRow
	}
	r.cancelPending()
	r.gen++
	r.expanded = false
	r.detail = nil
	return nil
}

// SetDetail attaches detail to the row if gen is still its current
// expansion. It reports whether the detail was accepted.
func (t *Table) SetDetail(id RowID, gen uint64, detail any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.find(id)
	if r == nil || r.gen != gen || !r.expanded {
		return false
	}
	r.detail = detail
	return true
}

// Fail collapses the row if gen is still current.
func (t *Table) Fail(id RowID, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.find(id); r != nil && r.gen == gen {
		r.cancelPending()
		r.expanded = false
		r.detail = nil
	}
}

// ToggleDetail collapses an expanded row, or expands it and renders the
// detail with render. The detail is rebuilt on every expand. shown is
// false when the row was collapsed or when a later toggle superseded this
// one before render returned.
func (t *Table) ToggleDetail(ctx context.Context, id RowID, render RenderFunc) (shown bool, err error) {
	current, ok := t.Row(id)
	if !ok {
		return false, ErrNoRow
	}
	if current.Expanded {
		return false, t.Collapse(id)
	}

	exp, err := t.Expand(ctx, id)
	if err != nil {
		return false, err
	}
	detail, err := render(exp.Ctx, exp.Record)
	if err != nil {
		// checked before Fail, which cancels exp.Ctx itself
		superseded := exp.Ctx.Err() != nil && ctx.Err() == nil
		t.Fail(exp.ID, exp.Gen)
		if superseded {
			return false, nil
		}
		return false, err
	}
	return t.SetDetail(exp.ID, exp.Gen, detail), nil
}

func (t *Table) index(id RowID) int {
	for i, r := range t.rows {
		if r.id == id {
			return i
		}
	}
	return -1
}

func (t *Table) find(id RowID) *row {
	if i := t.index(id); i >= 0 {
		return t.rows[i]
	}
	return nil
}

func (r *row) cancelPending() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *row) snapshot() Row {
	return Row{ID: r.id, Record: r.record.Clone(), Expanded: r.expanded, Detail: r.detail}
}
