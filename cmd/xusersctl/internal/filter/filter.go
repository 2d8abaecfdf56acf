// Package filter narrows record listings with go-bexpr expressions such as
// `city == "Moscow" and "staff" in groups`.
package filter

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-bexpr"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// Filter is a compiled expression. The zero value matches everything.
type Filter struct {
	expr      string
	evaluator *bexpr.Evaluator
}

// Parse compiles expr. An empty expression yields a match-all filter.
func Parse(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return &Filter{expr: expr, evaluator: evaluator}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against the flattened record. Records lacking
// a referenced field do not match.
func (f *Filter) Match(rec sdk.Record) bool {
	if f == nil || f.evaluator == nil {
		return true
	}
	ok, err := f.evaluator.Evaluate(datum(rec))
	return err == nil && ok
}

// Apply returns the matching records in order.
func (f *Filter) Apply(records []sdk.Record) []sdk.Record {
	if f == nil || f.evaluator == nil {
		return records
	}
	out := make([]sdk.Record, 0, len(records))
	for _, rec := range records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// datum flattens the address and turns list values into []string, which
// bexpr's "in" operator understands.
func datum(rec sdk.Record) map[string]any {
	flat := sdk.Flatten(rec)
	out := make(map[string]any, len(flat))
	for key, value := range flat {
		switch value.(type) {
		case []any, []string:
			out[key] = flat.Strings(key)
		default:
			out[key] = value
		}
	}
	return out
}
