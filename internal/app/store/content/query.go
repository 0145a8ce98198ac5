// internal/app/store/content/query.go
package content

import (
	"fmt"
	"regexp"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// Op is a filter comparison.
type Op string

const (
	// OpEq matches when the field equals the parameter value.
	OpEq Op = "=="
	// OpAfter matches when the field, read as an ISO-8601 datetime, is
	// strictly later than the parameter.
	OpAfter Op = "after"
	// OpNotAfter matches when the field datetime is at or before the parameter.
	OpNotAfter Op = "notAfter"
	// OpDefined matches when the field is present and non-null. It takes no parameter.
	OpDefined Op = "defined"
)

// Filter compares one document field with a named parameter.
type Filter struct {
	Field string
	Op    Op
	Param string
}

// Eq is shorthand for an equality filter.
func Eq(field, param string) Filter {
	return Filter{Field: field, Op: OpEq, Param: param}
}

// After is shorthand for a strictly-later datetime filter.
func After(field, param string) Filter {
	return Filter{Field: field, Op: OpAfter, Param: param}
}

// Order is one sort key.
type Order struct {
	Field string
	Desc  bool
}

// Range is a half-open slice [Start, End) of the ordered result.
type Range struct {
	Start int
	End   int
}

// Len returns the number of positions the range covers.
func (r Range) Len() int {
	return r.End - r.Start
}

// Query is a declarative query shape. Values are never embedded in the
// shape; filters name parameters that are bound at fetch time.
type Query struct {
	Type    string
	Filters []Filter
	Fields  []string // projection; empty means every field
	Order   []Order
	Range   *Range
}

// Params binds parameter names to values.
type Params map[string]any

var (
	fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	paramPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate checks the shape against params. Every failure wraps ErrMalformedQuery.
func (q Query) Validate(params Params) error {
	if q.Type == "" {
		return malformed("missing document type")
	}
	if !models.IsKnownType(q.Type) {
		return malformed("unknown document type %q", q.Type)
	}
	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return malformed("invalid filter field %q", f.Field)
		}
		switch f.Op {
		case OpDefined:
			continue
		case OpEq, OpAfter, OpNotAfter:
		default:
			return malformed("unknown operator %q on %s", f.Op, f.Field)
		}
		if !paramPattern.MatchString(f.Param) {
			return malformed("invalid parameter name %q", f.Param)
		}
		v, ok := params[f.Param]
		if !ok {
			return malformed("parameter $%s is not bound", f.Param)
		}
		if f.Op != OpEq {
			if _, ok := v.(string); !ok {
				return malformed("parameter $%s must be an ISO-8601 string", f.Param)
			}
		}
	}
	for _, o := range q.Order {
		if !fieldPattern.MatchString(o.Field) {
			return malformed("invalid order field %q", o.Field)
		}
	}
	for _, name := range q.Fields {
		if !fieldPattern.MatchString(name) {
			return malformed("invalid projection field %q", name)
		}
	}
	if q.Range != nil {
		if q.Range.Start < 0 || q.Range.End < q.Range.Start {
			return malformed("invalid range [%d, %d)", q.Range.Start, q.Range.End)
		}
	}
	for name := range params {
		if !paramPattern.MatchString(name) {
			return malformed("invalid parameter name %q", name)
		}
	}
	return nil
}

// WithRange returns a copy of q limited to [start, end).
func (q Query) WithRange(start, end int) Query {
	q.Range = &Range{Start: start, End: end}
	return q
}

// projection returns the fields to keep, always including _id and _type.
// nil means keep every field.
func (q Query) projection() []string {
	if len(q.Fields) == 0 {
		return nil
	}
	out := []string{"_id", "_type"}
	for _, f := range q.Fields {
		if f != "_id" && f != "_type" {
			out = append(out, f)
		}
	}
	return out
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedQuery, fmt.Sprintf(format, args...))
}
