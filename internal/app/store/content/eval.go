// internal/app/store/content/eval.go
package content

import (
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// Evaluate runs q over an in-memory document set the way the hosted store
// does: draft overlay, type and filter match, ordering with an _id
// tie-break, range slicing, and projection. docs is not modified.
//
// In preview mode a draft replaces its published counterpart and is
// reported under the published id with _originalId holding the draft id.
// Otherwise drafts are invisible.
func Evaluate(docs []models.Document, q Query, params Params, preview bool) []models.Document {
	visible := overlay(docs, preview)

	matched := make([]models.Document, 0, len(visible))
	for _, d := range visible {
		if d.Type() != q.Type {
			continue
		}
		if matchAll(d, q.Filters, params) {
			matched = append(matched, d)
		}
	}

	order := append(append([]Order(nil), q.Order...), Order{Field: "_id"})
	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range order {
			c := compareValues(matched[i].Path(o.Field), matched[j].Path(o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if q.Range != nil {
		matched = sliceRange(matched, *q.Range)
	}

	fields := q.projection()
	out := make([]models.Document, len(matched))
	for i, d := range matched {
		out[i] = project(d, fields)
	}
	return out
}

func overlay(docs []models.Document, preview bool) []models.Document {
	if !preview {
		out := make([]models.Document, 0, len(docs))
		for _, d := range docs {
			if !d.IsDraft() {
				out = append(out, d)
			}
		}
		return out
	}

	drafts := make(map[string]models.Document)
	for _, d := range docs {
		if d.IsDraft() {
			drafts[models.PublishedID(d.ID())] = d
		}
	}
	out := make([]models.Document, 0, len(docs))
	seen := make(map[string]bool, len(drafts))
	for _, d := range docs {
		id := models.PublishedID(d.ID())
		if seen[id] {
			continue
		}
		if draft, ok := drafts[id]; ok {
			seen[id] = true
			c := draft.Clone()
			c["_originalId"] = draft.ID()
			c["_id"] = id
			out = append(out, c)
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchAll(d models.Document, filters []Filter, params Params) bool {
	for _, f := range filters {
		if !match(d, f, params) {
			return false
		}
	}
	return true
}

func match(d models.Document, f Filter, params Params) bool {
	v := d.Path(f.Field)
	switch f.Op {
	case OpDefined:
		return v != nil
	case OpEq:
		return equalValues(v, params[f.Param])
	case OpAfter, OpNotAfter:
		ft, ok := asTime(v)
		if !ok {
			return false
		}
		pt, ok := asTime(params[f.Param])
		if !ok {
			return false
		}
		if f.Op == OpAfter {
			return ft.After(pt)
		}
		return !ft.After(pt)
	}
	return false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// compareValues orders datetimes chronologically, numbers numerically and
// strings lexically. Missing values sort after present ones.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if at, ok := asTime(a); ok {
		if bt, ok := asTime(b); ok {
			return at.Compare(bt)
		}
	}
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	return 0
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func sliceRange(docs []models.Document, r Range) []models.Document {
	if r.Start >= len(docs) {
		return nil
	}
	end := r.End
	if end > len(docs) {
		end = len(docs)
	}
	return docs[r.Start:end]
}

// project keeps the named top-level fields. A dotted name keeps its
// top-level parent.
func project(d models.Document, fields []string) models.Document {
	if fields == nil {
		return d.Clone()
	}
	out := make(models.Document, len(fields))
	for _, f := range fields {
		top, _, _ := strings.Cut(f, ".")
		if v, ok := d[top]; ok {
			out[top] = v
		}
	}
	return out
}
