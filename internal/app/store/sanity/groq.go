// internal/app/store/sanity/groq.go
package sanitystore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dalemusser/stratasite/internal/app/store/content"
)

// BuildGROQ renders a validated query shape as a GROQ expression.
// Values stay out of the expression; filters refer to $params.
//
//	*[_type == "event" && slug.current == $slug] | order(_id asc) [0...2]{_id, _type, title}
func BuildGROQ(q content.Query) (string, error) {
	typeLit, err := json.Marshal(q.Type)
	if err != nil {
		return "", err
	}

	conds := []string{"_type == " + string(typeLit)}
	for _, f := range q.Filters {
		switch f.Op {
		case content.OpEq:
			conds = append(conds, fmt.Sprintf("%s == $%s", f.Field, f.Param))
		case content.OpAfter:
			conds = append(conds, fmt.Sprintf("dateTime(%s) > dateTime($%s)", f.Field, f.Param))
		case content.OpNotAfter:
			conds = append(conds, fmt.Sprintf("dateTime(%s) <= dateTime($%s)", f.Field, f.Param))
		case content.OpDefined:
			conds = append(conds, fmt.Sprintf("defined(%s)", f.Field))
		default:
			return "", fmt.Errorf("%w: operator %q has no GROQ form", content.ErrMalformedQuery, f.Op)
		}
	}

	var b strings.Builder
	b.WriteString("*[")
	b.WriteString(strings.Join(conds, " && "))
	b.WriteString("]")

	keys := make([]string, 0, len(q.Order)+1)
	hasID := false
	for _, o := range q.Order {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		keys = append(keys, o.Field+" "+dir)
		if o.Field == "_id" {
			hasID = true
		}
	}
	if !hasID {
		keys = append(keys, "_id asc")
	}
	b.WriteString(" | order(")
	b.WriteString(strings.Join(keys, ", "))
	b.WriteString(")")

	if q.Range != nil {
		fmt.Fprintf(&b, " [%d...%d]", q.Range.Start, q.Range.End)
	}

	if len(q.Fields) > 0 {
		b.WriteString("{")
		b.WriteString(strings.Join(projection(q.Fields), ", "))
		b.WriteString("}")
	}
	return b.String(), nil
}

// projection returns de-duplicated top-level field names led by _id and _type.
func projection(fields []string) []string {
	out := []string{"_id", "_type"}
	seen := map[string]bool{"_id": true, "_type": true}
	for _, f := range fields {
		top, _, _ := strings.Cut(f, ".")
		if !seen[top] {
			seen[top] = true
			out = append(out, top)
		}
	}
	return out
}
