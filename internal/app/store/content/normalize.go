// internal/app/store/content/normalize.go
package content

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// TimeLayout is the canonical datetime encoding: UTC with milliseconds.
// Stored values in this layout sort chronologically as plain strings.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime encodes t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// datetimeFields are rewritten to TimeLayout by NormalizeDocument.
var datetimeFields = []string{"dateTime", "_createdAt", "_updatedAt", "publishedAt"}

// NormalizeDocument converts decoded YAML or BSON values into the JSON data
// model documents use: string keys, float64 numbers, RFC 3339 datetimes.
func NormalizeDocument(raw map[string]any) models.Document {
	d := models.Document{}
	for k, v := range raw {
		d[k] = normalizeValue(v)
	}
	for _, f := range datetimeFields {
		if t, ok := asTime(d[f]); ok {
			d[f] = FormatTime(t)
		}
	}
	return d
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case models.Document:
		return normalizeValue(map[string]any(t))
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeValue(vv)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeValue(vv)
		}
		return out
	case time.Time:
		return FormatTime(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}
