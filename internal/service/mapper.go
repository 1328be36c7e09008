package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/parisxmas/intake-relay/internal/models"
)

// ValidationError lists the required fields a payload did not provide.
type ValidationError struct {
	Kind    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Faltan campos obligatorios: " + strings.Join(e.Missing, ", ")
}

// Map lays payload out in schema order. For every column the first
// non-empty value among the primary name and its aliases wins; constant
// columns always take the schema's constant. Unset optional columns map to "".
func Map(schema models.TabSchema, payload map[string]any, now time.Time) (*models.Submission, error) {
	sub := &models.Submission{
		Kind:       schema.Kind,
		Tab:        schema.Tab,
		ReceivedAt: now.UTC(),
		Fields:     make([]models.FieldValue, 0, len(schema.Columns)),
	}

	var missing []string
	for _, col := range schema.Columns {
		value := col.Constant
		if value == "" {
			value = resolve(payload, col.Names())
		}
		if col.Required && value == "" {
			missing = append(missing, col.Field)
		}
		sub.Fields = append(sub.Fields, models.FieldValue{Field: col.Field, Value: value})
	}

	if len(missing) > 0 {
		return nil, &ValidationError{Kind: schema.Kind, Missing: missing}
	}
	return sub, nil
}

func resolve(payload map[string]any, names []string) string {
	for _, name := range names {
		if v := cellString(payload[name]); v != "" {
			return v
		}
	}
	return ""
}

// cellString coerces a decoded JSON value into its cell text.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return numberString(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// numberString renders n in shortest form: "30.0" -> "30", "1e2" -> "100".
// Integers that fit int64 stay exact.
func numberString(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
