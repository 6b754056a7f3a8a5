package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Answers is the bag of committed field values, keyed by field name.
// Values may come straight from a form or back from a JSON round trip, so the
// typed getters accept every representation either path produces.
type Answers map[string]any

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case Program:
			out[k] = append(Program(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}

// Merge copies every entry of other into a.
func (a Answers) Merge(other Answers) {
	for k, v := range other {
		a[k] = v
	}
}

func (a Answers) Has(field string) bool {
	_, ok := a[field]
	return ok
}

func (a Answers) String(field string) string {
	switch val := a[field].(type) {
	case string:
		return val
	case TransportMode:
		return string(val)
	case MealPlan:
		return string(val)
	case nil:
		return ""
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func (a Answers) Bool(field string) bool {
	switch val := a[field].(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	}
	return false
}

func (a Answers) Float(field string) (float64, bool) {
	switch val := a[field].(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}

func (a Answers) Int(field string) (int, bool) {
	switch val := a[field].(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		return i, err == nil
	}
	return 0, false
}

func (a Answers) Strings(field string) []string {
	switch val := a[field].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (a Answers) Program(field string) Program {
	switch val := a[field].(type) {
	case Program:
		return val
	case []ProgramEntry:
		return val
	case []any:
		out := make(Program, 0, len(val))
		for _, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := ProgramEntry{}
			entry.Time, _ = m["time"].(string)
			entry.Activity, _ = m["activity"].(string)
			out = append(out, entry)
		}
		return out
	}
	return nil
}

func (a Answers) TransportMode() TransportMode {
	mode, _ := ParseTransportMode(a.String(FieldTransportMode))
	return mode
}

func (a Answers) MealPlan() MealPlan {
	plan, _ := ParseMealPlan(a.String(FieldMealPlan))
	return plan
}

// AppendRow adds an empty row to a list-valued field.
func (a Answers) AppendRow(field string) {
	switch field {
	case FieldProgram:
		a[field] = append(a.Program(field).clone(), ProgramEntry{})
	default:
		a[field] = append(append([]string(nil), a.Strings(field)...), "")
	}
}

// RemoveRow deletes the row at index from a list-valued field. Out of range
// indexes are ignored.
func (a Answers) RemoveRow(field string, index int) bool {
	switch field {
	case FieldProgram:
		rows := a.Program(field)
		if index < 0 || index >= len(rows) {
			return false
		}
		out := append(rows[:index].clone(), rows[index+1:]...)
		a[field] = out
	default:
		rows := a.Strings(field)
		if index < 0 || index >= len(rows) {
			return false
		}
		out := append(append([]string(nil), rows[:index]...), rows[index+1:]...)
		a[field] = out
	}
	return true
}

func (p Program) clone() Program {
	return append(Program(nil), p...)
}
