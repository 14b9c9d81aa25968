package repository

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/sprintdesk/internal/backend"
)

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// sqlValue converts a schema value to a value suitable for SQLite storage.
func sqlValue(v any) any {
	if b, ok := v.(bool); ok {
		return boolToInt(b)
	}
	return v
}

// fromSQL converts a scanned SQLite value to the normalized record value.
func fromSQL(ft backend.FieldType, v any) any {
	switch ft {
	case backend.TypeString:
		switch s := v.(type) {
		case string:
			return s
		case []byte:
			return string(s)
		default:
			return ""
		}
	case backend.TypeInt:
		n, _ := v.(int64)
		return n
	case backend.TypeBool:
		n, _ := v.(int64)
		return intToBool(int(n))
	case backend.TypeRef:
		n, ok := v.(int64)
		if !ok {
			return (*backend.Ref)(nil)
		}
		return &backend.Ref{ID: n}
	default:
		return v
	}
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// storeErr maps a SQLite failure onto the backend taxonomy: constraint
// violations are remote validation faults, everything else is unavailability.
func storeErr(action string, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		return &backend.RemoteError{Name: "ValidationError", Message: fmt.Sprintf("%s: %v", action, err)}
	}
	return fmt.Errorf("%w: %s: %v", backend.ErrUnavailable, action, err)
}
