package odoo

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/sprintdesk/internal/backend"
)

// encodeDomain renders a filter as a domain: [[field, op, value], ...].
// A nil value becomes false, which is how unset refs are matched.
func encodeDomain(f backend.Filter) []any {
	domain := make([]any, 0, len(f))
	for _, c := range f {
		val := c.Value
		if val == nil {
			val = false
		}
		domain = append(domain, []any{string(c.Field), string(c.Op), val})
	}
	return domain
}

// encodeValues renders a create payload. Ref sets use the replace command
// (6, 0, ids).
func encodeValues(v backend.Values) map[string]any {
	out := make(map[string]any, len(v))
	for f, val := range v {
		if set, ok := val.(backend.RefSet); ok {
			ids := []int64(set)
			if ids == nil {
				ids = []int64{}
			}
			out[string(f)] = []any{[]any{6, 0, ids}}
			continue
		}
		out[string(f)] = val
	}
	return out
}

func decodeNumber(raw json.RawMessage, n *json.Number) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	num, ok := v.(json.Number)
	if !ok {
		return fmt.Errorf("expected number, got %T", v)
	}
	*n = num
	return nil
}

func decodeRecords(kind backend.Kind, raw json.RawMessage) ([]backend.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decoding records: %v", backend.ErrUnavailable, err)
	}

	records := make([]backend.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(backend.Record, len(row))
		for name, val := range row {
			f := backend.Field(name)
			ft, err := backend.FieldTypeOf(kind, f)
			if err != nil {
				continue
			}
			v, err := decodeValue(ft, val)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", backend.ErrUnavailable, kind, name, err)
			}
			rec[f] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeValue normalizes a JSON value. The server sends false for unset
// fields of any type.
func decodeValue(ft backend.FieldType, val any) (any, error) {
	if b, ok := val.(bool); ok && !b && ft != backend.TypeBool {
		switch ft {
		case backend.TypeString:
			return "", nil
		case backend.TypeInt:
			return int64(0), nil
		case backend.TypeRef:
			return (*backend.Ref)(nil), nil
		case backend.TypeRefSet:
			return []int64{}, nil
		}
	}

	switch ft {
	case backend.TypeString:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", val)
		}
		return s, nil
	case backend.TypeInt:
		return toInt64(val)
	case backend.TypeBool:
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", val)
		}
		return b, nil
	case backend.TypeRef:
		pair, ok := val.([]any)
		if !ok || len(pair) == 0 {
			return nil, fmt.Errorf("expected [id, name], got %T", val)
		}
		id, err := toInt64(pair[0])
		if err != nil {
			return nil, err
		}
		ref := &backend.Ref{ID: id}
		if len(pair) > 1 {
			ref.Name, _ = pair[1].(string)
		}
		return ref, nil
	case backend.TypeRefSet:
		list, ok := val.([]any)
		if !ok {
			return nil, fmt.Errorf("expected id list, got %T", val)
		}
		ids := make([]int64, 0, len(list))
		for _, item := range list {
			id, err := toInt64(item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", ft)
	}
}

func toInt64(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	return n.Int64()
}
