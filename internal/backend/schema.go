package backend

import (
	"fmt"
	"sort"
)

// Field is a field name of an entity kind.
type Field string

const (
	FieldID   Field = "id"
	FieldName Field = "name"

	FieldProjectActive      Field = "active"
	FieldProjectDescription Field = "description"
	FieldProjectStage       Field = "stage_id"

	FieldTagColor Field = "color"

	FieldTaskProject     Field = "project_id"
	FieldTaskParent      Field = "parent_id"
	FieldTaskDescription Field = "description"
	FieldTaskTags        Field = "tag_ids"
	FieldTaskUsers       Field = "user_ids"

	FieldUserLogin Field = "login"
)

// FieldType is the value type a field carries.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeBool
	TypeRef    // many-to-one, int64 on write, Ref on read
	TypeRefSet // many-to-many, RefSet on write, []int64 on read
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeRef:
		return "ref"
	case TypeRefSet:
		return "ref set"
	default:
		return "unknown"
	}
}

// Schema lists the fields this planner reads or writes per kind.
var Schema = map[Kind]map[Field]FieldType{
	KindProject: {
		FieldID:                 TypeInt,
		FieldName:               TypeString,
		FieldProjectActive:      TypeBool,
		FieldProjectDescription: TypeString,
		FieldProjectStage:       TypeRef,
	},
	KindProjectStage: {
		FieldID:   TypeInt,
		FieldName: TypeString,
	},
	KindTag: {
		FieldID:       TypeInt,
		FieldName:     TypeString,
		FieldTagColor: TypeInt,
	},
	KindTask: {
		FieldID:              TypeInt,
		FieldName:            TypeString,
		FieldTaskProject:     TypeRef,
		FieldTaskParent:      TypeRef,
		FieldTaskDescription: TypeString,
		FieldTaskTags:        TypeRefSet,
		FieldTaskUsers:       TypeRefSet,
	},
	KindUser: {
		FieldID:        TypeInt,
		FieldName:      TypeString,
		FieldUserLogin: TypeString,
	},
}

// FieldTypeOf returns the schema type of kind.field.
func FieldTypeOf(kind Kind, field Field) (FieldType, error) {
	fields, ok := Schema[kind]
	if !ok {
		return 0, fmt.Errorf("%w: unknown kind %q", ErrSchema, kind)
	}
	ft, ok := fields[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no field %q", ErrSchema, kind, field)
	}
	return ft, nil
}

// ValidateFields checks that every field exists on kind.
func ValidateFields(kind Kind, fields []Field) error {
	for _, f := range fields {
		if _, err := FieldTypeOf(kind, f); err != nil {
			return err
		}
	}
	return nil
}

// RefSet replaces the full set of a many-to-many field.
type RefSet []int64

// Values is a create payload.
type Values map[Field]any

// Validate checks each value against the kind's schema. The id field is
// assigned by the backend and may not be written.
func (v Values) Validate(kind Kind) error {
	for _, f := range v.Fields() {
		ft, err := FieldTypeOf(kind, f)
		if err != nil {
			return err
		}
		if f == FieldID {
			return fmt.Errorf("%w: %s.id is assigned by the backend", ErrSchema, kind)
		}
		if !valueFits(ft, v[f]) {
			return fmt.Errorf("%w: %s.%s wants %s, got %T", ErrSchema, kind, f, ft, v[f])
		}
	}
	return nil
}

// Fields returns the payload's field names in sorted order.
func (v Values) Fields() []Field {
	fields := make([]Field, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

func valueFits(ft FieldType, val any) bool {
	switch ft {
	case TypeString:
		_, ok := val.(string)
		return ok
	case TypeInt, TypeRef:
		_, ok := val.(int64)
		return ok
	case TypeBool:
		_, ok := val.(bool)
		return ok
	case TypeRefSet:
		_, ok := val.(RefSet)
		return ok
	default:
		return false
	}
}
