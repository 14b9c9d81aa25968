package backend

import "fmt"

// Op is a comparison operator in a search condition.
type Op string

const (
	OpEq Op = "="
	OpIn Op = "in"
)

// Cond is one search condition.
type Cond struct {
	Field Field
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Cond

// Eq builds an equality condition.
func Eq(field Field, value any) Cond {
	return Cond{Field: field, Op: OpEq, Value: value}
}

// In builds a membership condition.
func In(field Field, values []int64) Cond {
	return Cond{Field: field, Op: OpIn, Value: values}
}

// Validate checks every condition against the kind's schema.
func (f Filter) Validate(kind Kind) error {
	for _, c := range f {
		ft, err := FieldTypeOf(kind, c.Field)
		if err != nil {
			return err
		}
		switch c.Op {
		case OpEq:
			if c.Value == nil {
				if ft != TypeRef {
					return fmt.Errorf("%w: only ref fields compare to nil", ErrSchema)
				}
				continue
			}
			if ft == TypeRefSet {
				if _, ok := c.Value.(int64); !ok {
					return fmt.Errorf("%w: %s.%s membership wants int64", ErrSchema, kind, c.Field)
				}
				continue
			}
			if !valueFits(ft, c.Value) {
				return fmt.Errorf("%w: %s.%s wants %s, got %T", ErrSchema, kind, c.Field, ft, c.Value)
			}
		case OpIn:
			if _, ok := c.Value.([]int64); !ok {
				return fmt.Errorf("%w: %q wants []int64", ErrSchema, c.Op)
			}
		default:
			return fmt.Errorf("%w: unsupported operator %q", ErrSchema, c.Op)
		}
	}
	return nil
}
