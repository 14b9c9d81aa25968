package backend

// Ref is a resolved many-to-one value.
type Ref struct {
	ID   int64
	Name string
}

// Record is one row returned by Read. Values are normalized by the
// implementation: string, int64, bool, *Ref (nil when unset) and []int64.
type Record map[Field]any

func (r Record) ID() int64 { return r.Int(FieldID) }

func (r Record) String(f Field) string {
	s, _ := r[f].(string)
	return s
}

func (r Record) Int(f Field) int64 {
	n, _ := r[f].(int64)
	return n
}

func (r Record) Bool(f Field) bool {
	b, _ := r[f].(bool)
	return b
}

// Ref returns the many-to-one value of f, or nil when unset.
func (r Record) Ref(f Field) *Ref {
	ref, _ := r[f].(*Ref)
	return ref
}

// IDs returns the many-to-many ids of f.
func (r Record) IDs(f Field) []int64 {
	ids, _ := r[f].([]int64)
	return ids
}
