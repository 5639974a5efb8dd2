package plan

import "fmt"

// Tables are the read-only side tables payloads index into.
type Tables struct {
	Strings   []string
	Indices   [][]int
	Hashes    []uint64
	ConstVals []Ref
}

// Init is one initializer instruction.
type Init struct {
	Offset  int
	Payload []int
}

// PoolImage holds one pool's instructions bucketed by cohort.
type PoolImage struct {
	Tag     Tag
	Size    int
	Cohorts [][]Init
}

// MaxCohort is the highest non-empty cohort, or -1.
func (p *PoolImage) MaxCohort() int {
	for c := len(p.Cohorts) - 1; c >= 0; c-- {
		if len(p.Cohorts[c]) > 0 {
			return c
		}
	}
	return -1
}

// Global binds a script global.
type Global struct {
	Name     string
	Type     int
	Attrs    int
	Val      int
	Exported bool
}

// Body registers a compiled function body.
type Body struct {
	FuncName string
	Type     int
	Priority int
	Hash     int
	Events   []string
}

// Lambda registers an anonymous function body.
type Lambda struct {
	Name        string
	Type        int
	Hash        int
	HasCaptures bool
}

// FieldMapping asks for the index of a field in a record type.
type FieldMapping struct {
	Record    int
	FieldName string
	FieldType int
	Attrs     int
}

// EnumMapping asks for the ordinal of a name in an enum type.
type EnumMapping struct {
	Enum int
	Name string
}

// Image is everything the runtime needs to rebuild the object graph.
type Image struct {
	Tables    Tables
	Pools     []PoolImage
	MaxCohort int

	Globals       []Global
	Bodies        []Body
	Lambdas       []Lambda
	BiFs          []string
	FieldMappings []FieldMapping
	EnumMappings  []EnumMapping
}

// Pool returns the image for tag, if present.
func (img *Image) Pool(tag Tag) (*PoolImage, bool) {
	for i := range img.Pools {
		if img.Pools[i].Tag == tag {
			return &img.Pools[i], true
		}
	}
	return nil, false
}

// Validate checks structural consistency: each pool lists every offset
// exactly once and no cohort exceeds MaxCohort.
func (img *Image) Validate() error {
	seenTag := make(map[Tag]bool)
	for _, p := range img.Pools {
		if seenTag[p.Tag] {
			return fmt.Errorf("pool %s listed twice: %w", p.Tag, ErrPayloadShape)
		}
		seenTag[p.Tag] = true

		if mc := p.MaxCohort(); mc > img.MaxCohort {
			return fmt.Errorf("pool %s has cohort %d beyond image maximum %d: %w", p.Tag, mc, img.MaxCohort, ErrAssignment)
		}
		seen := make([]bool, p.Size)
		n := 0
		for c, cohort := range p.Cohorts {
			for _, in := range cohort {
				if in.Offset < 0 || in.Offset >= p.Size {
					return fmt.Errorf("pool %s cohort %d: offset %d out of range [0,%d): %w", p.Tag, c, in.Offset, p.Size, ErrPayloadShape)
				}
				if seen[in.Offset] {
					return fmt.Errorf("pool %s: offset %d initialized twice: %w", p.Tag, in.Offset, ErrDoubleInit)
				}
				seen[in.Offset] = true
				n++
			}
		}
		if n != p.Size {
			return fmt.Errorf("pool %s: %d instructions for %d slots: %w", p.Tag, n, p.Size, ErrPayloadShape)
		}
	}
	return nil
}
