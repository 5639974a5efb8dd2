package descriptor

import "github.com/vk/bootgraph/internal/plan"

// Tables interns the side-table entries payloads refer to.
type Tables struct {
	strings   []string
	stringIdx map[string]int
	indices   [][]int
	hashes    []uint64
	hashIdx   map[uint64]int
	constVals []plan.Ref
	cvIdx     map[plan.Ref]int
}

func NewTables() *Tables {
	return &Tables{
		stringIdx: make(map[string]int),
		hashIdx:   make(map[uint64]int),
		cvIdx:     make(map[plan.Ref]int),
	}
}

// String returns the index of s in the string table.
func (t *Tables) String(s string) int {
	if i, ok := t.stringIdx[s]; ok {
		return i
	}
	i := len(t.strings)
	t.strings = append(t.strings, s)
	t.stringIdx[s] = i
	return i
}

// OptString returns plan.None for the empty string.
func (t *Tables) OptString(s string) int {
	if s == "" {
		return plan.None
	}
	return t.String(s)
}

// Hash returns the index of h in the hash table.
func (t *Tables) Hash(h uint64) int {
	if i, ok := t.hashIdx[h]; ok {
		return i
	}
	i := len(t.hashes)
	t.hashes = append(t.hashes, h)
	t.hashIdx[h] = i
	return i
}

// Indices appends an index list and returns its position.
func (t *Tables) Indices(ix []int) int {
	t.indices = append(t.indices, append([]int(nil), ix...))
	return len(t.indices) - 1
}

// ConstVal returns the const-value index through which a payload cites
// the value object of d. A nil d yields plan.None.
func (t *Tables) ConstVal(d Descriptor) int {
	if d == nil {
		return plan.None
	}
	r := plan.Ref{Tag: d.Kind(), Offset: d.Offset()}
	if i, ok := t.cvIdx[r]; ok {
		return i
	}
	i := len(t.constVals)
	t.constVals = append(t.constVals, r)
	t.cvIdx[r] = i
	return i
}

// Build snapshots the tables.
func (t *Tables) Build() plan.Tables {
	return plan.Tables{
		Strings:   append([]string(nil), t.strings...),
		Indices:   append([][]int(nil), t.indices...),
		Hashes:    append([]uint64(nil), t.hashes...),
		ConstVals: append([]plan.Ref(nil), t.constVals...),
	}
}

// offsetOf returns d's offset, or plan.None for a nil descriptor.
func offsetOf(d Descriptor) int {
	if d == nil {
		return plan.None
	}
	return d.Offset()
}
