package runtime

import (
	"fmt"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// Manager resolves (tag, offset) cross-references against the storage
// arrays and the image's side tables. It is the only way reconstructors
// reach objects built by earlier cohorts.
type Manager struct {
	tables *plan.Tables

	types     *store[val.Type]
	attrs     *store[*val.Attr]
	attrLists *store[*val.Attributes]
	callExprs *store[*val.CallExpr]
	values    map[plan.Tag]*store[val.Value]
}

// NewManager sizes every storage array from the image. Pools the image
// does not list get empty arrays.
func NewManager(img *plan.Image) *Manager {
	size := func(tag plan.Tag) int {
		if pi, ok := img.Pool(tag); ok {
			return pi.Size
		}
		return 0
	}
	m := &Manager{
		tables:    &img.Tables,
		types:     newStore[val.Type](plan.Type, size(plan.Type)),
		attrs:     newStore[*val.Attr](plan.Attr, size(plan.Attr)),
		attrLists: newStore[*val.Attributes](plan.Attrs, size(plan.Attrs)),
		callExprs: newStore[*val.CallExpr](plan.CallExpr, size(plan.CallExpr)),
		values:    make(map[plan.Tag]*store[val.Value]),
	}
	for _, tag := range plan.PoolOrder {
		if tag.IsValue() {
			m.values[tag] = newStore[val.Value](tag, size(tag))
		}
	}
	return m
}

func tableEntry[T any](table []T, name string, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(table) {
		return zero, fmt.Errorf("%s table index %d out of range [0,%d): %w", name, i, len(table), plan.ErrPayloadShape)
	}
	return table[i], nil
}

// Strings returns entry i of the string table.
func (m *Manager) Strings(i int) (string, error) { return tableEntry(m.tables.Strings, "string", i) }

// OptString is like Strings but maps plan.None to the empty string.
func (m *Manager) OptString(i int) (string, error) {
	if i == plan.None {
		return "", nil
	}
	return m.Strings(i)
}

// Indices returns entry i of the index-list table.
func (m *Manager) Indices(i int) ([]int, error) { return tableEntry(m.tables.Indices, "indices", i) }

// Hashes returns entry i of the hash table.
func (m *Manager) Hashes(i int) (uint64, error) { return tableEntry(m.tables.Hashes, "hash", i) }

func (m *Manager) Types(off int) (val.Type, error) { return m.types.get(off) }

func (m *Manager) Attr(off int) (*val.Attr, error) { return m.attrs.get(off) }

func (m *Manager) Attrs(off int) (*val.Attributes, error) { return m.attrLists.get(off) }

func (m *Manager) CallExpr(off int) (*val.CallExpr, error) { return m.callExprs.get(off) }

// OptAttrs resolves an optional attribute list; plan.None yields nil.
func (m *Manager) OptAttrs(off int) (*val.Attributes, error) {
	if off == plan.None {
		return nil, nil
	}
	return m.Attrs(off)
}

// OptType resolves an optional type; plan.None yields nil.
func (m *Manager) OptType(off int) (val.Type, error) {
	if off == plan.None {
		return nil, nil
	}
	return m.Types(off)
}

// Value returns the value object at offset in a value pool.
func (m *Manager) Value(tag plan.Tag, off int) (val.Value, error) {
	s, ok := m.values[tag]
	if !ok {
		return nil, fmt.Errorf("%s is not a value pool: %w", tag, plan.ErrPayloadShape)
	}
	return s.get(off)
}

// ConstVal resolves a const-value index: the indirection through which
// payloads cite value objects of any kind.
func (m *Manager) ConstVal(cv int) (val.Value, error) {
	ref, err := tableEntry(m.tables.ConstVals, "const-value", cv)
	if err != nil {
		return nil, err
	}
	return m.Value(ref.Tag, ref.Offset)
}

// OptConstVal is like ConstVal but maps plan.None to a nil value.
func (m *Manager) OptConstVal(cv int) (val.Value, error) {
	if cv == plan.None {
		return nil, nil
	}
	return m.ConstVal(cv)
}

// Resolve returns whatever object lives at (tag, offset).
func (m *Manager) Resolve(tag plan.Tag, off int) (any, error) {
	switch tag {
	case plan.Type:
		return m.Types(off)
	case plan.Attr:
		return m.Attr(off)
	case plan.Attrs:
		return m.Attrs(off)
	case plan.CallExpr:
		return m.CallExpr(off)
	}
	return m.Value(tag, off)
}

// typeAt resolves a type and checks its shape.
func typeAt[T val.Type](m *Manager, off int) (T, error) {
	var zero T
	t, err := m.Types(off)
	if err != nil {
		return zero, err
	}
	tt, ok := t.(T)
	if !ok {
		return zero, fmt.Errorf("%s is %T, want %T: %w", plan.Ref{Tag: plan.Type, Offset: off}, t, zero, plan.ErrPayloadShape)
	}
	return tt, nil
}

// unbuiltRefs lists every slot whose instruction never ran.
func (m *Manager) unbuiltRefs() []plan.Ref {
	var out []plan.Ref
	collect := func(tag plan.Tag, offs []int) {
		for _, off := range offs {
			out = append(out, plan.Ref{Tag: tag, Offset: off})
		}
	}
	collect(plan.Type, m.types.unbuilt())
	collect(plan.Attr, m.attrs.unbuilt())
	collect(plan.Attrs, m.attrLists.unbuilt())
	collect(plan.CallExpr, m.callExprs.unbuilt())
	for _, tag := range plan.PoolOrder {
		if s, ok := m.values[tag]; ok {
			collect(tag, s.unbuilt())
		}
	}
	return out
}
