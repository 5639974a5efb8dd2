package runtime

import (
	"fmt"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// typeBuilder reconstructs one type. The first payload slot, the type
// tag, has already been used for dispatch; p is the full payload.
type typeBuilder func(m *Manager, off int, p []int) (val.Type, error)

var typeBuilders = map[val.TypeTag]typeBuilder{
	val.TagEnum:   buildEnumType,
	val.TagOpaque: buildOpaqueType,
	val.TagType:   buildTypeType,
	val.TagVector: buildVectorType,
	val.TagList:   buildTypeList,
	val.TagTable:  buildTableType,
	val.TagFunc:   buildFuncType,
	val.TagRecord: completeRecordType,
	val.TagFile:   buildFileType,
}

func init() {
	for t := val.TagVoid; t <= val.TagAny; t++ {
		typeBuilders[t] = buildBaseType
	}
}

func shapeErr(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, plan.ErrPayloadShape)...)
}

func wantLen(what string, p []int, n int) error {
	if len(p) != n {
		return shapeErr("%s payload has %d slots, want %d", what, len(p), n)
	}
	return nil
}

func buildType(m *Manager, off int, p []int) (val.Type, error) {
	if len(p) == 0 {
		return nil, shapeErr("empty type payload")
	}
	b, ok := typeBuilders[val.TypeTag(p[0])]
	if !ok {
		return nil, shapeErr("unknown type tag %d", p[0])
	}
	return b(m, off, p)
}

func buildBaseType(_ *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("base type", p, 1); err != nil {
		return nil, err
	}
	return val.Base(val.TypeTag(p[0])), nil
}

func buildEnumType(m *Manager, _ int, p []int) (val.Type, error) {
	if len(p) < 2 || (len(p)-2)%2 != 0 {
		return nil, shapeErr("enum type payload has %d slots, want 2 plus name/ordinal pairs", len(p))
	}
	name, err := m.Strings(p[1])
	if err != nil {
		return nil, err
	}
	et := val.NewEnumType(name)
	for i := 2; i < len(p); i += 2 {
		n, err := m.Strings(p[i])
		if err != nil {
			return nil, err
		}
		if err := et.AddName(n, p[i+1]); err != nil {
			return nil, shapeErr("enum %s: %v", name, err)
		}
	}
	return et, nil
}

func buildOpaqueType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("opaque type", p, 2); err != nil {
		return nil, err
	}
	name, err := m.Strings(p[1])
	if err != nil {
		return nil, err
	}
	return &val.OpaqueType{Name: name}, nil
}

func buildTypeType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("type-of type", p, 2); err != nil {
		return nil, err
	}
	inner, err := m.Types(p[1])
	if err != nil {
		return nil, err
	}
	return &val.TypeType{Type: inner}, nil
}

func buildVectorType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("vector type", p, 2); err != nil {
		return nil, err
	}
	yield, err := m.Types(p[1])
	if err != nil {
		return nil, err
	}
	return &val.VectorType{Yield: yield}, nil
}

func buildFileType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("file type", p, 2); err != nil {
		return nil, err
	}
	yield, err := m.Types(p[1])
	if err != nil {
		return nil, err
	}
	return &val.FileType{Yield: yield}, nil
}

func buildTypeList(m *Manager, _ int, p []int) (val.Type, error) {
	tl := &val.TypeList{Types: make([]val.Type, 0, len(p)-1)}
	for _, off := range p[1:] {
		t, err := m.Types(off)
		if err != nil {
			return nil, err
		}
		tl.Types = append(tl.Types, t)
	}
	return tl, nil
}

func buildTableType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("table type", p, 3); err != nil {
		return nil, err
	}
	indices, err := typeAt[*val.TypeList](m, p[1])
	if err != nil {
		return nil, err
	}
	yield, err := m.OptType(p[2])
	if err != nil {
		return nil, err
	}
	return &val.TableType{Indices: indices, Yield: yield}, nil
}

func buildFuncType(m *Manager, _ int, p []int) (val.Type, error) {
	if err := wantLen("function type", p, 4); err != nil {
		return nil, err
	}
	params, err := typeAt[*val.RecordType](m, p[1])
	if err != nil {
		return nil, err
	}
	yield, err := m.OptType(p[2])
	if err != nil {
		return nil, err
	}
	flavor := val.FuncFlavor(p[3])
	if flavor < val.FlavorFunction || flavor > val.FlavorHook {
		return nil, shapeErr("unknown function flavor %d", p[3])
	}
	return &val.FuncType{Params: params, Yield: yield, Flavor: flavor}, nil
}

func recordShape(p []int) error {
	if len(p) < 2 || (len(p)-2)%3 != 0 {
		return shapeErr("record type payload has %d slots, want 2 plus field triples", len(p))
	}
	return nil
}

// preInitRecord installs the identity-only shell for a record type: its
// name and no fields.
func preInitRecord(m *Manager, off int, p []int) error {
	if err := recordShape(p); err != nil {
		return err
	}
	name, err := m.OptString(p[1])
	if err != nil {
		return err
	}
	return m.types.shell(off, val.NewRecordType(name))
}

// completeRecordType appends the fields to the shell installed at
// pre-init. Field types may be the shell itself.
func completeRecordType(m *Manager, off int, p []int) (val.Type, error) {
	if err := recordShape(p); err != nil {
		return nil, err
	}
	rt, err := typeAt[*val.RecordType](m, off)
	if err != nil {
		return nil, fmt.Errorf("record shell missing: %w", err)
	}
	for i := 2; i < len(p); i += 3 {
		name, err := m.Strings(p[i])
		if err != nil {
			return nil, err
		}
		ft, err := m.Types(p[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		attrs, err := m.OptAttrs(p[i+2])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if _, err := rt.AddField(name, ft, attrs); err != nil {
			return nil, shapeErr("%v", err)
		}
	}
	return rt, nil
}
