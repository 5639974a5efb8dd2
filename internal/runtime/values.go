package runtime

import (
	"strconv"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

type valueBuilder func(e *Engine, p []int) (val.Value, error)

var valueBuilders = map[plan.Tag]valueBuilder{
	plan.Bool:    buildBool,
	plan.Int:     buildInt,
	plan.Count:   buildCount,
	plan.Double:  buildDouble,
	plan.String:  buildString,
	plan.Pattern: buildPattern,
	plan.Addr:    buildAddr,
	plan.SubNet:  buildSubNet,
	plan.Enum:    buildEnum,
	plan.List:    buildList,
	plan.Vector:  buildVector,
	plan.Record:  buildRecord,
	plan.Table:   buildTable,
	plan.File:    buildFile,
	plan.Func:    buildFunc,
}

func flag(what string, slot int) (bool, error) {
	switch slot {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, shapeErr("%s flag is %d, want 0 or 1", what, slot)
}

func buildBool(_ *Engine, p []int) (val.Value, error) {
	if err := wantLen("bool", p, 1); err != nil {
		return nil, err
	}
	b, err := flag("bool", p[0])
	if err != nil {
		return nil, err
	}
	return &val.BoolVal{V: b}, nil
}

func buildInt(_ *Engine, p []int) (val.Value, error) {
	if err := wantLen("int", p, 1); err != nil {
		return nil, err
	}
	return &val.IntVal{V: int64(p[0])}, nil
}

func buildCount(_ *Engine, p []int) (val.Value, error) {
	if err := wantLen("count", p, 1); err != nil {
		return nil, err
	}
	return &val.CountVal{V: uint64(p[0])}, nil
}

func buildDouble(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("double", p, 2); err != nil {
		return nil, err
	}
	text, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, shapeErr("double %q: %v", text, err)
	}
	tag := val.TypeTag(p[1])
	switch tag {
	case val.TagDouble, val.TagTime, val.TagInterval:
	default:
		return nil, shapeErr("double carries type tag %s", tag)
	}
	return &val.DoubleVal{V: f, Tag: tag}, nil
}

func buildString(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("string", p, 1); err != nil {
		return nil, err
	}
	s, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	return val.NewStringVal(s), nil
}

func buildPattern(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("pattern", p, 2); err != nil {
		return nil, err
	}
	text, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	ci, err := flag("case-insensitive", p[1])
	if err != nil {
		return nil, err
	}
	pv, err := val.NewPatternVal(text, ci)
	if err != nil {
		return nil, shapeErr("%v", err)
	}
	return pv, nil
}

func buildAddr(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("addr", p, 1); err != nil {
		return nil, err
	}
	s, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	a, err := val.NewAddrVal(s)
	if err != nil {
		return nil, shapeErr("%v", err)
	}
	return a, nil
}

func buildSubNet(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("subnet", p, 1); err != nil {
		return nil, err
	}
	s, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	sn, err := val.NewSubNetVal(s)
	if err != nil {
		return nil, shapeErr("%v", err)
	}
	return sn, nil
}

func buildEnum(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("enum", p, 2); err != nil {
		return nil, err
	}
	et, err := typeAt[*val.EnumType](e.mgr, p[0])
	if err != nil {
		return nil, err
	}
	if _, ok := et.NameOf(p[1]); !ok {
		return nil, shapeErr("enum %s has no ordinal %d", et.Name, p[1])
	}
	return &val.EnumVal{EnumType: et, Ordinal: p[1]}, nil
}

func buildFile(e *Engine, p []int) (val.Value, error) {
	if err := wantLen("file", p, 2); err != nil {
		return nil, err
	}
	name, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	ft, err := typeAt[*val.FileType](e.mgr, p[1])
	if err != nil {
		return nil, err
	}
	return &val.FileVal{FileType: ft, Name: name}, nil
}

func (e *Engine) constVals(cvs []int, allowUnset bool) ([]val.Value, error) {
	out := make([]val.Value, len(cvs))
	for i, cv := range cvs {
		if cv == plan.None && allowUnset {
			continue
		}
		v, err := e.mgr.ConstVal(cv)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func buildList(e *Engine, p []int) (val.Value, error) {
	elems, err := e.constVals(p, false)
	if err != nil {
		return nil, err
	}
	return &val.ListVal{Vals: elems}, nil
}

func buildVector(e *Engine, p []int) (val.Value, error) {
	if len(p) < 1 {
		return nil, shapeErr("empty vector payload")
	}
	vt, err := typeAt[*val.VectorType](e.mgr, p[0])
	if err != nil {
		return nil, err
	}
	elems, err := e.constVals(p[1:], false)
	if err != nil {
		return nil, err
	}
	return &val.VectorVal{VectorType: vt, Elems: elems}, nil
}

func buildRecord(e *Engine, p []int) (val.Value, error) {
	if len(p) < 1 {
		return nil, shapeErr("empty record payload")
	}
	rt, err := typeAt[*val.RecordType](e.mgr, p[0])
	if err != nil {
		return nil, err
	}
	if len(p)-1 != len(rt.Fields) {
		return nil, shapeErr("record %s payload has %d fields, type has %d", rt, len(p)-1, len(rt.Fields))
	}
	fields, err := e.constVals(p[1:], true)
	if err != nil {
		return nil, err
	}
	return &val.RecordVal{RecordType: rt, Fields: fields}, nil
}

func buildTable(e *Engine, p []int) (val.Value, error) {
	if len(p) < 2 {
		return nil, shapeErr("table payload has %d slots, want at least 2", len(p))
	}
	tt, err := typeAt[*val.TableType](e.mgr, p[0])
	if err != nil {
		return nil, err
	}
	attrs, err := e.mgr.OptAttrs(p[1])
	if err != nil {
		return nil, err
	}
	tv := &val.TableVal{TableType: tt, Attrs: attrs}
	elems := p[2:]

	if tt.IsSet() {
		for _, cv := range elems {
			k, err := e.mgr.ConstVal(cv)
			if err != nil {
				return nil, err
			}
			tv.Entries = append(tv.Entries, val.TableEntry{Key: k})
		}
		return tv, nil
	}

	if len(elems)%2 != 0 {
		return nil, shapeErr("table has an odd number (%d) of key/value slots", len(elems))
	}
	for i := 0; i < len(elems); i += 2 {
		k, err := e.mgr.ConstVal(elems[i])
		if err != nil {
			return nil, err
		}
		v, err := e.mgr.ConstVal(elems[i+1])
		if err != nil {
			return nil, err
		}
		tv.Entries = append(tv.Entries, val.TableEntry{Key: k, Value: v})
	}
	return tv, nil
}

// buildFunc binds a function value to its registered entry point. A
// missing entry point leaves the body unset.
func buildFunc(e *Engine, p []int) (val.Value, error) {
	if len(p) < 3 {
		return nil, shapeErr("function payload has %d slots, want at least 3", len(p))
	}
	name, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	ft, err := typeAt[*val.FuncType](e.mgr, p[1])
	if err != nil {
		return nil, err
	}
	hash, err := e.mgr.Hashes(p[2])
	if err != nil {
		return nil, err
	}
	captures, err := e.constVals(p[3:], false)
	if err != nil {
		return nil, err
	}
	if len(captures) == 0 {
		captures = nil
	}
	return &val.FuncVal{Name: name, FuncType: ft, Body: e.reg.Funcs[name], Hash: hash, Captures: captures}, nil
}
