// This file contains the logic for converting literal cty values from
// manifest expressions into val.Value objects of a declared type.

package hcl

import (
	"fmt"
	"math/big"

	"github.com/vk/bootgraph/internal/val"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ctyToValue converts v to a value of type t. A null converts to nil,
// which callers treat as an unset slot.
func ctyToValue(v cty.Value, t val.Type) (val.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known at load time")
	}

	switch tt := t.(type) {
	case *val.BaseType:
		return ctyToBase(v, tt.Tag())

	case *val.EnumType:
		var name string
		if err := decode(v, cty.String, &name); err != nil {
			return nil, fmt.Errorf("enum %s: %w", tt.Name, err)
		}
		o, ok := tt.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("enum %s has no name %q", tt.Name, name)
		}
		return &val.EnumVal{EnumType: tt, Ordinal: o}, nil

	case *val.FileType:
		var name string
		if err := decode(v, cty.String, &name); err != nil {
			return nil, fmt.Errorf("file: %w", err)
		}
		return &val.FileVal{FileType: tt, Name: name}, nil

	case *val.VectorType:
		elems, err := sequence(v)
		if err != nil {
			return nil, err
		}
		out := &val.VectorVal{VectorType: tt, Elems: make([]val.Value, 0, len(elems))}
		for i, e := range elems {
			ev, err := required(e, tt.Yield)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Elems = append(out.Elems, ev)
		}
		return out, nil

	case *val.TypeList:
		elems, err := sequence(v)
		if err != nil {
			return nil, err
		}
		if len(elems) != len(tt.Types) {
			return nil, fmt.Errorf("list %s needs %d elements, got %d", tt, len(tt.Types), len(elems))
		}
		out := &val.ListVal{Vals: make([]val.Value, 0, len(elems))}
		for i, e := range elems {
			ev, err := required(e, tt.Types[i])
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Vals = append(out.Vals, ev)
		}
		return out, nil

	case *val.RecordType:
		return ctyToRecord(v, tt)

	case *val.TableType:
		return ctyToTable(v, tt)
	}
	return nil, fmt.Errorf("values of type %s cannot be written in a manifest", t)
}

func required(v cty.Value, t val.Type) (val.Value, error) {
	out, err := ctyToValue(v, t)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("value of type %s must not be null", t)
	}
	return out, nil
}

// decode converts v to ty and binds it to the Go value at out.
func decode(v cty.Value, ty cty.Type, out any) error {
	cv, err := convert.Convert(v, ty)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(cv, out)
}

func ctyToBase(v cty.Value, tag val.TypeTag) (val.Value, error) {
	switch tag {
	case val.TagBool:
		var b bool
		if err := decode(v, cty.Bool, &b); err != nil {
			return nil, err
		}
		return &val.BoolVal{V: b}, nil

	case val.TagInt:
		var i int64
		if err := decode(v, cty.Number, &i); err != nil {
			return nil, err
		}
		return &val.IntVal{V: i}, nil

	case val.TagCount:
		var n uint64
		if err := decode(v, cty.Number, &n); err != nil {
			return nil, err
		}
		return &val.CountVal{V: n}, nil

	case val.TagDouble, val.TagTime, val.TagInterval:
		var f float64
		if err := decode(v, cty.Number, &f); err != nil {
			return nil, err
		}
		return &val.DoubleVal{V: f, Tag: tag}, nil

	case val.TagString:
		var s string
		if err := decode(v, cty.String, &s); err != nil {
			return nil, err
		}
		return val.NewStringVal(s), nil

	case val.TagPattern:
		return ctyToPattern(v)

	case val.TagAddr:
		var s string
		if err := decode(v, cty.String, &s); err != nil {
			return nil, err
		}
		return val.NewAddrVal(s)

	case val.TagSubNet:
		var s string
		if err := decode(v, cty.String, &s); err != nil {
			return nil, err
		}
		return val.NewSubNetVal(s)

	case val.TagAny:
		return inferValue(v)
	}
	return nil, fmt.Errorf("values of type %s cannot be written in a manifest", tag)
}

// ctyToPattern accepts either a bare string or an object of the form
// { pattern = "...", case_insensitive = true }.
func ctyToPattern(v cty.Value) (val.Value, error) {
	if v.Type().IsObjectType() {
		var p struct {
			Pattern         string `cty:"pattern"`
			CaseInsensitive *bool  `cty:"case_insensitive"`
		}
		ty := cty.ObjectWithOptionalAttrs(
			map[string]cty.Type{"pattern": cty.String, "case_insensitive": cty.Bool},
			[]string{"case_insensitive"},
		)
		if err := decode(v, ty, &p); err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		return val.NewPatternVal(p.Pattern, p.CaseInsensitive != nil && *p.CaseInsensitive)
	}
	var s string
	if err := decode(v, cty.String, &s); err != nil {
		return nil, err
	}
	return val.NewPatternVal(s, false)
}

// inferValue picks a val type for a value declared as any.
func inferValue(v cty.Value) (val.Value, error) {
	switch v.Type() {
	case cty.String:
		return val.NewStringVal(v.AsString()), nil
	case cty.Bool:
		return &val.BoolVal{V: v.True()}, nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return &val.IntVal{V: i}, nil
			}
		}
		f, _ := bf.Float64()
		return &val.DoubleVal{V: f, Tag: val.TagDouble}, nil
	}
	return nil, fmt.Errorf("cannot infer a type for %s value", v.Type().FriendlyName())
}

func ctyToRecord(v cty.Value, rt *val.RecordType) (val.Value, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("record %s needs an object, got %s", rt, ty.FriendlyName())
	}
	out := &val.RecordVal{RecordType: rt, Fields: make([]val.Value, len(rt.Fields))}
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		name := k.AsString()
		idx := rt.FieldOffset(name)
		if idx < 0 {
			return nil, fmt.Errorf("record %s has no field %q", rt, name)
		}
		fv, err := ctyToValue(ev, rt.Fields[idx].Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rt, name, err)
		}
		out.Fields[idx] = fv
	}
	return out, nil
}

// ctyToTable accepts three forms: a list of keys for sets, an object
// keyed by the index for single-index tables, or a list of
// { key = ..., value = ... } objects for any table.
func ctyToTable(v cty.Value, tt *val.TableType) (val.Value, error) {
	if tt.Indices == nil || len(tt.Indices.Types) == 0 {
		return nil, fmt.Errorf("table type without indices")
	}
	out := &val.TableVal{TableType: tt}
	ty := v.Type()

	if (ty.IsObjectType() || ty.IsMapType()) && !tt.IsSet() {
		if len(tt.Indices.Types) != 1 {
			return nil, fmt.Errorf("%s has several indices, use a list of key/value objects", tt)
		}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			key, err := required(k, tt.Indices.Types[0])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			value, err := required(ev, tt.Yield)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			out.Entries = append(out.Entries, val.TableEntry{Key: key, Value: value})
		}
		return out, nil
	}

	elems, err := sequence(v)
	if err != nil {
		return nil, err
	}
	for i, e := range elems {
		if tt.IsSet() {
			key, err := tableKey(e, tt.Indices)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Entries = append(out.Entries, val.TableEntry{Key: key})
			continue
		}
		et := e.Type()
		if !et.IsObjectType() || !et.HasAttribute("key") || !et.HasAttribute("value") {
			return nil, fmt.Errorf("element %d: table entries need key and value attributes", i)
		}
		key, err := tableKey(e.GetAttr("key"), tt.Indices)
		if err != nil {
			return nil, fmt.Errorf("element %d key: %w", i, err)
		}
		value, err := required(e.GetAttr("value"), tt.Yield)
		if err != nil {
			return nil, fmt.Errorf("element %d value: %w", i, err)
		}
		out.Entries = append(out.Entries, val.TableEntry{Key: key, Value: value})
	}
	return out, nil
}

// tableKey converts a key. Single-index keys are plain values,
// multi-index keys are lists.
func tableKey(v cty.Value, indices *val.TypeList) (val.Value, error) {
	if len(indices.Types) == 1 {
		return required(v, indices.Types[0])
	}
	return required(v, indices)
}

func sequence(v cty.Value) ([]cty.Value, error) {
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("expected a list, got %s", ty.FriendlyName())
	}
	out := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, e := it.Element()
		out = append(out, e)
	}
	return out, nil
}
