package compiler

import (
	"fmt"
	"strconv"

	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// RegisterConstant returns the descriptor for v. Atomic constants are
// shared by content; aggregates by identity.
func (c *Compiler) RegisterConstant(v val.Value) (descriptor.Descriptor, error) {
	if v == nil {
		return nil, fmt.Errorf("nil constant: %w", plan.ErrAssignment)
	}
	if d, ok := c.values[v]; ok {
		return d, nil
	}
	if key, d := c.primitive(v); d != nil {
		if prev, ok := c.prims[key]; ok {
			c.values[v] = prev
			return prev, nil
		}
		if _, err := c.register(d); err != nil {
			return nil, err
		}
		c.prims[key] = d
		c.values[v] = d
		return d, nil
	}

	if c.valuesBusy[v] {
		return nil, fmt.Errorf("%T constant contains itself: %w", v, plan.ErrAssignment)
	}
	c.valuesBusy[v] = true
	defer delete(c.valuesBusy, v)

	d, err := c.describeAggregate(v)
	if err != nil {
		return nil, err
	}
	if _, err := c.register(d); err != nil {
		return nil, err
	}
	c.values[v] = d
	return d, nil
}

// primitive returns a content key and a fresh descriptor for atomic
// values, or a nil descriptor for anything else.
func (c *Compiler) primitive(v val.Value) (string, descriptor.Descriptor) {
	switch vv := v.(type) {
	case *val.BoolVal:
		return "bool:" + strconv.FormatBool(vv.V), descriptor.NewBoolConst(vv.V)
	case *val.IntVal:
		return "int:" + strconv.FormatInt(vv.V, 10), descriptor.NewIntConst(vv.V)
	case *val.CountVal:
		return "count:" + strconv.FormatUint(vv.V, 10), descriptor.NewCountConst(vv.V)
	case *val.DoubleVal:
		tag := vv.Type().Tag()
		return "double:" + tag.String() + ":" + strconv.FormatFloat(vv.V, 'g', -1, 64),
			descriptor.NewDoubleConst(vv.V, int(tag))
	case *val.StringVal:
		return "str:" + vv.String(), descriptor.NewStringConst(vv.String())
	case *val.PatternVal:
		return "re:" + strconv.FormatBool(vv.CaseInsensitive) + ":" + vv.Text,
			descriptor.NewPatternConst(vv.Text, vv.CaseInsensitive)
	case *val.AddrVal:
		return "addr:" + vv.String(), descriptor.NewDescConst(plan.Addr, vv.String())
	case *val.SubNetVal:
		return "subnet:" + vv.String(), descriptor.NewDescConst(plan.SubNet, vv.String())
	}
	return "", nil
}

func (c *Compiler) constants(vs []val.Value, allowUnset bool) ([]descriptor.Descriptor, error) {
	out := make([]descriptor.Descriptor, len(vs))
	for i, e := range vs {
		if e == nil {
			if !allowUnset {
				return nil, fmt.Errorf("element %d is unset: %w", i, plan.ErrAssignment)
			}
			continue
		}
		d, err := c.RegisterConstant(e)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (c *Compiler) describeAggregate(v val.Value) (descriptor.Descriptor, error) {
	switch vv := v.(type) {
	case *val.EnumVal:
		et, err := c.RegisterType(vv.EnumType)
		if err != nil {
			return nil, err
		}
		return descriptor.NewEnumConst(et, vv.Ordinal), nil

	case *val.ListVal:
		elems, err := c.constants(vv.Vals, false)
		if err != nil {
			return nil, err
		}
		return descriptor.NewListConst(elems), nil

	case *val.VectorVal:
		vt, err := c.RegisterType(vv.VectorType)
		if err != nil {
			return nil, err
		}
		elems, err := c.constants(vv.Elems, false)
		if err != nil {
			return nil, err
		}
		return descriptor.NewVectorConst(vt, elems), nil

	case *val.RecordVal:
		rt, err := c.RegisterType(vv.RecordType)
		if err != nil {
			return nil, err
		}
		if len(vv.Fields) != len(vv.RecordType.Fields) {
			return nil, fmt.Errorf("record %s value has %d fields, type has %d: %w",
				vv.RecordType, len(vv.Fields), len(vv.RecordType.Fields), plan.ErrAssignment)
		}
		fields, err := c.constants(vv.Fields, true)
		if err != nil {
			return nil, err
		}
		return descriptor.NewRecordConst(rt, fields), nil

	case *val.TableVal:
		return c.describeTable(vv)

	case *val.FileVal:
		ft, err := c.RegisterType(vv.FileType)
		if err != nil {
			return nil, err
		}
		return descriptor.NewFileConst(ft, vv.Name), nil

	case *val.FuncVal:
		ft, err := c.RegisterType(vv.FuncType)
		if err != nil {
			return nil, err
		}
		captures, err := c.constants(vv.Captures, false)
		if err != nil {
			return nil, err
		}
		h := vv.Hash
		if h == 0 {
			h = ContentHash(vv.Name, vv.FuncType.String())
		}
		return descriptor.NewFuncConst(vv.Name, ft, h, captures), nil
	}
	return nil, fmt.Errorf("unsupported constant %T: %w", v, plan.ErrAssignment)
}

func (c *Compiler) describeTable(tv *val.TableVal) (descriptor.Descriptor, error) {
	tt, err := c.RegisterType(tv.TableType)
	if err != nil {
		return nil, err
	}
	var attrs descriptor.Descriptor
	if tv.Attrs != nil {
		if attrs, err = c.RegisterAttributes(tv.Attrs); err != nil {
			return nil, err
		}
	}
	isSet := tv.TableType.IsSet()
	entries := make([]descriptor.TableEntry, 0, len(tv.Entries))
	for i, e := range tv.Entries {
		k, err := c.RegisterConstant(e.Key)
		if err != nil {
			return nil, fmt.Errorf("table entry %d key: %w", i, err)
		}
		entry := descriptor.TableEntry{Key: k}
		if !isSet {
			if e.Value == nil {
				return nil, fmt.Errorf("table entry %d has no value: %w", i, plan.ErrAssignment)
			}
			if entry.Value, err = c.RegisterConstant(e.Value); err != nil {
				return nil, fmt.Errorf("table entry %d value: %w", i, err)
			}
		}
		entries = append(entries, entry)
	}
	return descriptor.NewTableConst(tt, attrs, isSet, entries), nil
}

// RegisterAttr returns the descriptor for a single attribute.
func (c *Compiler) RegisterAttr(a *val.Attr) (descriptor.Descriptor, error) {
	if d, ok := c.attrs[a]; ok {
		return d, nil
	}
	var expr descriptor.AttrExpr
	switch e := a.Expr.(type) {
	case nil:
		expr.Kind = plan.ExprNone
	case *val.ConstExpr:
		d, err := c.RegisterConstant(e.Val)
		if err != nil {
			return nil, err
		}
		expr = descriptor.AttrExpr{Kind: plan.ExprConst, Const: d}
	case *val.NameExpr:
		expr = descriptor.AttrExpr{Kind: plan.ExprName, Global: e.ID.Name}
	case *val.RecordCoerceExpr:
		d, err := c.RegisterType(e.Target)
		if err != nil {
			return nil, err
		}
		expr = descriptor.AttrExpr{Kind: plan.ExprRecordCoerce, Type: d}
	case *val.CallExpr:
		d, err := c.RegisterCallExpr(e.Func.Name)
		if err != nil {
			return nil, err
		}
		expr = descriptor.AttrExpr{Kind: plan.ExprCall, Call: d}
	default:
		return nil, fmt.Errorf("attribute %s: unsupported expression %T: %w", a.Tag, a.Expr, plan.ErrAssignment)
	}

	d, err := c.register(descriptor.NewAttr(a.Tag, expr))
	if err != nil {
		return nil, err
	}
	c.attrs[a] = d
	return d, nil
}

// RegisterAttributes returns the descriptor for an attribute list. Each
// member is registered in the attr pool and cited by offset.
func (c *Compiler) RegisterAttributes(as *val.Attributes) (descriptor.Descriptor, error) {
	if d, ok := c.attrLists[as]; ok {
		return d, nil
	}
	members := make([]descriptor.Descriptor, 0, len(as.Attrs))
	for _, a := range as.Attrs {
		d, err := c.RegisterAttr(a)
		if err != nil {
			return nil, err
		}
		members = append(members, d)
	}
	d, err := c.register(descriptor.NewAttrs(members))
	if err != nil {
		return nil, err
	}
	c.attrLists[as] = d
	return d, nil
}

// RegisterCallExpr returns the call wrapper for a compiled init
// expression. Wrappers have no dependencies and land in cohort 0.
func (c *Compiler) RegisterCallExpr(wrapper string) (descriptor.Descriptor, error) {
	if d, ok := c.callExprs[wrapper]; ok {
		return d, nil
	}
	d, err := c.register(descriptor.NewCallExpr(wrapper))
	if err != nil {
		return nil, err
	}
	c.callExprs[wrapper] = d
	return d, nil
}
