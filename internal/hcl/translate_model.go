// This file contains the logic for translating decoded manifest blocks
// into the format-agnostic config model.

package hcl

import (
	"context"
	"fmt"

	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/schema"
	"github.com/vk/bootgraph/internal/val"
)

// translator holds the named types of every file being loaded, so that
// declarations may refer to each other regardless of file or order.
type translator struct {
	ctx     context.Context
	model   *config.Model
	named   map[string]val.Type
	records map[string]*val.RecordType
	enums   map[string]*val.EnumType
	inits   map[string]bool
}

func newTranslator(ctx context.Context) *translator {
	return &translator{
		ctx:     ctx,
		model:   &config.Model{},
		named:   make(map[string]val.Type),
		records: make(map[string]*val.RecordType),
		enums:   make(map[string]*val.EnumType),
		inits:   make(map[string]bool),
	}
}

func (t *translator) declare(name string, nt val.Type) error {
	if _, ok := baseTypeNames[name]; ok {
		return fmt.Errorf("type %q shadows a base type", name)
	}
	if _, ok := t.named[name]; ok {
		return fmt.Errorf("type %q declared twice", name)
	}
	t.named[name] = nt
	t.model.Types = append(t.model.Types, &config.NamedType{Name: name, Type: nt})
	return nil
}

// translate runs three passes over the type declarations before the rest:
// names first, then record field types, then field attributes, whose
// values may be of any declared type.
func (t *translator) translate(files []*schema.File) (*config.Model, error) {
	for _, f := range files {
		for _, e := range f.Enums {
			et := val.NewEnumType(e.Name)
			t.enums[e.Name] = et
			if err := t.declare(e.Name, et); err != nil {
				return nil, err
			}
		}
		for _, o := range f.Opaques {
			if err := t.declare(o.Name, &val.OpaqueType{Name: o.Name}); err != nil {
				return nil, err
			}
		}
		for _, r := range f.Records {
			rt := val.NewRecordType(r.Name)
			t.records[r.Name] = rt
			if err := t.declare(r.Name, rt); err != nil {
				return nil, err
			}
		}
	}

	for _, f := range files {
		for _, e := range f.Enums {
			for name, ordinal := range e.Values {
				if err := t.enums[e.Name].AddName(name, ordinal); err != nil {
					return nil, err
				}
			}
		}
		for _, r := range f.Records {
			rt := t.records[r.Name]
			for _, fs := range r.Fields {
				ft, err := t.typeExpr(fs.Type)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s: %w", r.Name, fs.Name, err)
				}
				if _, err := rt.AddField(fs.Name, ft, nil); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, f := range files {
		for _, r := range f.Records {
			rt := t.records[r.Name]
			for i, fs := range r.Fields {
				attrs, err := t.attributes(fs.Attrs, rt.Fields[i].Type)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s: %w", r.Name, fs.Name, err)
				}
				rt.Fields[i].Attrs = attrs
			}
		}
	}

	for _, f := range files {
		if err := t.translateFile(f); err != nil {
			return nil, err
		}
	}

	m := t.model
	ctxlog.FromContext(t.ctx).Debug("Manifest translated.",
		"types", len(m.Types), "constants", len(m.Constants), "globals", len(m.Globals),
		"bodies", len(m.Bodies), "lambdas", len(m.Lambdas), "bifs", len(m.BiFs))
	return m, nil
}

func (t *translator) translateFile(f *schema.File) error {
	m := t.model

	for _, c := range f.Constants {
		ct, err := t.typeExpr(c.Type)
		if err != nil {
			return fmt.Errorf("constant %s: %w", c.Name, err)
		}
		cv, err := literal(c.Value)
		if err != nil {
			return fmt.Errorf("constant %s: %w", c.Name, err)
		}
		v, err := required(cv, ct)
		if err != nil {
			return fmt.Errorf("constant %s: %w", c.Name, err)
		}
		m.Constants = append(m.Constants, &config.Constant{Name: c.Name, Value: v})
	}

	for _, ie := range f.InitExprs {
		t.initExpr(ie.Name)
	}

	for _, g := range f.Globals {
		gl, err := t.global(g)
		if err != nil {
			return fmt.Errorf("global %s: %w", g.Name, err)
		}
		m.Globals = append(m.Globals, gl)
	}

	for _, b := range f.Bodies {
		ft, err := t.signature(b.Flavor, b.Params, b.Yield)
		if err != nil {
			return fmt.Errorf("body %s: %w", b.Name, err)
		}
		m.Bodies = append(m.Bodies, &config.Body{
			FuncName: b.Name,
			Type:     ft,
			Priority: b.Priority,
			Events:   b.Events,
			Source:   b.Source,
		})
	}

	for _, l := range f.Lambdas {
		ft, err := t.signature("", l.Params, l.Yield)
		if err != nil {
			return fmt.Errorf("lambda %s: %w", l.Name, err)
		}
		m.Lambdas = append(m.Lambdas, &config.Lambda{
			Name:        l.Name,
			Type:        ft,
			Source:      l.Source,
			HasCaptures: l.Captures,
		})
	}

	for _, b := range f.BiFs {
		m.BiFs = append(m.BiFs, b.Name)
	}

	for _, fm := range f.FieldMappings {
		rt, ok := t.records[fm.Record]
		if !ok {
			return fmt.Errorf("field mapping %s.%s: unknown record %q", fm.Record, fm.Field, fm.Record)
		}
		ft, err := t.typeExpr(fm.Type)
		if err != nil {
			return fmt.Errorf("field mapping %s.%s: %w", fm.Record, fm.Field, err)
		}
		attrs, err := t.attributes(fm.Attrs, ft)
		if err != nil {
			return fmt.Errorf("field mapping %s.%s: %w", fm.Record, fm.Field, err)
		}
		m.FieldMappings = append(m.FieldMappings, &config.FieldMapping{
			Record: rt, FieldName: fm.Field, FieldType: ft, Attrs: attrs,
		})
	}

	for _, em := range f.EnumMappings {
		et, ok := t.enums[em.Enum]
		if !ok {
			return fmt.Errorf("enum mapping %s::%s: unknown enum %q", em.Enum, em.Name, em.Enum)
		}
		m.EnumMappings = append(m.EnumMappings, &config.EnumMapping{Enum: et, Name: em.Name})
	}
	return nil
}

func (t *translator) global(g *schema.Global) (*config.Global, error) {
	gt, err := t.typeExpr(g.Type)
	if err != nil {
		return nil, err
	}
	out := &config.Global{Name: g.Name, Type: gt, Exported: g.Exported}
	if isExprDefined(t.ctx, g.Value, "value") {
		cv, err := literal(g.Value)
		if err != nil {
			return nil, err
		}
		if out.Value, err = ctyToValue(cv, gt); err != nil {
			return nil, err
		}
	}
	if out.Attrs, err = t.attributes(g.Attrs, gt); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *translator) initExpr(name string) {
	if t.inits[name] {
		return
	}
	t.inits[name] = true
	t.model.InitExprs = append(t.model.InitExprs, name)
}

// attributes translates attr blocks. Constant values are converted to
// owner, the type of the field or global carrying them.
func (t *translator) attributes(specs []*schema.Attr, owner val.Type) (*val.Attributes, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := &val.Attributes{}
	for _, s := range specs {
		a, err := t.attribute(s, owner)
		if err != nil {
			return nil, fmt.Errorf("attr %q: %w", s.Tag, err)
		}
		out.Attrs = append(out.Attrs, a)
	}
	return out, nil
}

func (t *translator) attribute(s *schema.Attr, owner val.Type) (*val.Attr, error) {
	tag, ok := val.ParseAttrTag(s.Tag)
	if !ok {
		return nil, fmt.Errorf("unknown attribute")
	}
	hasValue := isExprDefined(t.ctx, s.Value, "value")
	hasCoerce := isExprDefined(t.ctx, s.Coerce, "coerce")
	set := 0
	for _, b := range []bool{hasValue, hasCoerce, s.Init != "", s.Ref != ""} {
		if b {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("only one of value, coerce, init and ref may be set")
	}

	a := &val.Attr{Tag: tag}
	switch {
	case hasValue:
		cv, err := literal(s.Value)
		if err != nil {
			return nil, err
		}
		v, err := required(cv, owner)
		if err != nil {
			return nil, err
		}
		a.Expr = &val.ConstExpr{Val: v}
	case hasCoerce:
		ct, err := t.typeExpr(s.Coerce)
		if err != nil {
			return nil, err
		}
		rt, ok := ct.(*val.RecordType)
		if !ok {
			return nil, fmt.Errorf("coerce target %s is not a record type", ct)
		}
		a.Expr = &val.RecordCoerceExpr{Target: rt}
	case s.Init != "":
		t.initExpr(s.Init)
		a.Expr = &val.CallExpr{Func: &val.FuncVal{
			Name:     s.Init,
			FuncType: &val.FuncType{Params: val.NewRecordType(""), Yield: owner},
		}}
	case s.Ref != "":
		a.Expr = &val.NameExpr{ID: &val.ID{Name: s.Ref}}
	}
	return a, nil
}
