package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/vk/bootgraph/internal/plan"
)

// The aux registrations hold descriptors until Image time, when offsets
// and table indices are final.

type globalReg struct {
	name     string
	typ      descriptor.Descriptor
	attrs    descriptor.Descriptor
	value    descriptor.Descriptor
	exported bool
}

type bodyReg struct {
	funcName string
	typ      descriptor.Descriptor
	priority int
	hash     uint64
	events   []string
}

type lambdaReg struct {
	name        string
	typ         descriptor.Descriptor
	hash        uint64
	hasCaptures bool
}

type fieldMappingReg struct {
	record    descriptor.Descriptor
	fieldName string
	fieldType descriptor.Descriptor
	attrs     descriptor.Descriptor
}

type enumMappingReg struct {
	enum descriptor.Descriptor
	name string
}

// AddGlobal schedules a script global for installation after all pools
// are built.
func (c *Compiler) AddGlobal(g *config.Global) error {
	typ, err := c.RegisterType(g.Type)
	if err != nil {
		return err
	}
	reg := globalReg{name: g.Name, typ: typ, exported: g.Exported}
	if g.Attrs != nil {
		if reg.attrs, err = c.RegisterAttributes(g.Attrs); err != nil {
			return err
		}
	}
	if g.Value != nil {
		if reg.value, err = c.RegisterConstant(g.Value); err != nil {
			return err
		}
	}
	c.globals = append(c.globals, reg)
	return nil
}

// AddBody schedules a compiled body for binding. Its hash covers the
// function name, signature and source.
func (c *Compiler) AddBody(b *config.Body) error {
	typ, err := c.RegisterType(b.Type)
	if err != nil {
		return err
	}
	c.bodies = append(c.bodies, bodyReg{
		funcName: b.FuncName,
		typ:      typ,
		priority: b.Priority,
		hash:     ContentHash(b.FuncName, b.Type.String(), b.Source),
		events:   append([]string(nil), b.Events...),
	})
	return nil
}

// AddLambda schedules an anonymous function body for installation.
func (c *Compiler) AddLambda(l *config.Lambda) error {
	typ, err := c.RegisterType(l.Type)
	if err != nil {
		return err
	}
	c.lambdas = append(c.lambdas, lambdaReg{
		name:        l.Name,
		typ:         typ,
		hash:        ContentHash(l.Name, l.Type.String(), l.Source),
		hasCaptures: l.HasCaptures,
	})
	return nil
}

// AddBiF records a built-in function the runtime must be able to find.
func (c *Compiler) AddBiF(name string) {
	c.bifs = append(c.bifs, name)
}

func (c *Compiler) AddFieldMapping(fm *config.FieldMapping) error {
	rec, err := c.RegisterType(fm.Record)
	if err != nil {
		return err
	}
	ft, err := c.RegisterType(fm.FieldType)
	if err != nil {
		return err
	}
	reg := fieldMappingReg{record: rec, fieldName: fm.FieldName, fieldType: ft}
	if fm.Attrs != nil {
		if reg.attrs, err = c.RegisterAttributes(fm.Attrs); err != nil {
			return err
		}
	}
	c.fieldMappings = append(c.fieldMappings, reg)
	return nil
}

func (c *Compiler) AddEnumMapping(em *config.EnumMapping) error {
	et, err := c.RegisterType(em.Enum)
	if err != nil {
		return err
	}
	c.enumMappings = append(c.enumMappings, enumMappingReg{enum: et, name: em.Name})
	return nil
}

func offsetOrNone(d descriptor.Descriptor) int {
	if d == nil {
		return plan.None
	}
	return d.Offset()
}

func (c *Compiler) encodeAux(img *plan.Image) {
	for _, g := range c.globals {
		img.Globals = append(img.Globals, plan.Global{
			Name:     g.name,
			Type:     g.typ.Offset(),
			Attrs:    offsetOrNone(g.attrs),
			Val:      c.tables.ConstVal(g.value),
			Exported: g.exported,
		})
	}
	for _, b := range c.bodies {
		img.Bodies = append(img.Bodies, plan.Body{
			FuncName: b.funcName,
			Type:     b.typ.Offset(),
			Priority: b.priority,
			Hash:     c.tables.Hash(b.hash),
			Events:   b.events,
		})
	}
	for _, l := range c.lambdas {
		img.Lambdas = append(img.Lambdas, plan.Lambda{
			Name:        l.name,
			Type:        l.typ.Offset(),
			Hash:        c.tables.Hash(l.hash),
			HasCaptures: l.hasCaptures,
		})
	}
	img.BiFs = append(img.BiFs, c.bifs...)
	for _, fm := range c.fieldMappings {
		img.FieldMappings = append(img.FieldMappings, plan.FieldMapping{
			Record:    fm.record.Offset(),
			FieldName: fm.fieldName,
			FieldType: fm.fieldType.Offset(),
			Attrs:     offsetOrNone(fm.attrs),
		})
	}
	for _, em := range c.enumMappings {
		img.EnumMappings = append(img.EnumMappings, plan.EnumMapping{Enum: em.enum.Offset(), Name: em.name})
	}
}

// Standalones describes the named globals generated code declares next to
// the pools: one per script global and one per built-in function lookup.
// Offsets must be final, so call it once registration is done.
func (c *Compiler) Standalones() []*descriptor.Standalone {
	out := make([]*descriptor.Standalone, 0, len(c.globals)+len(c.bifs))
	for _, g := range c.globals {
		init := fmt.Sprintf("Global(%q, %s, %s, %s, %t)",
			g.name, g.typ.Name(), nameOrNil(g.attrs), nameOrNil(g.value), g.exported)
		out = append(out, descriptor.NewStandalone(identifier("global", g.name), "*val.ID", init, nonNil(g.typ, g.attrs, g.value)...))
	}
	for _, name := range c.bifs {
		out = append(out, descriptor.NewStandalone(identifier("bif", name), "val.NativeFunc", fmt.Sprintf("LookupBiF(%q)", name)))
	}
	return out
}

func nameOrNil(d descriptor.Descriptor) string {
	if d == nil {
		return "nil"
	}
	return d.Name()
}

func nonNil(ds ...descriptor.Descriptor) []descriptor.Descriptor {
	out := ds[:0]
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// identifier turns a script name such as "Log::enabled" into a Go
// identifier with the given prefix.
func identifier(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("__")
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
