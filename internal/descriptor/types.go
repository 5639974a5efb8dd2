package descriptor

import (
	"strconv"
	"strings"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// typeInfo is embedded by every type descriptor.
type typeInfo struct {
	Info
	t val.Type
}

func (ti *typeInfo) Kind() plan.Tag { return plan.Type }

// Type is the compile-time type being described.
func (ti *typeInfo) Type() val.Type { return ti.t }

func nameOrNil(d Descriptor) string {
	if d == nil {
		return "nil"
	}
	return d.Name()
}

type BaseType struct{ typeInfo }

func NewBaseType(t *val.BaseType) *BaseType {
	return &BaseType{typeInfo{Info: newInfo(), t: t}}
}

func (d *BaseType) Initializer() string { return "BaseType(val." + typeTagConst(d.t.Tag()) + ")" }
func (d *BaseType) Payload(tb *Tables) []int {
	return []int{int(d.t.Tag())}
}

type EnumType struct{ typeInfo }

func NewEnumType(t *val.EnumType) *EnumType {
	return &EnumType{typeInfo{Info: newInfo(), t: t}}
}

func (d *EnumType) Initializer() string {
	et := d.t.(*val.EnumType)
	var elems []string
	for _, n := range et.Names() {
		elems = append(elems, strconv.Quote(n.Name)+": "+strconv.Itoa(n.Ordinal))
	}
	return "EnumType(" + strconv.Quote(et.Name) + ", {" + strings.Join(elems, ", ") + "})"
}

func (d *EnumType) Payload(tb *Tables) []int {
	et := d.t.(*val.EnumType)
	p := []int{int(val.TagEnum), tb.String(et.Name)}
	for _, n := range et.Names() {
		p = append(p, tb.String(n.Name), n.Ordinal)
	}
	return p
}

type OpaqueType struct{ typeInfo }

func NewOpaqueType(t *val.OpaqueType) *OpaqueType {
	return &OpaqueType{typeInfo{Info: newInfo(), t: t}}
}

func (d *OpaqueType) Initializer() string {
	return "OpaqueType(" + strconv.Quote(d.t.(*val.OpaqueType).Name) + ")"
}
func (d *OpaqueType) Payload(tb *Tables) []int {
	return []int{int(val.TagOpaque), tb.String(d.t.(*val.OpaqueType).Name)}
}

// TypeType describes "type of T".
type TypeType struct {
	typeInfo
	inner Descriptor
}

func NewTypeType(t *val.TypeType, inner Descriptor) *TypeType {
	return &TypeType{typeInfo: typeInfo{Info: newInfo(inner), t: t}, inner: inner}
}

func (d *TypeType) Initializer() string      { return "TypeType(" + d.inner.Name() + ")" }
func (d *TypeType) Payload(tb *Tables) []int { return []int{int(val.TagType), d.inner.Offset()} }

type VectorType struct {
	typeInfo
	yield Descriptor
}

func NewVectorType(t *val.VectorType, yield Descriptor) *VectorType {
	return &VectorType{typeInfo: typeInfo{Info: newInfo(yield), t: t}, yield: yield}
}

func (d *VectorType) Initializer() string      { return "VectorType(" + d.yield.Name() + ")" }
func (d *VectorType) Payload(tb *Tables) []int { return []int{int(val.TagVector), d.yield.Offset()} }

type FileType struct {
	typeInfo
	yield Descriptor
}

func NewFileType(t *val.FileType, yield Descriptor) *FileType {
	return &FileType{typeInfo: typeInfo{Info: newInfo(yield), t: t}, yield: yield}
}

func (d *FileType) Initializer() string      { return "FileType(" + d.yield.Name() + ")" }
func (d *FileType) Payload(tb *Tables) []int { return []int{int(val.TagFile), d.yield.Offset()} }

// TypeList cites its member types; the members are pooled on their own.
type TypeList struct {
	typeInfo
	members []Descriptor
}

func NewTypeList(t *val.TypeList, members []Descriptor) *TypeList {
	return &TypeList{typeInfo: typeInfo{Info: newInfo(members...), t: t}, members: members}
}

func (d *TypeList) Initializer() string {
	names := make([]string, len(d.members))
	for i, m := range d.members {
		names[i] = m.Name()
	}
	return "TypeList({" + strings.Join(names, ", ") + "})"
}

func (d *TypeList) Payload(tb *Tables) []int {
	p := []int{int(val.TagList)}
	for _, m := range d.members {
		p = append(p, m.Offset())
	}
	return p
}

// TableType's yield is nil for sets.
type TableType struct {
	typeInfo
	indices Descriptor
	yield   Descriptor
}

func NewTableType(t *val.TableType, indices, yield Descriptor) *TableType {
	return &TableType{
		typeInfo: typeInfo{Info: newInfo(indices, yield), t: t},
		indices:  indices,
		yield:    yield,
	}
}

func (d *TableType) Initializer() string {
	return "TableType(" + d.indices.Name() + ", " + nameOrNil(d.yield) + ")"
}
func (d *TableType) Payload(tb *Tables) []int {
	return []int{int(val.TagTable), d.indices.Offset(), offsetOf(d.yield)}
}

type FuncType struct {
	typeInfo
	params Descriptor
	yield  Descriptor
	flavor val.FuncFlavor
}

func NewFuncType(t *val.FuncType, params, yield Descriptor) *FuncType {
	return &FuncType{
		typeInfo: typeInfo{Info: newInfo(params, yield), t: t},
		params:   params,
		yield:    yield,
		flavor:   t.Flavor,
	}
}

var flavorConsts = map[val.FuncFlavor]string{
	val.FlavorFunction: "val.FlavorFunction",
	val.FlavorEvent:    "val.FlavorEvent",
	val.FlavorHook:     "val.FlavorHook",
}

func (d *FuncType) Initializer() string {
	return "FuncType(" + d.params.Name() + ", " + nameOrNil(d.yield) + ", " + flavorConsts[d.flavor] + ")"
}
func (d *FuncType) Payload(tb *Tables) []int {
	return []int{int(val.TagFunc), d.params.Offset(), offsetOf(d.yield), int(d.flavor)}
}

// RecordField is one field of a RecordType descriptor.
type RecordField struct {
	Name  string
	Type  Descriptor
	Attrs Descriptor
}

// RecordType is the one kind that may appear on a cycle. It is reserved
// before its fields are registered; the shell it pre-inits gives field
// types that refer back to it something to point at.
type RecordType struct {
	typeInfo
	fields []RecordField
}

func NewRecordType(t *val.RecordType) *RecordType {
	return &RecordType{typeInfo: typeInfo{Info: newInfo(), t: t}}
}

// AddField appends a field and records its dependencies.
func (d *RecordType) AddField(f RecordField) {
	d.fields = append(d.fields, f)
	d.addDeps(f.Type)
	if f.Attrs != nil {
		d.addDeps(f.Attrs)
	}
}

func (d *RecordType) Fields() []RecordField { return d.fields }

func (d *RecordType) HasPreInit() bool { return true }
func (d *RecordType) PreInit() string {
	return d.Name() + " = RecordShell(" + strconv.Quote(d.t.(*val.RecordType).Name) + ")"
}

func (d *RecordType) Initializer() string {
	fields := make([]string, len(d.fields))
	for i, f := range d.fields {
		fields[i] = strconv.Quote(f.Name) + ": {" + f.Type.Name() + ", " + nameOrNil(f.Attrs) + "}"
	}
	return "RecordType(" + strconv.Quote(d.t.(*val.RecordType).Name) + ", {" + strings.Join(fields, ", ") + "})"
}

func (d *RecordType) Payload(tb *Tables) []int {
	p := []int{int(val.TagRecord), tb.OptString(d.t.(*val.RecordType).Name)}
	for _, f := range d.fields {
		p = append(p, tb.String(f.Name), f.Type.Offset(), offsetOf(f.Attrs))
	}
	return p
}

var typeTagConsts = map[val.TypeTag]string{
	val.TagVoid:     "TagVoid",
	val.TagBool:     "TagBool",
	val.TagInt:      "TagInt",
	val.TagCount:    "TagCount",
	val.TagDouble:   "TagDouble",
	val.TagTime:     "TagTime",
	val.TagInterval: "TagInterval",
	val.TagString:   "TagString",
	val.TagPattern:  "TagPattern",
	val.TagAddr:     "TagAddr",
	val.TagSubNet:   "TagSubNet",
	val.TagAny:      "TagAny",
}

func typeTagConst(t val.TypeTag) string {
	if s, ok := typeTagConsts[t]; ok {
		return s
	}
	return "TypeTag(" + strconv.Itoa(int(t)) + ")"
}
