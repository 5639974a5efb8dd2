package val

import (
	"fmt"
	"sort"
	"strings"
)

// TypeTag identifies the shape of a Type.
type TypeTag int

const (
	TagVoid TypeTag = iota
	TagBool
	TagInt
	TagCount
	TagDouble
	TagTime
	TagInterval
	TagString
	TagPattern
	TagAddr
	TagSubNet
	TagAny
	TagEnum
	TagOpaque
	TagType
	TagVector
	TagList
	TagTable
	TagFunc
	TagRecord
	TagFile
)

var typeTagNames = map[TypeTag]string{
	TagVoid:     "void",
	TagBool:     "bool",
	TagInt:      "int",
	TagCount:    "count",
	TagDouble:   "double",
	TagTime:     "time",
	TagInterval: "interval",
	TagString:   "string",
	TagPattern:  "pattern",
	TagAddr:     "addr",
	TagSubNet:   "subnet",
	TagAny:      "any",
	TagEnum:     "enum",
	TagOpaque:   "opaque",
	TagType:     "type",
	TagVector:   "vector",
	TagList:     "list",
	TagTable:    "table",
	TagFunc:     "func",
	TagRecord:   "record",
	TagFile:     "file",
}

func (t TypeTag) String() string {
	if s, ok := typeTagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TypeTag(%d)", int(t))
}

// IsBase reports whether the tag names an atomic type with no parameters.
func (t TypeTag) IsBase() bool {
	return t <= TagAny
}

// Type is implemented by every type in the model.
type Type interface {
	Tag() TypeTag
	String() string
}

// BaseType is the type of atomic values. One instance exists per tag.
type BaseType struct {
	tag TypeTag
}

var baseTypes = func() map[TypeTag]*BaseType {
	m := make(map[TypeTag]*BaseType)
	for t := TagVoid; t <= TagAny; t++ {
		m[t] = &BaseType{tag: t}
	}
	return m
}()

// Base returns the shared base type for tag. It panics for non-base tags.
func Base(tag TypeTag) *BaseType {
	bt, ok := baseTypes[tag]
	if !ok {
		panic(fmt.Sprintf("val: %s is not a base type", tag))
	}
	return bt
}

func (t *BaseType) Tag() TypeTag   { return t.tag }
func (t *BaseType) String() string { return t.tag.String() }

// EnumType maps names to ordinals. Names may be added after creation.
type EnumType struct {
	Name  string
	names map[string]int
}

func NewEnumType(name string) *EnumType {
	return &EnumType{Name: name, names: make(map[string]int)}
}

func (t *EnumType) Tag() TypeTag   { return TagEnum }
func (t *EnumType) String() string { return "enum " + t.Name }

// AddName binds name to ordinal. Rebinding an existing name is an error.
func (t *EnumType) AddName(name string, ordinal int) error {
	if old, ok := t.names[name]; ok && old != ordinal {
		return fmt.Errorf("enum %s: name %q already bound to %d", t.Name, name, old)
	}
	t.names[name] = ordinal
	return nil
}

// Lookup returns the ordinal for name.
func (t *EnumType) Lookup(name string) (int, bool) {
	o, ok := t.names[name]
	return o, ok
}

// NextOrdinal returns one past the largest ordinal in use.
func (t *EnumType) NextOrdinal() int {
	next := 0
	for _, o := range t.names {
		if o >= next {
			next = o + 1
		}
	}
	return next
}

// EnumName is one name/ordinal pair.
type EnumName struct {
	Name    string
	Ordinal int
}

// Names returns all pairs ordered by ordinal, then name.
func (t *EnumType) Names() []EnumName {
	out := make([]EnumName, 0, len(t.names))
	for n, o := range t.names {
		out = append(out, EnumName{Name: n, Ordinal: o})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ordinal != out[j].Ordinal {
			return out[i].Ordinal < out[j].Ordinal
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NameOf returns the name bound to ordinal.
func (t *EnumType) NameOf(ordinal int) (string, bool) {
	for n, o := range t.names {
		if o == ordinal {
			return n, true
		}
	}
	return "", false
}

// OpaqueType is a named type with no visible structure.
type OpaqueType struct {
	Name string
}

func (t *OpaqueType) Tag() TypeTag   { return TagOpaque }
func (t *OpaqueType) String() string { return "opaque of " + t.Name }

// TypeType is the type of a value that is itself a type.
type TypeType struct {
	Type Type
}

func (t *TypeType) Tag() TypeTag   { return TagType }
func (t *TypeType) String() string { return "type of " + typeName(t.Type) }

type VectorType struct {
	Yield Type
}

func (t *VectorType) Tag() TypeTag   { return TagVector }
func (t *VectorType) String() string { return "vector of " + typeName(t.Yield) }

// FileType is the type of open-file handles carrying Yield.
type FileType struct {
	Yield Type
}

func (t *FileType) Tag() TypeTag   { return TagFile }
func (t *FileType) String() string { return "file of " + typeName(t.Yield) }

// TypeList is an ordered list of types, used for table indices.
type TypeList struct {
	Types []Type
}

func (t *TypeList) Tag() TypeTag { return TagList }
func (t *TypeList) String() string {
	parts := make([]string, len(t.Types))
	for i, e := range t.Types {
		parts[i] = typeName(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TableType maps index tuples to yields. A nil Yield makes it a set.
type TableType struct {
	Indices *TypeList
	Yield   Type
}

func (t *TableType) Tag() TypeTag { return TagTable }
func (t *TableType) IsSet() bool  { return t.Yield == nil }
func (t *TableType) String() string {
	if t.IsSet() {
		return "set" + t.Indices.String()
	}
	return "table" + t.Indices.String() + " of " + typeName(t.Yield)
}

// FuncFlavor distinguishes functions, events and hooks.
type FuncFlavor int

const (
	FlavorFunction FuncFlavor = iota
	FlavorEvent
	FlavorHook
)

func (f FuncFlavor) String() string {
	switch f {
	case FlavorEvent:
		return "event"
	case FlavorHook:
		return "hook"
	default:
		return "function"
	}
}

type FuncType struct {
	Params *RecordType
	Yield  Type
	Flavor FuncFlavor
}

func (t *FuncType) Tag() TypeTag { return TagFunc }
func (t *FuncType) String() string {
	s := t.Flavor.String() + "(" + t.Params.fieldList() + ")"
	if t.Yield != nil {
		s += ": " + typeName(t.Yield)
	}
	return s
}

// Field is one record field.
type Field struct {
	Name  string
	Type  Type
	Attrs *Attributes
}

// RecordType is the only type that may be referenced before it is
// complete: a shell is created first and fields are appended later.
type RecordType struct {
	Name   string
	Fields []*Field
}

// NewRecordType returns a record type with no fields.
func NewRecordType(name string) *RecordType {
	return &RecordType{Name: name}
}

func (t *RecordType) Tag() TypeTag { return TagRecord }
func (t *RecordType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "record {" + t.fieldList() + "}"
}

func (t *RecordType) fieldList() string {
	if t == nil {
		return ""
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + typeName(f.Type)
	}
	return strings.Join(parts, "; ")
}

// AddField appends a field and returns its index.
func (t *RecordType) AddField(name string, ft Type, attrs *Attributes) (int, error) {
	if t.FieldOffset(name) >= 0 {
		return -1, fmt.Errorf("record %s: duplicate field %q", t, name)
	}
	t.Fields = append(t.Fields, &Field{Name: name, Type: ft, Attrs: attrs})
	return len(t.Fields) - 1, nil
}

// FieldOffset returns the index of name, or -1.
func (t *RecordType) FieldOffset(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// typeName avoids expanding records, which may be cyclic.
func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	if rt, ok := t.(*RecordType); ok {
		if rt.Name != "" {
			return rt.Name
		}
		return "record"
	}
	return t.String()
}
