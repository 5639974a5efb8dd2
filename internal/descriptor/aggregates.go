package descriptor

import (
	"strconv"
	"strings"

	"github.com/vk/bootgraph/internal/plan"
)

func joinNames(ds []Descriptor) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = nameOrNil(d)
	}
	return strings.Join(names, ", ")
}

func constVals(tb *Tables, ds []Descriptor) []int {
	out := make([]int, len(ds))
	for i, d := range ds {
		out[i] = tb.ConstVal(d)
	}
	return out
}

// EnumConst is an enum value: its type and ordinal.
type EnumConst struct {
	Info
	enumType Descriptor
	ordinal  int
}

func NewEnumConst(enumType Descriptor, ordinal int) *EnumConst {
	return &EnumConst{Info: newInfo(enumType), enumType: enumType, ordinal: ordinal}
}

func (c *EnumConst) Kind() plan.Tag { return plan.Enum }
func (c *EnumConst) Initializer() string {
	return "EnumConst(" + c.enumType.Name() + ", " + strconv.Itoa(c.ordinal) + ")"
}
func (c *EnumConst) Payload(tb *Tables) []int { return []int{c.enumType.Offset(), c.ordinal} }

// FileConst is a file handle constant: its name and file type.
type FileConst struct {
	Info
	fileType Descriptor
	name     string
}

func NewFileConst(fileType Descriptor, name string) *FileConst {
	return &FileConst{Info: newInfo(fileType), fileType: fileType, name: name}
}

func (c *FileConst) Kind() plan.Tag { return plan.File }
func (c *FileConst) Initializer() string {
	return "FileConst(" + strconv.Quote(c.name) + ", " + c.fileType.Name() + ")"
}
func (c *FileConst) Payload(tb *Tables) []int { return []int{tb.String(c.name), c.fileType.Offset()} }

// ListConst is an untyped sequence of values.
type ListConst struct {
	Info
	elems []Descriptor
}

func NewListConst(elems []Descriptor) *ListConst {
	return &ListConst{Info: newInfo(elems...), elems: elems}
}

func (c *ListConst) Kind() plan.Tag           { return plan.List }
func (c *ListConst) Initializer() string      { return "ListConst({" + joinNames(c.elems) + "})" }
func (c *ListConst) Payload(tb *Tables) []int { return constVals(tb, c.elems) }

type VectorConst struct {
	Info
	vecType Descriptor
	elems   []Descriptor
}

func NewVectorConst(vecType Descriptor, elems []Descriptor) *VectorConst {
	c := &VectorConst{Info: newInfo(vecType), vecType: vecType, elems: elems}
	c.addDeps(elems...)
	return c
}

func (c *VectorConst) Kind() plan.Tag { return plan.Vector }
func (c *VectorConst) Initializer() string {
	return "VectorConst(" + c.vecType.Name() + ", {" + joinNames(c.elems) + "})"
}
func (c *VectorConst) Payload(tb *Tables) []int {
	return append([]int{c.vecType.Offset()}, constVals(tb, c.elems)...)
}

// RecordConst has one entry per field of its type; nil entries are unset.
type RecordConst struct {
	Info
	recType Descriptor
	fields  []Descriptor
}

func NewRecordConst(recType Descriptor, fields []Descriptor) *RecordConst {
	c := &RecordConst{Info: newInfo(recType), recType: recType, fields: fields}
	c.addDeps(fields...)
	return c
}

func (c *RecordConst) Kind() plan.Tag { return plan.Record }
func (c *RecordConst) Initializer() string {
	return "RecordConst(" + c.recType.Name() + ", {" + joinNames(c.fields) + "})"
}
func (c *RecordConst) Payload(tb *Tables) []int {
	return append([]int{c.recType.Offset()}, constVals(tb, c.fields)...)
}

// TableEntry is one key and, for tables, its value.
type TableEntry struct {
	Key   Descriptor
	Value Descriptor
}

type TableConst struct {
	Info
	tblType Descriptor
	attrs   Descriptor
	entries []TableEntry
	isSet   bool
}

func NewTableConst(tblType, attrs Descriptor, isSet bool, entries []TableEntry) *TableConst {
	c := &TableConst{Info: newInfo(tblType, attrs), tblType: tblType, attrs: attrs, entries: entries, isSet: isSet}
	for _, e := range entries {
		c.addDeps(e.Key, e.Value)
	}
	return c
}

func (c *TableConst) Kind() plan.Tag { return plan.Table }
func (c *TableConst) Initializer() string {
	elems := make([]string, len(c.entries))
	for i, e := range c.entries {
		if c.isSet {
			elems[i] = e.Key.Name()
		} else {
			elems[i] = e.Key.Name() + ": " + e.Value.Name()
		}
	}
	return "TableConst(" + c.tblType.Name() + ", " + nameOrNil(c.attrs) + ", {" + strings.Join(elems, ", ") + "})"
}

func (c *TableConst) Payload(tb *Tables) []int {
	p := []int{c.tblType.Offset(), offsetOf(c.attrs)}
	for _, e := range c.entries {
		p = append(p, tb.ConstVal(e.Key))
		if !c.isSet {
			p = append(p, tb.ConstVal(e.Value))
		}
	}
	return p
}

// FuncConst names a native body, its type and content hash, plus any
// captured values.
type FuncConst struct {
	Info
	name     string
	funcType Descriptor
	hash     uint64
	captures []Descriptor
}

func NewFuncConst(name string, funcType Descriptor, hash uint64, captures []Descriptor) *FuncConst {
	c := &FuncConst{Info: newInfo(funcType), name: name, funcType: funcType, hash: hash, captures: captures}
	c.addDeps(captures...)
	return c
}

func (c *FuncConst) Kind() plan.Tag { return plan.Func }
func (c *FuncConst) Initializer() string {
	return "FuncConst(" + strconv.Quote(c.name) + ", " + c.funcType.Name() + ", 0x" +
		strconv.FormatUint(c.hash, 16) + ", {" + joinNames(c.captures) + "})"
}
func (c *FuncConst) Payload(tb *Tables) []int {
	p := []int{tb.String(c.name), c.funcType.Offset(), tb.Hash(c.hash)}
	return append(p, constVals(tb, c.captures)...)
}
