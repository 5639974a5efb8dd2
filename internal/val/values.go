package val

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
)

// Value is implemented by every runtime value.
type Value interface {
	Type() Type
}

type BoolVal struct{ V bool }

func (v *BoolVal) Type() Type { return Base(TagBool) }

type IntVal struct{ V int64 }

func (v *IntVal) Type() Type { return Base(TagInt) }

type CountVal struct{ V uint64 }

func (v *CountVal) Type() Type { return Base(TagCount) }

// DoubleVal also carries time and interval values, selected by Tag.
type DoubleVal struct {
	V   float64
	Tag TypeTag
}

func (v *DoubleVal) Type() Type {
	if v.Tag == TagTime || v.Tag == TagInterval {
		return Base(v.Tag)
	}
	return Base(TagDouble)
}

// StringVal holds raw bytes; embedded NULs are preserved.
type StringVal struct {
	b []byte
}

func NewStringVal(s string) *StringVal {
	return &StringVal{b: []byte(s)}
}

func (v *StringVal) Type() Type     { return Base(TagString) }
func (v *StringVal) Bytes() []byte  { return v.b }
func (v *StringVal) Len() int       { return len(v.b) }
func (v *StringVal) String() string { return string(v.b) }

// PatternVal is a compiled regular expression together with its source text.
type PatternVal struct {
	Text            string
	CaseInsensitive bool
	re              *regexp.Regexp
}

func NewPatternVal(text string, caseInsensitive bool) (*PatternVal, error) {
	expr := text
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern /%s/: %w", text, err)
	}
	return &PatternVal{Text: text, CaseInsensitive: caseInsensitive, re: re}, nil
}

func (v *PatternVal) Type() Type { return Base(TagPattern) }

func (v *PatternVal) MatchString(s string) bool { return v.re.MatchString(s) }

type AddrVal struct{ Addr netip.Addr }

func NewAddrVal(s string) (*AddrVal, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return nil, err
	}
	return &AddrVal{Addr: a}, nil
}

func (v *AddrVal) Type() Type     { return Base(TagAddr) }
func (v *AddrVal) String() string { return v.Addr.String() }

type SubNetVal struct{ Prefix netip.Prefix }

func NewSubNetVal(s string) (*SubNetVal, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return nil, err
	}
	return &SubNetVal{Prefix: p.Masked()}, nil
}

func (v *SubNetVal) Type() Type     { return Base(TagSubNet) }
func (v *SubNetVal) String() string { return v.Prefix.String() }

type EnumVal struct {
	EnumType *EnumType
	Ordinal  int
}

func (v *EnumVal) Type() Type { return v.EnumType }

func (v *EnumVal) String() string {
	if n, ok := v.EnumType.NameOf(v.Ordinal); ok {
		return n
	}
	return v.EnumType.Name + "(" + strconv.Itoa(v.Ordinal) + ")"
}

// FileVal names a file handle. Opening it is left to native code.
type FileVal struct {
	FileType *FileType
	Name     string
}

func (v *FileVal) Type() Type     { return v.FileType }
func (v *FileVal) String() string { return v.Name }

// ListVal is an untyped sequence, used for composite table keys.
type ListVal struct {
	Vals []Value
}

func (v *ListVal) Type() Type {
	tl := &TypeList{}
	for _, e := range v.Vals {
		tl.Types = append(tl.Types, e.Type())
	}
	return tl
}

type VectorVal struct {
	VectorType *VectorType
	Elems      []Value
}

func (v *VectorVal) Type() Type { return v.VectorType }

// RecordVal holds one slot per field of its type; unset slots are nil.
type RecordVal struct {
	RecordType *RecordType
	Fields     []Value
}

func (v *RecordVal) Type() Type { return v.RecordType }

// TableEntry is one key with its value; Value is nil for sets.
type TableEntry struct {
	Key   Value
	Value Value
}

// TableVal keeps entries in insertion order.
type TableVal struct {
	TableType *TableType
	Attrs     *Attributes
	Entries   []TableEntry
}

func (v *TableVal) Type() Type { return v.TableType }

func (v *TableVal) Len() int { return len(v.Entries) }

// NativeFunc is a compiled function body.
type NativeFunc func(args []Value) (Value, error)

// FuncVal binds a native body to a name and type.
type FuncVal struct {
	Name     string
	FuncType *FuncType
	Body     NativeFunc
	Hash     uint64
	Captures []Value
}

func (v *FuncVal) Type() Type { return v.FuncType }

// Call invokes the body, or fails if no body is bound.
func (v *FuncVal) Call(args []Value) (Value, error) {
	if v.Body == nil {
		return nil, fmt.Errorf("function %s has no body", v.Name)
	}
	return v.Body(args)
}

// TypeVal is a value whose content is a type.
type TypeVal struct {
	T Type
}

func (v *TypeVal) Type() Type { return &TypeType{Type: v.T} }
