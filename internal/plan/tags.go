package plan

import "fmt"

// Tag identifies a pool, and so the storage array a cross-reference points into.
type Tag int

const (
	Type Tag = iota
	Attr
	Attrs
	CallExpr
	Bool
	Int
	Count
	Double
	String
	Pattern
	Addr
	SubNet
	Enum
	List
	Vector
	Record
	Table
	Func
	File
)

var tagInfo = map[Tag]struct {
	name, elem string
}{
	Type:     {"type", "val.Type"},
	Attr:     {"attr", "*val.Attr"},
	Attrs:    {"attrs", "*val.Attributes"},
	CallExpr: {"callexpr", "*val.CallExpr"},
	Bool:     {"bool", "*val.BoolVal"},
	Int:      {"int", "*val.IntVal"},
	Count:    {"count", "*val.CountVal"},
	Double:   {"double", "*val.DoubleVal"},
	String:   {"str", "*val.StringVal"},
	Pattern:  {"re", "*val.PatternVal"},
	Addr:     {"addr", "*val.AddrVal"},
	SubNet:   {"subnet", "*val.SubNetVal"},
	Enum:     {"enum", "*val.EnumVal"},
	List:     {"list", "*val.ListVal"},
	Vector:   {"vector", "*val.VectorVal"},
	Record:   {"record", "*val.RecordVal"},
	Table:    {"table", "*val.TableVal"},
	Func:     {"func", "*val.FuncVal"},
	File:     {"file", "*val.FileVal"},
}

func (t Tag) String() string {
	if i, ok := tagInfo[t]; ok {
		return i.name
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// ElemType is the Go element type of the tag's storage array.
func (t Tag) ElemType() string {
	return tagInfo[t].elem
}

// IsValue reports whether the tag's objects are script values, as opposed
// to types, attributes or expressions.
func (t Tag) IsValue() bool {
	return t >= Bool
}

// PoolOrder is the order pools are driven in within each cohort.
var PoolOrder = []Tag{
	Type, Attr, Attrs, CallExpr,
	Bool, Int, Count, Double, String, Pattern, Addr, SubNet,
	Enum, List, Vector, Record, Table, File, Func,
}

// Ref is a cross-reference: the object at Offset in the Tag pool.
type Ref struct {
	Tag    Tag
	Offset int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s[%d]", r.Tag, r.Offset)
}

// None marks an absent optional reference inside a payload.
const None = -1
