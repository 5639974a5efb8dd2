package descriptor

import (
	"strconv"

	"github.com/vk/bootgraph/internal/plan"
)

// StringConst is a string constant. Its bytes are kept verbatim,
// including NULs.
type StringConst struct {
	Info
	s string
}

func NewStringConst(s string) *StringConst {
	return &StringConst{Info: newInfo(), s: s}
}

func (c *StringConst) Kind() plan.Tag { return plan.String }
func (c *StringConst) Initializer() string {
	return "StringConst(" + strconv.Itoa(len(c.s)) + ", " + strconv.Quote(c.s) + ")"
}
func (c *StringConst) Payload(tb *Tables) []int { return []int{tb.String(c.s)} }

type PatternConst struct {
	Info
	text            string
	caseInsensitive bool
}

func NewPatternConst(text string, caseInsensitive bool) *PatternConst {
	return &PatternConst{Info: newInfo(), text: text, caseInsensitive: caseInsensitive}
}

func (c *PatternConst) Kind() plan.Tag { return plan.Pattern }
func (c *PatternConst) Initializer() string {
	return "PatternConst(" + strconv.Quote(c.text) + ", " + strconv.FormatBool(c.caseInsensitive) + ")"
}
func (c *PatternConst) Payload(tb *Tables) []int {
	return []int{tb.String(c.text), plan.BoolSlot(c.caseInsensitive)}
}

// DescConst is a constant rebuilt from its textual description: addresses
// and subnets.
type DescConst struct {
	Info
	tag  plan.Tag
	desc string
}

func NewDescConst(tag plan.Tag, desc string) *DescConst {
	return &DescConst{Info: newInfo(), tag: tag, desc: desc}
}

func (c *DescConst) Kind() plan.Tag { return c.tag }
func (c *DescConst) Initializer() string {
	name := "AddrConst"
	if c.tag == plan.SubNet {
		name = "SubNetConst"
	}
	return name + "(" + strconv.Quote(c.desc) + ")"
}
func (c *DescConst) Payload(tb *Tables) []int { return []int{tb.String(c.desc)} }

type BoolConst struct {
	Info
	v bool
}

func NewBoolConst(v bool) *BoolConst { return &BoolConst{Info: newInfo(), v: v} }

func (c *BoolConst) Kind() plan.Tag           { return plan.Bool }
func (c *BoolConst) Initializer() string      { return "BoolConst(" + strconv.FormatBool(c.v) + ")" }
func (c *BoolConst) Payload(tb *Tables) []int { return []int{plan.BoolSlot(c.v)} }

type IntConst struct {
	Info
	v int64
}

func NewIntConst(v int64) *IntConst { return &IntConst{Info: newInfo(), v: v} }

func (c *IntConst) Kind() plan.Tag           { return plan.Int }
func (c *IntConst) Initializer() string      { return "IntConst(" + strconv.FormatInt(c.v, 10) + ")" }
func (c *IntConst) Payload(tb *Tables) []int { return []int{int(c.v)} }

// CountConst payloads hold the bit pattern of the unsigned value.
type CountConst struct {
	Info
	v uint64
}

func NewCountConst(v uint64) *CountConst { return &CountConst{Info: newInfo(), v: v} }

func (c *CountConst) Kind() plan.Tag           { return plan.Count }
func (c *CountConst) Initializer() string      { return "CountConst(" + strconv.FormatUint(c.v, 10) + ")" }
func (c *CountConst) Payload(tb *Tables) []int { return []int{int(c.v)} }

// DoubleConst covers double, time and interval constants. The value
// travels as its shortest round-trip text.
type DoubleConst struct {
	Info
	v       float64
	typeTag int
}

func NewDoubleConst(v float64, typeTag int) *DoubleConst {
	return &DoubleConst{Info: newInfo(), v: v, typeTag: typeTag}
}

func (c *DoubleConst) Kind() plan.Tag { return plan.Double }
func (c *DoubleConst) text() string   { return strconv.FormatFloat(c.v, 'g', -1, 64) }
func (c *DoubleConst) Initializer() string {
	return "DoubleConst(" + c.text() + ", " + strconv.Itoa(c.typeTag) + ")"
}
func (c *DoubleConst) Payload(tb *Tables) []int { return []int{tb.String(c.text()), c.typeTag} }
