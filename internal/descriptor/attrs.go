package descriptor

import (
	"strconv"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// AttrExpr is the expression carried by an attribute. Exactly one of the
// fields is used, selected by Kind.
type AttrExpr struct {
	Kind   int
	Const  Descriptor
	Global string
	Type   Descriptor
	Call   Descriptor
}

// Attr is a single attribute.
type Attr struct {
	Info
	tag  val.AttrTag
	expr AttrExpr
}

func NewAttr(tag val.AttrTag, expr AttrExpr) *Attr {
	a := &Attr{Info: newInfo(), tag: tag, expr: expr}
	switch expr.Kind {
	case plan.ExprConst:
		a.addDeps(expr.Const)
	case plan.ExprRecordCoerce:
		a.addDeps(expr.Type)
	case plan.ExprCall:
		a.addDeps(expr.Call)
	}
	return a
}

func (a *Attr) Kind() plan.Tag { return plan.Attr }

func (a *Attr) Initializer() string {
	var e string
	switch a.expr.Kind {
	case plan.ExprConst:
		e = "ConstExpr(" + a.expr.Const.Name() + ")"
	case plan.ExprName:
		e = "NameExpr(" + strconv.Quote(a.expr.Global) + ")"
	case plan.ExprRecordCoerce:
		e = "RecordCoerceExpr(" + a.expr.Type.Name() + ")"
	case plan.ExprCall:
		e = a.expr.Call.Name()
	default:
		e = "nil"
	}
	return "Attr(" + a.tag.String() + ", " + e + ")"
}

func (a *Attr) Payload(tb *Tables) []int {
	arg := plan.None
	switch a.expr.Kind {
	case plan.ExprConst:
		arg = tb.ConstVal(a.expr.Const)
	case plan.ExprName:
		arg = tb.String(a.expr.Global)
	case plan.ExprRecordCoerce:
		arg = a.expr.Type.Offset()
	case plan.ExprCall:
		arg = a.expr.Call.Offset()
	}
	return []int{int(a.tag), a.expr.Kind, arg}
}

// Attrs is an attribute list. Its members are pooled in the Attr pool
// and cited by offset.
type Attrs struct {
	Info
	members []Descriptor
}

func NewAttrs(members []Descriptor) *Attrs {
	return &Attrs{Info: newInfo(members...), members: members}
}

func (a *Attrs) Kind() plan.Tag      { return plan.Attrs }
func (a *Attrs) Initializer() string { return "Attrs({" + joinNames(a.members) + "})" }
func (a *Attrs) Payload(tb *Tables) []int {
	p := make([]int, len(a.members))
	for i, m := range a.members {
		p[i] = m.Offset()
	}
	return p
}

// CallExpr wraps a compiled init expression as a zero-argument call.
type CallExpr struct {
	Info
	wrapper string
}

func NewCallExpr(wrapper string) *CallExpr {
	return &CallExpr{Info: newInfo(), wrapper: wrapper}
}

func (c *CallExpr) Kind() plan.Tag           { return plan.CallExpr }
func (c *CallExpr) Initializer() string      { return "CallExprInit(" + strconv.Quote(c.wrapper) + ")" }
func (c *CallExpr) Payload(tb *Tables) []int { return []int{tb.String(c.wrapper)} }
