package runtime

import (
	"fmt"

	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

func (e *Engine) buildAttr(p []int) (*val.Attr, error) {
	if err := wantLen("attr", p, 3); err != nil {
		return nil, err
	}
	a := &val.Attr{Tag: val.AttrTag(p[0])}
	arg := p[2]
	switch p[1] {
	case plan.ExprNone:
	case plan.ExprConst:
		v, err := e.mgr.ConstVal(arg)
		if err != nil {
			return nil, err
		}
		a.Expr = &val.ConstExpr{Val: v}
	case plan.ExprName:
		name, err := e.mgr.Strings(arg)
		if err != nil {
			return nil, err
		}
		id, _ := e.scope.Install(name)
		a.Expr = &val.NameExpr{ID: id}
	case plan.ExprRecordCoerce:
		rt, err := typeAt[*val.RecordType](e.mgr, arg)
		if err != nil {
			return nil, err
		}
		a.Expr = &val.RecordCoerceExpr{Target: rt}
	case plan.ExprCall:
		ce, err := e.mgr.CallExpr(arg)
		if err != nil {
			return nil, err
		}
		a.Expr = ce
	default:
		return nil, shapeErr("attr %s: unknown expression kind %d", a.Tag, p[1])
	}
	return a, nil
}

func (e *Engine) buildAttrs(p []int) (*val.Attributes, error) {
	as := &val.Attributes{Attrs: make([]*val.Attr, 0, len(p))}
	for _, off := range p {
		a, err := e.mgr.Attr(off)
		if err != nil {
			return nil, err
		}
		as.Attrs = append(as.Attrs, a)
	}
	return as, nil
}

// initExprType is the signature of every init expression wrapper: no
// parameters, any result.
func initExprType() *val.FuncType {
	return &val.FuncType{Params: val.NewRecordType(""), Yield: val.Base(val.TagAny)}
}

func (e *Engine) buildCallExpr(p []int) (*val.CallExpr, error) {
	if err := wantLen("call expr", p, 1); err != nil {
		return nil, err
	}
	name, err := e.mgr.Strings(p[0])
	if err != nil {
		return nil, err
	}
	fn, ok := e.reg.InitExprs[name]
	if !ok {
		return nil, fmt.Errorf("init expression %q: %w", name, plan.ErrUnknownName)
	}
	return &val.CallExpr{Func: &val.FuncVal{Name: name, FuncType: initExprType(), Body: fn}}, nil
}
