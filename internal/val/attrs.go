package val

import (
	"errors"
	"fmt"
	"strings"
)

// AttrTag names an attribute such as &default or &optional.
type AttrTag int

const (
	AttrOptional AttrTag = iota
	AttrDefault
	AttrRedef
	AttrLog
	AttrExpireFunc
	AttrOnChange
	AttrPriority
	AttrDeprecated
)

var attrTagNames = map[AttrTag]string{
	AttrOptional:   "optional",
	AttrDefault:    "default",
	AttrRedef:      "redef",
	AttrLog:        "log",
	AttrExpireFunc: "expire_func",
	AttrOnChange:   "on_change",
	AttrPriority:   "priority",
	AttrDeprecated: "deprecated",
}

func (t AttrTag) String() string {
	if s, ok := attrTagNames[t]; ok {
		return "&" + s
	}
	return fmt.Sprintf("AttrTag(%d)", int(t))
}

// ParseAttrTag maps a bare attribute name ("default") to its tag.
func ParseAttrTag(name string) (AttrTag, bool) {
	name = strings.TrimPrefix(name, "&")
	for t, s := range attrTagNames {
		if s == name {
			return t, true
		}
	}
	return 0, false
}

// Attr is a single attribute with an optional expression.
type Attr struct {
	Tag  AttrTag
	Expr Expr
}

func (a *Attr) String() string {
	if a.Expr == nil {
		return a.Tag.String()
	}
	return a.Tag.String() + "=" + a.Expr.String()
}

// Attributes is an ordered attribute list.
type Attributes struct {
	Attrs []*Attr
}

// Find returns the first attribute with tag, or nil.
func (as *Attributes) Find(tag AttrTag) *Attr {
	if as == nil {
		return nil
	}
	for _, a := range as.Attrs {
		if a.Tag == tag {
			return a
		}
	}
	return nil
}

// Expr is the subset of script expressions that can appear in attributes.
type Expr interface {
	Eval() (Value, error)
	String() string
}

type ConstExpr struct {
	Val Value
}

func (e *ConstExpr) Eval() (Value, error) { return e.Val, nil }
func (e *ConstExpr) String() string       { return fmt.Sprintf("const(%s)", e.Val.Type()) }

// NameExpr refers to a global by identifier.
type NameExpr struct {
	ID *ID
}

func (e *NameExpr) Eval() (Value, error) {
	if e.ID.Val == nil {
		return nil, fmt.Errorf("global %s has no value", e.ID.Name)
	}
	return e.ID.Val, nil
}

func (e *NameExpr) String() string { return e.ID.Name }

// RecordCoerceExpr yields an empty record of the target type.
type RecordCoerceExpr struct {
	Target *RecordType
}

func (e *RecordCoerceExpr) Eval() (Value, error) {
	return &RecordVal{RecordType: e.Target, Fields: make([]Value, len(e.Target.Fields))}, nil
}

func (e *RecordCoerceExpr) String() string { return "coerce(" + typeName(e.Target) + ")" }

// CallExpr invokes a function with no arguments. Compiled init
// expressions are wrapped this way.
type CallExpr struct {
	Func *FuncVal
	Args []Expr
}

func (e *CallExpr) Eval() (Value, error) {
	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := a.Eval()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return e.Func.Call(args)
}

func (e *CallExpr) String() string { return e.Func.Name + "()" }

// ID is a global identifier.
type ID struct {
	Name     string
	Type     Type
	Attrs    *Attributes
	Val      Value
	Exported bool
}

// ErrNotFound is returned by Scope lookups.
var ErrNotFound = errors.New("not found")

// Scope holds globals by name.
type Scope struct {
	ids   map[string]*ID
	order []string
}

func NewScope() *Scope {
	return &Scope{ids: make(map[string]*ID)}
}

// Install returns the existing global for name, or creates one.
func (s *Scope) Install(name string) (*ID, bool) {
	if id, ok := s.ids[name]; ok {
		return id, false
	}
	id := &ID{Name: name}
	s.ids[name] = id
	s.order = append(s.order, name)
	return id, true
}

func (s *Scope) Lookup(name string) (*ID, error) {
	id, ok := s.ids[name]
	if !ok {
		return nil, fmt.Errorf("global %q: %w", name, ErrNotFound)
	}
	return id, nil
}

// Names returns global names in install order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.order...)
}
