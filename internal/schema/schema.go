// Package schema holds the gohcl decoding targets for manifest files.
// The structs mirror the block layout one to one; translating them into
// the config model is the job of the hcl package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Type Declarations ---

// Record declares a named record type. Fields may refer to the record
// itself or to any other named type, in any file.
type Record struct {
	Name   string   `hcl:"name,label"`
	Fields []*Field `hcl:"field,block"`
}

// Field is one record field.
type Field struct {
	Name  string         `hcl:"name,label"`
	Type  hcl.Expression `hcl:"type"`
	Attrs []*Attr        `hcl:"attr,block"`
}

// Attr is an attribute such as `attr "default" { value = 5 }`. At most one
// of Value, Init, Ref and Coerce may be set; none of them makes a bare
// attribute like &optional.
type Attr struct {
	Tag    string         `hcl:"tag,label"`
	Value  hcl.Expression `hcl:"value,optional"`
	Init   string         `hcl:"init,optional"`
	Ref    string         `hcl:"ref,optional"`
	Coerce hcl.Expression `hcl:"coerce,optional"`
}

// Enum declares a named enum type with its initial names.
type Enum struct {
	Name   string         `hcl:"name,label"`
	Values map[string]int `hcl:"values,optional"`
}

// Opaque declares a named opaque type.
type Opaque struct {
	Name string `hcl:"name,label"`
}

// --- Values ---

// Constant is a literal the compiled code refers to.
type Constant struct {
	Name  string         `hcl:"name,label"`
	Type  hcl.Expression `hcl:"type"`
	Value hcl.Expression `hcl:"value"`
}

// Global is a script-level global variable.
type Global struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type"`
	Value    hcl.Expression `hcl:"value,optional"`
	Exported bool           `hcl:"exported,optional"`
	Attrs    []*Attr        `hcl:"attr,block"`
}

// --- Native Code ---

// InitExpr names a compiled init-expression wrapper.
type InitExpr struct {
	Name string `hcl:"name,label"`
}

// Param is one parameter of a function signature.
type Param struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type"`
}

// Body is a compiled function, event handler or hook body.
type Body struct {
	Name     string         `hcl:"name,label"`
	Flavor   string         `hcl:"flavor,optional"`
	Params   []*Param       `hcl:"param,block"`
	Yield    hcl.Expression `hcl:"yield,optional"`
	Priority int            `hcl:"priority,optional"`
	Events   []string       `hcl:"events,optional"`
	Source   string         `hcl:"source,optional"`
}

// Lambda is an anonymous function body.
type Lambda struct {
	Name     string         `hcl:"name,label"`
	Params   []*Param       `hcl:"param,block"`
	Yield    hcl.Expression `hcl:"yield,optional"`
	Source   string         `hcl:"source,optional"`
	Captures bool           `hcl:"captures,optional"`
}

// BiF names a built-in function the script calls.
type BiF struct {
	Name string `hcl:"name,label"`
}

// --- Runtime Mappings ---

// FieldMapping asks the runtime for the index of a record field, adding
// the field if the record lacks it.
type FieldMapping struct {
	Record string         `hcl:"record,label"`
	Field  string         `hcl:"field,label"`
	Type   hcl.Expression `hcl:"type"`
	Attrs  []*Attr        `hcl:"attr,block"`
}

// EnumMapping asks the runtime for the ordinal of an enum name.
type EnumMapping struct {
	Enum string `hcl:"enum,label"`
	Name string `hcl:"name,label"`
}

// File is every top-level block a manifest file may contain.
type File struct {
	Records       []*Record       `hcl:"record,block"`
	Enums         []*Enum         `hcl:"enum,block"`
	Opaques       []*Opaque       `hcl:"opaque,block"`
	Constants     []*Constant     `hcl:"constant,block"`
	Globals       []*Global       `hcl:"global,block"`
	InitExprs     []*InitExpr     `hcl:"init_expr,block"`
	Bodies        []*Body         `hcl:"body,block"`
	Lambdas       []*Lambda       `hcl:"lambda,block"`
	BiFs          []*BiF          `hcl:"bif,block"`
	FieldMappings []*FieldMapping `hcl:"field_mapping,block"`
	EnumMappings  []*EnumMapping  `hcl:"enum_mapping,block"`
	Remain        hcl.Body        `hcl:",remain"`
}
