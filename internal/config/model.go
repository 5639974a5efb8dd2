package config

import "github.com/vk/bootgraph/internal/val"

// Model is the unified, format-agnostic representation of a compiled
// script's startup needs: the types, constants and globals it uses and the
// native code it registers.
type Model struct {
	Types         []*NamedType
	Constants     []*Constant
	Globals       []*Global
	InitExprs     []string
	Bodies        []*Body
	Lambdas       []*Lambda
	BiFs          []string
	FieldMappings []*FieldMapping
	EnumMappings  []*EnumMapping
}

// NamedType is a type declared at top level.
type NamedType struct {
	Name string
	Type val.Type
}

// Constant is a value the compiled code refers to.
type Constant struct {
	Name  string
	Value val.Value
}

// Global is a script-level global variable.
type Global struct {
	Name     string
	Type     val.Type
	Attrs    *val.Attributes
	Value    val.Value
	Exported bool
}

// Body is a compiled function, event handler or hook body.
type Body struct {
	FuncName string
	Type     *val.FuncType
	Priority int
	Events   []string
	Source   string
}

// Lambda is an anonymous function body.
type Lambda struct {
	Name        string
	Type        *val.FuncType
	Source      string
	HasCaptures bool
}

// FieldMapping asks the runtime where a field lives in a record type.
type FieldMapping struct {
	Record    *val.RecordType
	FieldName string
	FieldType val.Type
	Attrs     *val.Attributes
}

// EnumMapping asks the runtime for the ordinal of an enum name.
type EnumMapping struct {
	Enum *val.EnumType
	Name string
}
