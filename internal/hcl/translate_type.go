// This file contains the logic for parsing HCL type expressions (e.g.
// `string`, `vector(count)`, `table(addr, port_info)`) into val.Type objects.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/schema"
	"github.com/vk/bootgraph/internal/val"
)

var baseTypeNames = func() map[string]val.TypeTag {
	m := make(map[string]val.TypeTag)
	for t := val.TagVoid; t <= val.TagAny; t++ {
		m[t.String()] = t
	}
	return m
}()

var flavorNames = map[string]val.FuncFlavor{
	"function": val.FlavorFunction,
	"event":    val.FlavorEvent,
	"hook":     val.FlavorHook,
}

// typeExpr converts an HCL type expression. Identifiers name base types
// or declared types; calls construct the parameterized shapes.
func (t *translator) typeExpr(expr hcl.Expression) (val.Type, error) {
	logger := ctxlog.FromContext(t.ctx)

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return nil, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		name := v.Traversal.RootName()
		if tag, ok := baseTypeNames[name]; ok {
			return val.Base(tag), nil
		}
		if nt, ok := t.named[name]; ok {
			return nt, nil
		}
		return nil, fmt.Errorf("unknown type %q", name)

	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a constructor.", "call", v.Name, "args", len(v.Args))
		args := make([]val.Type, 0, len(v.Args))
		for i, a := range v.Args {
			at, err := t.typeExpr(a)
			if err != nil {
				return nil, fmt.Errorf("%s() argument %d: %w", v.Name, i, err)
			}
			args = append(args, at)
		}
		return construct(v.Name, args)

	default:
		return nil, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func construct(name string, args []val.Type) (val.Type, error) {
	exactly := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("the %s() type constructor requires exactly %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	atLeast := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("the %s() type constructor requires at least %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}

	switch name {
	case "vector":
		if err := exactly(1); err != nil {
			return nil, err
		}
		return &val.VectorType{Yield: args[0]}, nil

	case "file":
		if err := exactly(1); err != nil {
			return nil, err
		}
		return &val.FileType{Yield: args[0]}, nil

	case "list":
		return &val.TypeList{Types: args}, nil

	case "set":
		if err := atLeast(1); err != nil {
			return nil, err
		}
		return &val.TableType{Indices: &val.TypeList{Types: args}}, nil

	case "table":
		if err := atLeast(2); err != nil {
			return nil, err
		}
		n := len(args) - 1
		return &val.TableType{Indices: &val.TypeList{Types: args[:n]}, Yield: args[n]}, nil

	case "type":
		if err := exactly(1); err != nil {
			return nil, err
		}
		return &val.TypeType{Type: args[0]}, nil

	case "function", "event", "hook":
		// Signature-less function types. Parameters are only declared
		// through param blocks.
		if len(args) > 1 {
			return nil, fmt.Errorf("the %s() type constructor takes at most one yield type, got %d", name, len(args))
		}
		ft := &val.FuncType{Params: val.NewRecordType(""), Flavor: flavorNames[name]}
		if len(args) == 1 {
			ft.Yield = args[0]
		}
		return ft, nil
	}
	return nil, fmt.Errorf("unknown type constructor function %q", name)
}

// signature turns param blocks and an optional yield into a function type.
func (t *translator) signature(flavor string, params []*schema.Param, yield hcl.Expression) (*val.FuncType, error) {
	ft := &val.FuncType{Params: val.NewRecordType("")}
	if flavor != "" {
		f, ok := flavorNames[flavor]
		if !ok {
			return nil, fmt.Errorf("unknown flavor %q", flavor)
		}
		ft.Flavor = f
	}
	for _, p := range params {
		pt, err := t.typeExpr(p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		if _, err := ft.Params.AddField(p.Name, pt, nil); err != nil {
			return nil, err
		}
	}
	if isExprDefined(t.ctx, yield, "yield") {
		yt, err := t.typeExpr(yield)
		if err != nil {
			return nil, fmt.Errorf("yield: %w", err)
		}
		ft.Yield = yt
	}
	return ft, nil
}
