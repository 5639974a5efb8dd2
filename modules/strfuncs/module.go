// Package strfuncs provides the string built-ins.
package strfuncs

import (
	"strings"

	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func unary(name string, fn func(string) val.Value) val.NativeFunc {
	return func(args []val.Value) (val.Value, error) {
		if err := registry.Arity(name, args, 1); err != nil {
			return nil, err
		}
		s, err := registry.StringArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

// Register registers the built-ins with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBiF("strlen", unary("strlen", func(s string) val.Value {
		return &val.CountVal{V: uint64(len(s))}
	}))
	r.RegisterBiF("to_lower", unary("to_lower", func(s string) val.Value {
		return val.NewStringVal(strings.ToLower(s))
	}))
	r.RegisterBiF("to_upper", unary("to_upper", func(s string) val.Value {
		return val.NewStringVal(strings.ToUpper(s))
	}))
}
