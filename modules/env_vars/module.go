package env_vars

import (
	"os"

	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Getenv is the getenv(name) built-in. Unset variables yield "".
func Getenv(args []val.Value) (val.Value, error) {
	if err := registry.Arity("getenv", args, 1); err != nil {
		return nil, err
	}
	name, err := registry.StringArg("getenv", args, 0)
	if err != nil {
		return nil, err
	}
	return val.NewStringVal(os.Getenv(name)), nil
}

// HasEnv is the has_env(name) built-in.
func HasEnv(args []val.Value) (val.Value, error) {
	if err := registry.Arity("has_env", args, 1); err != nil {
		return nil, err
	}
	name, err := registry.StringArg("has_env", args, 0)
	if err != nil {
		return nil, err
	}
	_, ok := os.LookupEnv(name)
	return &val.BoolVal{V: ok}, nil
}

// Register registers the built-ins with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBiF("getenv", Getenv)
	r.RegisterBiF("has_env", HasEnv)
}
