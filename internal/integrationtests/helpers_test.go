package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/compiler"
	"github.com/vk/bootgraph/internal/hcl"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/runtime"
	"github.com/vk/bootgraph/internal/testutil"
	"github.com/vk/bootgraph/internal/val"
)

// compileManifests loads and compiles the given manifest files.
func compileManifests(t *testing.T, files map[string]string) *plan.Image {
	t.Helper()
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, files)

	model, err := hcl.NewLoader().Load(ctx, dir)
	require.NoError(t, err, "manifest should load")
	img, _, err := compiler.Compile(ctx, model)
	require.NoError(t, err, "manifest should compile")
	return img
}

// replayResult is the outcome of one replay.
type replayResult struct {
	Engine *runtime.Engine
	Scope  *val.Scope
	Err    error
}

// replay initializes img into a fresh scope using reg.
func replay(t *testing.T, img *plan.Image, reg *registry.Registry) replayResult {
	t.Helper()
	ctx, _ := testutil.LogContext(t)
	scope := val.NewScope()
	eng, err := runtime.New(img, reg, scope)
	require.NoError(t, err, "image should be well formed")
	return replayResult{Engine: eng, Scope: scope, Err: eng.InitializeAll(ctx)}
}

func lookup(t *testing.T, s *val.Scope, name string) *val.ID {
	t.Helper()
	id, err := s.Lookup(name)
	require.NoError(t, err)
	return id
}

type funcs map[string]val.NativeFunc

// bodies is a module that registers the given native bodies.
type bodies funcs

func (b bodies) Register(r *registry.Registry) {
	for name, fn := range b {
		r.RegisterBody(name, fn)
	}
}

// initExprs is a module that registers init-expression wrappers.
type initExprs funcs

func (w initExprs) Register(r *registry.Registry) {
	for name, fn := range w {
		r.RegisterInitExpr(name, fn)
	}
}

func newRegistry(modules ...registry.Module) *registry.Registry {
	r := registry.New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

func noop([]val.Value) (val.Value, error) { return nil, nil }
