package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/bootgraph/internal/val"
)

// Module is the interface that all native modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Handler is one body bound to an event, ordered by priority.
type Handler struct {
	FuncName string
	Priority int
	Body     val.NativeFunc
}

// Registry maps the names a compiled image uses to native Go code. It is
// shared by every image loaded into one process, which is what lets
// identical bodies from separately compiled units be bound only once.
type Registry struct {
	Bodies    map[string]val.NativeFunc
	InitExprs map[string]val.NativeFunc
	Lambdas   map[string]val.NativeFunc
	Funcs     map[string]val.NativeFunc
	BiFs      map[string]val.NativeFunc

	bound    map[uint64]string
	handlers map[string][]Handler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		Bodies:    make(map[string]val.NativeFunc),
		InitExprs: make(map[string]val.NativeFunc),
		Lambdas:   make(map[string]val.NativeFunc),
		Funcs:     make(map[string]val.NativeFunc),
		BiFs:      make(map[string]val.NativeFunc),
		bound:     make(map[uint64]string),
		handlers:  make(map[string][]Handler),
	}
}

func register(kind string, m map[string]val.NativeFunc, name string, fn val.NativeFunc) {
	if _, exists := m[name]; exists {
		panic(fmt.Sprintf("%s with name '%s' already registered", kind, name))
	}
	slog.Debug("Registering native code.", "kind", kind, "name", name)
	m[name] = fn
}

// RegisterBody registers the native implementation of a compiled body.
func (r *Registry) RegisterBody(name string, fn val.NativeFunc) { register("body", r.Bodies, name, fn) }

// RegisterInitExpr registers the wrapper of a compiled init expression.
func (r *Registry) RegisterInitExpr(name string, fn val.NativeFunc) {
	register("init expression", r.InitExprs, name, fn)
}

// RegisterLambda registers an anonymous function body.
func (r *Registry) RegisterLambda(name string, fn val.NativeFunc) { register("lambda", r.Lambdas, name, fn) }

// RegisterFunc registers the entry point a function value wraps.
func (r *Registry) RegisterFunc(name string, fn val.NativeFunc) { register("function", r.Funcs, name, fn) }

// RegisterBiF registers a built-in function.
func (r *Registry) RegisterBiF(name string, fn val.NativeFunc) { register("built-in function", r.BiFs, name, fn) }

// LookupBiF returns the built-in function registered as name.
func (r *Registry) LookupBiF(name string) (val.NativeFunc, bool) {
	fn, ok := r.BiFs[name]
	return fn, ok
}

// ClaimBody records that the body with the given content hash has been
// bound. It returns false if an earlier image already bound it.
func (r *Registry) ClaimBody(hash uint64, funcName string) bool {
	if _, ok := r.bound[hash]; ok {
		return false
	}
	r.bound[hash] = funcName
	return true
}

// AddHandler appends a body to an event's handler list, keeping the list
// sorted by descending priority. Equal priorities keep insertion order.
func (r *Registry) AddHandler(event string, h Handler) {
	hs := append(r.handlers[event], h)
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Priority > hs[j].Priority })
	r.handlers[event] = hs
}

// Handlers returns the handler list for event.
func (r *Registry) Handlers(event string) []Handler {
	return r.handlers[event]
}
