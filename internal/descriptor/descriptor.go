package descriptor

import (
	"github.com/vk/bootgraph/internal/plan"
)

// Descriptor describes how to construct one runtime object.
type Descriptor interface {
	// Kind is the pool the descriptor belongs to.
	Kind() plan.Tag
	// Offset is the slot in the pool's storage array, or -1 before
	// registration and for stand-alone globals.
	Offset() int
	// Cohort is the initialization phase the object is built in.
	Cohort() int
	// Name is how generated code refers to the object.
	Name() string
	// Deps lists the descriptors whose objects must exist first.
	Deps() []Descriptor
	// Initializer renders the construction recipe.
	Initializer() string
	// Payload encodes the recipe for the runtime engine.
	Payload(tb *Tables) []int
	// HasPreInit reports whether an identity-only shell is created before
	// any cohort runs, which lets the descriptor sit on a cycle.
	HasPreInit() bool
	// PreInit renders the shell's construction.
	PreInit() string
	// Committed reports whether the descriptor has been placed in a cohort.
	Committed() bool

	info() *Info
}

// Info carries the bookkeeping shared by all descriptors. Concrete
// descriptors embed it.
type Info struct {
	pool      *Pool
	offset    int
	cohort    int
	declared  bool
	committed bool
	name      string
	deps      []Descriptor
}

func newInfo(deps ...Descriptor) Info {
	in := Info{offset: -1}
	in.setDeps(deps...)
	return in
}

func (in *Info) setDeps(deps ...Descriptor) {
	in.deps = in.deps[:0]
	for _, d := range deps {
		if d != nil {
			in.deps = append(in.deps, d)
		}
	}
}

func (in *Info) addDeps(deps ...Descriptor) {
	for _, d := range deps {
		if d != nil {
			in.deps = append(in.deps, d)
		}
	}
}

func (in *Info) info() *Info        { return in }
func (in *Info) Offset() int        { return in.offset }
func (in *Info) Cohort() int        { return in.cohort }
func (in *Info) Deps() []Descriptor { return in.deps }
func (in *Info) HasPreInit() bool   { return false }
func (in *Info) PreInit() string    { return "" }

// Name returns the pooled slot name, or the explicit name of a stand-alone
// global.
func (in *Info) Name() string {
	if in.pool != nil {
		return in.pool.Name(in.offset)
	}
	return in.name
}

// DeclareCohort pins the cohort instead of deriving it from dependencies.
// Commit still checks that the pinned cohort dominates every dependency.
func (in *Info) DeclareCohort(c int) {
	in.cohort = c
	in.declared = true
}

// Committed reports whether the descriptor has been placed in a cohort.
func (in *Info) Committed() bool { return in.committed }

// pending is reserved in a pool but not yet committed to a cohort.
func pending(d Descriptor) bool {
	in := d.info()
	return in.pool != nil && !in.committed
}

// cyclic reports whether a dependency on d is a cycle edge broken by
// pre-init rather than by cohort ordering.
func cyclic(d Descriptor) bool {
	return pending(d) && d.HasPreInit()
}

// takesShell reports whether a descriptor of kind may cite a pre-init
// shell. Types, attributes and attribute lists only hold the reference;
// a value needs its type complete.
func takesShell(kind plan.Tag) bool {
	switch kind {
	case plan.Type, plan.Attr, plan.Attrs:
		return true
	}
	return false
}

// ComputeCohort returns 0 with no ordinary dependencies, otherwise one more
// than the largest dependency cohort. Cycle edges are skipped.
func ComputeCohort(deps []Descriptor) int {
	cohort := 0
	for _, d := range deps {
		if cyclic(d) {
			continue
		}
		if c := d.Cohort() + 1; c > cohort {
			cohort = c
		}
	}
	return cohort
}

// Standalone is a global that is not pooled: it has a name and a cohort
// but no offset. Its dependencies must already be committed.
type Standalone struct {
	Info
	typ  string
	init string
}

// NewStandalone describes a named global of Go type typ built by init,
// placed one cohort after the latest of deps.
func NewStandalone(name, typ, init string, deps ...Descriptor) *Standalone {
	s := &Standalone{Info: newInfo(deps...), typ: typ, init: init}
	s.name = name
	s.DeclareCohort(ComputeCohort(s.deps))
	s.committed = true
	return s
}

func (s *Standalone) Kind() plan.Tag { return -1 }
func (s *Standalone) Initializer() string { return s.init }
func (s *Standalone) Payload(tb *Tables) []int { return nil }
func (s *Standalone) Declare() string { return "var " + s.name + " " + s.typ }

// IsCycleEdge reports whether a dependency on d, recorded now, would be a
// cycle edge: d is reserved but uncommitted and has a pre-init shell.
func IsCycleEdge(d Descriptor) bool { return cyclic(d) }
