package descriptor

import (
	"fmt"
	"strconv"

	"github.com/vk/bootgraph/internal/plan"
)

// Pool collects the descriptors of one kind. Offsets are handed out in
// registration order starting at 0; each committed descriptor sits in
// exactly one cohort bucket.
type Pool struct {
	tag      plan.Tag
	baseName string

	all     []Descriptor
	cohorts [][]Descriptor
}

// NewPool creates an empty pool for tag.
func NewPool(tag plan.Tag) *Pool {
	return &Pool{
		tag:      tag,
		baseName: tag.String() + "__const__",
	}
}

func (p *Pool) Tag() plan.Tag { return p.tag }

// Size is the number of offsets handed out, committed or not.
func (p *Pool) Size() int { return len(p.all) }

// MaxCohort is the index of the highest non-empty bucket, or -1.
func (p *Pool) MaxCohort() int {
	for c := len(p.cohorts) - 1; c >= 0; c-- {
		if len(p.cohorts[c]) > 0 {
			return c
		}
	}
	return -1
}

// Name returns the generated-code name of the slot at index.
func (p *Pool) Name(index int) string {
	return p.baseName + "[" + strconv.Itoa(index) + "]"
}

// NextName is the name the next registered descriptor will get.
func (p *Pool) NextName() string { return p.Name(p.Size()) }

// Declare renders the storage array declaration.
func (p *Pool) Declare() string {
	return "var " + p.baseName + " []" + p.tag.ElemType()
}

// BaseName is the storage array's name.
func (p *Pool) BaseName() string { return p.baseName }

// At returns the descriptor at offset.
func (p *Pool) At(offset int) Descriptor { return p.all[offset] }

// Cohorts returns the buckets in cohort order.
func (p *Pool) Cohorts() [][]Descriptor { return p.cohorts }

// Register reserves the next offset for d and commits it to its cohort.
func (p *Pool) Register(d Descriptor) (int, error) {
	off, err := p.Reserve(d)
	if err != nil {
		return off, err
	}
	return off, p.Commit(d)
}

// Reserve assigns d the next offset without placing it in a cohort. Use
// it for descriptors that must be addressable before their own
// dependencies are known, such as a record type whose fields refer back
// to it.
func (p *Pool) Reserve(d Descriptor) (int, error) {
	if d.Kind() != p.tag {
		return -1, fmt.Errorf("%s descriptor registered in %s pool: %w", d.Kind(), p.tag, plan.ErrAssignment)
	}
	in := d.info()
	if in.pool != nil {
		return -1, fmt.Errorf("descriptor %s already registered: %w", in.Name(), plan.ErrAssignment)
	}
	in.pool = p
	in.offset = len(p.all)
	p.all = append(p.all, d)
	return in.offset, nil
}

// Commit places a reserved descriptor into the bucket for its cohort. It
// fails, leaving d uncommitted, if the cohort does not dominate every
// ordinary dependency or a dependency is not yet usable.
func (p *Pool) Commit(d Descriptor) error {
	in := d.info()
	if in.pool != p {
		return fmt.Errorf("descriptor %s not reserved in %s pool: %w", in.Name(), p.tag, plan.ErrAssignment)
	}
	if in.committed {
		return fmt.Errorf("descriptor %s already committed: %w", in.Name(), plan.ErrAssignment)
	}

	if !in.declared {
		in.cohort = ComputeCohort(in.deps)
	}
	if err := checkDeps(d); err != nil {
		return err
	}

	for len(p.cohorts) <= in.cohort {
		p.cohorts = append(p.cohorts, nil)
	}
	p.cohorts[in.cohort] = append(p.cohorts[in.cohort], d)
	in.committed = true
	return nil
}

func checkDeps(d Descriptor) error {
	in := d.info()
	if in.cohort < 0 {
		return fmt.Errorf("%s: negative cohort %d: %w", in.Name(), in.cohort, plan.ErrAssignment)
	}
	for _, dep := range in.deps {
		dn := dep.info()
		switch {
		case dn.pool == nil && dn.name == "":
			return fmt.Errorf("%s cites unregistered %s descriptor: %w", in.Name(), dep.Kind(), plan.ErrAssignment)
		case pending(dep) && !dep.HasPreInit():
			if dep == d {
				return fmt.Errorf("%s refers to itself but %s has no pre-init: %w", in.Name(), dep.Kind(), plan.ErrAssignment)
			}
			return fmt.Errorf("%s cites %s before it is committed: %w", in.Name(), dn.Name(), plan.ErrAssignment)
		case pending(dep) && !takesShell(d.Kind()):
			return fmt.Errorf("%s cites %s before its definition is complete: %w", in.Name(), dn.Name(), plan.ErrAssignment)
		case pending(dep):
			// Cycle edge: the shell exists before any cohort runs.
		case dn.cohort >= in.cohort:
			return fmt.Errorf("%s in cohort %d cites %s in cohort %d: %w", in.Name(), in.cohort, dn.Name(), dn.cohort, plan.ErrAssignment)
		}
	}
	return nil
}

// Image encodes the pool for the runtime. Every reserved descriptor must
// have been committed.
func (p *Pool) Image(tb *Tables) (plan.PoolImage, error) {
	pi := plan.PoolImage{Tag: p.tag, Size: len(p.all)}
	for _, d := range p.all {
		if !d.info().committed {
			return pi, fmt.Errorf("%s reserved but never committed: %w", d.Name(), plan.ErrAssignment)
		}
	}
	pi.Cohorts = make([][]plan.Init, len(p.cohorts))
	for c, bucket := range p.cohorts {
		inits := make([]plan.Init, 0, len(bucket))
		for _, d := range bucket {
			inits = append(inits, plan.Init{Offset: d.Offset(), Payload: d.Payload(tb)})
		}
		pi.Cohorts[c] = inits
	}
	return pi, nil
}
