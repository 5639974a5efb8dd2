package runtime

import (
	"context"
	"fmt"

	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

type phase int

const (
	phaseNew phase = iota
	phaseReady
	phaseGenerating
	phaseFinished
	phaseFailed
)

var phaseNames = map[phase]string{
	phaseNew:        "new",
	phaseReady:      "pre-initialized",
	phaseGenerating: "generating",
	phaseFinished:   "finished",
	phaseFailed:     "failed",
}

func (p phase) String() string { return phaseNames[p] }

// Engine replays an image: pre-init, then every cohort in increasing
// order across all pools, then the aux registrations. It runs once and
// stops at the first failure.
type Engine struct {
	img   *plan.Image
	reg   *registry.Registry
	scope *val.Scope
	mgr   *Manager

	phase phase
	next  int

	fieldIndices []int
	enumOrdinals []int
}

// New checks that the image is structurally sound and sizes its storage
// arrays.
func New(img *plan.Image, reg *registry.Registry, scope *val.Scope) (*Engine, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}
	known := make(map[plan.Tag]bool, len(plan.PoolOrder))
	for _, tag := range plan.PoolOrder {
		known[tag] = true
	}
	for _, pi := range img.Pools {
		if !known[pi.Tag] {
			return nil, fmt.Errorf("image lists unknown pool %s: %w", pi.Tag, plan.ErrPayloadShape)
		}
	}
	return &Engine{img: img, reg: reg, scope: scope, mgr: NewManager(img)}, nil
}

// Manager returns the resolver over the engine's storage arrays.
func (e *Engine) Manager() *Manager { return e.mgr }

// FieldIndices are the results of the image's field mappings, in order.
func (e *Engine) FieldIndices() []int { return e.fieldIndices }

// EnumOrdinals are the results of the image's enum mappings, in order.
func (e *Engine) EnumOrdinals() []int { return e.enumOrdinals }

func (e *Engine) fail(err error) error {
	e.phase = phaseFailed
	return err
}

func (e *Engine) expect(op string, want ...phase) error {
	for _, p := range want {
		if e.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%s while %s: %w", op, e.phase, plan.ErrProtocol)
}

// PreInit installs the shells of all cycle-capable objects. Only record
// types have one. It must run exactly once, before any cohort.
func (e *Engine) PreInit(ctx context.Context) error {
	if err := e.expect("pre-init", phaseNew); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	shells := 0
	if pi, ok := e.img.Pool(plan.Type); ok {
		for _, cohort := range pi.Cohorts {
			for _, in := range cohort {
				if len(in.Payload) == 0 || val.TypeTag(in.Payload[0]) != val.TagRecord {
					continue
				}
				if err := preInitRecord(e.mgr, in.Offset, in.Payload); err != nil {
					return e.fail(fmt.Errorf("pre-init %s: %w", plan.Ref{Tag: plan.Type, Offset: in.Offset}, err))
				}
				shells++
			}
		}
	}
	logger.Debug("Replay: Pre-init complete.", "shells", shells)
	e.phase = phaseReady
	return nil
}

// GenerateCohort builds every object in cohort k, pool by pool in
// plan.PoolOrder. Cohorts must be generated in order starting at 0.
func (e *Engine) GenerateCohort(ctx context.Context, k int) error {
	if err := e.expect("generate", phaseReady, phaseGenerating); err != nil {
		return err
	}
	if k != e.next {
		return fmt.Errorf("generate cohort %d, next is %d: %w", k, e.next, plan.ErrProtocol)
	}
	if k > e.img.MaxCohort {
		return fmt.Errorf("generate cohort %d beyond maximum %d: %w", k, e.img.MaxCohort, plan.ErrProtocol)
	}
	e.phase = phaseGenerating
	logger := ctxlog.FromContext(ctx)

	for _, tag := range plan.PoolOrder {
		pi, ok := e.img.Pool(tag)
		if !ok || k >= len(pi.Cohorts) || len(pi.Cohorts[k]) == 0 {
			continue
		}
		logger.Debug("Replay: Generating cohort.", "pool", tag, "cohort", k, "size", len(pi.Cohorts[k]))
		for _, in := range pi.Cohorts[k] {
			if err := e.build(tag, in); err != nil {
				return e.fail(fmt.Errorf("cohort %d: %s: %w", k, plan.Ref{Tag: tag, Offset: in.Offset}, err))
			}
		}
	}
	e.next++
	return nil
}

func (e *Engine) build(tag plan.Tag, in plan.Init) error {
	switch tag {
	case plan.Type:
		t, err := buildType(e.mgr, in.Offset, in.Payload)
		if err != nil {
			return err
		}
		return e.mgr.types.put(in.Offset, t)
	case plan.Attr:
		a, err := e.buildAttr(in.Payload)
		if err != nil {
			return err
		}
		return e.mgr.attrs.put(in.Offset, a)
	case plan.Attrs:
		as, err := e.buildAttrs(in.Payload)
		if err != nil {
			return err
		}
		return e.mgr.attrLists.put(in.Offset, as)
	case plan.CallExpr:
		ce, err := e.buildCallExpr(in.Payload)
		if err != nil {
			return err
		}
		return e.mgr.callExprs.put(in.Offset, ce)
	}

	b, ok := valueBuilders[tag]
	if !ok {
		return fmt.Errorf("no reconstructor for %s: %w", tag, plan.ErrPayloadShape)
	}
	v, err := b(e, in.Payload)
	if err != nil {
		return err
	}
	return e.mgr.values[tag].put(in.Offset, v)
}

// Finish checks that every slot was built and then runs the aux
// registrations. It must follow the last cohort.
func (e *Engine) Finish(ctx context.Context) error {
	if err := e.expect("finish", phaseReady, phaseGenerating); err != nil {
		return err
	}
	if e.next != e.img.MaxCohort+1 {
		return fmt.Errorf("finish after %d of %d cohorts: %w", e.next, e.img.MaxCohort+1, plan.ErrProtocol)
	}
	if missing := e.mgr.unbuiltRefs(); len(missing) > 0 {
		return e.fail(fmt.Errorf("%d slots never built, first %s: %w", len(missing), missing[0], plan.ErrUnresolved))
	}
	if err := e.registerAux(ctx); err != nil {
		return e.fail(err)
	}
	e.phase = phaseFinished
	return nil
}

// InitializeAll runs the whole protocol.
func (e *Engine) InitializeAll(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Replay: Starting initialization.", "pools", len(e.img.Pools), "max_cohort", e.img.MaxCohort)

	if err := e.PreInit(ctx); err != nil {
		return err
	}
	for k := 0; k <= e.img.MaxCohort; k++ {
		if err := e.GenerateCohort(ctx, k); err != nil {
			return err
		}
	}
	if err := e.Finish(ctx); err != nil {
		return err
	}
	logger.Debug("Replay: Initialization complete.", "globals", len(e.scope.Names()))
	return nil
}
