package compiler

import (
	"context"
	"fmt"

	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/dag"
	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// Compiler registers descriptors for everything a model needs at startup
// and encodes them as a plan.Image.
type Compiler struct {
	ctx    context.Context
	tables *descriptor.Tables
	pools  map[plan.Tag]*descriptor.Pool
	graph  *dag.Graph
	byID   map[string]descriptor.Descriptor

	types      map[val.Type]descriptor.Descriptor
	typesBusy  map[val.Type]bool
	values     map[val.Value]descriptor.Descriptor
	valuesBusy map[val.Value]bool
	prims      map[string]descriptor.Descriptor
	attrs      map[*val.Attr]descriptor.Descriptor
	attrLists  map[*val.Attributes]descriptor.Descriptor
	callExprs  map[string]descriptor.Descriptor

	globals       []globalReg
	bodies        []bodyReg
	lambdas       []lambdaReg
	bifs          []string
	fieldMappings []fieldMappingReg
	enumMappings  []enumMappingReg
}

// New returns an empty compiler. The context supplies the logger.
func New(ctx context.Context) *Compiler {
	c := &Compiler{
		ctx:        ctx,
		tables:     descriptor.NewTables(),
		pools:      make(map[plan.Tag]*descriptor.Pool),
		graph:      dag.New(),
		byID:       make(map[string]descriptor.Descriptor),
		types:      make(map[val.Type]descriptor.Descriptor),
		typesBusy:  make(map[val.Type]bool),
		values:     make(map[val.Value]descriptor.Descriptor),
		valuesBusy: make(map[val.Value]bool),
		prims:      make(map[string]descriptor.Descriptor),
		attrs:      make(map[*val.Attr]descriptor.Descriptor),
		attrLists:  make(map[*val.Attributes]descriptor.Descriptor),
		callExprs:  make(map[string]descriptor.Descriptor),
	}
	for _, tag := range plan.PoolOrder {
		c.pools[tag] = descriptor.NewPool(tag)
	}
	return c
}

// Compile walks the model in declaration order and returns the image.
func Compile(ctx context.Context, model *config.Model) (*plan.Image, *Compiler, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: Starting descriptor registration.")
	c := New(ctx)

	for _, nt := range model.Types {
		if _, err := c.RegisterType(nt.Type); err != nil {
			return nil, nil, fmt.Errorf("type %s: %w", nt.Name, err)
		}
	}
	for _, k := range model.Constants {
		if _, err := c.RegisterConstant(k.Value); err != nil {
			return nil, nil, fmt.Errorf("constant %s: %w", k.Name, err)
		}
	}
	for _, name := range model.InitExprs {
		if _, err := c.RegisterCallExpr(name); err != nil {
			return nil, nil, fmt.Errorf("init expression %s: %w", name, err)
		}
	}
	for _, g := range model.Globals {
		if err := c.AddGlobal(g); err != nil {
			return nil, nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
	}
	for _, b := range model.Bodies {
		if err := c.AddBody(b); err != nil {
			return nil, nil, fmt.Errorf("body %s: %w", b.FuncName, err)
		}
	}
	for _, l := range model.Lambdas {
		if err := c.AddLambda(l); err != nil {
			return nil, nil, fmt.Errorf("lambda %s: %w", l.Name, err)
		}
	}
	for _, name := range model.BiFs {
		c.AddBiF(name)
	}
	for _, fm := range model.FieldMappings {
		if err := c.AddFieldMapping(fm); err != nil {
			return nil, nil, fmt.Errorf("field mapping %s: %w", fm.FieldName, err)
		}
	}
	for _, em := range model.EnumMappings {
		if err := c.AddEnumMapping(em); err != nil {
			return nil, nil, fmt.Errorf("enum mapping %s: %w", em.Name, err)
		}
	}
	logger.Debug("Compile: Registration complete.", "descriptors", c.graph.Len())

	img, err := c.Image()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Compile: Image built.", "pools", len(img.Pools), "max_cohort", img.MaxCohort)
	return img, c, nil
}

// Pool returns the pool for tag.
func (c *Compiler) Pool(tag plan.Tag) *descriptor.Pool { return c.pools[tag] }

// Pools returns the non-empty pools in plan.PoolOrder.
func (c *Compiler) Pools() []*descriptor.Pool {
	var out []*descriptor.Pool
	for _, tag := range plan.PoolOrder {
		if p := c.pools[tag]; p.Size() > 0 {
			out = append(out, p)
		}
	}
	return out
}

func nodeID(d descriptor.Descriptor) string {
	return plan.Ref{Tag: d.Kind(), Offset: d.Offset()}.String()
}

// register adds d to its pool and records its ordinary dependency edges.
func (c *Compiler) register(d descriptor.Descriptor) (descriptor.Descriptor, error) {
	if _, err := c.reserve(d); err != nil {
		return nil, err
	}
	if err := c.commit(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Compiler) reserve(d descriptor.Descriptor) (int, error) {
	off, err := c.pools[d.Kind()].Reserve(d)
	if err != nil {
		return off, err
	}
	c.graph.AddNode(nodeID(d))
	c.byID[nodeID(d)] = d
	return off, nil
}

func (c *Compiler) commit(d descriptor.Descriptor) error {
	var ordinary []descriptor.Descriptor
	for _, dep := range d.Deps() {
		if !descriptor.IsCycleEdge(dep) {
			ordinary = append(ordinary, dep)
		}
	}
	if err := c.pools[d.Kind()].Commit(d); err != nil {
		return err
	}
	for _, dep := range ordinary {
		if err := c.graph.AddEdge(nodeID(dep), nodeID(d)); err != nil {
			return fmt.Errorf("%s: %v: %w", d.Name(), err, plan.ErrAssignment)
		}
	}
	ctxlog.FromContext(c.ctx).Debug("Registered descriptor.", "name", d.Name(), "cohort", d.Cohort())
	return nil
}
