package compiler

import (
	"fmt"

	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/plan"
)

// Image encodes every pool and aux registration. Before encoding, the
// cohort of each descriptor is checked against the dependency graph: a
// descriptor must come strictly after everything it depends on.
func (c *Compiler) Image() (*plan.Image, error) {
	logger := ctxlog.FromContext(c.ctx)

	levels, err := c.graph.Levels()
	if err != nil {
		return nil, fmt.Errorf("dependency graph: %v: %w", err, plan.ErrAssignment)
	}

	img := &plan.Image{MaxCohort: -1}
	for _, p := range c.Pools() {
		for off := 0; off < p.Size(); off++ {
			d := p.At(off)
			id := nodeID(d)
			if lvl := levels[id]; d.Committed() && d.Cohort() < lvl {
				return nil, fmt.Errorf("%s in cohort %d sits on a dependency chain of length %d: %w",
					d.Name(), d.Cohort(), lvl, plan.ErrAssignment)
			}
			deps, _ := c.graph.Dependencies(id)
			for _, dep := range deps {
				if dc := c.cohortOf(dep); dc >= d.Cohort() {
					return nil, fmt.Errorf("%s in cohort %d depends on %s in cohort %d: %w",
						d.Name(), d.Cohort(), dep, dc, plan.ErrAssignment)
				}
			}
		}

		pi, err := p.Image(c.tables)
		if err != nil {
			return nil, err
		}
		if mc := pi.MaxCohort(); mc > img.MaxCohort {
			img.MaxCohort = mc
		}
		logger.Debug("Image: Encoded pool.", "pool", p.Tag(), "size", pi.Size, "cohorts", len(pi.Cohorts))
		img.Pools = append(img.Pools, pi)
	}

	c.encodeAux(img)
	img.Tables = c.tables.Build()

	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func (c *Compiler) cohortOf(id string) int {
	if d, ok := c.byID[id]; ok {
		return d.Cohort()
	}
	return -1
}
