package runtime

import (
	"context"
	"fmt"

	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

// registerAux runs the one-shot registrations. They only read pooled
// objects, so their relative order does not matter.
func (e *Engine) registerAux(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for _, g := range e.img.Globals {
		if err := e.registerGlobal(g); err != nil {
			return fmt.Errorf("global %s: %w", g.Name, err)
		}
	}
	for _, b := range e.img.Bodies {
		if err := e.registerBody(ctx, b); err != nil {
			return fmt.Errorf("body %s: %w", b.FuncName, err)
		}
	}
	for _, l := range e.img.Lambdas {
		if err := e.registerLambda(l); err != nil {
			return fmt.Errorf("lambda %s: %w", l.Name, err)
		}
	}
	for _, name := range e.img.BiFs {
		if err := e.registerBiF(name); err != nil {
			return err
		}
	}
	for _, fm := range e.img.FieldMappings {
		idx, err := e.mapField(fm)
		if err != nil {
			return fmt.Errorf("field mapping %s: %w", fm.FieldName, err)
		}
		e.fieldIndices = append(e.fieldIndices, idx)
	}
	for _, em := range e.img.EnumMappings {
		ord, err := e.mapEnum(em)
		if err != nil {
			return fmt.Errorf("enum mapping %s: %w", em.Name, err)
		}
		e.enumOrdinals = append(e.enumOrdinals, ord)
	}

	logger.Debug("Replay: Aux registrations complete.",
		"globals", len(e.img.Globals), "bodies", len(e.img.Bodies), "lambdas", len(e.img.Lambdas), "bifs", len(e.img.BiFs))
	return nil
}

// registerGlobal installs or reuses a global. An existing global keeps
// its value; only an unset one takes the image's.
func (e *Engine) registerGlobal(g plan.Global) error {
	t, err := e.mgr.Types(g.Type)
	if err != nil {
		return err
	}
	attrs, err := e.mgr.OptAttrs(g.Attrs)
	if err != nil {
		return err
	}
	v, err := e.mgr.OptConstVal(g.Val)
	if err != nil {
		return err
	}

	id, _ := e.scope.Install(g.Name)
	if id.Type == nil {
		id.Type = t
	}
	if id.Attrs == nil {
		id.Attrs = attrs
	}
	if g.Exported {
		id.Exported = true
	}
	if id.Val == nil && v != nil {
		id.Val = v
	}
	return nil
}

func (e *Engine) funcGlobal(name string, ft *val.FuncType, fn val.NativeFunc, hash uint64) *val.FuncVal {
	id, _ := e.scope.Install(name)
	if fv, ok := id.Val.(*val.FuncVal); ok {
		if fv.Body == nil {
			fv.Body = fn
		}
		return fv
	}
	fv := &val.FuncVal{Name: name, FuncType: ft, Body: fn, Hash: hash}
	if id.Type == nil {
		id.Type = ft
	}
	if id.Val == nil {
		id.Val = fv
	}
	return fv
}

// registerBody binds a compiled body to its function global and to the
// handler list of each event it serves. A body whose hash was already
// bound by an earlier image is skipped.
func (e *Engine) registerBody(ctx context.Context, b plan.Body) error {
	ft, err := typeAt[*val.FuncType](e.mgr, b.Type)
	if err != nil {
		return err
	}
	hash, err := e.mgr.Hashes(b.Hash)
	if err != nil {
		return err
	}
	fn, ok := e.reg.Bodies[b.FuncName]
	if !ok {
		return fmt.Errorf("no native body: %w", plan.ErrUnknownName)
	}
	if !e.reg.ClaimBody(hash, b.FuncName) {
		ctxlog.FromContext(ctx).Debug("Replay: Skipping duplicate body.", "func", b.FuncName, "hash", hash)
		return nil
	}
	e.funcGlobal(b.FuncName, ft, fn, hash)
	for _, ev := range b.Events {
		e.reg.AddHandler(ev, registry.Handler{FuncName: b.FuncName, Priority: b.Priority, Body: fn})
	}
	return nil
}

func (e *Engine) registerLambda(l plan.Lambda) error {
	ft, err := typeAt[*val.FuncType](e.mgr, l.Type)
	if err != nil {
		return err
	}
	hash, err := e.mgr.Hashes(l.Hash)
	if err != nil {
		return err
	}
	fn, ok := e.reg.Lambdas[l.Name]
	if !ok {
		return fmt.Errorf("no native body: %w", plan.ErrUnknownName)
	}
	e.funcGlobal(l.Name, ft, fn, hash)
	return nil
}

// registerBiF makes a built-in function callable by name. A name the
// registry does not know is fatal.
func (e *Engine) registerBiF(name string) error {
	fn, ok := e.reg.LookupBiF(name)
	if !ok {
		return fmt.Errorf("built-in function %q: %w", name, plan.ErrUnknownName)
	}
	e.funcGlobal(name, initExprType(), fn, 0)
	return nil
}

// mapField returns the index of a field, appending it to the record
// type first if it is missing.
func (e *Engine) mapField(fm plan.FieldMapping) (int, error) {
	rt, err := typeAt[*val.RecordType](e.mgr, fm.Record)
	if err != nil {
		return -1, err
	}
	if idx := rt.FieldOffset(fm.FieldName); idx >= 0 {
		return idx, nil
	}
	ft, err := e.mgr.Types(fm.FieldType)
	if err != nil {
		return -1, err
	}
	attrs, err := e.mgr.OptAttrs(fm.Attrs)
	if err != nil {
		return -1, err
	}
	return rt.AddField(fm.FieldName, ft, attrs)
}

// mapEnum returns the ordinal of a name, adding it with the next free
// ordinal if the enum type lacks it.
func (e *Engine) mapEnum(em plan.EnumMapping) (int, error) {
	et, err := typeAt[*val.EnumType](e.mgr, em.Enum)
	if err != nil {
		return -1, err
	}
	if ord, ok := et.Lookup(em.Name); ok {
		return ord, nil
	}
	ord := et.NextOrdinal()
	if err := et.AddName(em.Name, ord); err != nil {
		return -1, err
	}
	return ord, nil
}
