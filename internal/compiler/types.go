package compiler

import (
	"fmt"

	"github.com/vk/bootgraph/internal/descriptor"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

// RegisterType returns the descriptor for t, registering it and every
// type it mentions on first use. A record type is reserved before its
// fields are visited so that fields can refer back to it.
func (c *Compiler) RegisterType(t val.Type) (descriptor.Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("nil type: %w", plan.ErrAssignment)
	}
	if d, ok := c.types[t]; ok {
		return d, nil
	}
	if c.typesBusy[t] {
		return nil, fmt.Errorf("%s type refers to itself but has no pre-init: %w", t.Tag(), plan.ErrAssignment)
	}

	if rt, ok := t.(*val.RecordType); ok {
		return c.registerRecordType(rt)
	}

	c.typesBusy[t] = true
	defer delete(c.typesBusy, t)

	d, err := c.describeType(t)
	if err != nil {
		return nil, err
	}
	if _, err := c.register(d); err != nil {
		return nil, err
	}
	c.types[t] = d
	return d, nil
}

func (c *Compiler) describeType(t val.Type) (descriptor.Descriptor, error) {
	switch tt := t.(type) {
	case *val.BaseType:
		return descriptor.NewBaseType(tt), nil

	case *val.EnumType:
		return descriptor.NewEnumType(tt), nil

	case *val.OpaqueType:
		return descriptor.NewOpaqueType(tt), nil

	case *val.TypeType:
		inner, err := c.RegisterType(tt.Type)
		if err != nil {
			return nil, err
		}
		return descriptor.NewTypeType(tt, inner), nil

	case *val.VectorType:
		yield, err := c.RegisterType(tt.Yield)
		if err != nil {
			return nil, err
		}
		return descriptor.NewVectorType(tt, yield), nil

	case *val.FileType:
		yield, err := c.RegisterType(tt.Yield)
		if err != nil {
			return nil, err
		}
		return descriptor.NewFileType(tt, yield), nil

	case *val.TypeList:
		members := make([]descriptor.Descriptor, 0, len(tt.Types))
		for _, m := range tt.Types {
			md, err := c.RegisterType(m)
			if err != nil {
				return nil, err
			}
			members = append(members, md)
		}
		return descriptor.NewTypeList(tt, members), nil

	case *val.TableType:
		if tt.Indices == nil {
			return nil, fmt.Errorf("table type without indices: %w", plan.ErrAssignment)
		}
		indices, err := c.RegisterType(tt.Indices)
		if err != nil {
			return nil, err
		}
		var yield descriptor.Descriptor
		if tt.Yield != nil {
			if yield, err = c.RegisterType(tt.Yield); err != nil {
				return nil, err
			}
		}
		return descriptor.NewTableType(tt, indices, yield), nil

	case *val.FuncType:
		params := tt.Params
		if params == nil {
			params = val.NewRecordType("")
			tt.Params = params
		}
		pd, err := c.RegisterType(params)
		if err != nil {
			return nil, err
		}
		var yield descriptor.Descriptor
		if tt.Yield != nil {
			if yield, err = c.RegisterType(tt.Yield); err != nil {
				return nil, err
			}
		}
		return descriptor.NewFuncType(tt, pd, yield), nil
	}
	return nil, fmt.Errorf("unsupported type %T: %w", t, plan.ErrAssignment)
}

func (c *Compiler) registerRecordType(rt *val.RecordType) (descriptor.Descriptor, error) {
	d := descriptor.NewRecordType(rt)
	if _, err := c.reserve(d); err != nil {
		return nil, err
	}
	c.types[rt] = d

	for _, f := range rt.Fields {
		ft, err := c.RegisterType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rt, f.Name, err)
		}
		var fa descriptor.Descriptor
		if f.Attrs != nil {
			if fa, err = c.RegisterAttributes(f.Attrs); err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", rt, f.Name, err)
			}
		}
		d.AddField(descriptor.RecordField{Name: f.Name, Type: ft, Attrs: fa})
	}

	if err := c.commit(d); err != nil {
		return nil, err
	}
	return d, nil
}
