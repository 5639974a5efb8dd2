package print

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

// Module implements the registry.Module interface for this package. Out
// defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

// Render formats a value the way print shows it.
func Render(v val.Value) string {
	switch vv := v.(type) {
	case nil:
		return "(null)"
	case *val.StringVal:
		return fmt.Sprintf("%q", vv.String())
	case *val.BoolVal:
		return fmt.Sprint(vv.V)
	case *val.IntVal:
		return fmt.Sprint(vv.V)
	case *val.CountVal:
		return fmt.Sprint(vv.V)
	case *val.DoubleVal:
		return fmt.Sprint(vv.V)
	case *val.AddrVal:
		return vv.String()
	case *val.SubNetVal:
		return vv.String()
	case *val.EnumVal:
		return vv.String()
	case *val.PatternVal:
		return "/" + vv.Text + "/"
	case *val.VectorVal:
		return "[" + renderAll(vv.Elems) + "]"
	case *val.ListVal:
		return "[" + renderAll(vv.Vals) + "]"
	case *val.RecordVal:
		parts := make([]string, len(vv.Fields))
		for i, f := range vv.Fields {
			parts[i] = vv.RecordType.Fields[i].Name + "=" + Render(f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *val.TableVal:
		parts := make([]string, len(vv.Entries))
		for i, e := range vv.Entries {
			parts[i] = Render(e.Key)
			if e.Value != nil {
				parts[i] += " = " + Render(e.Value)
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *val.FuncVal:
		return vv.Name
	}
	return fmt.Sprintf("<%s>", v.Type())
}

func renderAll(vs []val.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Render(v)
	}
	return strings.Join(parts, ", ")
}

// Register registers the print built-in with the registry.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.RegisterBiF("print", func(args []val.Value) (val.Value, error) {
		if _, err := fmt.Fprintln(out, renderAll(args)); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return nil, nil
	})
}
