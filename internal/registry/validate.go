package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/plan"
)

// ValidateImage performs a parity check between an image and the native
// code registered here: every name the image will ask for at startup must
// resolve. Function values without an entry point only warn; they are
// built with no body and fail when called.
func (r *Registry) ValidateImage(ctx context.Context, img *plan.Image) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	str := func(i int) string {
		if i < 0 || i >= len(img.Tables.Strings) {
			return ""
		}
		return img.Tables.Strings[i]
	}

	for _, b := range img.Bodies {
		if _, ok := r.Bodies[b.FuncName]; !ok {
			errs = append(errs, fmt.Sprintf("body '%s' has no native implementation", b.FuncName))
		}
	}
	for _, l := range img.Lambdas {
		if _, ok := r.Lambdas[l.Name]; !ok {
			errs = append(errs, fmt.Sprintf("lambda '%s' has no native implementation", l.Name))
		}
	}
	for _, name := range img.BiFs {
		if _, ok := r.BiFs[name]; !ok {
			errs = append(errs, fmt.Sprintf("built-in function '%s' is not registered", name))
		}
	}
	if pi, ok := img.Pool(plan.CallExpr); ok {
		for _, cohort := range pi.Cohorts {
			for _, in := range cohort {
				if len(in.Payload) == 1 {
					if w := str(in.Payload[0]); r.InitExprs[w] == nil {
						errs = append(errs, fmt.Sprintf("init expression '%s' has no wrapper", w))
					}
				}
			}
		}
	}
	if pi, ok := img.Pool(plan.Func); ok {
		for _, cohort := range pi.Cohorts {
			for _, in := range cohort {
				if len(in.Payload) >= 3 {
					if name := str(in.Payload[0]); r.Funcs[name] == nil {
						logger.Warn("Function value has no registered entry point; calls will fail.", "function", name)
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s: %w", strings.Join(errs, "\n- "), plan.ErrUnknownName)
	}
	return nil
}
