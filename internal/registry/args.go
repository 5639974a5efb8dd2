package registry

import (
	"fmt"

	"github.com/vk/bootgraph/internal/val"
)

// Arity fails unless exactly n arguments were passed.
func Arity(name string, args []val.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// StringArg returns argument i as a Go string.
func StringArg(name string, args []val.Value, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s: missing argument %d", name, i)
	}
	s, ok := args[i].(*val.StringVal)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string, got %T", name, i, args[i])
	}
	return s.String(), nil
}
