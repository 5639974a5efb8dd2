package runtime

import (
	"fmt"

	"github.com/vk/bootgraph/internal/plan"
)

// store is one pool's storage array. A slot is resolvable once it holds
// an object, and built once its instruction has run. Pre-init shells are
// resolvable before they are built.
type store[T any] struct {
	tag   plan.Tag
	slots []T
	set   []bool
	built []bool
}

func newStore[T any](tag plan.Tag, size int) *store[T] {
	return &store[T]{
		tag:   tag,
		slots: make([]T, size),
		set:   make([]bool, size),
		built: make([]bool, size),
	}
}

func (s *store[T]) inRange(off int) error {
	if off < 0 || off >= len(s.slots) {
		return fmt.Errorf("%s out of range [0,%d): %w", plan.Ref{Tag: s.tag, Offset: off}, len(s.slots), plan.ErrPayloadShape)
	}
	return nil
}

func (s *store[T]) get(off int) (T, error) {
	var zero T
	if err := s.inRange(off); err != nil {
		return zero, err
	}
	if !s.set[off] {
		return zero, fmt.Errorf("%s read before it was built: %w", plan.Ref{Tag: s.tag, Offset: off}, plan.ErrUnresolved)
	}
	return s.slots[off], nil
}

// shell installs a placeholder that later instructions may already cite.
func (s *store[T]) shell(off int, v T) error {
	if err := s.inRange(off); err != nil {
		return err
	}
	if s.set[off] {
		return fmt.Errorf("%s pre-initialized twice: %w", plan.Ref{Tag: s.tag, Offset: off}, plan.ErrDoubleInit)
	}
	s.slots[off] = v
	s.set[off] = true
	return nil
}

func (s *store[T]) put(off int, v T) error {
	if err := s.inRange(off); err != nil {
		return err
	}
	if s.built[off] {
		return fmt.Errorf("%s initialized twice: %w", plan.Ref{Tag: s.tag, Offset: off}, plan.ErrDoubleInit)
	}
	s.slots[off] = v
	s.set[off] = true
	s.built[off] = true
	return nil
}

// unbuilt returns the offsets whose instruction never ran.
func (s *store[T]) unbuilt() []int {
	var out []int
	for i, b := range s.built {
		if !b {
			out = append(out, i)
		}
	}
	return out
}
