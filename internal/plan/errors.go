package plan

import "errors"

// Defects. None of these are recoverable: each means the compiler or a
// hand-written image broke the protocol, and initialization must stop.
var (
	// ErrAssignment is a cohort that does not dominate its dependencies,
	// or a self-reference in a kind that has no pre-init shell.
	ErrAssignment = errors.New("assignment defect")
	// ErrUnresolved is a cross-reference to a slot not yet populated.
	ErrUnresolved = errors.New("resolution defect")
	// ErrPayloadShape is a payload inconsistent with its kind.
	ErrPayloadShape = errors.New("payload shape mismatch")
	// ErrDoubleInit is a slot written twice.
	ErrDoubleInit = errors.New("slot initialized twice")
	// ErrProtocol is a phase run out of order.
	ErrProtocol = errors.New("initialization protocol violation")
	// ErrUnknownName is a native entry point missing from the registry.
	ErrUnknownName = errors.New("unknown native name")
)
