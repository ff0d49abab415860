package types

import "errors"

// Block manager errors.
var (
	// ErrMissingPredecessor is returned when the first block of a branch
	// references a predecessor that is not known anywhere.
	ErrMissingPredecessor = errors.New("missing predecessor")

	// ErrMissingPredecessorInBranch is returned when a block inside a branch
	// does not reference the block immediately before it.
	ErrMissingPredecessorInBranch = errors.New("missing predecessor in branch")

	// ErrMissingInput is returned when an operation receives an empty or
	// structurally invalid argument.
	ErrMissingInput = errors.New("missing input")

	// ErrUnknownBlock is returned when a referenced block id cannot be
	// resolved in the pool or any registered store.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrUnknownStore is returned when a store name is not registered.
	ErrUnknownStore = errors.New("unknown block store")

	// ErrInvalidInputString is returned for malformed string arguments such
	// as store names.
	ErrInvalidInputString = errors.New("invalid input string")

	// ErrInternal is returned for unexpected failures that do not fit any
	// other category. It is surfaced, never swallowed.
	ErrInternal = errors.New("internal error")
)
