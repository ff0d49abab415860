package types

import (
	"fmt"
	"regexp"
)

// Validation limits for input parameters.
const (
	// MaxStoreNameLength is the maximum allowed length for a store name.
	MaxStoreNameLength = 128
)

// storeNamePattern matches valid store names: an identifier starting with a
// letter or underscore, followed by letters, digits, underscores or hyphens.
var storeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateStoreName validates a block store name.
func ValidateStoreName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: store name cannot be empty", ErrInvalidInputString)
	}
	if len(name) > MaxStoreNameLength {
		return fmt.Errorf("%w: store name exceeds %d characters", ErrInvalidInputString, MaxStoreNameLength)
	}
	if !storeNamePattern.MatchString(name) {
		return fmt.Errorf("%w: malformed store name: %q", ErrInvalidInputString, name)
	}
	return nil
}

// ValidateBlock validates a block submitted to the manager.
func ValidateBlock(b *Block) error {
	if b == nil {
		return fmt.Errorf("%w: nil block", ErrMissingInput)
	}
	if b.ID.IsEmpty() {
		return fmt.Errorf("%w: block has empty id", ErrMissingInput)
	}
	if b.ID.IsNull() {
		return fmt.Errorf("%w: block id is the null identifier", ErrMissingInput)
	}
	if b.PrevID.IsEmpty() {
		return fmt.Errorf("%w: block %s has empty predecessor id", ErrMissingInput, b.ID.Short())
	}
	return nil
}
