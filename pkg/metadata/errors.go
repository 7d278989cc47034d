package metadata

import "errors"

// Store errors
// ============
//
// Stores report failures with sentinel errors wrapped via %w so callers
// can classify them with errors.Is without depending on a concrete store
// implementation. The operation layer translates these into POSIX-shaped
// errors tagged with the caller's original path.

var (
	// ErrEntryNotFound indicates no entry exists at the requested path.
	ErrEntryNotFound = errors.New("metadata: entry not found")

	// ErrInvalidEntry indicates a Put was rejected because the entry
	// violates a structural invariant (see FileEntry.Validate).
	ErrInvalidEntry = errors.New("metadata: invalid entry")

	// ErrStoreClosed indicates the store has been closed and can no
	// longer serve requests.
	ErrStoreClosed = errors.New("metadata: store closed")
)
