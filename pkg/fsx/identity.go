package fsx

// Access mask bits, matching the POSIX access(2) constants.
const (
	// F_OK tests for existence only; permission bits are not inspected.
	F_OK uint32 = 0

	// X_OK tests execute permission (traversal, for directories).
	X_OK uint32 = 1

	// W_OK tests write permission.
	W_OK uint32 = 2

	// R_OK tests read permission.
	R_OK uint32 = 4
)

// Identity is the caller identity access checks evaluate against.
//
// Groups lists supplementary group IDs; GID is the primary group and is
// consulted first. The zero value is uid 0 / gid 0 with no supplementary
// groups, which the permission model treats like any other identity
// (there is no root bypass at this layer).
type Identity struct {
	UID    uint32
	GID    uint32
	Groups []uint32
}

// InGroup reports whether gid is the identity's primary or one of its
// supplementary groups.
func (id Identity) InGroup(gid uint32) bool {
	if id.GID == gid {
		return true
	}
	for _, g := range id.Groups {
		if g == gid {
			return true
		}
	}
	return false
}
