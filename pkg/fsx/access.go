package fsx

import (
	"context"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Access checks whether the filesystem's identity may access the path
// with the requested mask of R_OK, W_OK and X_OK bits.
//
// F_OK (zero mask) tests existence only: it succeeds for any path stat
// succeeds on, regardless of permission bits. Symlinks are followed; a
// broken chain reports ENOENT against the caller's path. A missing
// permission bit reports EACCES.
func (fs *Filesystem) Access(ctx context.Context, path string, mask uint32) (err error) {
	start := time.Now()
	defer func() { fs.observe("access", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return mapLookupError("access", path, rerr)
	}

	// Existence confirmed; F_OK asks for nothing more.
	if mask == F_OK {
		return nil
	}

	if !checkAccess(entry, fs.identity, mask) {
		return newError(EACCES, "access", path)
	}
	return nil
}

// checkAccess evaluates the requested mask against the entry's
// permission bits for the given identity.
//
// Triad selection: owner bits when the identity's uid matches the
// entry's uid, else group bits when the entry's gid is the identity's
// primary or a supplementary group, else other bits. Special bits
// (setuid/setgid/sticky) are masked out first; only the low 9 bits
// matter. X_OK on a directory means traversable, but the bit check is
// identical to the file case.
func checkAccess(entry *metadata.FileEntry, id Identity, mask uint32) bool {
	perm := entry.Mode & ModePermMask

	var triad uint32
	switch {
	case id.UID == entry.UID:
		triad = (perm >> 6) & 0o7
	case id.InGroup(entry.GID):
		triad = (perm >> 3) & 0o7
	default:
		triad = perm & 0o7
	}

	want := mask & (R_OK | W_OK | X_OK)
	return triad&want == want
}
