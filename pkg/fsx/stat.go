package fsx

import (
	"context"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Stat returns the Stats view for the object at path, following symlink
// chains to the terminal entry.
//
// A dangling or over-deep chain reports ENOENT against the caller's
// path. A trailing slash on a path that resolves to a regular file
// reports ENOTDIR rather than silently ignoring the slash.
func (fs *Filesystem) Stat(ctx context.Context, path string) (stats Stats, err error) {
	start := time.Now()
	defer func() { fs.observe("stat", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Stats{}, ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return Stats{}, mapLookupError("stat", path, rerr)
	}

	if metadata.HasTrailingSlash(path) && entry.Type != metadata.FileTypeDirectory {
		return Stats{}, newError(ENOTDIR, "stat", path)
	}

	return newStats(entry), nil
}

// Lstat returns the Stats view for the object at path without following
// a symlink on the final path component: a symlink reports its own
// metadata, with IsSymbolicLink true and Size the target path length.
func (fs *Filesystem) Lstat(ctx context.Context, path string) (stats Stats, err error) {
	start := time.Now()
	defer func() { fs.observe("lstat", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Stats{}, ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, gerr := fs.store.Get(ctx, npath)
	if gerr != nil {
		return Stats{}, mapLookupError("lstat", path, gerr)
	}

	if metadata.HasTrailingSlash(path) && entry.Type != metadata.FileTypeDirectory {
		return Stats{}, newError(ENOTDIR, "lstat", path)
	}

	return newStats(entry), nil
}
