package fsx

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Mkdir creates a directory at path with the given permission bits
// (zero means 0o755).
//
// Error semantics:
//   - Path already exists (any type): EEXIST
//   - Parent missing: ENOENT
//   - Parent is not a directory: ENOTDIR
func (fs *Filesystem) Mkdir(ctx context.Context, path string, mode uint32) (err error) {
	start := time.Now()
	defer func() { fs.observe("mkdir", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return newError(EEXIST, "mkdir", path)
	}

	ok, herr := fs.store.Has(ctx, npath)
	if herr != nil {
		return herr
	}
	if ok {
		return newError(EEXIST, "mkdir", path)
	}

	parentPath, _ := metadata.SplitPath(npath)
	parent, gerr := fs.store.Get(ctx, parentPath)
	if gerr != nil {
		return mapLookupError("mkdir", path, gerr)
	}
	if parent.Type != metadata.FileTypeDirectory {
		return newError(ENOTDIR, "mkdir", path)
	}

	return fs.createDirectory(ctx, parent, npath, mode)
}

// MkdirAll creates the directory at path along with any missing parent
// directories, like mkdir -p. Existing directories along the way are
// fine; an existing non-directory segment reports ENOTDIR (or EEXIST
// when it is the final segment).
func (fs *Filesystem) MkdirAll(ctx context.Context, path string, mode uint32) (err error) {
	start := time.Now()
	defer func() { fs.observe("mkdirAll", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return nil
	}

	// Walk from the root down, creating as needed.
	segments := splitSegments(npath)
	current := "/"
	parent, gerr := fs.store.Get(ctx, current)
	if gerr != nil {
		return mapLookupError("mkdirAll", path, gerr)
	}

	for i, segment := range segments {
		current = metadata.JoinPath(current, segment)
		final := i == len(segments)-1

		entry, eerr := fs.store.Get(ctx, current)
		switch {
		case eerr == nil:
			if entry.Type != metadata.FileTypeDirectory {
				if final {
					return newError(EEXIST, "mkdirAll", path)
				}
				return newError(ENOTDIR, "mkdirAll", path)
			}
			parent = entry
		case errors.Is(eerr, metadata.ErrEntryNotFound):
			if cerr := fs.createDirectory(ctx, parent, current, mode); cerr != nil {
				return cerr
			}
			created, gerr := fs.store.Get(ctx, current)
			if gerr != nil {
				return gerr
			}
			parent = created
		default:
			return eerr
		}
	}
	return nil
}

// createDirectory writes a fresh directory entry under parent and bumps
// the parent's link count and timestamps.
func (fs *Filesystem) createDirectory(ctx context.Context, parent *metadata.FileEntry, npath string, mode uint32) error {
	if mode == 0 {
		mode = 0o755
	}
	mode &= ModePermMask | ModeSetuid | ModeSetgid | ModeSticky

	_, name := metadata.SplitPath(npath)
	now := metadata.NowMillis()

	entry := &metadata.FileEntry{
		ID:        uuid.NewString(),
		ParentID:  parent.ID,
		Name:      name,
		Path:      npath,
		Type:      metadata.FileTypeDirectory,
		Mode:      mode,
		UID:       fs.identity.UID,
		GID:       fs.identity.GID,
		Nlink:     2,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}

	if err := fs.store.Put(ctx, entry); err != nil {
		return err
	}

	// A subdirectory's ".." adds one link to the parent.
	parent.Nlink++
	return fs.touchParent(ctx, parent, now)
}

// splitSegments breaks a normalized non-root path into its components.
func splitSegments(npath string) []string {
	var segments []string
	start := 1
	for i := 1; i <= len(npath); i++ {
		if i == len(npath) || npath[i] == '/' {
			if i > start {
				segments = append(segments, npath[start:i])
			}
			start = i + 1
		}
	}
	return segments
}
