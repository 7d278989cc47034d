package fsx

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Symlink creates a symbolic link at path pointing to target.
//
// The target is stored verbatim and may be relative (resolved against
// the link's directory on traversal) or absolute. It does not have to
// exist: dangling links are legal and only fail when followed.
func (fs *Filesystem) Symlink(ctx context.Context, target, path string) (err error) {
	start := time.Now()
	defer func() { fs.observe("symlink", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return newError(EEXIST, "symlink", path)
	}
	if target == "" {
		return newError(EINVAL, "symlink", path)
	}

	ok, herr := fs.store.Has(ctx, npath)
	if herr != nil {
		return herr
	}
	if ok {
		return newError(EEXIST, "symlink", path)
	}

	parentPath, name := metadata.SplitPath(npath)
	parent, gerr := fs.store.Get(ctx, parentPath)
	if gerr != nil {
		return mapLookupError("symlink", path, gerr)
	}
	if parent.Type != metadata.FileTypeDirectory {
		return newError(ENOTDIR, "symlink", path)
	}

	now := metadata.NowMillis()
	entry := &metadata.FileEntry{
		ID:         uuid.NewString(),
		ParentID:   parent.ID,
		Name:       name,
		Path:       npath,
		Type:       metadata.FileTypeSymlink,
		Mode:       0o777,
		UID:        fs.identity.UID,
		GID:        fs.identity.GID,
		Size:       uint64(len(target)),
		LinkTarget: target,
		Nlink:      1,
		Atime:      now,
		Mtime:      now,
		Ctime:      now,
		Birthtime:  now,
	}

	if err := fs.store.Put(ctx, entry); err != nil {
		return err
	}
	return fs.touchParent(ctx, parent, now)
}

// Link creates a hard link at path to the object at existing.
//
// Both paths then share one inode: identical ID, blob reference, mode,
// ownership and timestamps, with Nlink counting the paths. The final
// component of existing is not followed if it is a symlink, so hard
// links to symlinks are possible. Linking a directory reports EISDIR.
func (fs *Filesystem) Link(ctx context.Context, existing, path string) (err error) {
	start := time.Now()
	defer func() { fs.observe("link", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	srcPath := metadata.CleanPath(existing)
	npath := metadata.CleanPath(path)

	src, gerr := fs.store.Get(ctx, srcPath)
	if gerr != nil {
		return mapLookupError("link", existing, gerr)
	}
	if src.Type == metadata.FileTypeDirectory {
		return newError(EISDIR, "link", existing)
	}

	ok, herr := fs.store.Has(ctx, npath)
	if herr != nil {
		return herr
	}
	if ok {
		return newError(EEXIST, "link", path)
	}

	parentPath, name := metadata.SplitPath(npath)
	parent, perr := fs.store.Get(ctx, parentPath)
	if perr != nil {
		return mapLookupError("link", path, perr)
	}
	if parent.Type != metadata.FileTypeDirectory {
		return newError(ENOTDIR, "link", path)
	}

	// The new entry is the source entry under a new path; Nlink rises on
	// every path to the inode, the new one included.
	now := metadata.NowMillis()
	newLink := src.Clone()
	newLink.ParentID = parent.ID
	newLink.Name = name
	newLink.Path = npath
	newLink.Nlink = src.Nlink + 1
	newLink.Ctime = now

	if err := fs.store.Put(ctx, newLink); err != nil {
		return err
	}

	siblings, serr := fs.store.FindByID(ctx, src.ID)
	if serr != nil {
		return serr
	}
	for _, sibling := range siblings {
		if sibling.Path == npath {
			continue
		}
		sibling.Nlink = newLink.Nlink
		sibling.Ctime = now
		if err := fs.store.Put(ctx, sibling); err != nil {
			return err
		}
	}

	return fs.touchParent(ctx, parent, now)
}

// Rename moves the object at oldPath to newPath, atomically from the
// caller's perspective (the store sees a sequence of puts and deletes).
//
// An existing newPath is replaced when types are compatible: a
// non-directory may only replace a non-directory (EISDIR/ENOTDIR
// otherwise) and a directory may only replace an empty directory
// (ENOTEMPTY). Directory renames carry the whole subtree to its new
// paths.
func (fs *Filesystem) Rename(ctx context.Context, oldPath, newPath string) (err error) {
	start := time.Now()
	defer func() { fs.observe("rename", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	src := metadata.CleanPath(oldPath)
	dst := metadata.CleanPath(newPath)

	if src == "/" || dst == "/" {
		return newError(EINVAL, "rename", oldPath)
	}
	if src == dst {
		return nil
	}
	// A directory cannot be moved into its own subtree; the move would
	// orphan the destination parent mid-rewrite.
	if strings.HasPrefix(dst, src+"/") {
		return newError(EINVAL, "rename", newPath)
	}

	entry, gerr := fs.store.Get(ctx, src)
	if gerr != nil {
		return mapLookupError("rename", oldPath, gerr)
	}

	// Step 1: Clear the destination
	replacedDir := false
	target, terr := fs.store.Get(ctx, dst)
	switch {
	case terr == nil:
		if target.Type == metadata.FileTypeDirectory {
			if entry.Type != metadata.FileTypeDirectory {
				return newError(EISDIR, "rename", newPath)
			}
			children, cerr := fs.store.Children(ctx, dst)
			if cerr != nil {
				return cerr
			}
			if len(children) > 0 {
				return newError(ENOTEMPTY, "rename", newPath)
			}
			if derr := fs.removeDirectoryEntry(ctx, target); derr != nil {
				return derr
			}
			replacedDir = true
		} else {
			if entry.Type == metadata.FileTypeDirectory {
				return newError(ENOTDIR, "rename", newPath)
			}
			if derr := fs.removeFileEntry(ctx, target); derr != nil {
				return derr
			}
		}
	case errors.Is(terr, metadata.ErrEntryNotFound):
		// Nothing to replace
	default:
		return terr
	}

	// Step 2: Check the destination parent
	dstParentPath, dstName := metadata.SplitPath(dst)
	dstParent, perr := fs.store.Get(ctx, dstParentPath)
	if perr != nil {
		return mapLookupError("rename", newPath, perr)
	}
	if dstParent.Type != metadata.FileTypeDirectory {
		return newError(ENOTDIR, "rename", newPath)
	}

	// Step 3: Move the entry, and the subtree for directories
	now := metadata.NowMillis()

	if entry.Type == metadata.FileTypeDirectory {
		if err := fs.moveSubtree(ctx, src, dst); err != nil {
			return err
		}
	}

	moved := entry.Clone()
	moved.ParentID = dstParent.ID
	moved.Name = dstName
	moved.Path = dst
	moved.Ctime = now

	if err := fs.store.Put(ctx, moved); err != nil {
		return err
	}
	if err := fs.store.Delete(ctx, src); err != nil {
		return err
	}

	// Step 4: Touch both parents; directory moves also shift a link, and
	// a replaced directory target took the destination parent's ".." link
	// with it
	if replacedDir {
		dstParent.Nlink--
	}
	srcParentPath, _ := metadata.SplitPath(src)
	if srcParentPath != dstParentPath {
		srcParent, sperr := fs.store.Get(ctx, srcParentPath)
		if sperr != nil {
			return sperr
		}
		if entry.Type == metadata.FileTypeDirectory {
			srcParent.Nlink--
			dstParent.Nlink++
		}
		if err := fs.touchParent(ctx, srcParent, now); err != nil {
			return err
		}
	}
	return fs.touchParent(ctx, dstParent, now)
}

// moveSubtree rewrites the paths of every descendant of src to live
// under dst. Depth-first so children land before their old records go.
func (fs *Filesystem) moveSubtree(ctx context.Context, src, dst string) error {
	children, err := fs.store.Children(ctx, src)
	if err != nil {
		return err
	}

	for _, child := range children {
		oldChildPath := child.Path
		newChildPath := metadata.JoinPath(dst, child.Name)

		if child.Type == metadata.FileTypeDirectory {
			if err := fs.moveSubtree(ctx, oldChildPath, newChildPath); err != nil {
				return err
			}
		}

		moved := child.Clone()
		moved.Path = newChildPath
		if err := fs.store.Put(ctx, moved); err != nil {
			return err
		}
		if err := fs.store.Delete(ctx, oldChildPath); err != nil {
			return err
		}
	}
	return nil
}
