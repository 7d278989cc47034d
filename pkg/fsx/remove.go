package fsx

import (
	"context"
	"time"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/metadata"
)

// Unlink removes the directory entry at path.
//
// The final component is not followed: unlinking a symlink removes the
// link itself, never its target. Unlinking a directory reports EISDIR
// (use Rmdir). The inode's Nlink drops by one across remaining hard
// links, and the content blob is reclaimed only when the last link is
// gone.
func (fs *Filesystem) Unlink(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { fs.observe("unlink", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return newError(EISDIR, "unlink", path)
	}

	entry, gerr := fs.store.Get(ctx, npath)
	if gerr != nil {
		return mapLookupError("unlink", path, gerr)
	}
	if entry.Type == metadata.FileTypeDirectory {
		return newError(EISDIR, "unlink", path)
	}

	if err := fs.removeFileEntry(ctx, entry); err != nil {
		return err
	}

	parentPath, _ := metadata.SplitPath(npath)
	parent, perr := fs.store.Get(ctx, parentPath)
	if perr != nil {
		return perr
	}
	return fs.touchParent(ctx, parent, metadata.NowMillis())
}

// Rmdir removes the empty directory at path. A non-directory reports
// ENOTDIR, a directory with children ENOTEMPTY, the root EINVAL.
func (fs *Filesystem) Rmdir(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { fs.observe("rmdir", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return newError(EINVAL, "rmdir", path)
	}

	entry, gerr := fs.store.Get(ctx, npath)
	if gerr != nil {
		return mapLookupError("rmdir", path, gerr)
	}
	if entry.Type != metadata.FileTypeDirectory {
		return newError(ENOTDIR, "rmdir", path)
	}

	children, cerr := fs.store.Children(ctx, npath)
	if cerr != nil {
		return cerr
	}
	if len(children) > 0 {
		return newError(ENOTEMPTY, "rmdir", path)
	}

	if err := fs.removeDirectoryEntry(ctx, entry); err != nil {
		return err
	}

	parentPath, _ := metadata.SplitPath(npath)
	parent, perr := fs.store.Get(ctx, parentPath)
	if perr != nil {
		return perr
	}
	// The removed subdirectory's ".." no longer links the parent.
	parent.Nlink--
	return fs.touchParent(ctx, parent, metadata.NowMillis())
}

// removeFileEntry deletes a non-directory entry, maintains Nlink on the
// surviving hard links, and reclaims the blob when the last link goes.
func (fs *Filesystem) removeFileEntry(ctx context.Context, entry *metadata.FileEntry) error {
	if err := fs.store.Delete(ctx, entry.Path); err != nil {
		return err
	}

	survivors, err := fs.store.FindByID(ctx, entry.ID)
	if err != nil {
		return err
	}

	if len(survivors) == 0 {
		if entry.BlobID != "" {
			if derr := fs.blobs.Delete(ctx, entry.BlobID); derr != nil {
				// The GC sweep picks up blobs this leaves behind.
				logger.Warn("failed to delete blob %s for %s: %v", entry.BlobID, entry.Path, derr)
			}
		}
		return nil
	}

	now := metadata.NowMillis()
	for _, survivor := range survivors {
		survivor.Nlink--
		survivor.Ctime = now
		if err := fs.store.Put(ctx, survivor); err != nil {
			return err
		}
	}
	return nil
}

// removeDirectoryEntry deletes an empty directory's record.
func (fs *Filesystem) removeDirectoryEntry(ctx context.Context, entry *metadata.FileEntry) error {
	return fs.store.Delete(ctx, entry.Path)
}
