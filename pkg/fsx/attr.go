package fsx

import (
	"context"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Chmod sets the permission bits of the object at path. Symlinks are
// followed. Only the low 12 bits (rwx triads plus setuid/setgid/sticky)
// are taken from mode; type bits are ignored. Ctime advances.
func (fs *Filesystem) Chmod(ctx context.Context, path string, mode uint32) (err error) {
	start := time.Now()
	defer func() { fs.observe("chmod", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	update := func(entry *metadata.FileEntry, now int64) {
		entry.Mode = mode & (ModePermMask | ModeSetuid | ModeSetgid | ModeSticky)
		entry.Ctime = now
	}
	return fs.updateInode(ctx, "chmod", path, update)
}

// Chown sets the owner uid and gid of the object at path. Symlinks are
// followed. A negative value leaves the corresponding ID unchanged,
// matching the chown(2) convention. Ctime advances.
func (fs *Filesystem) Chown(ctx context.Context, path string, uid, gid int64) (err error) {
	start := time.Now()
	defer func() { fs.observe("chown", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	update := func(entry *metadata.FileEntry, now int64) {
		if uid >= 0 {
			entry.UID = uint32(uid)
		}
		if gid >= 0 {
			entry.GID = uint32(gid)
		}
		entry.Ctime = now
	}
	return fs.updateInode(ctx, "chown", path, update)
}

// updateInode resolves path through symlinks and applies a metadata
// mutation to every hard link of the terminal inode.
func (fs *Filesystem) updateInode(ctx context.Context, op, path string, update func(*metadata.FileEntry, int64)) error {
	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return mapLookupError(op, path, rerr)
	}

	siblings, serr := fs.store.FindByID(ctx, entry.ID)
	if serr != nil {
		return serr
	}

	now := metadata.NowMillis()
	for _, sibling := range siblings {
		update(sibling, now)
		if err := fs.store.Put(ctx, sibling); err != nil {
			return err
		}
	}
	return nil
}
