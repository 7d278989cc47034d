package fsx

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/metadata"
)

// WriteOptions controls WriteFile behavior.
type WriteOptions struct {
	// Encoding names the text encoding WriteFileString decodes with.
	// Ignored by WriteFile. See decodeString for supported names.
	Encoding string

	// Mode is the permission bits for a newly created file. Zero means
	// 0o644. Ignored when the file already exists.
	Mode uint32

	// Flag selects open semantics: "w" (default) replaces content, "wx"
	// fails with EEXIST if the path exists, "a" appends.
	Flag string
}

func (o *WriteOptions) flag() string {
	if o == nil || o.Flag == "" {
		return "w"
	}
	return o.Flag
}

func (o *WriteOptions) mode() uint32 {
	if o == nil || o.Mode == 0 {
		return 0o644
	}
	return o.Mode & (ModePermMask | ModeSetuid | ModeSetgid | ModeSticky)
}

// WriteFile writes data to the file at path, creating it if necessary.
//
// Error semantics:
//   - Root or any directory path: EISDIR (directories cannot be opened
//     for writing)
//   - Parent missing, or an intermediate segment is a file: ENOENT
//   - Flag "wx" and the path exists: EEXIST
//
// Flag "a" appends to existing content; the default "w" replaces it. On
// create, birthtime is set to now; on overwrite it is preserved from the
// prior entry while mtime and ctime advance. Hard-link siblings see the
// new content and size immediately, and the previous blob is reclaimed
// once the entry points at the new one.
func (fs *Filesystem) WriteFile(ctx context.Context, path string, data []byte, opts *WriteOptions) (err error) {
	start := time.Now()
	defer func() { fs.observe("writeFile", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return newError(EISDIR, "open", path)
	}

	// Step 1: Classify the target
	existing, gerr := fs.store.Get(ctx, npath)
	switch {
	case gerr == nil:
		if existing.Type == metadata.FileTypeSymlink {
			// Writing through a symlink targets the terminal entry.
			terminal, werr := fs.walkChain(ctx, existing)
			if werr != nil {
				return mapLookupError("open", path, werr)
			}
			existing = terminal
			npath = terminal.Path
		}
		if existing.Type == metadata.FileTypeDirectory {
			return newError(EISDIR, "open", path)
		}
		if fs.flagExclusive(opts) {
			return newError(EEXIST, "open", path)
		}
	case errors.Is(gerr, metadata.ErrEntryNotFound):
		existing = nil
	default:
		return gerr
	}

	// Step 2: Check the parent when creating
	if existing == nil {
		if perr := fs.requireWritableParent(ctx, path, npath); perr != nil {
			return perr
		}
	}

	// Step 3: Assemble content
	content := data
	if opts.flag() == "a" && existing != nil && existing.BlobID != "" {
		prior, berr := fs.blobs.Get(ctx, existing.BlobID)
		if berr != nil {
			return berr
		}
		content = append(prior, data...)
	}

	// Step 4: Persist blob then metadata
	if existing == nil {
		return fs.createFile(ctx, npath, content, opts.mode())
	}
	return fs.overwriteFile(ctx, existing, content)
}

// WriteFileString writes text data, decoded per opts.Encoding.
func (fs *Filesystem) WriteFileString(ctx context.Context, path, data string, opts *WriteOptions) error {
	var encoding string
	if opts != nil {
		encoding = opts.Encoding
	}

	decoded, err := decodeString(data, encoding)
	if err != nil {
		return wrapError(EINVAL, "writeFile", path, err)
	}
	return fs.WriteFile(ctx, path, decoded, opts)
}

func (fs *Filesystem) flagExclusive(opts *WriteOptions) bool {
	return opts.flag() == "wx"
}

// requireWritableParent verifies the parent of npath exists and is a
// directory. A missing parent and a parent that is itself a file both
// report ENOENT; the type mismatch is deliberately not promoted to
// ENOTDIR here.
func (fs *Filesystem) requireWritableParent(ctx context.Context, path, npath string) error {
	parentPath, _ := metadata.SplitPath(npath)

	parent, err := fs.store.Get(ctx, parentPath)
	if err != nil {
		return mapLookupError("open", path, err)
	}
	if parent.Type != metadata.FileTypeDirectory {
		return newError(ENOENT, "open", path)
	}
	return nil
}

// createFile stores content as a fresh entry at npath.
func (fs *Filesystem) createFile(ctx context.Context, npath string, content []byte, mode uint32) error {
	ref, err := fs.blobs.Put(ctx, content)
	if err != nil {
		return err
	}

	parentPath, name := metadata.SplitPath(npath)
	parent, err := fs.store.Get(ctx, parentPath)
	if err != nil {
		return err
	}

	now := metadata.NowMillis()
	entry := &metadata.FileEntry{
		ID:        uuid.NewString(),
		ParentID:  parent.ID,
		Name:      name,
		Path:      npath,
		Type:      metadata.FileTypeRegular,
		Mode:      mode,
		UID:       fs.identity.UID,
		GID:       fs.identity.GID,
		Size:      uint64(len(content)),
		BlobID:    ref.ID,
		Nlink:     1,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}

	if err := fs.store.Put(ctx, entry); err != nil {
		// Roll back the orphaned blob; GC would catch it eventually but
		// there is no reason to wait.
		if derr := fs.blobs.Delete(ctx, ref.ID); derr != nil {
			logger.Warn("failed to delete orphaned blob %s: %v", ref.ID, derr)
		}
		return err
	}

	return fs.touchParent(ctx, parent, now)
}

// overwriteFile replaces the content of an existing entry, updating
// every hard-link sibling and reclaiming the previous blob.
func (fs *Filesystem) overwriteFile(ctx context.Context, existing *metadata.FileEntry, content []byte) error {
	ref, err := fs.blobs.Put(ctx, content)
	if err != nil {
		return err
	}

	oldBlob := existing.BlobID
	now := metadata.NowMillis()

	siblings, err := fs.store.FindByID(ctx, existing.ID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		sibling.BlobID = ref.ID
		sibling.Size = uint64(len(content))
		sibling.Mtime = now
		sibling.Ctime = now
		// Birthtime is carried over untouched: overwrites never reset it.
		if err := fs.store.Put(ctx, sibling); err != nil {
			return err
		}
	}

	if oldBlob != "" && oldBlob != ref.ID {
		if err := fs.blobs.Delete(ctx, oldBlob); err != nil {
			logger.Warn("failed to delete replaced blob %s: %v", oldBlob, err)
		}
	}
	return nil
}

// touchParent advances a directory's mtime/ctime after its entry list
// changed.
func (fs *Filesystem) touchParent(ctx context.Context, parent *metadata.FileEntry, now int64) error {
	parent.Mtime = now
	parent.Ctime = now
	return fs.store.Put(ctx, parent)
}

// Truncate resizes the file at path to exactly size bytes, shrinking or
// zero-extending its content. Symlinks are followed; truncating a
// directory reports EISDIR and any other non-regular entry EINVAL.
func (fs *Filesystem) Truncate(ctx context.Context, path string, size uint64) (err error) {
	start := time.Now()
	defer func() { fs.observe("truncate", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return mapLookupError("truncate", path, rerr)
	}
	if entry.Type == metadata.FileTypeDirectory {
		return newError(EISDIR, "truncate", path)
	}
	if entry.Type != metadata.FileTypeRegular {
		return newError(EINVAL, "truncate", path)
	}

	var content []byte
	if entry.BlobID != "" {
		content, err = fs.blobs.Get(ctx, entry.BlobID)
		if err != nil {
			return err
		}
	}

	if uint64(len(content)) == size {
		return nil
	}
	content = resizeBuffer(content, size)

	return fs.overwriteFile(ctx, entry, content)
}

// resizeBuffer shrinks or zero-extends buf to exactly size bytes.
func resizeBuffer(buf []byte, size uint64) []byte {
	if uint64(len(buf)) >= size {
		return buf[:size]
	}
	out := make([]byte, size)
	copy(out, buf)
	return out
}

// Utimes sets the access and modification times of the object at path.
// Symlinks are followed. Ctime advances to now.
func (fs *Filesystem) Utimes(ctx context.Context, path string, atime, mtime time.Time) (err error) {
	start := time.Now()
	defer func() { fs.observe("utimes", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return mapLookupError("utimes", path, rerr)
	}

	now := metadata.NowMillis()
	siblings, serr := fs.store.FindByID(ctx, entry.ID)
	if serr != nil {
		return serr
	}
	for _, sibling := range siblings {
		sibling.Atime = atime.UnixMilli()
		sibling.Mtime = mtime.UnixMilli()
		sibling.Ctime = now
		// Backdating mtime past the creation time would break the
		// birthtime ordering invariant; drag birthtime along instead.
		if sibling.Birthtime > sibling.Mtime {
			sibling.Birthtime = sibling.Mtime
		}
		if err := fs.store.Put(ctx, sibling); err != nil {
			return err
		}
	}
	return nil
}
