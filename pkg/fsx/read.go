package fsx

import (
	"context"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// ReadFile returns the full content of the file at path, following
// symlink chains. Reading a directory reports EISDIR; a file with no
// content yet reads as empty.
func (fs *Filesystem) ReadFile(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() { fs.observe("readFile", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return nil, mapLookupError("open", path, rerr)
	}
	if entry.Type == metadata.FileTypeDirectory {
		return nil, newError(EISDIR, "read", path)
	}

	if entry.BlobID == "" {
		return []byte{}, nil
	}
	return fs.blobs.Get(ctx, entry.BlobID)
}

// Readlink returns the target of the symlink at path, without following
// it. A non-symlink entry reports EINVAL.
func (fs *Filesystem) Readlink(ctx context.Context, path string) (target string, err error) {
	start := time.Now()
	defer func() { fs.observe("readlink", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, gerr := fs.store.Get(ctx, npath)
	if gerr != nil {
		return "", mapLookupError("readlink", path, gerr)
	}
	if entry.Type != metadata.FileTypeSymlink {
		return "", newError(EINVAL, "readlink", path)
	}
	return entry.LinkTarget, nil
}

// Readdir lists the direct children of the directory at path in
// lexicographic name order. Symlinks on the directory path are followed;
// listing a non-directory reports ENOTDIR.
func (fs *Filesystem) Readdir(ctx context.Context, path string) (entries []Dirent, err error) {
	start := time.Now()
	defer func() { fs.observe("readdir", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	npath := metadata.CleanPath(path)

	entry, rerr := fs.resolve(ctx, npath)
	if rerr != nil {
		return nil, mapLookupError("readdir", path, rerr)
	}
	if entry.Type != metadata.FileTypeDirectory {
		return nil, newError(ENOTDIR, "readdir", path)
	}

	children, cerr := fs.store.Children(ctx, entry.Path)
	if cerr != nil {
		return nil, cerr
	}

	entries = make([]Dirent, 0, len(children))
	for _, child := range children {
		entries = append(entries, Dirent{
			Name:       child.Name,
			ParentPath: entry.Path,
			Type:       child.Type,
		})
	}
	return entries, nil
}
