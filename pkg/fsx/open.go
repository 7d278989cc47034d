package fsx

import (
	"context"
	"errors"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Open opens the file at path and returns a Handle over its content.
//
// Flags:
//   - "r":  read; the file must exist (ENOENT otherwise)
//   - "w":  write; created if missing, truncated if present
//   - "wx": exclusive write; EEXIST if the path exists
//   - "a":  append; created if missing, the write cursor starts at the
//     current end of content
//
// mode supplies permission bits for a file the open creates (zero means
// 0o644). Symlinks are followed; opening a directory reports EISDIR. The
// handle holds the file's full content in memory; changes persist on
// Sync or Close.
func (fs *Filesystem) Open(ctx context.Context, path, flag string, mode uint32) (h *Handle, err error) {
	start := time.Now()
	defer func() { fs.observe("open", start, err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if flag == "" {
		flag = "r"
	}

	switch flag {
	case "r", "w", "wx", "a":
	default:
		return nil, newError(EINVAL, "open", path)
	}

	npath := metadata.CleanPath(path)
	if npath == "/" {
		return nil, newError(EISDIR, "open", path)
	}

	entry, rerr := fs.resolve(ctx, npath)
	switch {
	case rerr == nil:
		if entry.Type == metadata.FileTypeDirectory {
			return nil, newError(EISDIR, "open", path)
		}
		if flag == "wx" {
			return nil, newError(EEXIST, "open", path)
		}
	case errors.Is(rerr, metadata.ErrEntryNotFound):
		if flag == "r" {
			return nil, newError(ENOENT, "open", path)
		}
		// Creating opens materialize an empty file immediately, so a
		// handle closed without writes still leaves the file behind.
		wopts := &WriteOptions{Mode: mode, Flag: "w"}
		if werr := fs.WriteFile(ctx, path, nil, wopts); werr != nil {
			return nil, werr
		}
		entry, rerr = fs.resolve(ctx, npath)
		if rerr != nil {
			return nil, mapLookupError("open", path, rerr)
		}
	default:
		return nil, rerr
	}

	// Load content: "w" truncates, the rest start from what is stored.
	var buf []byte
	if flag != "w" && entry.BlobID != "" {
		buf, err = fs.blobs.Get(ctx, entry.BlobID)
		if err != nil {
			return nil, err
		}
	}

	handle := &Handle{
		fs:     fs,
		fd:     fs.nextFD.Add(1),
		path:   path,
		entry:  entry,
		buf:    buf,
		cursor: 0,
		open:   true,
		dirty:  flag == "w" && entry.Size != 0,
	}
	if flag == "a" {
		handle.cursor = int64(len(buf))
	}

	count := fs.openHandles.Add(1)
	if fs.metrics != nil {
		fs.metrics.SetOpenHandles(count)
	}
	return handle, nil
}
