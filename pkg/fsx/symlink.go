package fsx

import (
	"context"

	"github.com/dot-do/fsx/pkg/metadata"
)

// DefaultMaxLinkDepth is the symlink chain depth ceiling. The bound
// guards against cycles and runaway loops, not performance; exhausting it
// reports the same not-found signal as a dangling link.
const DefaultMaxLinkDepth = 40

// resolve returns the terminal non-symlink entry for a normalized path,
// following link chains.
//
// Stores that implement metadata.SymlinkResolver handle the walk
// themselves; otherwise the chain is followed manually with repeated Get
// calls. Either way a dangling target, a cycle, or an exhausted depth
// budget comes back as metadata.ErrEntryNotFound. Callers attribute that
// error to the path the caller originally supplied, never to an
// intermediate link.
func (fs *Filesystem) resolve(ctx context.Context, npath string) (*metadata.FileEntry, error) {
	entry, err := fs.store.Get(ctx, npath)
	if err != nil {
		return nil, err
	}
	if entry.Type != metadata.FileTypeSymlink {
		return entry, nil
	}

	if resolver, ok := fs.store.(metadata.SymlinkResolver); ok {
		return resolver.ResolveSymlink(ctx, npath, fs.maxLinkDepth)
	}
	return fs.walkChain(ctx, entry)
}

// walkChain follows LinkTarget hops until a non-symlink entry is reached
// or the depth budget runs out.
//
// Relative targets are resolved against the directory containing the
// symlink, absolute targets as-is.
func (fs *Filesystem) walkChain(ctx context.Context, entry *metadata.FileEntry) (*metadata.FileEntry, error) {
	for depth := 0; depth < fs.maxLinkDepth; depth++ {
		if entry.Type != metadata.FileTypeSymlink {
			return entry, nil
		}

		linkDir, _ := metadata.SplitPath(entry.Path)
		targetPath := metadata.ResolveTarget(linkDir, entry.LinkTarget)

		next, err := fs.store.Get(ctx, targetPath)
		if err != nil {
			return nil, err
		}
		entry = next
	}

	// Depth exhausted. Cycles and over-long chains collapse into the
	// not-found signal rather than a distinct loop error.
	return nil, metadata.ErrEntryNotFound
}
