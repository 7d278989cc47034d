package metadata

import (
	"fmt"
	"time"
)

// FileType represents the type of a filesystem object.
type FileType int

const (
	// FileTypeRegular is a regular file containing data
	FileTypeRegular FileType = iota

	// FileTypeDirectory is a directory (container for other files)
	FileTypeDirectory

	// FileTypeSymlink is a symbolic link (contains a path to another file)
	FileTypeSymlink

	// FileTypeBlockDevice is a block device (disk, partition, etc.)
	FileTypeBlockDevice

	// FileTypeCharDevice is a character device (terminal, serial port, etc.)
	FileTypeCharDevice

	// FileTypeFIFO is a named pipe (FIFO for IPC)
	FileTypeFIFO

	// FileTypeSocket is a Unix domain socket (IPC endpoint)
	FileTypeSocket
)

// String returns the lowercase name used in logs and serialized entries.
func (t FileType) String() string {
	switch t {
	case FileTypeRegular:
		return "file"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeBlockDevice:
		return "block"
	case FileTypeCharDevice:
		return "character"
	case FileTypeFIFO:
		return "fifo"
	case FileTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// BlobID is an identifier for retrieving file content from the blob store.
//
// This is an opaque identifier used to coordinate between the metadata
// layer and the blob storage layer. A BlobID held by a FileEntry is a weak
// reference: it is a lookup key, not ownership. Multiple entries (hard
// links) may share the same BlobID, and the referenced bytes are only
// reclaimed when the last referencing entry is removed.
type BlobID string

// FileEntry is the canonical metadata record for one filesystem object.
//
// Entries are keyed by a normalized absolute Path (the store key) and
// carry an opaque ID that provides inode identity: every path referring to
// the same underlying object (hard links) shares one ID, and stat reports
// the same inode number for all of them.
//
// Invariants (checked by Validate):
//   - At most one of BlobID and LinkTarget is set, never both
//   - Directories have neither BlobID nor LinkTarget
//   - Nlink >= 1 for files, >= 2 for directories
//   - Birthtime <= Mtime and Birthtime <= Ctime
//
// All timestamps are integer epoch milliseconds. Stores persist entries
// as-is; semantic updates (mtime on write, ctime on metadata change,
// birthtime preservation on overwrite) are the operation layer's job.
type FileEntry struct {
	// ID is the opaque inode identity, shared by all hard links to this
	// object. Stores generate UUIDs, but any non-empty string is valid.
	ID string `json:"id"`

	// ParentID is the ID of the containing directory. Empty for the root.
	ParentID string `json:"parent_id"`

	// Name is the final path component. "/" for the root.
	Name string `json:"name"`

	// Path is the normalized absolute path used as the store key.
	Path string `json:"path"`

	// Type is the file type (regular, directory, symlink, etc.)
	Type FileType `json:"type"`

	// Mode contains permission bits and, optionally, encoded type bits.
	// The low 9 bits are the owner/group/other rwx triads, bits 9-11 the
	// setuid/setgid/sticky bits. Type bits above bit 11 may be absent;
	// readers must synthesize them from Type when missing.
	Mode uint32 `json:"mode"`

	// UID is the owner user ID
	UID uint32 `json:"uid"`

	// GID is the owner group ID
	GID uint32 `json:"gid"`

	// Size is the object size in bytes.
	// For symlinks: length of the target path. For directories and
	// special files: 0.
	Size uint64 `json:"size"`

	// BlobID references stored content. Set only for regular files that
	// have content; empty otherwise.
	BlobID BlobID `json:"blob_id,omitempty"`

	// LinkTarget is the target path of a symlink. Set only for symlinks.
	LinkTarget string `json:"link_target,omitempty"`

	// Nlink is the hard-link count for this inode.
	Nlink uint32 `json:"nlink"`

	// Atime is the last access time in epoch milliseconds
	Atime int64 `json:"atime"`

	// Mtime is the last content modification time in epoch milliseconds
	Mtime int64 `json:"mtime"`

	// Ctime is the last metadata change time in epoch milliseconds
	Ctime int64 `json:"ctime"`

	// Birthtime is the creation time in epoch milliseconds. Preserved
	// across overwrites; never advances after creation.
	Birthtime int64 `json:"birthtime"`
}

// Validate checks the structural invariants of the entry.
//
// It returns a descriptive error for the first violated invariant, or nil
// when the entry is well formed. Stores call this on Put so that corrupt
// records are rejected at the boundary instead of surfacing later as
// inexplicable stat results.
func (e *FileEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry %q: empty id", e.Path)
	}
	if e.Path == "" {
		return fmt.Errorf("entry id %s: empty path", e.ID)
	}
	if e.BlobID != "" && e.LinkTarget != "" {
		return fmt.Errorf("entry %q: both blob id and link target set", e.Path)
	}
	if e.Type == FileTypeDirectory {
		if e.BlobID != "" || e.LinkTarget != "" {
			return fmt.Errorf("entry %q: directory carries content reference", e.Path)
		}
		if e.Nlink < 2 {
			return fmt.Errorf("entry %q: directory nlink %d < 2", e.Path, e.Nlink)
		}
	} else {
		if e.Nlink < 1 {
			return fmt.Errorf("entry %q: nlink %d < 1", e.Path, e.Nlink)
		}
	}
	if e.Type == FileTypeSymlink && e.LinkTarget == "" {
		return fmt.Errorf("entry %q: symlink without target", e.Path)
	}
	if e.Type != FileTypeSymlink && e.LinkTarget != "" {
		return fmt.Errorf("entry %q: link target on non-symlink", e.Path)
	}
	if e.Type != FileTypeRegular && e.BlobID != "" {
		return fmt.Errorf("entry %q: blob id on non-regular file", e.Path)
	}
	if e.Birthtime > e.Mtime || e.Birthtime > e.Ctime {
		return fmt.Errorf("entry %q: birthtime after mtime/ctime", e.Path)
	}
	return nil
}

// Clone returns a deep copy of the entry.
//
// Stores return clones from Get so callers can mutate the result freely
// without racing against the store's own copy.
func (e *FileEntry) Clone() *FileEntry {
	clone := *e
	return &clone
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// representation used throughout the metadata model.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
