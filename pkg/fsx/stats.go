package fsx

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// ============================================================================
// Mode Bit Constants
// ============================================================================

// File type bits encoded in the high bits of Stats.Mode, matching the
// POSIX S_IFMT layout.
const (
	// ModeTypeMask extracts the file type bits from a mode.
	ModeTypeMask uint32 = 0o170000

	ModeSocket      uint32 = 0o140000
	ModeSymlink     uint32 = 0o120000
	ModeRegular     uint32 = 0o100000
	ModeBlockDevice uint32 = 0o060000
	ModeDirectory   uint32 = 0o040000
	ModeCharDevice  uint32 = 0o020000
	ModeFIFO        uint32 = 0o010000
)

// Permission and special bits in the low 12 bits of a mode.
const (
	// ModePermMask extracts the owner/group/other rwx triads.
	ModePermMask uint32 = 0o777

	ModeSetuid uint32 = 0o4000
	ModeSetgid uint32 = 0o2000
	ModeSticky uint32 = 0o1000
)

// blockSize is the fixed block size Stats reports and derives Blocks
// from.
const blockSize = 4096

// ============================================================================
// Stats
// ============================================================================

// Stats is the immutable numeric view of one filesystem object, built
// fresh on every stat or lstat call.
//
// Two paths referring to the same underlying entry (hard links, resolved
// symlinks) report identical Dev and Ino. Timestamps are epoch
// milliseconds; the *Time accessors convert on demand.
type Stats struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint32
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    uint64
	Blksize uint32
	Blocks  uint64

	Atime     int64
	Mtime     int64
	Ctime     int64
	Birthtime int64
}

// newStats builds a Stats view from a metadata entry.
func newStats(entry *metadata.FileEntry) Stats {
	mode := entry.Mode
	if mode&ModeTypeMask == 0 {
		// Stored modes may carry only permission bits; synthesize the
		// type bits so the Is* predicates work on any source of truth.
		mode |= typeBits(entry.Type)
	}

	return Stats{
		Dev:       1,
		Ino:       inodeNumber(entry.ID),
		Mode:      mode,
		Nlink:     entry.Nlink,
		UID:       entry.UID,
		GID:       entry.GID,
		Rdev:      0,
		Size:      entry.Size,
		Blksize:   blockSize,
		Blocks:    (entry.Size + blockSize - 1) / blockSize,
		Atime:     entry.Atime,
		Mtime:     entry.Mtime,
		Ctime:     entry.Ctime,
		Birthtime: entry.Birthtime,
	}
}

// typeBits returns the S_IFMT-style bits for a file type.
func typeBits(t metadata.FileType) uint32 {
	switch t {
	case metadata.FileTypeRegular:
		return ModeRegular
	case metadata.FileTypeDirectory:
		return ModeDirectory
	case metadata.FileTypeSymlink:
		return ModeSymlink
	case metadata.FileTypeBlockDevice:
		return ModeBlockDevice
	case metadata.FileTypeCharDevice:
		return ModeCharDevice
	case metadata.FileTypeFIFO:
		return ModeFIFO
	case metadata.FileTypeSocket:
		return ModeSocket
	default:
		return 0
	}
}

// inodeNumber derives a stable pseudo-inode number from an entry ID.
//
// Numeric IDs parse directly so stores that already issue integer inodes
// keep them. Anything else (UUIDs in practice) hashes to the first 8
// bytes of its SHA-256, which is deterministic across processes, so every
// path to the same entry reports the same ino.
func inodeNumber(id string) uint64 {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return n
	}
	sum := sha256.Sum256([]byte(id))
	return binary.BigEndian.Uint64(sum[:8])
}

// IsFile reports whether the object is a regular file.
func (s Stats) IsFile() bool {
	return s.Mode&ModeTypeMask == ModeRegular
}

// IsDirectory reports whether the object is a directory.
func (s Stats) IsDirectory() bool {
	return s.Mode&ModeTypeMask == ModeDirectory
}

// IsSymbolicLink reports whether the object is a symbolic link.
func (s Stats) IsSymbolicLink() bool {
	return s.Mode&ModeTypeMask == ModeSymlink
}

// IsBlockDevice reports whether the object is a block device.
func (s Stats) IsBlockDevice() bool {
	return s.Mode&ModeTypeMask == ModeBlockDevice
}

// IsCharacterDevice reports whether the object is a character device.
func (s Stats) IsCharacterDevice() bool {
	return s.Mode&ModeTypeMask == ModeCharDevice
}

// IsFIFO reports whether the object is a named pipe.
func (s Stats) IsFIFO() bool {
	return s.Mode&ModeTypeMask == ModeFIFO
}

// IsSocket reports whether the object is a Unix domain socket.
func (s Stats) IsSocket() bool {
	return s.Mode&ModeTypeMask == ModeSocket
}

// AtimeTime returns the access time as a time.Time.
func (s Stats) AtimeTime() time.Time { return time.UnixMilli(s.Atime) }

// MtimeTime returns the modification time as a time.Time.
func (s Stats) MtimeTime() time.Time { return time.UnixMilli(s.Mtime) }

// CtimeTime returns the metadata change time as a time.Time.
func (s Stats) CtimeTime() time.Time { return time.UnixMilli(s.Ctime) }

// BirthtimeTime returns the creation time as a time.Time.
func (s Stats) BirthtimeTime() time.Time { return time.UnixMilli(s.Birthtime) }
