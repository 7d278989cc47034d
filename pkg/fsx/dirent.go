package fsx

import "github.com/dot-do/fsx/pkg/metadata"

// Dirent is one directory listing entry, as returned by Readdir.
//
// It is deliberately lighter than Stats: a listing only needs names and
// type tags, not a full metadata view. The type predicates are driven by
// the entry's type tag rather than mode bits.
type Dirent struct {
	// Name is the entry's final path component.
	Name string

	// ParentPath is the normalized path of the containing directory.
	ParentPath string

	// Type is the entry's file type tag.
	Type metadata.FileType
}

// Path returns the entry's full normalized path.
func (d Dirent) Path() string {
	return metadata.JoinPath(d.ParentPath, d.Name)
}

// IsFile reports whether the entry is a regular file.
func (d Dirent) IsFile() bool { return d.Type == metadata.FileTypeRegular }

// IsDirectory reports whether the entry is a directory.
func (d Dirent) IsDirectory() bool { return d.Type == metadata.FileTypeDirectory }

// IsSymbolicLink reports whether the entry is a symbolic link.
func (d Dirent) IsSymbolicLink() bool { return d.Type == metadata.FileTypeSymlink }

// IsBlockDevice reports whether the entry is a block device.
func (d Dirent) IsBlockDevice() bool { return d.Type == metadata.FileTypeBlockDevice }

// IsCharacterDevice reports whether the entry is a character device.
func (d Dirent) IsCharacterDevice() bool { return d.Type == metadata.FileTypeCharDevice }

// IsFIFO reports whether the entry is a named pipe.
func (d Dirent) IsFIFO() bool { return d.Type == metadata.FileTypeFIFO }

// IsSocket reports whether the entry is a Unix domain socket.
func (d Dirent) IsSocket() bool { return d.Type == metadata.FileTypeSocket }
