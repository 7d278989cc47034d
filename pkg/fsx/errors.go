package fsx

import (
	"errors"
	"fmt"
)

// Errno is a POSIX-style error code carried by every filesystem error.
type Errno string

const (
	// ENOENT: path absent, parent absent, or symlink chain broken/cyclic.
	ENOENT Errno = "ENOENT"

	// EACCES: requested access mode not satisfied by owner/group/other bits.
	EACCES Errno = "EACCES"

	// EISDIR: write or open attempted on a directory.
	EISDIR Errno = "EISDIR"

	// ENOTDIR: traversal attempted through a non-directory.
	ENOTDIR Errno = "ENOTDIR"

	// EEXIST: exclusive create against an existing path.
	EEXIST Errno = "EEXIST"

	// EINVAL: malformed input, including operations on a closed handle.
	EINVAL Errno = "EINVAL"

	// ENOTEMPTY: rmdir on a directory that still has children.
	ENOTEMPTY Errno = "ENOTEMPTY"
)

// message returns the conventional strerror text for the code.
func (e Errno) message() string {
	switch e {
	case ENOENT:
		return "no such file or directory"
	case EACCES:
		return "permission denied"
	case EISDIR:
		return "is a directory"
	case ENOTDIR:
		return "not a directory"
	case EEXIST:
		return "file already exists"
	case EINVAL:
		return "invalid argument"
	case ENOTEMPTY:
		return "directory not empty"
	default:
		return "unknown error"
	}
}

// Error is the typed failure every filesystem operation returns.
//
// Code is the POSIX-style classification, Op the originating operation
// name ("stat", "access", "open", ...), and Path the path as originally
// supplied by the caller. When an operation fails inside a symlink chain,
// Path is the path the caller asked about, never the broken intermediate
// link.
type Error struct {
	Code Errno
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Code.message()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Path, e.Code, msg)
}

// Unwrap exposes the underlying cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches against another *Error by code alone, so callers can write
// errors.Is(err, &Error{Code: ENOENT}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Op == "" || t.Op == e.Op) && (t.Path == "" || t.Path == e.Path)
}

// newError builds an *Error with no underlying cause.
func newError(code Errno, op, path string) *Error {
	return &Error{Code: code, Op: op, Path: path}
}

// wrapError attaches an underlying cause to a typed error.
func wrapError(code Errno, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// ErrHandleClosed is the cause carried by errors from operations on a
// closed file handle.
var ErrHandleClosed = errors.New("file handle is closed")

// CodeOf extracts the Errno from an error, or "" when the error is not a
// filesystem error.
func CodeOf(err error) Errno {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Code
	}
	return ""
}

// IsNotExist reports whether the error is an ENOENT failure.
func IsNotExist(err error) bool {
	return CodeOf(err) == ENOENT
}

// IsPermission reports whether the error is an EACCES failure.
func IsPermission(err error) bool {
	return CodeOf(err) == EACCES
}

// IsExist reports whether the error is an EEXIST failure.
func IsExist(err error) bool {
	return CodeOf(err) == EEXIST
}
