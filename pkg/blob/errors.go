package blob

import "errors"

var (
	// ErrBlobNotFound indicates no blob exists with the requested ID.
	ErrBlobNotFound = errors.New("blob: not found")

	// ErrChecksumMismatch indicates stored content no longer matches the
	// checksum recorded at write time.
	ErrChecksumMismatch = errors.New("blob: checksum mismatch")
)
