package checkpoint

import "errors"

var (
	// ErrInvalidMagic is returned when a blob does not start with the checkpoint magic.
	ErrInvalidMagic = errors.New("checkpoint: invalid magic")
	// ErrUnsupportedVersion is returned for format versions this package cannot read.
	ErrUnsupportedVersion = errors.New("checkpoint: unsupported version")
	// ErrChecksumMismatch is returned when the payload checksum does not match.
	ErrChecksumMismatch = errors.New("checkpoint: checksum mismatch")
	// ErrCorrupt is returned for truncated blobs and inconsistent headers.
	ErrCorrupt = errors.New("checkpoint: corrupt blob")
)
