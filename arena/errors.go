package arena

import "errors"

var (
	// ErrReserveFailed is returned when the platform cannot reserve the address range.
	ErrReserveFailed = errors.New("arena: reserve failed")
	// ErrCommitFailed is returned when committing memory fails or the memory budget refuses it.
	ErrCommitFailed = errors.New("arena: commit failed")
	// ErrOutOfReserve is returned when an allocation does not fit in the reservation.
	ErrOutOfReserve = errors.New("arena: reservation exhausted")
	// ErrReleaseFailed is returned by Destroy when the platform cannot release the range.
	ErrReleaseFailed = errors.New("arena: release failed")
	// ErrDestroyed is returned when a destroyed arena is used.
	ErrDestroyed = errors.New("arena: use after Destroy")
	// ErrInvalidAlignment is returned for alignments that are not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")
	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("arena: invalid size")
)
