package nucleus

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nucleus/arena"
)

var (
	// ErrClosed is returned when a closed Workspace is used.
	ErrClosed = errors.New("nucleus: workspace closed")
	// ErrArenaExhausted is returned by TryMatrix when the reservation or the
	// memory budget cannot hold another matrix.
	ErrArenaExhausted = errors.New("nucleus: arena exhausted")
)

// ErrInvalidOption indicates an option value New cannot use.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidOption struct {
	Option string
	Value  any
	cause  error
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("nucleus: invalid %s: %v", e.Option, e.Value)
}

func (e *ErrInvalidOption) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, arena.ErrOutOfReserve) || errors.Is(err, arena.ErrCommitFailed) {
		return fmt.Errorf("%w: %w", ErrArenaExhausted, err)
	}
	if errors.Is(err, arena.ErrDestroyed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}
