//go:build !unix && !windows

package mmap

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("mmap: file mapping not supported on this platform")

func osMap(*os.File, int) ([]byte, func([]byte) error, error) {
	return nil, nil, errUnsupported
}

// Without virtual-memory syscalls the reservation is a heap slice that is
// committed up front.
func osReserve(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func osCommit([]byte) error { return nil }

func osDecommit(b []byte) error {
	clear(b)
	return nil
}

func osRelease([]byte) error { return nil }

func osAdvise([]byte, AccessPattern) error { return nil }
