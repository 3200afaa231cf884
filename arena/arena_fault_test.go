//go:build linux

package arena

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sink byte

func TestGuardedReleaseFaultsOnUseAfterDestroy(t *testing.T) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	a := New(1<<20, 0, WithGuardedRelease())
	b := a.Alloc(64, 8)
	b[0] = 1

	a.Destroy()

	assert.Panics(t, func() { b[0] = 2 })
	assert.Panics(t, func() { sink = b[1] })
}
