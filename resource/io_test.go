package resource

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitedWriter_SplitsAboveBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 4096})
	require.Equal(t, 4096, c.IOBurst())

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	payload := bytes.Repeat([]byte{0xAB}, 5000)
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestRateLimitedWriter_Unlimited(t *testing.T) {
	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, NewController(Config{}))

	n, err := w.Write([]byte("weights"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "weights", buf.String())
}

func TestRateLimitedWriter_ContextCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 16})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	// The first burst drains the bucket; the second chunk cannot be
	// granted before the deadline.
	n, err := w.Write(bytes.Repeat([]byte{1}, 64))
	assert.Error(t, err)
	assert.Equal(t, 16, n)
}

func TestRateLimitedReader_CapsReadToBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 8})
	r := NewRateLimitedReader(context.Background(), strings.NewReader("0123456789abcdef"), c)

	p := make([]byte, 16)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "01234567", string(p[:n]))
}
