package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool_GetReturnsEmptyBuffer(t *testing.T) {
	bp := NewBufferPool(16, 0)

	buf := bp.Get()
	require.NotNil(t, buf)
	buf.WriteString("payload")
	bp.Put(buf)

	again := bp.Get()
	assert.Zero(t, again.Len())
}

func TestBufferPool_PutNil(t *testing.T) {
	bp := NewBufferPool(16, 0)
	assert.NotPanics(t, func() { bp.Put(nil) })
}

func TestBufferPool_DropsOversizedBuffers(t *testing.T) {
	bp := NewBufferPool(8, 64)

	big := bp.Get()
	big.Grow(1024)
	big.WriteString("x")
	assert.NotPanics(t, func() { bp.Put(big) })

	buf := bp.Get()
	assert.Zero(t, buf.Len())
}
