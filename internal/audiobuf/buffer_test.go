package audiobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterleavedInvariants(t *testing.T) {
	b, err := New(128, 48000, F32, Stereo())
	require.NoError(t, err)
	assert.Equal(t, 1, b.PlaneCount())
	assert.Equal(t, 128*2*4, b.PlaneLen(0))
	assert.True(t, b.Valid())
}

func TestNewPlanarInvariants(t *testing.T) {
	b, err := NewPlanar(128, 48000, S32, Stereo())
	require.NoError(t, err)
	assert.Equal(t, 2, b.PlaneCount())
	for i := 0; i < b.PlaneCount(); i++ {
		assert.Equal(t, 128*4, b.PlaneLen(i))
	}
}

func TestNewRejectsInvalidShape(t *testing.T) {
	_, err := New(0, 48000, F32, Stereo())
	assert.Error(t, err)
	_, err = New(128, 48000, F32, Layout{})
	assert.Error(t, err)
}

func TestZeroFillsAllPlanes(t *testing.T) {
	b, err := NewPlanar(16, 48000, S16, Stereo())
	require.NoError(t, err)
	for i := 0; i < b.PlaneCount(); i++ {
		for j := range b.PlanePtr(i) {
			b.PlanePtr(i)[j] = 0xFF
		}
	}
	b.Zero()
	for i := 0; i < b.PlaneCount(); i++ {
		for _, v := range b.PlanePtr(i) {
			assert.Zero(t, v)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := New(8, 48000, S16, Mono())
	require.NoError(t, err)
	c := b.Clone()
	c.PlanePtr(0)[0] = 0x7F
	assert.NotEqual(t, b.PlanePtr(0)[0], c.PlanePtr(0)[0])
}

func TestViewSharesSourceAndRespectsRange(t *testing.T) {
	b, err := New(10, 48000, S16, Mono())
	require.NoError(t, err)
	v := b.View(2, 4)
	require.True(t, v.Valid())
	assert.Equal(t, 4, v.Frames())

	v.PlanePtr(0)[0] = 0xAB
	// View's frame 2 aliases the source's frame 2, at byte offset 2*2=4.
	assert.Equal(t, byte(0xAB), b.PlanePtr(0)[4])

	bad := b.View(8, 5)
	assert.False(t, bad.Valid())
}

func TestChannelPtrInterleavedStride(t *testing.T) {
	b, err := New(4, 48000, S16, Stereo())
	require.NoError(t, err)
	left := b.ChannelPtr(0)
	right := b.ChannelPtr(1)
	bps := 2
	stride := 2 * bps
	for f := 0; f < 4; f++ {
		left[f*stride] = byte(f)
		right[f*stride] = byte(f + 100)
	}
	full := b.PlanePtr(0)
	assert.Equal(t, byte(0), full[0])
	assert.Equal(t, byte(100), full[bps])
}

func TestReleaseInvalidatesOnLastHolder(t *testing.T) {
	b, err := New(4, 48000, S16, Mono())
	require.NoError(t, err)
	v := b.View(0, 2)
	b.Release()
	assert.True(t, v.Valid())
	v.Release()
	assert.False(t, v.Valid())
}
