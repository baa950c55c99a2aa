package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/osc"
)

func TestResolveInputGain(t *testing.T) {
	tr := NewFirefaceUCXII()
	leaf, err := tr.Resolve("/input/3/gain")
	require.NoError(t, err)
	assert.Equal(t, uint16(2*inputStep+0x08), leaf.Register) // input 3 -> index 2 zero-based, gain at +0x08
	assert.Equal(t, "/input/3/gain", leaf.Path)
}

func TestResolveUnknownPath(t *testing.T) {
	tr := NewFirefaceUCXII()
	_, err := tr.Resolve("/input/3/nope")
	assert.Error(t, err)
}

func TestResolveOutOfRangeIndex(t *testing.T) {
	tr := NewFirefaceUCXII()
	_, err := tr.Resolve("/input/99/gain")
	assert.Error(t, err)
}

func TestFindByRegisterRoundTrip(t *testing.T) {
	tr := NewFirefaceUCXII()
	leaf, err := tr.Resolve("/output/5/volume")
	require.NoError(t, err)

	found, ok := tr.FindByRegister(leaf.Register)
	require.True(t, ok)
	assert.Equal(t, "/output/5/volume", found.Path)
}

func TestEncodeDecodeIntClampProperty(t *testing.T) {
	// for every leaf L with semantic type Int(min,max), and every OSC
	// int v, L.decode(L.encode(v)) == clamp(v, min, max).
	leaf := Leaf{Path: "/durec/position", Register: 1, Type: Int(0, 100)}
	for _, v := range []int32{-50, 0, 50, 100, 250} {
		_, raw, err := leaf.Encode([]osc.Arg{osc.Int32(v)})
		require.NoError(t, err)
		msgs := leaf.Decode(raw)
		require.Len(t, msgs, 1)
		want := int(v)
		if want < 0 {
			want = 0
		}
		if want > 100 {
			want = 100
		}
		assert.Equal(t, int32(want), msgs[0].Args[0].Int)
	}
}

func TestEncodeDecodeFixedRoundTrip(t *testing.T) {
	leaf := Leaf{Path: "/input/1/gain", Register: 1, Type: Fixed(0, 750, 0.1)}
	_, raw, err := leaf.Encode([]osc.Arg{osc.Float32(12.0)})
	require.NoError(t, err)
	assert.Equal(t, 120, raw)
	msgs := leaf.Decode(raw)
	require.Len(t, msgs, 1)
	assert.InDelta(t, 12.0, msgs[0].Args[0].Float, 1e-4)
}

func TestEncodeEnumCaseInsensitiveName(t *testing.T) {
	leaf := Leaf{Path: "/system/clocksource", Register: 1, Type: Enum("Internal", "AES", "ADAT", "Sync In")}
	_, raw, err := leaf.Encode([]osc.Arg{osc.String("aes")})
	require.NoError(t, err)
	assert.Equal(t, 1, raw)
	msgs := leaf.Decode(raw)
	require.Len(t, msgs, 1)
	assert.Equal(t, int32(1), msgs[0].Args[0].Int)
	assert.Equal(t, "AES", msgs[0].Args[1].Str)
}

func TestEncodeBoolAcceptsNumericAndTF(t *testing.T) {
	leaf := Leaf{Path: "/input/1/mute", Register: 1, Type: Bool()}
	for _, a := range []osc.Arg{osc.True(), osc.Int32(1), osc.Float32(2.0)} {
		_, raw, err := leaf.Encode([]osc.Arg{a})
		require.NoError(t, err)
		assert.Equal(t, 1, raw)
	}
	_, raw, err := leaf.Encode([]osc.Arg{osc.False()})
	require.NoError(t, err)
	assert.Equal(t, 0, raw)
}

func TestEncodeLevelFloorsAtMinusInfinitySentinel(t *testing.T) {
	leaf := Leaf{Path: "/output/1/volume", Register: 1, Type: Level()}
	_, raw, err := leaf.Encode([]osc.Arg{osc.Float32(-70)})
	require.NoError(t, err)
	assert.Equal(t, -650, raw)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	tr, ok := reg.Lookup("Fireface UFX II")
	require.True(t, ok)
	_, err := tr.Resolve("/input/25/gain")
	assert.NoError(t, err)
}
