package osc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	m := Message{
		Address: "/input/1/gain",
		Args: []Arg{
			Float32(12.0),
			Int32(-7),
			String("hello"),
			Blob([]byte{1, 2, 3}),
			True(),
			False(),
			Nil(),
			Impulse(),
		},
	}
	wire := EncodeMessage(m)
	assert.Zero(t, len(wire)%4, "encoded message must be 4-byte aligned overall")

	msgs, err := Decode(wire)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m.Address, msgs[0].Address)
	require.Len(t, msgs[0].Args, len(m.Args))
	assert.Equal(t, float32(12.0), msgs[0].Args[0].Float)
	assert.Equal(t, int32(-7), msgs[0].Args[1].Int)
	assert.Equal(t, "hello", msgs[0].Args[2].Str)
	assert.Equal(t, []byte{1, 2, 3}, msgs[0].Args[3].Blob)
	assert.Equal(t, byte('T'), msgs[0].Args[4].Tag)
	assert.Equal(t, byte('F'), msgs[0].Args[5].Tag)
	assert.Equal(t, byte('N'), msgs[0].Args[6].Tag)
	assert.Equal(t, byte('I'), msgs[0].Args[7].Tag)
}

func TestDecodeRejectsMissingSlash(t *testing.T) {
	_, err := Decode([]byte("nope"))
	assert.Error(t, err)
}

func TestDecodeRejectsOversizedPacket(t *testing.T) {
	_, err := Decode(make([]byte, maxPacketSize+4))
	assert.Error(t, err)
}

func TestBundleRoundTripFlattensArrivalOrder(t *testing.T) {
	inner := Bundle{
		TimeTag: 1,
		Messages: []Message{
			{Address: "/a", Args: []Arg{Int32(1)}},
		},
	}
	outer := Bundle{
		TimeTag: 2,
		Messages: []Message{
			{Address: "/b", Args: []Arg{Int32(2)}},
		},
	}
	// Manually nest: encode inner bundle, wrap as an element of outer.
	innerWire := EncodeBundle(inner)
	outerWire := EncodeBundle(outer)
	// Splice inner bundle in as an additional size-prefixed element of outer.
	combined := append([]byte{}, outerWire...)
	lenBuf := make([]byte, 4)
	lenBuf[3] = byte(len(innerWire))
	lenBuf[2] = byte(len(innerWire) >> 8)
	combined = append(combined, lenBuf...)
	combined = append(combined, innerWire...)

	msgs, err := Decode(combined)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "/b", msgs[0].Address)
	assert.Equal(t, "/a", msgs[1].Address)
}

func TestBoolAcceptsNumericAndTFTags(t *testing.T) {
	cases := []struct {
		arg  Arg
		want bool
	}{
		{True(), true},
		{False(), false},
		{Int32(1), true},
		{Int32(0), false},
		{Float32(2.5), true},
	}
	for _, c := range cases {
		got, ok := c.arg.Bool()
		require.True(t, ok)
		assert.Equal(t, c.want, got)
	}
}

func TestMatchAddressWildcard(t *testing.T) {
	assert.True(t, MatchAddress("/input/*/gain", "/input/1/gain"))
	assert.True(t, MatchAddress("/input/*", "/input/anything"))
	assert.False(t, MatchAddress("/input/*/gain", "/input/1/mute"))
	assert.True(t, MatchAddress("/refresh", "/refresh"))
	assert.False(t, MatchAddress("/refresh", "/refresh/x"))
}
