package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddrUnicast(t *testing.T) {
	a, err := ParseAddr("udp!127.0.0.1!7222")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", a.Host)
	assert.Equal(t, 7222, a.Port)
	assert.False(t, a.Multicast)
}

func TestParseAddrMulticast(t *testing.T) {
	a, err := ParseAddr("udp!224.0.0.1!7222")
	require.NoError(t, err)
	assert.True(t, a.Multicast)
}

func TestParseAddrIPv6LinkLocal(t *testing.T) {
	a, err := ParseAddr("udp!fe80::1!7222")
	require.NoError(t, err)
	assert.Equal(t, "fe80::1", a.Host)
}

func TestParseAddrRejectsMalformed(t *testing.T) {
	for _, s := range []string{"tcp!127.0.0.1!7222", "udp!127.0.0.1", "udp!127.0.0.1!notaport"} {
		_, err := ParseAddr(s)
		assert.Error(t, err, s)
	}
}

func TestAddrStringRoundTrip(t *testing.T) {
	a, err := ParseAddr("udp!10.0.0.5!9000")
	require.NoError(t, err)
	assert.Equal(t, "udp!10.0.0.5!9000", a.String())
}
