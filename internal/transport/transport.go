// Package transport specifies the UDP/TCP socket layer's contract surface
// plus a concrete UDP implementation and address-URI parsing, and an
// alternate QUIC-backed reliable transport for lossy links.
package transport

import "net"

// Transport is the boundary the control dispatcher and OSC codec send and
// receive packets through; the codec itself never touches a socket.
type Transport interface {
	// Send writes one packet (already-encoded OSC bytes) to the
	// transport's configured destination.
	Send(data []byte) error
	// Receive blocks for the next inbound packet.
	Receive() ([]byte, error)
	// Close releases the transport's resources.
	Close() error
	// LocalAddr returns the bound local address, for logging.
	LocalAddr() net.Addr
}
