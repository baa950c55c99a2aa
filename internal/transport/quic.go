package transport

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"

	"github.com/quic-go/quic-go"

	"oscmix/internal/oscerr"
)

// ReliableTransport carries OSC packets over a single QUIC stream instead
// of unreliable UDP datagrams, for clients behind lossy links where OSC's
// own retry-on-loss story is too weak. Each packet is length-prefixed
// (uint32 big-endian), mirroring the datagram-header convention used
// elsewhere in this codebase.
type ReliableTransport struct {
	conn   quic.Connection
	stream quic.Stream
}

// DialReliable opens a client-side QUIC connection and stream to addr.
func DialReliable(ctx context.Context, addr string, tlsConf *tls.Config) (*ReliableTransport, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConf, &quic.Config{EnableDatagrams: true})
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.DialReliable", "dial failed", err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.DialReliable", "open stream failed", err)
	}
	return &ReliableTransport{conn: conn, stream: stream}, nil
}

// AcceptReliable accepts one server-side QUIC connection and its first
// stream from listener.
func AcceptReliable(ctx context.Context, ln *quic.Listener) (*ReliableTransport, error) {
	conn, err := ln.Accept(ctx)
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.AcceptReliable", "accept failed", err)
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.AcceptReliable", "accept stream failed", err)
	}
	return &ReliableTransport{conn: conn, stream: stream}, nil
}

// ListenReliable opens a server-side QUIC listener bound to addr.
func ListenReliable(addr string, tlsConf *tls.Config) (*quic.Listener, error) {
	ln, err := quic.ListenAddr(addr, tlsConf, &quic.Config{EnableDatagrams: true})
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.ListenReliable", "listen failed", err)
	}
	return ln, nil
}

func (t *ReliableTransport) Send(data []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := t.stream.Write(hdr[:]); err != nil {
		return oscerr.Wrap(oscerr.IO, "ReliableTransport.Send", "write header failed", err)
	}
	if _, err := t.stream.Write(data); err != nil {
		return oscerr.Wrap(oscerr.IO, "ReliableTransport.Send", "write body failed", err)
	}
	return nil
}

func (t *ReliableTransport) Receive() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(t.stream, hdr[:]); err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "ReliableTransport.Receive", "read header failed", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxPacketSize {
		return nil, oscerr.New(oscerr.Protocol, "ReliableTransport.Receive", "packet exceeds maximum size")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.stream, buf); err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "ReliableTransport.Receive", "read body failed", err)
	}
	return buf, nil
}

func (t *ReliableTransport) Close() error {
	t.stream.Close()
	return t.conn.CloseWithError(0, "closed")
}

func (t *ReliableTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }
