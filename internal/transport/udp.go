package transport

import (
	"net"

	"golang.org/x/net/ipv4"

	"oscmix/internal/oscerr"
)

// UDPTransport is the default Transport: OSC runs unreliable datagram,
// per device-manufacturer convention.
type UDPTransport struct {
	conn *net.UDPConn
	dst *net.UDPAddr
	maxSize int
}

// ListenUDP opens a UDP socket bound to local and sends to remote. When
// remote is a multicast address, the socket joins the multicast group on
// the default interface so loopback senders on the same host are visible.
func ListenUDP(local, remote Addr) (*UDPTransport, error) {
	laddr := local.udpAddr()
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.ListenUDP", "bind failed", err)
	}
	if remote.Multicast {
		p := ipv4.NewPacketConn(conn)
		if err := p.JoinGroup(nil, remote.udpAddr()); err != nil {
			conn.Close()
			return nil, oscerr.Wrap(oscerr.IO, "transport.ListenUDP", "multicast join failed", err)
		}
	}
	return &UDPTransport{conn: conn, dst: remote.udpAddr(), maxSize: maxPacketSize}, nil
}

const maxPacketSize = 8192

func (t *UDPTransport) Send(data []byte) error {
	if len(data) > t.maxSize {
		return oscerr.New(oscerr.Protocol, "transport.Send", "packet exceeds maximum size")
	}
	_, err := t.conn.WriteToUDP(data, t.dst)
	if err != nil {
		return oscerr.Wrap(oscerr.IO, "transport.Send", "write failed", err)
	}
	return nil
}

func (t *UDPTransport) Receive() ([]byte, error) {
	buf := make([]byte, t.maxSize)
	n, _, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "transport.Receive", "read failed", err)
	}
	return buf[:n], nil
}

func (t *UDPTransport) Close() error { return t.conn.Close() }

func (t *UDPTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }
