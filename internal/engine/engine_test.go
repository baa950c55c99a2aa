package engine

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/auditlog"
	"oscmix/internal/osc"
	"oscmix/internal/param"
	"oscmix/internal/sysex"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "fake" }
func (fakeAddr) String() string  { return "fake:0" }

type fakeTransport struct {
	mu   sync.Mutex
	in   chan []byte
	out  [][]byte
	done chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan []byte, 8), done: make(chan struct{})}
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = append(t.out, data)
	return nil
}

func (t *fakeTransport) Receive() ([]byte, error) {
	select {
	case d := <-t.in:
		return d, nil
	case <-t.done:
		return nil, net.ErrClosed
	}
}

func (t *fakeTransport) Close() error {
	close(t.done)
	return nil
}

func (t *fakeTransport) LocalAddr() net.Addr { return fakeAddr{} }

func (t *fakeTransport) sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.out...)
}

type fakeMidiPort struct {
	mu   sync.Mutex
	in   chan []byte
	out  [][]byte
	done chan struct{}
}

func newFakeMidiPort() *fakeMidiPort {
	return &fakeMidiPort{in: make(chan []byte, 8), done: make(chan struct{})}
}

func (p *fakeMidiPort) Name() string { return "fake" }

func (p *fakeMidiPort) SendSysex(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, frame)
	return nil
}

func (p *fakeMidiPort) ReceiveSysex() ([]byte, error) {
	select {
	case d := <-p.in:
		return d, nil
	case <-p.done:
		return nil, net.ErrClosed
	}
}

func (p *fakeMidiPort) Close() error {
	close(p.done)
	return nil
}

func (p *fakeMidiPort) sent() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.out...)
}

func newTestEngine(t *testing.T) (*Engine, *fakeTransport, *fakeMidiPort) {
	t.Helper()
	reg := param.NewRegistry()
	tr := newFakeTransport()
	mp := newFakeMidiPort()
	e, err := New(reg, Config{
		Model:     "Fireface UCX II",
		DeviceID:  0x10,
		Transport: tr,
		MidiPort:  mp,
	})
	require.NoError(t, err)
	return e, tr, mp
}

func TestNewRejectsUnknownModel(t *testing.T) {
	reg := param.NewRegistry()
	_, err := New(reg, Config{Model: "nonexistent", Transport: newFakeTransport(), MidiPort: newFakeMidiPort()})
	assert.Error(t, err)
}

func TestInboundOSCPacketEncodesSysexToMidi(t *testing.T) {
	e, tr, mp := newTestEngine(t)
	require.NoError(t, e.Start())
	defer e.Stop()

	msg := osc.Message{Address: "/input/1/gain", Args: []osc.Arg{osc.Float32(6.0)}}
	tr.in <- osc.EncodeMessage(msg)

	require.Eventually(t, func() bool { return len(mp.sent()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestInboundSysexNotifiesOverOSCTransport(t *testing.T) {
	e, tr, mp := newTestEngine(t)
	require.NoError(t, e.Start())
	defer e.Stop()

	leaf, err := e.Tree().Resolve("/input/1/gain")
	require.NoError(t, err)

	reg, val, err := leaf.Encode([]osc.Arg{osc.Float32(6.0)})
	require.NoError(t, err)
	word := sysex.EncodeRegisterWord(reg, int16(val))
	wire := sysex.Encode(sysex.Frame{
		ManufacturerID: sysex.ManufacturerID,
		DeviceID:       0x10,
		SubID:          sysex.SubIDRegisterWrite,
		Payload:        []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)},
	})
	mp.in <- wire

	require.Eventually(t, func() bool { return len(tr.sent()) >= 1 }, time.Second, 5*time.Millisecond)
}

func TestAuditRecordsDispatchedCommands(t *testing.T) {
	reg := param.NewRegistry()
	tr := newFakeTransport()
	mp := newFakeMidiPort()
	audit, err := auditlog.Open(":memory:")
	require.NoError(t, err)
	defer audit.Close()

	e, err := New(reg, Config{
		Model:     "Fireface UCX II",
		DeviceID:  0x10,
		Transport: tr,
		MidiPort:  mp,
		Audit:     audit,
	})
	require.NoError(t, err)
	require.NoError(t, e.Start())
	defer e.Stop()

	msg := osc.Message{Address: "/input/1/gain", Args: []osc.Arg{osc.Float32(6.0)}}
	tr.in <- osc.EncodeMessage(msg)

	require.Eventually(t, func() bool {
		entries, err := audit.Recent(10)
		return err == nil && len(entries) >= 1
	}, time.Second, 5*time.Millisecond)

	profiles, err := audit.DeviceProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Fireface UCX II", profiles[0].Model)
}
