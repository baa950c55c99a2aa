package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/mirror"
	"oscmix/internal/osc"
	"oscmix/internal/param"
	"oscmix/internal/sysex"
)

type fakeSender struct {
	frames []sysex.Frame
	osc    []osc.Message
}

func (f *fakeSender) SendSysex(frame sysex.Frame) error {
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSender) SendOSC(msg osc.Message) error {
	f.osc = append(f.osc, msg)
	return nil
}

func newTestDispatcher() (*Dispatcher, *fakeSender, *mirror.Mirror, *param.Tree) {
	tree := param.NewFirefaceUCXII()
	mir := mirror.New(tree)
	sender := &fakeSender{}
	d := New(tree, mir, sender, 0x10, nil)
	return d, sender, mir, tree
}

func TestHandlePacketEncodesParameterWrite(t *testing.T) {
	d, sender, _, tree := newTestDispatcher()
	leaf, err := tree.Resolve("/input/1/gain")
	require.NoError(t, err)

	msg := osc.Message{Address: "/input/1/gain", Args: []osc.Arg{osc.Float32(12.0)}}
	d.HandlePacket("test", osc.EncodeMessage(msg))

	require.Len(t, sender.frames, 1)
	assert.Equal(t, sysex.SubIDRegisterWrite, sender.frames[0].SubID)

	reg, val := sysex.DecodeRegisterWord(
		uint32(sender.frames[0].Payload[0]) | uint32(sender.frames[0].Payload[1])<<8 |
			uint32(sender.frames[0].Payload[2])<<16 | uint32(sender.frames[0].Payload[3])<<24)
	assert.Equal(t, leaf.Register, reg)
	assert.Equal(t, int16(120), val)
}

func TestHandlePacketUnknownPathReportsError(t *testing.T) {
	d, sender, _, _ := newTestDispatcher()
	msg := osc.Message{Address: "/input/1/nope", Args: []osc.Arg{osc.Int32(1)}}
	d.HandlePacket("test", osc.EncodeMessage(msg))

	require.Len(t, sender.osc, 1)
	assert.Equal(t, "/error", sender.osc[0].Address)
	assert.Equal(t, int32(ErrUnknownPath), sender.osc[0].Args[0].Int)
}

func TestHandleRefreshTriggersSentinelAndMirrorState(t *testing.T) {
	d, sender, mir, _ := newTestDispatcher()
	d.HandlePacket("test", osc.EncodeMessage(osc.Message{Address: "/refresh"}))

	require.Len(t, sender.frames, 1)
	assert.True(t, mir.Refreshing())
}

func TestHandleSysexAppliesRegisterAndNotifies(t *testing.T) {
	d, sender, _, tree := newTestDispatcher()
	leaf, err := tree.Resolve("/input/1/gain")
	require.NoError(t, err)

	word := sysex.EncodeRegisterWord(leaf.Register, 120)
	payload := wordsToPayload([]uint32{word})
	frame := sysex.Frame{ManufacturerID: sysex.ManufacturerID, DeviceID: 0x10, SubID: sysex.SubIDRegisterWrite, Payload: payload}
	d.HandleSysex(sysex.Encode(frame))

	require.Len(t, sender.osc, 1)
	assert.Equal(t, "/input/1/gain", sender.osc[0].Address)
}

func TestHandlePacketEncodesMixWrite(t *testing.T) {
	d, sender, _, tree := newTestDispatcher()
	leaf, err := tree.Resolve("/mix/1/input/1")
	require.NoError(t, err)

	msg := osc.Message{Address: "/mix/1/input/1", Args: []osc.Arg{osc.Float32(-6.0), osc.Int32(0), osc.Float32(1.0)}}
	d.HandlePacket("test", osc.EncodeMessage(msg))

	require.Len(t, sender.frames, 1)
	require.Len(t, sender.osc, 0)
	payload := sender.frames[0].Payload
	require.Len(t, payload, 8*4, "four leg writes plus two summary dB/pan pairs")

	var regs []uint16
	for i := 0; i+4 <= len(payload); i += 4 {
		word := uint32(payload[i]) | uint32(payload[i+1])<<8 | uint32(payload[i+2])<<16 | uint32(payload[i+3])<<24
		reg, _ := sysex.DecodeRegisterWord(word)
		regs = append(regs, reg)
	}
	assert.Contains(t, regs, leaf.Register)
	assert.Contains(t, regs, leaf.Register+0x40)
	assert.Contains(t, regs, leaf.Register+0x01)
	assert.Contains(t, regs, leaf.Register+0x41)
}

func TestLoopbackCommandUsesLoopbackSubID(t *testing.T) {
	d, sender, _, _ := newTestDispatcher()
	msg := osc.Message{Address: "/input/1/mute", Args: []osc.Arg{osc.True()}}
	outcome := d.handleSubIDCommand("test", msg, sysex.SubIDLoopback)
	assert.Equal(t, "ok", outcome)
	require.Len(t, sender.frames, 1)
	assert.Equal(t, sysex.SubIDLoopback, sender.frames[0].SubID)
}
