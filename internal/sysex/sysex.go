// Package sysex implements the vendor SysEx wire codec: frame layout,
// 7-bit base-128 payload packing, and the 32-bit register-word parity
// scheme.
package sysex

import "oscmix/internal/oscerr"

// Manufacturer and device ids for the RME register map class.
var (
	ManufacturerID = [3]byte{0x00, 0x20, 0x0D}
)

// SubID names the second byte of a frame's header.
type SubID byte

const (
	SubIDRegisterWrite SubID = 0
	SubIDLevelsClass1 SubID = 1
	SubIDLevelsPoll SubID = 2
	SubIDLoopback SubID = 3
	SubIDEQRecord SubID = 4
	SubIDLevelsClass5 SubID = 5
)

// Frame is a decoded SysEx message.
type Frame struct {
	ManufacturerID [3]byte
	DeviceID byte
	SubID SubID
	Payload []byte // raw (post-unpack) payload bytes
}

// Encode serializes f to the wire form F0 <mfr3> <dev> <sub> <payload...> F7,
// with Payload base-128 packed.
func Encode(f Frame) []byte {
	packed := Pack(f.Payload)
	out := make([]byte, 0, 6+len(packed))
	out = append(out, 0xF0)
	out = append(out, f.ManufacturerID[:]...)
	out = append(out, f.DeviceID)
	out = append(out, byte(f.SubID))
	out = append(out, packed...)
	out = append(out, 0xF7)
	return out
}

// Decode parses a raw SysEx frame (including the F0/F7 delimiters).
// Rejects frames with the wrong manufacturer id, wrong device id, or a
// packed payload length not a multiple of 5.
func Decode(wire []byte, wantDeviceID byte) (Frame, error) {
	if len(wire) < 7 || wire[0] != 0xF0 || wire[len(wire)-1] != 0xF7 {
		return Frame{}, oscerr.New(oscerr.Protocol, "sysex.Decode", "malformed frame delimiters")
	}
	var mfr [3]byte
	copy(mfr[:], wire[1:4])
	if mfr != ManufacturerID {
		return Frame{}, oscerr.New(oscerr.Protocol, "sysex.Decode", "wrong manufacturer id")
	}
	dev := wire[4]
	if dev != wantDeviceID {
		return Frame{}, oscerr.New(oscerr.Protocol, "sysex.Decode", "wrong device id")
	}
	sub := SubID(wire[5])
	packed := wire[6 : len(wire)-1]
	if len(packed)%5 != 0 {
		return Frame{}, oscerr.New(oscerr.Protocol, "sysex.Decode", "payload length not a multiple of 5")
	}
	payload, err := Unpack(packed)
	if err != nil {
		return Frame{}, err
	}
	return Frame{ManufacturerID: mfr, DeviceID: dev, SubID: sub, Payload: payload}, nil
}
