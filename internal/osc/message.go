// Package osc implements the OSC 1.1 wire subset:
// messages, bundles, and the argument types i/f/s/b/T/F/N/I.
package osc

import "oscmix/internal/oscerr"

// Arg is one decoded OSC argument. Exactly one of the Int/Float/Str/Blob
// fields is meaningful, selected by Tag.
type Arg struct {
	Tag byte // 'i','f','s','b','T','F','N','I'
	Int int32
	Float float32
	Str string
	Blob []byte
}

func Int32(v int32) Arg { return Arg{Tag: 'i', Int: v} }
func Float32(v float32) Arg { return Arg{Tag: 'f', Float: v} }
func String(v string) Arg { return Arg{Tag: 's', Str: v} }
func Blob(v []byte) Arg { return Arg{Tag: 'b', Blob: v} }
func True() Arg { return Arg{Tag: 'T'} }
func False() Arg { return Arg{Tag: 'F'} }
func Nil() Arg { return Arg{Tag: 'N'} }
func Impulse() Arg { return Arg{Tag: 'I'} }

// Bool reads a T/F argument, or accepts a nonzero/zero i/f for
// compatibility with clients that send numeric booleans.
func (a Arg) Bool() (bool, bool) {
	switch a.Tag {
	case 'T':
		return true, true
	case 'F':
		return false, true
	case 'i':
		return a.Int != 0, true
	case 'f':
		return a.Float != 0, true
	}
	return false, false
}

// Message is a decoded OSC message: an address pattern and its arguments.
type Message struct {
	Address string
	Args []Arg
}

// maxPacketSize bounds a single OSC packet ("Maximum packet size
// supported: 8192 bytes").
const maxPacketSize = 8192

func newProtoErr(msg string) error { return oscerr.New(oscerr.Protocol, "osc", msg) }

// padTo4 returns n rounded up to the next multiple of 4.
func padTo4(n int) int { return (n + 3) &^ 3 }
