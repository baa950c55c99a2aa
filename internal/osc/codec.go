package osc

import (
	"encoding/binary"
	"math"
)

// writeString appends s nul-terminated and zero-padded to a 4-byte boundary.
func writeString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// readString reads a nul-terminated, 4-byte-padded string starting at off.
func readString(data []byte, off int) (string, int, error) {
	if off >= len(data) {
		return "", 0, newProtoErr("readString: offset past end of packet")
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", 0, newProtoErr("readString: unterminated string")
	}
	s := string(data[off:end])
	next := padTo4(end + 1 - off) + off
	if next > len(data) {
		return "", 0, newProtoErr("readString: padding past end of packet")
	}
	return s, next, nil
}

// EncodeMessage serializes m to OSC wire form: address, type-tag string,
// then arguments in tag order.
func EncodeMessage(m Message) []byte {
	var out []byte
	out = writeString(out, m.Address)

	tags := make([]byte, 0, len(m.Args)+1)
	tags = append(tags, ',')
	for _, a := range m.Args {
		tags = append(tags, a.Tag)
	}
	out = writeString(out, string(tags))

	for _, a := range m.Args {
		switch a.Tag {
		case 'i':
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(a.Int))
			out = append(out, b[:]...)
		case 'f':
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], math.Float32bits(a.Float))
			out = append(out, b[:]...)
		case 's':
			out = writeString(out, a.Str)
		case 'b':
			var lb [4]byte
			binary.BigEndian.PutUint32(lb[:], uint32(len(a.Blob)))
			out = append(out, lb[:]...)
			out = append(out, a.Blob...)
			for len(out)%4 != 0 {
				out = append(out, 0)
			}
		case 'T', 'F', 'N', 'I':
			// no argument data on the wire
		}
	}
	return out
}

// DecodeMessage parses a single OSC message from data (no bundle wrapper).
func DecodeMessage(data []byte) (Message, error) {
	if len(data) == 0 || data[0] != '/' {
		return Message{}, newProtoErr("decode: address pattern must start with '/'")
	}
	addr, off, err := readString(data, 0)
	if err != nil {
		return Message{}, err
	}
	if off >= len(data) || data[off] != ',' {
		return Message{}, newProtoErr("decode: missing type tag string")
	}
	tagStr, off, err := readString(data, off)
	if err != nil {
		return Message{}, err
	}
	tags := []byte(tagStr)[1:] // drop leading ','

	args := make([]Arg, 0, len(tags))
	for _, tag := range tags {
		switch tag {
		case 'i':
			if off+4 > len(data) {
				return Message{}, newProtoErr("decode: truncated int32 argument")
			}
			v := int32(binary.BigEndian.Uint32(data[off : off+4]))
			args = append(args, Int32(v))
			off += 4
		case 'f':
			if off+4 > len(data) {
				return Message{}, newProtoErr("decode: truncated float32 argument")
			}
			v := math.Float32frombits(binary.BigEndian.Uint32(data[off : off+4]))
			args = append(args, Float32(v))
			off += 4
		case 's':
			var s string
			s, off, err = readString(data, off)
			if err != nil {
				return Message{}, err
			}
			args = append(args, String(s))
		case 'b':
			if off+4 > len(data) {
				return Message{}, newProtoErr("decode: truncated blob length")
			}
			n := int(binary.BigEndian.Uint32(data[off : off+4]))
			off += 4
			if n < 0 || off+n > len(data) {
				return Message{}, newProtoErr("decode: truncated blob body")
			}
			b := make([]byte, n)
			copy(b, data[off:off+n])
			args = append(args, Blob(b))
			off = padTo4(off + n)
		case 'T':
			args = append(args, True())
		case 'F':
			args = append(args, False())
		case 'N':
			args = append(args, Nil())
		case 'I':
			args = append(args, Impulse())
		default:
			return Message{}, newProtoErr("decode: unsupported type tag")
		}
	}
	return Message{Address: addr, Args: args}, nil
}
