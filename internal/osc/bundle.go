package osc

import (
	"encoding/binary"
	"strings"
)

const bundleTag = "#bundle"

// Bundle is a decoded OSC bundle: a 64-bit NTP time tag plus an ordered
// list of element packets (always flattened to Messages by Decode).
type Bundle struct {
	TimeTag uint64
	Messages []Message
}

// EncodeBundle serializes b with each message size-prefixed
func EncodeBundle(b Bundle) []byte {
	var out []byte
	out = writeString(out, bundleTag)
	var tb [8]byte
	binary.BigEndian.PutUint64(tb[:], b.TimeTag)
	out = append(out, tb[:]...)
	for _, m := range b.Messages {
		enc := EncodeMessage(m)
		var lb [4]byte
		binary.BigEndian.PutUint32(lb[:], uint32(len(enc)))
		out = append(out, lb[:]...)
		out = append(out, enc...)
	}
	return out
}

// Decode parses a top-level OSC packet, which is either a single message or
// a bundle. Bundles are unwrapped in arrival order and nested bundles are
// flattened, ControlDispatcher requirement.
func Decode(data []byte) ([]Message, error) {
	if len(data) > maxPacketSize {
		return nil, newProtoErr("decode: packet exceeds maximum size")
	}
	if len(data) >= 8 && string(data[:7]) == bundleTag && data[7] == 0 {
		return decodeBundleElements(data)
	}
	m, err := DecodeMessage(data)
	if err != nil {
		return nil, err
	}
	return []Message{m}, nil
}

func decodeBundleElements(data []byte) ([]Message, error) {
	// skip "#bundle\0" (8 bytes) + 8-byte time tag
	off := 16
	if off > len(data) {
		return nil, newProtoErr("decode: truncated bundle header")
	}
	var out []Message
	for off < len(data) {
		if off+4 > len(data) {
			return nil, newProtoErr("decode: truncated bundle element size")
		}
		size := int(binary.BigEndian.Uint32(data[off : off+4]))
		off += 4
		if size < 0 || off+size > len(data) {
			return nil, newProtoErr("decode: truncated bundle element")
		}
		elem := data[off : off+size]
		off += size

		if len(elem) >= 8 && string(elem[:7]) == bundleTag && elem[7] == 0 {
			nested, err := decodeBundleElements(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		m, err := DecodeMessage(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MatchAddress reports whether pattern (which may contain a single '*'
// wildcard segment or substring, "basic wildcard matching")
// matches the literal address addr.
func MatchAddress(pattern, addr string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == addr
	}
	idx := strings.IndexByte(pattern, '*')
	prefix, suffix := pattern[:idx], pattern[idx+1:]
	return strings.HasPrefix(addr, prefix) && strings.HasSuffix(addr, suffix) &&
		len(addr) >= len(prefix)+len(suffix)
}
