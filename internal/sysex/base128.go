package sysex

// Pack 7-bit-encodes data in groups of 4 input bytes to 5 output bytes.
// Every output byte has bit 7 clear so it is a legal MIDI data byte.
// data must be a multiple of 4 bytes long; any final partial group is
// zero-padded before packing (callers always pass whole register words, so
// this only matters for malformed input).
func Pack(data []byte) []byte {
	n := len(data)
	groups := (n + 3) / 4
	out := make([]byte, 0, groups*5)
	for g := 0; g < groups; g++ {
		var b [4]byte
		for i := 0; i < 4; i++ {
			idx := g*4 + i
			if idx < n {
				b[i] = data[idx]
			}
		}
		o0 := b[0] & 0x7F
		o1 := (b[0] >> 7) | ((b[1] & 0x3F) << 1)
		o2 := (b[1] >> 6) | ((b[2] & 0x1F) << 2)
		o3 := (b[2] >> 5) | ((b[3] & 0x0F) << 3)
		o4 := b[3] >> 4
		out = append(out, o0, o1, o2, o3, o4)
	}
	return out
}

// Unpack is the inverse of Pack: every 5 input 7-bit bytes decode to 4
// output bytes. packed must be a multiple of 5 bytes long.
func Unpack(packed []byte) ([]byte, error) {
	n := len(packed)
	if n%5 != 0 {
		return nil, newProtoErr("unpack: payload length not a multiple of 5")
	}
	groups := n / 5
	out := make([]byte, 0, groups*4)
	for g := 0; g < groups; g++ {
		o0 := packed[g*5]
		o1 := packed[g*5+1]
		o2 := packed[g*5+2]
		o3 := packed[g*5+3]
		o4 := packed[g*5+4]

		b0 := (o0 & 0x7F) | ((o1 & 0x01) << 7)
		b1 := ((o1 >> 1) & 0x3F) | ((o2 & 0x03) << 6)
		b2 := ((o2 >> 2) & 0x1F) | ((o3 & 0x07) << 5)
		b3 := ((o3 >> 3) & 0x0F) | ((o4 & 0x0F) << 4)
		out = append(out, b0, b1, b2, b3)
	}
	return out, nil
}
