package sysex

import "math/bits"

// EncodeRegisterWord packs a (register,value) pair into the 32-bit
// little-endian wire word: bits[0:16]=value (two's complement),
// bits[16:31]=register (15 bits), bit[31]=odd parity of bits[0:31]. This
// resolves the ambiguity of whether the parity bit covers the register
// field, the value field, or both: it covers both.
func EncodeRegisterWord(register uint16, value int16) uint32 {
	word := uint32(uint16(value)) | uint32(register&0x7FFF)<<16
	if bits.OnesCount32(word)%2 == 0 {
		word |= 1 << 31
	}
	return word
}

// DecodeRegisterWord is the inverse of EncodeRegisterWord, ignoring the
// parity bit (callers validate it separately with CheckParity).
func DecodeRegisterWord(word uint32) (register uint16, value int16) {
	value = int16(uint16(word))
	register = uint16(word>>16) & 0x7FFF
	return register, value
}

// CheckParity reports whether word's parity bit (bit 31) makes the total
// number of set bits across bits[0:31] odd.
func CheckParity(word uint32) bool {
	return bits.OnesCount32(word)%2 == 1
}
