package audionode

import (
	"encoding/binary"
	"math"

	"oscmix/internal/asiodriver"
	"oscmix/internal/audiobuf"
)

// nativeToInternalFormat maps the driver's native sample format to the
// closest audiobuf.SampleFormat so the converter can reason about byte
// widths uniformly.
func nativeToInternalFormat(f asiodriver.SampleFormat) (audiobuf.SampleFormat, bool) {
	switch f {
	case asiodriver.NativeS16:
		return audiobuf.S16, true
	case asiodriver.NativeS24in32:
		return audiobuf.S24in32, true
	case asiodriver.NativeS32:
		return audiobuf.S32, true
	case asiodriver.NativeF32:
		return audiobuf.F32, true
	case asiodriver.NativeF64:
		return audiobuf.F64, true
	default:
		return 0, false
	}
}

// sampleToFloat64 reads one sample at byte offset off of format nf from buf.
func sampleToFloat64(buf []byte, off int, nf audiobuf.SampleFormat) float64 {
	switch nf {
	case audiobuf.S16:
		v := int16(binary.LittleEndian.Uint16(buf[off:]))
		return float64(v) / 32768.0
	case audiobuf.S24in32, audiobuf.S32:
		v := int32(binary.LittleEndian.Uint32(buf[off:]))
		return float64(v) / 2147483648.0
	case audiobuf.F32:
		bits := binary.LittleEndian.Uint32(buf[off:])
		return float64(math.Float32frombits(bits))
	case audiobuf.F64:
		bits := binary.LittleEndian.Uint64(buf[off:])
		return math.Float64frombits(bits)
	default:
		return 0
	}
}

// float64ToSample writes v at byte offset off of format nf into buf.
func float64ToSample(buf []byte, off int, nf audiobuf.SampleFormat, v float64) {
	switch nf {
	case audiobuf.S16:
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(buf[off:], uint16(int16(v*32767.0)))
	case audiobuf.S24in32, audiobuf.S32:
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint32(buf[off:], uint32(int32(v*2147483647.0)))
	case audiobuf.F32:
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
	case audiobuf.F64:
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
	}
}

// convertChannelNative copies one channel of frames samples from a native
// per-channel byte slice (nativeFmt) into dst's channel c (internal format),
// converting sample representation as needed.
func convertChannelNative(dst audiobuf.Buffer, c int, frames int, native []byte, nativeFmt audiobuf.SampleFormat) {
	nbps := nativeFmt.BytesPerSample()
	dstFmt := dst.Format()
	dbps := dstFmt.BytesPerSample()
	chBuf := dst.ChannelPtr(c)
	stride := dbps
	if !dst.Planar() {
		stride = dst.Layout().Channels() * dbps
	}
	for f := 0; f < frames; f++ {
		v := sampleToFloat64(native, f*nbps, nativeFmt)
		float64ToSample(chBuf, f*stride, dstFmt, v)
	}
}

// convertChannelToNative is the reverse of convertChannelNative: it reads
// channel c of src (internal format) and writes frames samples into a
// native-format destination byte slice.
func convertChannelToNative(native []byte, nativeFmt audiobuf.SampleFormat, src audiobuf.Buffer, c int, frames int) {
	nbps := nativeFmt.BytesPerSample()
	srcFmt := src.Format()
	sbps := srcFmt.BytesPerSample()
	chBuf := src.ChannelPtr(c)
	stride := sbps
	if !src.Planar() {
		stride = src.Layout().Channels() * sbps
	}
	for f := 0; f < frames; f++ {
		v := sampleToFloat64(chBuf, f*stride, srcFmt)
		float64ToSample(native, f*nbps, nativeFmt, v)
	}
}

// silenceFill zero-fills a native-format buffer with the representation of
// digital silence (0 for every format; float and signed-int silence both
// happen to be the all-zero-bytes pattern).
func silenceFill(native []byte) {
	for i := range native {
		native[i] = 0
	}
}
