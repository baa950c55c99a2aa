// Package audiobuf implements the shared, format-aware PCM sample buffer:
// either one interleaved plane or N planar planes, reference-counted so
// it can be handed off along a graph connection without copying, with
// cheap sub-range views.
package audiobuf

import (
	"sync/atomic"

	"oscmix/internal/oscerr"
)

// storage is the memory a Buffer (and any of its views) shares ownership of.
// It is never mutated by two parties at once: once published on a
// connection a buffer is immutable, and the receiving node only reads it.
type storage struct {
	frames int
	rate   int
	format SampleFormat
	layout Layout
	planar bool
	planes [][]byte // len==1 interleaved, len==N planar
	refs   atomic.Int32
}

// Buffer is a handle onto a (possibly shared) block of PCM audio. The zero
// value is not usable; construct with New, Clone, or View.
type Buffer struct {
	s     *storage
	start int // first frame this handle exposes, relative to s
	count int // number of frames this handle exposes
}

// New allocates a zeroed buffer of frames samples per channel.
func New(frames, rate int, format SampleFormat, layout Layout) (Buffer, error) {
	if frames <= 0 || layout.Channels() <= 0 {
		return Buffer{}, oscerr.New(oscerr.Resource, "audiobuf.New", "AllocationFailed")
	}
	return newBuffer(frames, rate, format, layout, false)
}

// NewPlanar allocates a zeroed planar buffer (one plane per channel).
func NewPlanar(frames, rate int, format SampleFormat, layout Layout) (Buffer, error) {
	if frames <= 0 || layout.Channels() <= 0 {
		return Buffer{}, oscerr.New(oscerr.Resource, "audiobuf.NewPlanar", "AllocationFailed")
	}
	return newBuffer(frames, rate, format, layout, true)
}

func newBuffer(frames, rate int, format SampleFormat, layout Layout, planar bool) (Buffer, error) {
	bps := format.BytesPerSample()
	n := layout.Channels()
	s := &storage{frames: frames, rate: rate, format: format, layout: layout, planar: planar}
	if planar {
		s.planes = make([][]byte, n)
		for i := range s.planes {
			s.planes[i] = make([]byte, frames*bps)
		}
	} else {
		s.planes = [][]byte{make([]byte, frames*n*bps)}
	}
	s.refs.Store(1)
	return Buffer{s: s, start: 0, count: frames}, nil
}

// Valid reports whether b still refers to live storage (it has not been
// Released past zero by every holder).
func (b Buffer) Valid() bool { return b.s != nil && b.s.refs.Load() > 0 }

// Frames returns the frame count this handle exposes.
func (b Buffer) Frames() int { return b.count }

// Rate returns the sample rate in Hz.
func (b Buffer) Rate() int { return b.s.rate }

// Format returns the sample storage format.
func (b Buffer) Format() SampleFormat { return b.s.format }

// Layout returns the channel layout.
func (b Buffer) Layout() Layout { return b.s.layout }

// Planar reports whether storage is one plane per channel.
func (b Buffer) Planar() bool { return b.s.planar }

// PlaneCount returns the number of planes: N when planar, else 1.
func (b Buffer) PlaneCount() int {
	if b.s.planar {
		return b.s.layout.Channels()
	}
	return 1
}

// PlaneLen returns the byte length of plane i as exposed by this handle's
// sub-range (frames*bytesPerSample for planar, frames*N*bytesPerSample for
// interleaved).
func (b Buffer) PlaneLen(i int) int {
	bps := b.s.format.BytesPerSample()
	if b.s.planar {
		return b.count * bps
	}
	return b.count * b.s.layout.Channels() * bps
}

// PlanePtr returns the raw bytes of plane i, restricted to this handle's
// sub-range. Mutating the result mutates the shared storage.
func (b Buffer) PlanePtr(i int) []byte {
	bps := b.s.format.BytesPerSample()
	full := b.s.planes[i]
	if b.s.planar {
		off := b.start * bps
		return full[off : off+b.count*bps]
	}
	n := b.s.layout.Channels()
	off := b.start * n * bps
	return full[off : off+b.count*n*bps]
}

// ChannelPtr returns the bytes for channel c. For planar storage this is
// PlanePtr(c); for interleaved storage it returns a slice starting at
// channel c's first sample, and the caller must stride by N*bytesPerSample
// to reach successive frames.
func (b Buffer) ChannelPtr(c int) []byte {
	if b.s.planar {
		return b.PlanePtr(c)
	}
	bps := b.s.format.BytesPerSample()
	full := b.PlanePtr(0)
	return full[c*bps:]
}

// Clone deep-copies this handle's sub-range into a brand new, independently
// owned Buffer.
func (b Buffer) Clone() Buffer {
	dst, _ := newBuffer(b.count, b.s.rate, b.s.format, b.s.layout, b.s.planar)
	n := dst.PlaneCount()
	for i := 0; i < n; i++ {
		copy(dst.PlanePtr(i), b.PlanePtr(i))
	}
	return dst
}

// View returns a zero-copy sub-range [start,start+count) of b, keeping the
// source storage alive via the shared refcount. The view must not be used
// after every handle (including this one) has been Released, though the Go
// runtime's GC makes that a logic error rather than a memory-safety one.
func (b Buffer) View(start, count int) Buffer {
	if start < 0 || count < 0 || start+count > b.count {
		return Buffer{}
	}
	b.s.refs.Add(1)
	return Buffer{s: b.s, start: b.start + start, count: count}
}

// Retain increments the shared refcount, for a holder that wants to keep a
// copy of the handle beyond the scope that received it (e.g. queuing it for
// a background writer).
func (b Buffer) Retain() Buffer {
	if b.s != nil {
		b.s.refs.Add(1)
	}
	return b
}

// Release drops this handle's share of the underlying storage. Once every
// holder has released, the storage's raw planes are discarded; further
// PlanePtr/ChannelPtr calls on any other outstanding handle are a logic
// error (Valid reports false first).
func (b Buffer) Release() {
	if b.s == nil {
		return
	}
	if b.s.refs.Add(-1) == 0 {
		b.s.planes = nil
	}
}

// Zero fills every plane (within this handle's sub-range) with zero bytes.
func (b Buffer) Zero() {
	for i := 0; i < b.PlaneCount(); i++ {
		p := b.PlanePtr(i)
		for j := range p {
			p[j] = 0
		}
	}
}
