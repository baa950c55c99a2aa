// Package mediacodec specifies the contract surface of the file/codec
// library used by file endpoints (an external collaborator named
// MediaCodec). FileSource/FileSink depend only on this interface;
// internal/filecodec provides a concrete Opus-backed adapter, and tests
// use a fake.
package mediacodec

import "oscmix/internal/audiobuf"

// Reader decodes a media file into a sequence of PCM buffers.
type Reader interface {
	// Open opens path for reading and reports the stream's native rate,
	// format, and channel layout.
	Open(path string) (rate int, format audiobuf.SampleFormat, layout audiobuf.Layout, err error)
	// ReadBlock decodes the next block of frames frames, reformatted to
	// targetFormat/targetLayout at targetRate. Returns io.EOF when exhausted.
	ReadBlock(frames int, targetRate int, targetFormat audiobuf.SampleFormat, targetLayout audiobuf.Layout) (audiobuf.Buffer, error)
	// Seek rewinds the stream to its start.
	Seek() error
	// Close releases the reader.
	Close() error
}

// Writer encodes a sequence of PCM buffers into a media file.
type Writer interface {
	// Create opens path for writing with the given format/codec/bitrate
	// hints (codec/bitrate may be empty/0 to take the codec's default).
	Create(path string, rate int, layout audiobuf.Layout, format, codec string, bitrate int) error
	// WriteBlock encodes one buffer of PCM frames.
	WriteBlock(buf audiobuf.Buffer) error
	// Flush finalizes the encoder's internal state without closing the file.
	Flush() error
	// Close flushes and closes the file.
	Close() error
}

// Codec constructs Readers and Writers; internal/filecodec's concrete type
// implements this against Opus, and tests implement it against an
// in-memory fake.
type Codec interface {
	NewReader() Reader
	NewWriter() Writer
}
