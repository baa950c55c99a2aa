// Package filecodec provides a concrete mediacodec.Codec adapter backed
// by Opus (gopkg.in/hraban/opus.v2), with in-band FEC enabled; each
// WriteBlock encodes one buffer, at its own frame count, as one packet.
package filecodec

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"gopkg.in/hraban/opus.v2"

	"oscmix/internal/audiobuf"
	"oscmix/internal/mediacodec"
	"oscmix/internal/oscerr"
)

const frameSamples = 960 // 20ms at 48kHz

// OpusCodec constructs Opus readers and writers. Files are a bare sequence
// of length-prefixed Opus packets (uint16 big-endian length + payload),
// since this module owns both ends of the wire/file format.
type OpusCodec struct{}

func New() OpusCodec { return OpusCodec{} }

func (OpusCodec) NewReader() mediacodec.Reader { return &opusReader{} }
func (OpusCodec) NewWriter() mediacodec.Writer { return &opusWriter{} }

type opusReader struct {
	file    *os.File
	decoder *opus.Decoder
	rate    int
	layout  audiobuf.Layout
}

func (r *opusReader) Open(path string) (int, audiobuf.SampleFormat, audiobuf.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, audiobuf.Layout{}, oscerr.Wrap(oscerr.Resource, "opusReader.Open", "open failed", err)
	}
	r.file = f
	r.rate = 48000
	r.layout = audiobuf.Stereo()
	dec, err := opus.NewDecoder(r.rate, r.layout.Channels())
	if err != nil {
		f.Close()
		return 0, 0, audiobuf.Layout{}, oscerr.Wrap(oscerr.Resource, "opusReader.Open", "decoder init failed", err)
	}
	r.decoder = dec
	return r.rate, audiobuf.F32, r.layout, nil
}

func (r *opusReader) readPacket() ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r.file, hdr[:]); err != nil {
		return nil, io.EOF
	}
	n := binary.BigEndian.Uint16(hdr[:])
	packet := make([]byte, n)
	if _, err := io.ReadFull(r.file, packet); err != nil {
		return nil, oscerr.Wrap(oscerr.IO, "opusReader.readPacket", "short packet", err)
	}
	return packet, nil
}

// ReadBlock decodes the next packet (up to frames frames) as F32 at the
// file's 48 kHz stereo layout. targetRate, targetFormat and targetLayout
// are not applied.
func (r *opusReader) ReadBlock(frames int, targetRate int, targetFormat audiobuf.SampleFormat, targetLayout audiobuf.Layout) (audiobuf.Buffer, error) {
	packet, err := r.readPacket()
	if err != nil {
		return audiobuf.Buffer{}, err
	}
	ch := r.layout.Channels()
	pcm := make([]float32, frames*ch)
	n, err := r.decoder.DecodeFloat32(packet, pcm)
	if err != nil {
		return audiobuf.Buffer{}, oscerr.Wrap(oscerr.IO, "opusReader.ReadBlock", "decode failed", err)
	}

	buf, err := audiobuf.New(n, r.rate, audiobuf.F32, r.layout)
	if err != nil {
		return audiobuf.Buffer{}, err
	}
	plane := buf.PlanePtr(0)
	for i := 0; i < n*ch; i++ {
		binary.LittleEndian.PutUint32(plane[i*4:], math.Float32bits(pcm[i]))
	}
	return buf, nil
}

func (r *opusReader) Seek() error {
	if r.file == nil {
		return oscerr.New(oscerr.State, "opusReader.Seek", "not open")
	}
	_, err := r.file.Seek(0, io.SeekStart)
	return err
}

func (r *opusReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

type opusWriter struct {
	file    *os.File
	encoder *opus.Encoder
	layout  audiobuf.Layout
}

// Create opens path directly: FileSink already writes to a caller-chosen
// temporary path and renames it into place on a clean Stop, so this layer
// does not duplicate that dance.
func (w *opusWriter) Create(path string, rate int, layout audiobuf.Layout, format, codec string, bitrate int) error {
	f, err := os.Create(path)
	if err != nil {
		return oscerr.Wrap(oscerr.Resource, "opusWriter.Create", "create failed", err)
	}
	w.file = f
	w.layout = layout

	enc, err := opus.NewEncoder(rate, layout.Channels(), opus.AppAudio)
	if err != nil {
		f.Close()
		return oscerr.Wrap(oscerr.Resource, "opusWriter.Create", "encoder init failed", err)
	}
	if bitrate > 0 {
		enc.SetBitrate(bitrate)
	}
	enc.SetInBandFEC(true)
	w.encoder = enc
	return nil
}

func (w *opusWriter) WriteBlock(buf audiobuf.Buffer) error {
	ch := w.layout.Channels()
	plane := buf.PlanePtr(0)
	pcm := make([]float32, buf.Frames()*ch)
	for i := range pcm {
		pcm[i] = math.Float32frombits(binary.LittleEndian.Uint32(plane[i*4:]))
	}
	packet := make([]byte, frameSamples*ch*4)
	n, err := w.encoder.EncodeFloat32(pcm, packet)
	if err != nil {
		return oscerr.Wrap(oscerr.IO, "opusWriter.WriteBlock", "encode failed", err)
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(n))
	if _, err := w.file.Write(hdr[:]); err != nil {
		return oscerr.Wrap(oscerr.IO, "opusWriter.WriteBlock", "write header failed", err)
	}
	_, err = w.file.Write(packet[:n])
	return err
}

func (w *opusWriter) Flush() error {
	return w.file.Sync()
}

func (w *opusWriter) Close() error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Close(); err != nil {
		return oscerr.Wrap(oscerr.IO, "opusWriter.Close", "close failed", err)
	}
	return nil
}
