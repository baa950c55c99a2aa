// Package asiobridge provides a concrete asiodriver.Driver adapter over
// PortAudio (github.com/gordonklaus/portaudio). RME's own ASIO/TotalMix
// FX driver isn't reachable from Go directly, so this adapter targets
// any PortAudio host API backend (including RME interfaces exposed via
// ASIO or WDM/WASAPI) as the nearest real low-latency driver surface
// available to this module.
package asiobridge

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gordonklaus/portaudio"

	"oscmix/internal/asiodriver"
	"oscmix/internal/oscerr"
)

// PortAudioDriver implements asiodriver.Driver.
type PortAudioDriver struct {
	mu sync.Mutex
	stream *portaudio.Stream
	in []float32
	out []float32
	channels []asiodriver.ChannelInfo
	rate int
	block int
	running atomic.Bool
	cb asiodriver.Callback
}

func New() *PortAudioDriver {
	return &PortAudioDriver{block: 512, rate: 48000}
}

func (d *PortAudioDriver) Open(deviceName string) error {
	if err := portaudio.Initialize(); err != nil {
		return oscerr.Wrap(oscerr.Resource, "asiobridge.Open", "portaudio init failed", err)
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return oscerr.Wrap(oscerr.Resource, "asiobridge.Open", "enumerate devices failed", err)
	}
	var dev *portaudio.DeviceInfo
	for _, dv := range devices {
		if dv.Name == deviceName {
			dev = dv
			break
		}
	}
	if dev == nil {
		return oscerr.New(oscerr.Resource, "asiobridge.Open", "device not found: "+deviceName)
	}
	for i := 0; i < dev.MaxInputChannels; i++ {
		d.channels = append(d.channels, asiodriver.ChannelInfo{Index: i, Name: dev.Name, Input: true})
	}
	for i := 0; i < dev.MaxOutputChannels; i++ {
		d.channels = append(d.channels, asiodriver.ChannelInfo{Index: i, Name: dev.Name, Input: false})
	}
	return nil
}

func (d *PortAudioDriver) Channels() ([]asiodriver.ChannelInfo, error) {
	return d.channels, nil
}

func (d *PortAudioDriver) NativeFormat() asiodriver.SampleFormat { return asiodriver.NativeF32 }
func (d *PortAudioDriver) SampleRate() int { return d.rate }
func (d *PortAudioDriver) BlockSize() int { return d.block }

func (d *PortAudioDriver) Start(cb asiodriver.Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cb = cb
	d.in = make([]float32, d.block)
	d.out = make([]float32, d.block)

	stream, err := portaudio.OpenDefaultStream(1, 1, float64(d.rate), d.block, d.in, d.out, d.portaudioCallback)
	if err != nil {
		return oscerr.Wrap(oscerr.Resource, "asiobridge.Start", "open stream failed", err)
	}
	if err := stream.Start(); err != nil {
		return oscerr.Wrap(oscerr.Resource, "asiobridge.Start", "start stream failed", err)
	}
	d.stream = stream
	d.running.Store(true)
	return nil
}

// portaudioCallback runs on PortAudio's realtime thread; it must not
// block or allocate.
func (d *PortAudioDriver) portaudioCallback(in, out []float32) {
	copy(d.in, in)
	if d.cb != nil {
		d.cb(0)
	}
	copy(out, d.out)
}

func (d *PortAudioDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.CompareAndSwap(true, false) {
		return nil
	}
	if d.stream == nil {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return oscerr.Wrap(oscerr.IO, "asiobridge.Stop", "stop stream failed", err)
	}
	return nil
}

func (d *PortAudioDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		d.stream.Close()
	}
	return portaudio.Terminate()
}

func (d *PortAudioDriver) InputBuffer(doubleBufferIndex, channel int) []byte {
	return float32SliceToBytes(d.in)
}

func (d *PortAudioDriver) OutputBuffer(doubleBufferIndex, channel int) []byte {
	return float32SliceToBytes(d.out)
}

// float32SliceToBytes returns a byte view sharing s's memory (host byte
// order), so writes through an OutputBuffer reach the stream's buffer.
func float32SliceToBytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
