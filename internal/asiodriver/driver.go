// Package asiodriver specifies the contract surface of the hardware
// low-latency driver SDK (an external collaborator named AsioDriver).
// This module only depends on the interface below, never on a concrete
// SDK binding. internal/asiobridge provides one concrete adapter (over
// PortAudio) for real hardware use; tests use a fake that satisfies the
// same interface.
package asiodriver

// SampleFormat names the native sample encoding the driver hands to/from
// the host in its double-buffer callback.
type SampleFormat int

const (
	NativeS16 SampleFormat = iota
	NativeS24in32
	NativeS32
	NativeF32
	NativeF64
)

// ChannelInfo describes one hardware channel as exposed by the driver.
type ChannelInfo struct {
	Index int
	Name  string
	Input bool
}

// Callback is invoked by the driver once per audio block, on a thread of
// the driver's choosing. doubleBufferIndex selects which of the driver's
// two hardware buffers is ready. The callback must not block or allocate.
type Callback func(doubleBufferIndex int)

// Driver is the contract surface of the ASIO-family low-latency driver SDK.
type Driver interface {
	// Open loads and initializes the driver for the named device.
	Open(deviceName string) error
	// Channels enumerates the driver's available hardware channels.
	Channels() ([]ChannelInfo, error)
	// NativeFormat reports the driver's native sample format.
	NativeFormat() SampleFormat
	// SampleRate reports the driver-dictated sample rate in Hz.
	SampleRate() int
	// BlockSize reports the driver-dictated block size in frames.
	BlockSize() int
	// Start begins calling back into cb once per audio block, until Stop.
	Start(cb Callback) error
	// Stop halts callbacks. Idempotent.
	Stop() error
	// Close releases the driver.
	Close() error
	// InputBuffer returns the raw native-format buffer for a hardware input
	// channel for the given double-buffer index, valid only inside Callback.
	InputBuffer(doubleBufferIndex, channel int) []byte
	// OutputBuffer returns the raw native-format buffer a node must fill for
	// a hardware output channel for the given double-buffer index, valid
	// only inside Callback.
	OutputBuffer(doubleBufferIndex, channel int) []byte
}
