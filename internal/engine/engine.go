// Package engine is the explicit composition root that wires the
// ParameterTree, DeviceMirror, ControlDispatcher, audio graph, transport,
// and MIDI port together into one running process: one struct holding
// every collaborator, built once in main and passed down, never reached
// for via package-level globals.
package engine

import (
	"log"
	"sync"

	"oscmix/internal/audiograph"
	"oscmix/internal/auditlog"
	"oscmix/internal/control"
	"oscmix/internal/midi"
	"oscmix/internal/mirror"
	"oscmix/internal/osc"
	"oscmix/internal/param"
	"oscmix/internal/sysex"
	"oscmix/internal/transport"
)

// Config bundles the pieces an Engine needs to start.
type Config struct {
	Model    string // registry key, e.g. "Fireface UCX II"
	DeviceID byte
	Debug    bool

	Transport transport.Transport // OSC in/out
	MidiPort  midi.Port           // SysEx in/out
	Audit     *auditlog.Store     // optional; nil disables audit persistence
	Graph     *audiograph.Graph   // optional; nil when running control-plane only
}

// Engine owns the running OSC<->SysEx bridge and (optionally) the audio
// graph, plus the goroutines pumping both transports.
type Engine struct {
	cfg        Config
	tree       *param.Tree
	mirror     *mirror.Mirror
	dispatcher *control.Dispatcher

	wg       sync.WaitGroup
	stopOSC  chan struct{}
	stopMIDI chan struct{}
}

// transportSender adapts a transport.Transport + midi.Port pair to
// control.Sender.
type transportSender struct {
	tr   transport.Transport
	midi midi.Port
}

func (s transportSender) SendSysex(f sysex.Frame) error {
	return s.midi.SendSysex(sysex.Encode(f))
}

func (s transportSender) SendOSC(m osc.Message) error {
	return s.tr.Send(osc.EncodeMessage(m))
}

// New builds an Engine. The registry must already contain cfg.Model.
func New(reg *param.Registry, cfg Config) (*Engine, error) {
	tree, ok := reg.Lookup(cfg.Model)
	if !ok {
		log.Printf("[engine] unknown model %q", cfg.Model)
		return nil, &modelError{cfg.Model}
	}
	mir := mirror.New(tree)
	sender := transportSender{tr: cfg.Transport, midi: cfg.MidiPort}
	d := control.New(tree, mir, sender, cfg.DeviceID, nil)

	if cfg.Audit != nil {
		d.SetAuditFunc(func(source, command, outcome string) {
			cfg.Audit.Record(source, command, outcome)
		})
		if err := cfg.Audit.TouchDeviceProfile(cfg.Model, cfg.DeviceID); err != nil {
			log.Printf("[engine] touch device profile failed: %v", err)
		}
	}

	return &Engine{
		cfg:        cfg,
		tree:       tree,
		mirror:     mir,
		dispatcher: d,
		stopOSC:    make(chan struct{}),
		stopMIDI:   make(chan struct{}),
	}, nil
}

// Tree returns the engine's resolved ParameterTree.
func (e *Engine) Tree() *param.Tree { return e.tree }

// Mirror returns the engine's DeviceMirror, for monitorapi/wsbridge wiring.
func (e *Engine) Mirror() *mirror.Mirror { return e.mirror }

// Dispatcher returns the engine's ControlDispatcher, for wsbridge wiring.
func (e *Engine) Dispatcher() *control.Dispatcher { return e.dispatcher }

// Start launches the OSC receive loop, the MIDI receive loop, and (if
// configured) the audio graph.
func (e *Engine) Start() error {
	e.wg.Add(2)
	go e.oscLoop()
	go e.midiLoop()

	if e.cfg.Graph != nil {
		if err := e.cfg.Graph.Start(); err != nil {
			log.Printf("[engine] graph start failed: %v", err)
			return err
		}
	}
	log.Printf("[engine] started model=%q device_id=0x%02x", e.cfg.Model, e.cfg.DeviceID)
	return nil
}

func (e *Engine) oscLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopOSC:
			return
		default:
		}
		data, err := e.cfg.Transport.Receive()
		if err != nil {
			log.Printf("[engine] osc receive error: %v", err)
			return
		}
		e.dispatcher.HandlePacket(e.cfg.Transport.LocalAddr().String(), data)
	}
}

func (e *Engine) midiLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopMIDI:
			return
		default:
		}
		wire, err := e.cfg.MidiPort.ReceiveSysex()
		if err != nil {
			log.Printf("[engine] midi receive error: %v", err)
			return
		}
		e.dispatcher.HandleSysex(wire)
	}
}

// Stop halts both receive loops and the audio graph, and closes the
// underlying transports.
func (e *Engine) Stop() {
	close(e.stopOSC)
	close(e.stopMIDI)
	if e.cfg.Graph != nil {
		e.cfg.Graph.Stop()
	}
	_ = e.cfg.Transport.Close()
	_ = e.cfg.MidiPort.Close()
	e.wg.Wait()
	log.Printf("[engine] stopped")
}

type modelError struct{ model string }

func (e *modelError) Error() string { return "engine: unknown model " + e.model }
