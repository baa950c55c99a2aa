// Package control implements the control dispatcher: routes incoming OSC
// to parameter-tree leaves and the SysEx codec, and handles the
// non-parameter commands /dump, /dump/save, /refresh, /loopback, and
// /eqrecord.
package control

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"oscmix/internal/config"
	"oscmix/internal/mirror"
	"oscmix/internal/osc"
	"oscmix/internal/oscerr"
	"oscmix/internal/param"
	"oscmix/internal/sysex"
)

// ErrorCode mirrors error taxonomy for the wire-level /error report.
type ErrorCode int

const (
	ErrUnknownPath ErrorCode = iota + 1
	ErrMalformedOSC
	ErrMalformedSysex
	ErrRange
)

// Sender is how the dispatcher emits frames: SysEx to the device, OSC
// notifications/errors back to clients.
type Sender interface {
	SendSysex(frame sysex.Frame) error
	SendOSC(msg osc.Message) error
}

// Observer is a registered interest in mirror change notifications,
// identified by an opaque uuid handle.
type Observer struct {
	ID uuid.UUID
	Notify func(osc.Message)
}

// Dispatcher wires OSC traffic to the parameter tree, the SysEx codec, and
// the device mirror.
type Dispatcher struct {
	tree *param.Tree
	mirror *mirror.Mirror
	sender Sender
	deviceID byte
	log *slog.Logger
	observers map[uuid.UUID]*Observer
	audit func(source, command, outcome string)
}

func New(tree *param.Tree, mir *mirror.Mirror, sender Sender, deviceID byte, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		tree: tree,
		mirror: mir,
		sender: sender,
		deviceID: deviceID,
		log: log,
		observers: make(map[uuid.UUID]*Observer),
	}
}

// SetAuditFunc installs a callback invoked for every inbound command,
// letting internal/auditlog record (timestamp implicit, source, command,
// outcome) without this package depending on the database.
func (d *Dispatcher) SetAuditFunc(f func(source, command, outcome string)) {
	d.audit = f
}

// Subscribe registers an observer for mirror-originated OSC notifications
// and /error reports, and returns its handle, used later to Unsubscribe.
func (d *Dispatcher) Subscribe(notify func(osc.Message)) uuid.UUID {
	id := uuid.New()
	d.observers[id] = &Observer{ID: id, Notify: notify}
	return id
}

func (d *Dispatcher) Unsubscribe(id uuid.UUID) {
	delete(d.observers, id)
}

func (d *Dispatcher) notifyObservers(msg osc.Message) {
	for _, o := range d.observers {
		o.Notify(msg)
	}
}

// HandlePacket parses an incoming OSC packet (message or bundle; bundles
// are unwrapped in arrival order and flattened) and dispatches each
// contained message in turn.
func (d *Dispatcher) HandlePacket(source string, data []byte) {
	msgs, err := osc.Decode(data)
	if err != nil {
		d.reportError(source, "", ErrMalformedOSC, err.Error())
		return
	}
	for _, m := range msgs {
		d.handleMessage(source, m)
	}
}

func (d *Dispatcher) handleMessage(source string, m osc.Message) {
	outcome := "ok"
	defer func() {
		if d.audit != nil {
			d.audit(source, m.Address, outcome)
		}
	}()

	switch {
	case m.Address == "/dump":
		d.handleDump()
		return
	case m.Address == "/dump/save":
		if err := d.handleDumpSave(); err != nil {
			outcome = "error: " + err.Error()
			d.log.Error("dump/save failed", "error", err)
		}
		return
	case m.Address == "/refresh":
		d.handleRefresh()
		return
	case m.Address == "/loopback":
		outcome = d.handleSubIDCommand(source, m, sysex.SubIDLoopback)
		return
	case m.Address == "/eqrecord":
		outcome = d.handleSubIDCommand(source, m, sysex.SubIDEQRecord)
		return
	}

	leaf, err := d.tree.Resolve(m.Address)
	if err != nil {
		outcome = "error: unknown path"
		d.reportError(source, m.Address, ErrUnknownPath, "unknown path")
		return
	}

	if leaf.Type.Kind == param.KindMix {
		vals, err := leaf.EncodeMix(m.Args)
		if err != nil {
			if oscerr.Is(err, oscerr.Range) {
				outcome = "error: range"
				d.reportError(source, m.Address, ErrRange, err.Error())
			} else {
				outcome = "error: " + err.Error()
				d.reportError(source, m.Address, ErrMalformedOSC, err.Error())
			}
			return
		}
		words := make([]uint32, len(vals))
		for i, v := range vals {
			words[i] = sysex.EncodeRegisterWord(v.Register, int16(v.Value))
		}
		frame := sysex.Frame{ManufacturerID: sysex.ManufacturerID, DeviceID: d.deviceID, SubID: sysex.SubIDRegisterWrite, Payload: wordsToPayload(words)}
		if err := d.sender.SendSysex(frame); err != nil {
			outcome = "error: " + err.Error()
			d.log.Error("sysex send failed", "error", err)
		}
		return
	}

	register, value, err := leaf.Encode(m.Args)
	if err != nil {
		if oscerr.Is(err, oscerr.Range) {
			outcome = "error: range"
			d.reportError(source, m.Address, ErrRange, err.Error())
		} else {
			outcome = "error: " + err.Error()
			d.reportError(source, m.Address, ErrMalformedOSC, err.Error())
		}
		return
	}
	word := sysex.EncodeRegisterWord(register, int16(value))
	payload := wordsToPayload([]uint32{word})
	frame := sysex.Frame{ManufacturerID: sysex.ManufacturerID, DeviceID: d.deviceID, SubID: sysex.SubIDRegisterWrite, Payload: payload}
	if err := d.sender.SendSysex(frame); err != nil {
		outcome = "error: " + err.Error()
		d.log.Error("sysex send failed", "error", err)
	}
}

// handleSubIDCommand implements /loopback and /eqrecord: both simply
// re-tag the same register-write path onto a different SysEx sub-id,
// grounded in oscmix_midi.c's sub-id dispatch.
func (d *Dispatcher) handleSubIDCommand(source string, m osc.Message, sub sysex.SubID) string {
	leaf, err := d.tree.Resolve(m.Address)
	if err != nil {
		d.reportError(source, m.Address, ErrUnknownPath, "unknown path")
		return "error: unknown path"
	}
	register, value, err := leaf.Encode(m.Args)
	if err != nil {
		d.reportError(source, m.Address, ErrMalformedOSC, err.Error())
		return "error: " + err.Error()
	}
	word := sysex.EncodeRegisterWord(register, int16(value))
	frame := sysex.Frame{ManufacturerID: sysex.ManufacturerID, DeviceID: d.deviceID, SubID: sub, Payload: wordsToPayload([]uint32{word})}
	if err := d.sender.SendSysex(frame); err != nil {
		d.log.Error("sysex send failed", "error", err)
		return "error: " + err.Error()
	}
	return "ok"
}

// HandleSysex processes an inbound SysEx frame: decodes register words,
// applies them to the mirror, and forwards any resulting OSC
// notifications to both direct observers and the sender.
func (d *Dispatcher) HandleSysex(wire []byte) {
	frame, err := sysex.Decode(wire, d.deviceID)
	if err != nil {
		d.log.Debug("dropped malformed sysex frame", "error", err)
		return
	}
	if frame.SubID != sysex.SubIDRegisterWrite {
		return
	}
	if len(frame.Payload)%4 != 0 {
		d.log.Debug("sysex register payload not a multiple of 4", "len", len(frame.Payload))
		return
	}
	for i := 0; i+4 <= len(frame.Payload); i += 4 {
		word := uint32(frame.Payload[i]) | uint32(frame.Payload[i+1])<<8 |
			uint32(frame.Payload[i+2])<<16 | uint32(frame.Payload[i+3])<<24
		if !sysex.CheckParity(word) {
			d.log.Debug("register word failed parity check")
			continue
		}
		reg, val := sysex.DecodeRegisterWord(word)
		if reg == param.RegRefreshEnd {
			d.mirror.EndRefresh()
		}
		msgs, ok := d.mirror.Apply(reg, int(val))
		if !ok {
			d.log.Debug("unmatched register", "register", reg)
			continue
		}
		for _, msg := range msgs {
			d.notifyObservers(msg)
			if err := d.sender.SendOSC(msg); err != nil {
				d.log.Error("osc send failed", "error", err)
			}
		}
	}
}

func (d *Dispatcher) handleRefresh() {
	d.mirror.BeginRefresh()
	word := sysex.EncodeRegisterWord(param.RegRefreshTrigger, int16(param.RegRefreshValue))
	frame := sysex.Frame{ManufacturerID: sysex.ManufacturerID, DeviceID: d.deviceID, SubID: sysex.SubIDRegisterWrite, Payload: wordsToPayload([]uint32{word})}
	if err := d.sender.SendSysex(frame); err != nil {
		d.log.Error("refresh sysex send failed", "error", err)
	}
}

func (d *Dispatcher) handleDump() {
	snap := d.mirror.Snapshot()
	var b strings.Builder
	for path, args := range snap {
		fmt.Fprintf(&b, "%s %v\n", path, args)
	}
	d.log.Info("parameter dump", "snapshot", b.String())
}

// handleDumpSave serializes the mirror to a timestamped JSON file under
// the device-config directory.
func (d *Dispatcher) handleDumpSave() error {
	dir, err := config.DeviceConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	snap := d.mirror.Snapshot()
	ts := time.Now().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("audio-device_%s_date-time_%s.json", sanitizeName(d.tree.Model), ts)
	data, err := json.MarshalIndent(snapshotToDumpFile(d.tree.Model, snap), "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o600)
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (d *Dispatcher) reportError(source, context string, code ErrorCode, message string) {
	msg := osc.Message{Address: "/error", Args: []osc.Arg{osc.Int32(int32(code)), osc.String(context), osc.String(message)}}
	d.notifyObservers(msg)
	if err := d.sender.SendOSC(msg); err != nil {
		d.log.Error("failed to report /error to client", "source", source, "error", err)
	}
}

func wordsToPayload(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}
