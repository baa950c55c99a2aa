package mirror

import (
	"strconv"
	"strings"

	"oscmix/internal/osc"
)

// DurecFile is one onboard-recorder file slot.
type DurecFile struct {
	Name string
	SampleRate int
	Channels int
	Length int64
}

// durecState holds the onboard recorder's reassembled file array. Each
// file's fields arrive as independent register words, in any order,
// interleaved with unrelated traffic; durecState buffers them per index
// and resizes the slice when /durec/numfiles changes, or grows it when a
// file field arrives for an index past the current end.
type durecState struct {
	files []DurecFile
}

// updateFromMessage folds one already-decoded mirror message into the
// DURec file array. It is a no-op for non-durec paths.
func (d *durecState) updateFromMessage(msg osc.Message) {
	switch {
	case msg.Address == "/durec/numfiles":
		if len(msg.Args) == 0 {
			return
		}
		n := int(msg.Args[0].Int)
		if n < 0 {
			n = 0
		}
		d.resize(n)
	case strings.HasPrefix(msg.Address, "/durec/file/"):
		d.updateFileField(msg)
	}
}

func (d *durecState) resize(n int) {
	if n == len(d.files) {
		return
	}
	grown := make([]DurecFile, n)
	copy(grown, d.files)
	d.files = grown
}

func (d *durecState) updateFileField(msg osc.Message) {
	// "/durec/file/<idx>/<field>"
	parts := strings.Split(strings.TrimPrefix(msg.Address, "/durec/file/"), "/")
	if len(parts) != 2 || len(msg.Args) == 0 {
		return
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 1 {
		return
	}
	if idx > len(d.files) {
		d.resize(idx)
	}
	f := &d.files[idx-1]
	switch parts[1] {
	case "name":
		f.Name = msg.Args[0].Str
	case "samplerate":
		f.SampleRate = int(msg.Args[0].Int)
	case "channels":
		f.Channels = int(msg.Args[0].Int)
	case "length":
		f.Length = int64(msg.Args[0].Int)
	}
}

// applyDurec exists only to satisfy Apply's call shape when a register
// could not be resolved through the ParameterTree; DURec fields are all
// ordinary tree leaves (see tables.go), so this never actually handles
// anything and is reserved for a future raw (non-tree) DURec fast path.
func (m *Mirror) applyDurec(register uint16, raw int) ([]osc.Message, bool) {
	return nil, false
}

// DurecFiles returns a snapshot of the current file array.
func (m *Mirror) DurecFiles() []DurecFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DurecFile, len(m.durec.files))
	copy(out, m.durec.files)
	return out
}
