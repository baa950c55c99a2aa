package control

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"oscmix/internal/osc"
)

// dumpFile is the persisted state file schema from JSON object with
// device/inputs/outputs/mixer/system sections.
type dumpFile struct {
	Device struct {
		Name string `json:"name"`
		ID int `json:"id"`
		Version string `json:"version"`
		Flags int `json:"flags"`
		Timestamp string `json:"timestamp"`
	} `json:"device"`
	Inputs []dumpInput `json:"inputs"`
	Outputs []dumpOutput `json:"outputs"`
	Mixer []dumpMixer `json:"mixer"`
	System dumpSystem `json:"system"`
}

type dumpInput struct {
	Index int `json:"index"`
	Name string `json:"name"`
	Flags int `json:"flags"`
	Gain float64 `json:"gain,omitempty"`
	Phantom bool `json:"phantom,omitempty"`
	RefLevel string `json:"reflevel,omitempty"`
	Hiz bool `json:"hiz,omitempty"`
	Mute bool `json:"mute,omitempty"`
}

type dumpOutput struct {
	Index int `json:"index"`
	Name string `json:"name"`
	Volume float64 `json:"volume"`
	Mute bool `json:"mute"`
	RefLevel string `json:"reflevel,omitempty"`
}

type dumpMixerSource struct {
	Input int `json:"input"`
	Volume float64 `json:"volume"`
	Pan int `json:"pan"`
}

type dumpMixer struct {
	Output int `json:"output"`
	Sources []dumpMixerSource `json:"sources"`
}

type dumpSystem struct {
	SampleRate string `json:"sample_rate"`
	ClockSource string `json:"clock_source"`
	BufferSize string `json:"buffer_size"`
}

// snapshotToDumpFile projects the mirror's flat (path -> args) snapshot
// into the persisted state schema. Unknown/unpopulated fields are left
// at their zero value; this is a best-effort projection, not a strict
// inverse of ParameterTree. Mix cells are not projected, so the mixer
// section is always empty.
func snapshotToDumpFile(model string, snap map[string][]osc.Arg) dumpFile {
	var out dumpFile
	out.Device.Name = model
	out.Device.Timestamp = time.Now().Format("2006-01-02_15-04-05")

	inputs := map[int]*dumpInput{}
	outputs := map[int]*dumpOutput{}
	mixers := map[int]*dumpMixer{}

	for path, args := range snap {
		switch {
		case strings.HasPrefix(path, "/input/"):
			idx, field, ok := parseIndexedPath(path, "/input/")
			if !ok {
				continue
			}
			in := inputs[idx]
			if in == nil {
				in = &dumpInput{Index: idx}
				inputs[idx] = in
			}
			applyInputField(in, field, args)
		case strings.HasPrefix(path, "/output/"):
			idx, field, ok := parseIndexedPath(path, "/output/")
			if !ok {
				continue
			}
			o := outputs[idx]
			if o == nil {
				o = &dumpOutput{Index: idx}
				outputs[idx] = o
			}
			applyOutputField(o, field, args)
		case strings.HasPrefix(path, "/system/samplerate") && len(args) > 1:
			out.System.SampleRate = args[1].Str
		case strings.HasPrefix(path, "/clock/source") && len(args) > 1:
			out.System.ClockSource = args[1].Str
		case strings.HasPrefix(path, "/system/buffersize") && len(args) > 1:
			out.System.BufferSize = args[1].Str
		}
	}

	for _, in := range inputs {
		out.Inputs = append(out.Inputs, *in)
	}
	for _, o := range outputs {
		out.Outputs = append(out.Outputs, *o)
	}
	for _, m := range mixers {
		out.Mixer = append(out.Mixer, *m)
	}
	return out
}

func parseIndexedPath(path, prefix string) (idx int, field string, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return n, parts[1], true
}

func applyInputField(in *dumpInput, field string, args []osc.Arg) {
	if len(args) == 0 {
		return
	}
	switch field {
	case "gain":
		in.Gain = float64(args[0].Float)
	case "phantom":
		in.Phantom = args[0].Int != 0
	case "hiz":
		in.Hiz = args[0].Int != 0
	case "mute":
		in.Mute = args[0].Int != 0
	case "reflevel":
		if len(args) > 1 {
			in.RefLevel = args[1].Str
		}
	}
	in.Name = fmt.Sprintf("Input %d", in.Index)
}

func applyOutputField(o *dumpOutput, field string, args []osc.Arg) {
	if len(args) == 0 {
		return
	}
	switch field {
	case "volume":
		o.Volume = float64(args[0].Float)
	case "mute":
		o.Mute = args[0].Int != 0
	case "reflevel":
		if len(args) > 1 {
			o.RefLevel = args[1].Str
		}
	}
	o.Name = fmt.Sprintf("Output %d", o.Index)
}
