// Package param implements the parameter tree: a static declarative
// map from OSC paths to device registers, with per-leaf semantic types and
// inbound/outbound codecs.
package param

import (
	"math"
	"strconv"
	"strings"

	"oscmix/internal/oscerr"
	"oscmix/internal/osc"
)

// Kind identifies a leaf's semantic type.
type Kind int

const (
	KindInt Kind = iota
	KindFixed
	KindEnum
	KindBool
	KindString
	KindLevel
	KindPan
	KindMix
)

// SemType describes the bounds and scale of one leaf's device value.
type SemType struct {
	Kind Kind
	Min int
	Max int
	Scale float64 // Fixed: device = round(osc/scale); osc = device*scale
	Names []string // Enum
	StrLen int // String: max encoded byte length
}

func Int(min, max int) SemType { return SemType{Kind: KindInt, Min: min, Max: max} }
func Fixed(min, max int, scale float64) SemType {
	return SemType{Kind: KindFixed, Min: min, Max: max, Scale: scale}
}
func Enum(names ...string) SemType { return SemType{Kind: KindEnum, Max: len(names) - 1, Names: names} }
func Bool() SemType { return SemType{Kind: KindBool, Min: 0, Max: 1} }
func Str(maxLen int) SemType { return SemType{Kind: KindString, StrLen: maxLen} }
func Level() SemType { return SemType{Kind: KindLevel, Min: -650, Max: 60} }
func Pan() SemType { return SemType{Kind: KindPan, Min: -100, Max: 100} }
func Mix() SemType { return SemType{Kind: KindMix} }

func newRangeErr(msg string) error { return oscerr.New(oscerr.Range, "param", msg) }
func newProtoErr(msg string) error { return oscerr.New(oscerr.Protocol, "param", msg) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// encodeScalar implements the inbound codec for Int/Fixed/Enum/Bool/Level
// leaves. Mix leaves are encoded by Leaf.EncodeMix; Pan leaves have no
// encoder and return an error.
func (t SemType) encodeScalar(args []osc.Arg) (int, error) {
	if len(args) == 0 {
		return 0, newProtoErr("encode: missing argument")
	}
	a := args[0]
	switch t.Kind {
	case KindInt:
		v, err := argToInt(a)
		if err != nil {
			return 0, err
		}
		return clampInt(v, t.Min, t.Max), nil
	case KindFixed:
		f, err := argToFloat(a)
		if err != nil {
			return 0, err
		}
		dev := int(math.Round(f / t.Scale))
		return clampInt(dev, t.Min, t.Max), nil
	case KindEnum:
		if a.Tag == 's' {
			for i, name := range t.Names {
				if strings.EqualFold(name, a.Str) {
					return i, nil
				}
			}
			return 0, newRangeErr("encode: unknown enum name " + a.Str)
		}
		v, err := argToInt(a)
		if err != nil {
			return 0, err
		}
		return clampInt(v, 0, len(t.Names)-1), nil
	case KindBool:
		b, ok := a.Bool()
		if !ok {
			return 0, newProtoErr("encode: expected boolean-compatible argument")
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case KindLevel:
		f, err := argToFloat(a)
		if err != nil {
			return 0, err
		}
		if f <= -65 {
			return -650, nil
		}
		return clampInt(int(math.Round(f*10)), t.Min, t.Max), nil
	case KindString:
		return 0, newProtoErr("encode: string leaves are not register-backed")
	default:
		return 0, newProtoErr("encode: unsupported scalar kind")
	}
}

// decodeScalar implements the outbound codec, producing one OSC message.
func (t SemType) decodeScalar(path string, raw int) []osc.Message {
	switch t.Kind {
	case KindInt:
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.Int32(int32(raw))}}}
	case KindFixed:
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.Float32(float32(float64(raw) * t.Scale))}}}
	case KindEnum:
		idx := clampInt(raw, 0, len(t.Names)-1)
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.Int32(int32(idx)), osc.String(t.Names[idx])}}}
	case KindBool:
		v := int32(0)
		if raw != 0 {
			v = 1
		}
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.Int32(v)}}}
	case KindLevel:
		db := -65.0
		if raw > -650 {
			db = float64(raw) / 10
		}
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.Float32(float32(db))}}}
	case KindString:
		// Real device firmware packs a name string across several
		// consecutive registers (two characters each); this register
		// map models each string leaf as a single register carrying
		// one decoded code point, so the outbound form is just that
		// scalar re-emitted as a one-character OSC string.
		return []osc.Message{{Address: path, Args: []osc.Arg{osc.String(string(rune(raw)))}}}
	default:
		// KindMix has no single-register outbound form (see
		// DecodeMixRegisters); KindPan is unused by any current table.
		return nil
	}
}

func argToInt(a osc.Arg) (int, error) {
	switch a.Tag {
	case 'i':
		return int(a.Int), nil
	case 'f':
		return int(math.Round(float64(a.Float))), nil
	case 'T':
		return 1, nil
	case 'F':
		return 0, nil
	}
	return 0, newProtoErr("expected numeric argument, got tag " + string(a.Tag))
}

func argToFloat(a osc.Arg) (float64, error) {
	switch a.Tag {
	case 'f':
		return float64(a.Float), nil
	case 'i':
		return float64(a.Int), nil
	}
	return 0, newProtoErr("expected numeric argument, got tag " + string(a.Tag))
}

// parseIndex reports whether seg is a positive decimal integer path
// component, address grammar.
func parseIndex(seg string) (int, bool) {
	n, err := strconv.Atoi(seg)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
