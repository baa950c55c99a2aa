package param

import "math"

// MixRegisters is the set of device registers one Mix leaf writes/reads,
// four per-leg linear-gain registers plus a summary dB/pan register pair
// for each leg of the stereo pair. A mono-to-mono or mono-to-stereo mix only
// populates the subset it needs; unused fields are left at their zero
// register offset and simply not written.
type MixRegisters struct {
	LL, LR, RL, RR uint16 // cross-term linear-gain registers (stereo-to-stereo)
	MonoL, MonoR uint16 // level registers for mono-to-stereo (cos/sin legs)
	SummaryVolL uint16 // dB register for the left (or mono) summary leg
	SummaryPanL uint16 // pan register for the left (or mono) summary leg
	SummaryVolR uint16
	SummaryPanR uint16
}

// MixWrite is a decoded inbound Mix command: volume in dB, pan in
// [-100,100], and stereo width (meaningful only when both source and
// destination are stereo-linked).
type MixWrite struct {
	VolDB float64
	Pan int
	Width float64
}

// RegisterValue is one (register, raw 16-bit value) pair ready for the
// SysexCodec.
type RegisterValue struct {
	Register uint16
	Value int
}

// EncodeMonoToStereo computes the two linear-gain legs for a mono source
// feeding a stereo output, L = 10^(vol/20), theta =
// (pan+100)/400*pi, legs = L*cos(theta), L*sin(theta).
func EncodeMonoToStereo(regs MixRegisters, w MixWrite) []RegisterValue {
	level := dbToLinear(w.VolDB)
	theta := float64(w.Pan+100) / 400 * math.Pi
	legL := level * math.Cos(theta)
	legR := level * math.Sin(theta)
	return []RegisterValue{
		{regs.MonoL, levelToRaw(legL)},
		{regs.MonoR, levelToRaw(legR)},
	}
}

// DecodeMonoToStereo is the inverse of EncodeMonoToStereo: it recovers
// (vol, pan) from the two observed legs so the round-trip property in
// holds within 0.1 dB and 1% pan.
func DecodeMonoToStereo(legL, legR float64) MixWrite {
	level := math.Hypot(legL, legR)
	if level == 0 {
		return MixWrite{VolDB: math.Inf(-1), Pan: 0}
	}
	theta := math.Atan2(legR, legL)
	pan := theta*400/math.Pi - 100
	return MixWrite{VolDB: linearToDB(level), Pan: int(math.Round(pan))}
}

// EncodeStereoToStereo computes the four cross-term linear gains for a
// stereo-linked source feeding a stereo-linked output with width w, per
// using per-leg levels L0 (left) and L1 (right), the four terms are
// L0(1+w), L0(1-w), L1(1-w), L1(1+w) assigned to (L->L, L->R, R->L, R->R).
func EncodeStereoToStereo(regs MixRegisters, left, right MixWrite) []RegisterValue {
	l0 := dbToLinear(left.VolDB)
	l1 := dbToLinear(right.VolDB)
	w := left.Width
	ll := l0 * (1 + w)
	lr := l0 * (1 - w)
	rl := l1 * (1 - w)
	rr := l1 * (1 + w)

	vals := []RegisterValue{
		{regs.LL, levelToRaw(ll)},
		{regs.LR, levelToRaw(lr)},
		{regs.RL, levelToRaw(rl)},
		{regs.RR, levelToRaw(rr)},
	}

	// Summary dB/pan registers are derived by inverting the sum-and-
	// difference of the squared cross terms back to a single (vol,pan)
	// per leg, matching the device's own summary display fields.
	sumL := DecodeMonoToStereo(ll, lr)
	sumR := DecodeMonoToStereo(rl, rr)
	vals = append(vals,
		RegisterValue{regs.SummaryVolL, int(math.Round(sumL.VolDB * 10))},
		RegisterValue{regs.SummaryPanL, sumL.Pan},
		RegisterValue{regs.SummaryVolR, int(math.Round(sumR.VolDB * 10))},
		RegisterValue{regs.SummaryPanR, sumR.Pan},
	)
	return vals
}

// DecodeStereoToStereo inverts EncodeStereoToStereo's four cross-term
// registers back to (leftVol, rightVol, width); pan is not recovered and
// both returned MixWrites carry Pan 0. Each
// leg's level is the average of its two cross terms (ll+lr = l0(1+w)+l0(1-w)
// = 2*l0), not their hypot: hypot(ll,lr) folds in the width term too and
// is only equal to l0 when w is 0.
func DecodeStereoToStereo(ll, lr, rl, rr float64) (left, right MixWrite) {
	l0 := (ll + lr) / 2
	l1 := (rl + rr) / 2
	width := 0.0
	switch {
	case ll+lr > 0:
		width = (ll - lr) / (ll + lr)
	case rl+rr > 0:
		width = (rr - rl) / (rl + rr)
	}
	left = MixWrite{VolDB: linearToDB(l0), Width: width}
	right = MixWrite{VolDB: linearToDB(l1), Width: width}
	return left, right
}

// DecodeMixRegisters reconstructs the stereo-linked (left,right) pair from
// the four raw cross-term register values freshly observed off the wire.
func DecodeMixRegisters(ll, lr, rl, rr int) (left, right MixWrite) {
	return DecodeStereoToStereo(rawToLevel(ll), rawToLevel(lr), rawToLevel(rl), rawToLevel(rr))
}

func dbToLinear(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return math.Pow(10, db/20)
}

func linearToDB(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}

// levelToRaw packs a linear gain into the companded 16-bit level register
// form used elsewhere for Level leaves (tenths of a dB, floor at -650).
func levelToRaw(level float64) int {
	db := linearToDB(level)
	if math.IsInf(db, -1) || db <= -65 {
		return -650
	}
	return int(math.Round(db * 10))
}

// rawToLevel is the inverse of levelToRaw: recover the linear gain a cross-
// term register represents. Used when reassembling a Mix leaf's current
// state from freshly decoded register words (DeviceMirror inbound path).
func rawToLevel(raw int) float64 {
	if raw <= -650 {
		return 0
	}
	return dbToLinear(float64(raw) / 10)
}
