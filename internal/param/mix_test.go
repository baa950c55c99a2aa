package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonoToStereoRoundTrip(t *testing.T) {
	regs := MixRegisters{MonoL: 0x2000, MonoR: 0x2040}
	cases := []struct {
		vol float64
		pan int
	}{
		{0, 0},
		{-6, 50},
		{-6, -50},
		{3, 100},
		{3, -100},
		{-30, 25},
	}
	for _, c := range cases {
		vals := EncodeMonoToStereo(regs, MixWrite{VolDB: c.vol, Pan: c.pan})
		require2Len(t, vals, 2)
		legL := rawToLevel(vals[0].Value)
		legR := rawToLevel(vals[1].Value)
		got := DecodeMonoToStereo(legL, legR)
		assert.InDelta(t, c.vol, got.VolDB, 0.15, "vol mismatch for case %+v", c)
		assert.InDelta(t, c.pan, got.Pan, 1.5, "pan mismatch for case %+v", c)
	}
}

func TestStereoToStereoRoundTrip(t *testing.T) {
	regs := MixRegisters{LL: 1, LR: 2, RL: 3, RR: 4, SummaryVolL: 5, SummaryPanL: 6, SummaryVolR: 7, SummaryPanR: 8}
	left := MixWrite{VolDB: -3, Width: 0.2}
	right := MixWrite{VolDB: -3, Width: 0.2}
	vals := EncodeStereoToStereo(regs, left, right)
	require2Len(t, vals, 8)

	byReg := map[uint16]int{}
	for _, v := range vals {
		byReg[v.Register] = v.Value
	}
	ll := rawToLevel(byReg[regs.LL])
	lr := rawToLevel(byReg[regs.LR])
	rl := rawToLevel(byReg[regs.RL])
	rr := rawToLevel(byReg[regs.RR])

	gotLeft, gotRight := DecodeStereoToStereo(ll, lr, rl, rr)
	assert.InDelta(t, left.VolDB, gotLeft.VolDB, 0.2)
	assert.InDelta(t, right.VolDB, gotRight.VolDB, 0.2)
}

func TestDbLinearRoundTrip(t *testing.T) {
	for _, db := range []float64{0, -6, -12, -30, 6} {
		lin := dbToLinear(db)
		got := linearToDB(lin)
		assert.InDelta(t, db, got, 1e-6)
	}
	assert.True(t, math.IsInf(linearToDB(0), -1))
}

func require2Len(t *testing.T, vals []RegisterValue, n int) {
	t.Helper()
	if len(vals) != n {
		t.Fatalf("expected %d register values, got %d", n, len(vals))
	}
}
