package verushash

// This file implements the primitives shared by all three VerusCLHash
// variants (C3): carry-less multiplication, the fixed modulo reduction,
// and the PMULHRSW ("mulhrs") rounding multiply, translated bit-for-bit
// from original_source/verushash/crypto/verus_clhash.cpp.

// clmul64 computes the 128-bit carry-less (XOR, not addition) product of
// two 64-bit operands, matching one 64x64->128 lane of _mm_clmulepi64_si128.
func clmul64(a, b uint64) (hi, lo uint64) {
	for i := 0; i < 64; i++ {
		if (b>>uint(i))&1 != 0 {
			// XOR in (a << i), spread across the 128-bit (hi,lo) pair.
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << uint(i)
				hi ^= a >> uint(64-i)
			}
		}
	}
	return hi, lo
}

// clmulSelect emulates _mm_clmulepi64_si128(a, b, imm8): imm8 bit 0 selects
// the low (0) or high (1) qword of a, bit 4 selects the low/high qword of
// b. Only imm8 values 0x10 and 0x01 occur in the ported source.
func clmulSelect(a, b lane, imm8 byte) lane {
	aWord := a.lo
	if imm8&0x01 != 0 {
		aWord = a.hi
	}
	bWord := b.lo
	if imm8&0x10 != 0 {
		bWord = b.hi
	}
	hi, lo := clmul64(aWord, bWord)
	return lane{lo: lo, hi: hi}
}

// shuffleTable is the fixed PSHUFB lookup table used by the modulo
// reduction (original_source verus_clhash.cpp precompReduction64_si128).
var shuffleTable = [16]byte{0, 27, 54, 45, 108, 119, 90, 65, 216, 195, 238, 245, 180, 175, 130, 153}

func shuffleEpi8(table, indices [16]byte) [16]byte {
	var out [16]byte
	for i, idx := range indices {
		if idx&0x80 != 0 {
			out[i] = 0
		} else {
			out[i] = table[idx&0x0f]
		}
	}
	return out
}

// precompReduction64Si128 reduces A modulo x^64+x^4+x^3+x+1; the high 64
// bits of the result are garbage (matches the C source's own warning) and
// must never be read.
func precompReduction64Si128(a lane) lane {
	c := lane{lo: (1 << 4) + (1 << 3) + (1 << 1) + (1 << 0), hi: 0}
	q2 := clmulSelect(a, c, 0x01)
	q3bytes := shuffleEpi8(shuffleTable, srli8(q2).bytes())
	q3 := laneFromBytes(q3bytes)
	q4 := xorLane(q2, a)
	return xorLane(q3, q4)
}

// precompReduction64 returns the reduced 64-bit value.
func precompReduction64(a lane) uint64 {
	return precompReduction64Si128(a).cvtsi64()
}

// lazyLengthHash multiplies (keylength, length) without reduction, matching
// lazyLengthHash in the ported C source; used to fold the fixed 64-byte
// message length into the accumulator before the final reduction.
func lazyLengthHash(keylength, length uint64) lane {
	lengthVector := lane{lo: length, hi: keylength}
	return clmulSelect(lengthVector, lengthVector, 0x10)
}

// mulhrsEpi16 emulates _mm_mulhrs_epi16: eight signed Q15 rounding
// multiplies, one per 16-bit lane.
func mulhrsEpi16(a, b lane) lane {
	av := laneWords16(a)
	bv := laneWords16(b)
	var rv [8]uint16
	for i := 0; i < 8; i++ {
		p := int32(int16(av[i])) * int32(int16(bv[i]))
		p = (p >> 14) + 1
		rv[i] = uint16(p >> 1)
	}
	return wordsToLane16(rv)
}

func laneWords16(l lane) [8]uint16 {
	return [8]uint16{
		uint16(l.lo), uint16(l.lo >> 16), uint16(l.lo >> 32), uint16(l.lo >> 48),
		uint16(l.hi), uint16(l.hi >> 16), uint16(l.hi >> 32), uint16(l.hi >> 48),
	}
}

func wordsToLane16(w [8]uint16) lane {
	lo := uint64(w[0]) | uint64(w[1])<<16 | uint64(w[2])<<32 | uint64(w[3])<<48
	hi := uint64(w[4]) | uint64(w[5])<<16 | uint64(w[6])<<32 | uint64(w[7])<<48
	return lane{lo: lo, hi: hi}
}

// pushPair records a (prand, prandex) index pair onto a KeyStore's
// move-scratch trail, in the order the reference implementation pushes
// them (spec.md C3 step: "Push both onto the move-scratch trail").
func (ks *KeyStore) pushPair(prandIdx, prandexIdx int) {
	ks.recordScratch(prandIdx)
	ks.recordScratch(prandexIdx)
}

// verusclhash runs the 32-iteration keyed mixing loop for one 64-byte
// buffer using the given variant, then finalizes with lazyLengthHash and
// the modulo reduction, returning a single 64-bit hash value (spec.md C3's
// clhash_variant contract output before it is concatenated into the
// driver's 256-bit result).
func verusclhash(ks *KeyStore, buf [64]byte, variant clVariant) uint64 {
	acc := variant.run(ks, buf)
	acc = xorLane(acc, lazyLengthHash(1024, 64))
	return precompReduction64(acc)
}
