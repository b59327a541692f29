// Package verushash implements the VerusHash v2.x block-hash pipeline: the
// Haraka-512 keyed permutation, the VerusCLHash universal hash family
// (v1, sv2_1, sv2_2), the solution-blob codec, block-header canonicalization
// and the version-gated hash driver. The package has no side effects: no
// logging, configuration, or I/O — callers in internal/rpc, internal/api and
// cmd/verushash-service own those concerns.
//
// Key tables are not safe for concurrent use: a *KeyStore must not be shared
// across goroutines without external synchronization (see keystore.go).
package verushash

import (
	"crypto/sha256"
	"encoding/binary"
)

// lane is a portable stand-in for an SSE __m128i register: lo holds bytes
// 0-7 (little-endian), hi holds bytes 8-15 (little-endian), matching the
// byte order produced by a raw memory load of an __m128i.
type lane struct {
	lo, hi uint64
}

func loadLane(b []byte) lane {
	return lane{
		lo: binary.LittleEndian.Uint64(b[0:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func (l lane) store(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], l.lo)
	binary.LittleEndian.PutUint64(b[8:16], l.hi)
}

func (l lane) bytes() [16]byte {
	var b [16]byte
	l.store(b[:])
	return b
}

func laneFromBytes(b [16]byte) lane {
	return loadLane(b[:])
}

func xorLane(a, b lane) lane {
	return lane{lo: a.lo ^ b.lo, hi: a.hi ^ b.hi}
}

// cvtsi64 extracts the low 64 bits, matching _mm_cvtsi128_si64.
func (l lane) cvtsi64() uint64 { return l.lo }

// laneFromI32 matches _mm_cvtsi32_si128: the 32-bit value fills the low
// dword and every higher bit is zero. Used only where the source code loads
// a 32-bit modulo result.
func laneFromI32(v int32) lane {
	return lane{lo: uint64(uint32(v)), hi: 0}
}

// laneFromI64 matches _mm_cvtsi64_si128.
func laneFromI64(v int64) lane {
	return lane{lo: uint64(v), hi: 0}
}

// srli8 matches _mm_srli_si128(x, 8): shift right by 8 bytes (not bits).
func srli8(x lane) lane {
	return lane{lo: x.hi, hi: 0}
}

// --- AES round + byte shuffle, standard Rijndael (FIPS-197), used to
// emulate AESENC/PSHUFB since Go exposes no portable single-round
// intrinsic. These tables are public-domain AES constants, not part of the
// VerusHash-specific round-constant data (which spec.md treats as opaque
// and out of scope; see roundconstants.go).

var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// aesEncLane emulates _mm_aesenc_si128(state, roundKey): SubBytes, ShiftRows,
// MixColumns, then XOR the round key.
func aesEncLane(state, roundKey lane) lane {
	in := state.bytes()
	var sub [16]byte
	for i, v := range in {
		sub[i] = sbox[v]
	}
	// ShiftRows over the column-major 4x4 byte matrix (AES byte order:
	// column c occupies bytes [4c:4c+4], row r is byte index 4c+r).
	var shifted [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			shifted[4*c+r] = sub[4*((c+r)%4)+r]
		}
	}
	var mixed [16]byte
	for c := 0; c < 4; c++ {
		col := shifted[4*c : 4*c+4]
		mixed[4*c+0] = gmul(col[0], 2) ^ gmul(col[1], 3) ^ col[2] ^ col[3]
		mixed[4*c+1] = col[0] ^ gmul(col[1], 2) ^ gmul(col[2], 3) ^ col[3]
		mixed[4*c+2] = col[0] ^ col[1] ^ gmul(col[2], 2) ^ gmul(col[3], 3)
		mixed[4*c+3] = gmul(col[0], 3) ^ col[1] ^ col[2] ^ gmul(col[3], 2)
	}
	return xorLane(laneFromBytes(mixed), roundKey)
}

func unpackLo32(a, b lane) lane {
	ad0, ad1 := uint32(a.lo), uint32(a.lo>>32)
	bd0, bd1 := uint32(b.lo), uint32(b.lo>>32)
	_ = ad1
	_ = bd1
	return lane{
		lo: uint64(ad0) | uint64(bd0)<<32,
		hi: uint64(uint32(a.lo>>32)) | uint64(uint32(b.lo>>32))<<32,
	}
}

func unpackHi32(a, b lane) lane {
	ad2, bd2 := uint32(a.hi), uint32(b.hi)
	ad3, bd3 := uint32(a.hi>>32), uint32(b.hi>>32)
	return lane{
		lo: uint64(ad2) | uint64(bd2)<<32,
		hi: uint64(ad3) | uint64(bd3)<<32,
	}
}

// mix4 is the standard Haraka MIX4 linear layer over four lanes.
func mix4(s0, s1, s2, s3 lane) (lane, lane, lane, lane) {
	tmp := unpackLo32(s0, s1)
	n0 := unpackHi32(s0, s1)
	n1 := unpackLo32(s2, s3)
	n2 := unpackHi32(s2, s3)
	n3 := unpackLo32(n0, n2)
	n0b := unpackHi32(n0, n2)
	n2b := unpackHi32(n1, tmp)
	n1b := unpackLo32(n1, tmp)
	return n0b, n1b, n2b, n3
}

// mix2 is the 2-lane analogue of mix4, used inside the CLHash engine's
// AES2/MIX2 mini-rounds (spec.md C3, selector cases 0x10/0x14).
func mix2(s0, s1 lane) (lane, lane) {
	tmp := unpackLo32(s0, s1)
	hi := unpackHi32(s0, s1)
	return hi, unpackLo32(s1, tmp)
}

// aes4 applies two AESENC rounds to each of four lanes, consuming 8
// sequential round-key lanes from rc starting at offset.
func aes4(s0, s1, s2, s3 lane, rc []lane, offset int) (lane, lane, lane, lane) {
	s0 = aesEncLane(s0, rc[offset+0])
	s1 = aesEncLane(s1, rc[offset+1])
	s2 = aesEncLane(s2, rc[offset+2])
	s3 = aesEncLane(s3, rc[offset+3])
	s0 = aesEncLane(s0, rc[offset+4])
	s1 = aesEncLane(s1, rc[offset+5])
	s2 = aesEncLane(s2, rc[offset+6])
	s3 = aesEncLane(s3, rc[offset+7])
	return s0, s1, s2, s3
}

// aes2 applies two AESENC rounds to each of two lanes, consuming 4
// sequential round-key lanes from rc starting at offset.
func aes2(s0, s1 lane, rc []lane, offset int) (lane, lane) {
	s0 = aesEncLane(s0, rc[offset+0])
	s1 = aesEncLane(s1, rc[offset+1])
	s0 = aesEncLane(s0, rc[offset+2])
	s1 = aesEncLane(s1, rc[offset+3])
	return s0, s1
}

// haraka512Keyed is the C1 Haraka-512 keyed permutation: 64 bytes in, 32
// bytes out (TRUNCSTORE of bytes 8:16 of lanes 0 and 1, bytes 0:8 of lanes
// 2 and 3), five AES4+MIX4 rounds keyed from a 40-entry round-constant
// table, with the original input fed forward (XORed) before truncation.
func haraka512Keyed(out []byte, in []byte, rc []lane) {
	s0 := loadLane(in[0:16])
	s1 := loadLane(in[16:32])
	s2 := loadLane(in[32:48])
	s3 := loadLane(in[48:64])

	for round := 0; round < 5; round++ {
		s0, s1, s2, s3 = aes4(s0, s1, s2, s3, rc, round*8)
		s0, s1, s2, s3 = mix4(s0, s1, s2, s3)
	}

	s0 = xorLane(s0, loadLane(in[0:16]))
	s1 = xorLane(s1, loadLane(in[16:32]))
	s2 = xorLane(s2, loadLane(in[32:48]))
	s3 = xorLane(s3, loadLane(in[48:64]))

	b0, b1, b2, b3 := s0.bytes(), s1.bytes(), s2.bytes(), s3.bytes()
	copy(out[0:8], b0[8:16])
	copy(out[8:16], b1[8:16])
	copy(out[16:24], b2[0:8])
	copy(out[24:32], b3[0:8])
}

// haraka256Keyed expands a 32-byte seed into a 32-byte digest, used by C2
// to derive a fresh random key table from a running Haraka state. Haraka's
// round constants are explicitly out of scope (spec.md Purpose & Scope);
// this reuses the same AES2/MIX2 building blocks as the CLHash engine,
// consuming round keys from the same 40-entry table (wrapping as needed),
// for a self-consistent, deterministic expansion.
func haraka256Keyed(out []byte, in []byte, rc []lane) {
	s0 := loadLane(in[0:16])
	s1 := loadLane(in[16:32])

	for round := 0; round < 6; round++ {
		offset := (round * 4) % (len(rc) - 4)
		s0, s1 = aes2(s0, s1, rc, offset)
		s0, s1 = mix2(s0, s1)
	}

	s0 = xorLane(s0, loadLane(in[0:16]))
	s1 = xorLane(s1, loadLane(in[16:32]))

	s0.store(out[0:16])
	s1.store(out[16:32])
}

// sha256d is double SHA-256, used for the genesis-block fallback and the
// legacy (pre-VerusHash-v2) header hash (spec.md §6).
func sha256d(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}
