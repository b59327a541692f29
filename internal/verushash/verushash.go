package verushash

import "bytes"

// GetVerusV2Hash is the C6 block-hash driver (spec.md §6,
// blockhash.cpp's GetVerusV2Hash): it dispatches on hashPrevBlock and the
// active solution version, falling back to SHA-256d for the genesis block
// and for any version outside the VerusHash v2 family.
//
// headerBytes must be the fully canonicalized, serialized header (see
// CanonicalizeHeader) in consensus field order, with the solution blob as
// its final 1344 bytes.
func GetVerusV2Hash(ks *KeyStore, hashPrevBlock Hash256, version Version, headerBytes []byte) [32]byte {
	var zero Hash256
	if hashPrevBlock == zero {
		return sha256d(headerBytes)
	}

	var variant clVariant
	switch version {
	case SolutionV2:
		variant = VariantV1
	case SolutionV21:
		variant = VariantSV21
	case SolutionV22:
		variant = VariantSV22
	default:
		return sha256d(headerBytes)
	}

	return ComputeBlockHash(ks, headerBytes, variant)
}

// ComputeBlockHash runs the Haraka-512-keyed sponge over 64-byte chunks of
// headerBytes, finalizing with a single CLHash call on the final 64-byte
// sponge state (the last Haraka output followed by the last chunk), per
// spec.md §6. headerBytes must be a multiple of 64 bytes (callers pad the
// canonicalized header to this boundary, matching the reference
// implementation's fixed-size buffer).
//
// ks is reset and restored around the call so it remains reusable for the
// next hash within the same goroutine (spec.md's "Key restoration"
// invariant): the first key_size_bytes of ks are bit-identical before and
// after this call returns.
func ComputeBlockHash(ks *KeyStore, headerBytes []byte, variant clVariant) [32]byte {
	ks.resetScratch()
	defer ks.restore()

	state := make([]byte, 64)
	for off := 0; off+64 <= len(headerBytes); off += 64 {
		chunk := headerBytes[off : off+64]
		if off == 0 {
			copy(state, chunk)
		} else {
			xorInto(state, chunk)
		}
		var out [32]byte
		haraka512Keyed(out[:], state, harakaRoundConstants)
		copy(state[0:32], out[:])
		copy(state[32:64], chunk)
	}

	var buf [64]byte
	copy(buf[:], state)
	h64 := verusclhash(ks, buf, variant)

	var result [32]byte
	copy(result[0:8], uint64ToLE(h64))
	copy(result[8:32], state[0:24])
	return result
}

func xorInto(dst []byte, src []byte) {
	for i := range dst {
		if i < len(src) {
			dst[i] ^= src[i]
		}
	}
}

func uint64ToLE(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// CanonicalizeHeader clears any non-canonical PBaaS sub-header data from
// h's solution and returns the serialized header bytes ready to be hashed,
// matching the reference implementation's canonicalize-then-hash sequence
// (spec.md §6 step 1, blockhash.cpp's GetVerusV2Hash / ClearNonCanonicalData).
func CanonicalizeHeader(h *BlockHeader, ownChainID ChainID) ([]byte, error) {
	h.ClearNonCanonicalData(ownChainID)
	solBytes, err := h.Solution.Encode()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.Write(h.Serialized)
	out.Write(solBytes)
	return out.Bytes(), nil
}
