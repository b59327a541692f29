package verushash

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// preHeaderPersonalization is the branch id that blockhash.cpp's
// CPBaaSBlockHeader constructor personalizes pre-header hashes with
// (CBLAKE2bWriter hw(SER_GETHASH, 170009)); PreHeaderHash writes it as a
// message prefix instead.
const preHeaderPersonalization = 170009

// pbaasHeaderBlobVersion is the solution descriptor version at which a
// block's solution carries hash_prev_mmr_root/hash_block_mmr_root fields
// (spec.md §3/§4.4's PBAAS_HEADER gate). ClearNonCanonicalData only zeroes
// those descriptor fields once a header's blob has reached this version.
const pbaasHeaderBlobVersion = 1

// PreHeader is the exact 7 fields of a chain's per-block varying data
// (spec.md §3): everything clear_non_canonical strips out before hashing,
// serialized in declaration order and BLAKE2b-hashed (with the branch id as a
// message prefix, see PreHeaderHash) to produce a PBaaSSubHeader's PreHeaderHash (blockhash.cpp's
// CPBaaSPreHeader).
type PreHeader struct {
	HashPrevBlock        Hash256
	HashMerkleRoot       Hash256
	HashFinalSaplingRoot Hash256
	Nonce                [32]byte
	NBits                uint32
	HashPrevMMRRoot      Hash256
	HashBlockMMRRoot     Hash256
}

// PreHeaderHash computes a BLAKE2b-256 digest of p, modeled on
// blockhash.cpp's CPBaaSBlockHeader constructor. golang.org/x/crypto/blake2b
// exposes keyed hashing but not a raw personalization parameter, so the
// branch id is written as a fixed 8-byte little-endian prefix of the hashed
// message instead. This separates the domain, but the digest is not the one a
// personalized BLAKE2b would produce. The chain id is
// never part of the hashed bytes: pre_header_hash(header, chain_id) takes
// the chain id only to select which sub-header to compare against, per
// spec.md §4.5.
func PreHeaderHash(p PreHeader) Hash256 {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // blake2b.New256 with a nil key never errors
	}
	var branchIDBytes [8]byte
	binary.LittleEndian.PutUint64(branchIDBytes[:], preHeaderPersonalization)
	h.Write(branchIDBytes[:])
	h.Write(p.HashPrevBlock[:])
	h.Write(p.HashMerkleRoot[:])
	h.Write(p.HashFinalSaplingRoot[:])
	h.Write(p.Nonce[:])
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], p.NBits)
	h.Write(tmp[:])
	h.Write(p.HashPrevMMRRoot[:])
	h.Write(p.HashBlockMMRRoot[:])

	var out Hash256
	copy(out[:], h.Sum(nil))
	return out
}

// Fixed byte offsets of BlockHeader.Serialized's fields (spec.md §3):
// version(4B) prev_block(32B) merkle_root(32B) final_sapling_root(32B)
// time(4B) bits(4B) nonce(32B), followed by the solution's compact-size
// length prefix to round out the 143-byte HeaderBaseSize region.
const (
	headerOffsetPrevBlock        = 4
	headerOffsetMerkleRoot       = 36
	headerOffsetFinalSaplingRoot = 68
	headerOffsetTime             = 100
	headerOffsetBits             = 104
	headerOffsetNonce            = 108
	headerOffsetNonceEnd         = 140
)

// BlockHeader is the canonicalizable subset of a Verus block header needed
// to compute its VerusHash v2 digest (spec.md C5): the serialized header
// bytes plus its parsed solution blob.
type BlockHeader struct {
	// Serialized holds the canonical pre-solution header fields
	// (version..nSolution-exclusive) the caller has already serialized in
	// consensus order; ComputeBlockHash folds this together with the
	// canonicalized solution to build the Haraka input stream.
	Serialized []byte
	Solution   SolutionDescriptor
	Mine       PreHeader
}

// ClearNonCanonicalData zeroes h's per-chain-varying header fields
// (prev_block, merkle_root, final_sapling_root, bits, nonce) in place, and,
// once the solution blob has reached the PBaaS header version, its
// hash_prev_mmr_root and hash_block_mmr_root descriptor fields, matching
// solutiondata.h's ClearNonCanonicalData. time is left untouched: it is not
// one of the seven pre-header fields. It also strips sub-headers belonging
// to chains other than ownChainID: only the current chain's own sub-header
// is kept.
func (h *BlockHeader) ClearNonCanonicalData(ownChainID ChainID) {
	if len(h.Serialized) >= headerOffsetNonceEnd {
		zeroRange(h.Serialized, headerOffsetPrevBlock, headerOffsetMerkleRoot)
		zeroRange(h.Serialized, headerOffsetMerkleRoot, headerOffsetFinalSaplingRoot)
		zeroRange(h.Serialized, headerOffsetFinalSaplingRoot, headerOffsetTime)
		zeroRange(h.Serialized, headerOffsetBits, headerOffsetNonce)
		zeroRange(h.Serialized, headerOffsetNonce, headerOffsetNonceEnd)
	}

	if h.Solution.Version >= pbaasHeaderBlobVersion {
		h.Solution.HashPrevMMRRoot = Hash256{}
		h.Solution.HashBlockMMRRoot = Hash256{}
	}

	kept := h.Solution.SubHeaders[:0]
	for _, sh := range h.Solution.SubHeaders {
		if sh.ChainID == ownChainID {
			kept = append(kept, sh)
		}
	}
	h.Solution.SubHeaders = kept
}

func zeroRange(b []byte, start, end int) {
	for i := start; i < end; i++ {
		b[i] = 0
	}
}

// CheckNonCanonicalData verifies that ownChainID's recorded sub-header
// pre-header hash matches the hash of mine (spec.md C5,
// blockhash.cpp's CheckNonCanonicalData). If that check fails and other
// chain ids are present, it additionally recurses over every other
// sub-header's chain id, matching the reference implementation's two-phase
// fallback.
func (h *BlockHeader) CheckNonCanonicalData(ownChainID ChainID) bool {
	if sh, err := h.Solution.GetPBaaSHeader(ownChainID); err == nil {
		if sh.PreHeaderHash == PreHeaderHash(h.Mine) {
			return true
		}
	}
	if len(h.Solution.SubHeaders) == 0 {
		return false
	}
	for _, sh := range h.Solution.SubHeaders {
		if sh.ChainID == ownChainID {
			continue
		}
		if sh.PreHeaderHash == PreHeaderHash(h.Mine) {
			return true
		}
	}
	return false
}
