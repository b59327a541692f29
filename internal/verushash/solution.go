package verushash

import (
	"encoding/binary"
	"errors"
)

// Fixed layout constants for the 1344-byte solution blob (spec.md C4),
// grounded on solutiondata.h's CPBaaSSolutionDescriptor / CVerusSolutionVector
// and OVERHEAD_SIZE/HEADER_BASESIZE/SOLUTION_SIZE.
const (
	SolutionSize     = 1344
	HeaderBaseSize   = 143
	OverheadSize     = 72
	SubHeaderSize    = 52 // 20-byte chain id + 32-byte pre-header hash
	ChainIDSize      = 20
	PreHeaderSize    = 32
	maxPBaaSHeaders  = (SolutionSize - OverheadSize) / SubHeaderSize
	descrBitPOW      = 1 << 0
	descrBitPBaaS    = 1 << 1
	descrBitExtended = 1 << 2
)

var (
	// ErrSolutionSize reports a solution blob that is not exactly SolutionSize.
	ErrSolutionSize = errors.New("verushash: solution blob must be exactly 1344 bytes")
	// ErrTooManyHeaders reports sub-headers and extra data that together would
	// overflow the blob.
	ErrTooManyHeaders = errors.New("verushash: too many PBaaS sub-headers for solution size")
	// ErrChainIDNotFound reports a lookup for a chain id with no sub-header.
	ErrChainIDNotFound = errors.New("verushash: chain id has no PBaaS sub-header")
)

// ChainID is a 160-bit chain identifier (solutiondata.h's uint160 chain id).
type ChainID [ChainIDSize]byte

// Hash256 is a 256-bit digest, used for pre-header hashes and MMR roots.
type Hash256 [32]byte

// PBaaSSubHeader is one 52-byte entry in a solution blob's sub-header array
// (spec.md C4): the originating chain's id and the BLAKE2b digest of its
// pre-header (see PreHeaderHash in header.go).
type PBaaSSubHeader struct {
	ChainID        ChainID
	PreHeaderHash  Hash256
}

// SolutionDescriptor is the parsed form of a VerusHash v2 solution blob:
// the fixed 8-byte descriptor fields plus the variable-length sub-header
// array and extra data (spec.md C4, solutiondata.h's
// CPBaaSSolutionDescriptor/CConstVerusSolutionVector).
type SolutionDescriptor struct {
	Version         uint32
	IsPOW           bool
	SubHeaders      []PBaaSSubHeader
	HashPrevMMRRoot Hash256
	HashBlockMMRRoot Hash256
	ExtraData       []byte
}

// ParseSolution decodes a fixed 1344-byte solution blob into a
// SolutionDescriptor, per the layout:
//
//	u32 version        @0
//	u8  descr_bits      @4  (bit0 = POW)
//	u8  num_sub_headers @5
//	u16 extra_data_size @6 (little-endian)
//	32B hash_prev_mmr_root @8
//	32B hash_block_mmr_root @40
//	N * 52B sub-headers starting @72
//	extra_data_size bytes of extra data
//	zero padding to 1344 bytes
func ParseSolution(blob []byte) (*SolutionDescriptor, error) {
	if len(blob) != SolutionSize {
		return nil, ErrSolutionSize
	}

	version := binary.LittleEndian.Uint32(blob[0:4])
	descrBits := blob[4]
	numHeaders := int(blob[5])
	extraLen := int(binary.LittleEndian.Uint16(blob[6:8]))

	if OverheadSize+numHeaders*SubHeaderSize+extraLen > SolutionSize {
		return nil, ErrTooManyHeaders
	}

	d := &SolutionDescriptor{
		Version: version,
		IsPOW:   descrBits&descrBitPOW != 0,
	}
	copy(d.HashPrevMMRRoot[:], blob[8:40])
	copy(d.HashBlockMMRRoot[:], blob[40:72])

	off := OverheadSize
	d.SubHeaders = make([]PBaaSSubHeader, numHeaders)
	for i := 0; i < numHeaders; i++ {
		var sh PBaaSSubHeader
		copy(sh.ChainID[:], blob[off:off+ChainIDSize])
		copy(sh.PreHeaderHash[:], blob[off+ChainIDSize:off+SubHeaderSize])
		d.SubHeaders[i] = sh
		off += SubHeaderSize
	}

	if extraLen > 0 {
		d.ExtraData = append([]byte(nil), blob[off:off+extraLen]...)
	}

	return d, nil
}

// Encode serializes a SolutionDescriptor back into a fixed 1344-byte blob,
// zero-padding any unused tail.
func (d *SolutionDescriptor) Encode() ([]byte, error) {
	if len(d.SubHeaders) > maxPBaaSHeaders {
		return nil, ErrTooManyHeaders
	}
	need := OverheadSize + len(d.SubHeaders)*SubHeaderSize + len(d.ExtraData)
	if need > SolutionSize {
		return nil, ErrTooManyHeaders
	}

	blob := make([]byte, SolutionSize)
	binary.LittleEndian.PutUint32(blob[0:4], d.Version)
	var descrBits byte
	if d.IsPOW {
		descrBits |= descrBitPOW
	}
	if len(d.SubHeaders) > 0 {
		descrBits |= descrBitPBaaS
	}
	blob[4] = descrBits
	blob[5] = byte(len(d.SubHeaders))
	binary.LittleEndian.PutUint16(blob[6:8], uint16(len(d.ExtraData)))
	copy(blob[8:40], d.HashPrevMMRRoot[:])
	copy(blob[40:72], d.HashBlockMMRRoot[:])

	off := OverheadSize
	for _, sh := range d.SubHeaders {
		copy(blob[off:off+ChainIDSize], sh.ChainID[:])
		copy(blob[off+ChainIDSize:off+SubHeaderSize], sh.PreHeaderHash[:])
		off += SubHeaderSize
	}
	copy(blob[off:off+len(d.ExtraData)], d.ExtraData)

	return blob, nil
}

// HasPBaaSHeader reports whether chainID has a recorded sub-header.
func (d *SolutionDescriptor) HasPBaaSHeader(chainID ChainID) bool {
	_, err := d.GetPBaaSHeader(chainID)
	return err == nil
}

// GetPBaaSHeader returns the sub-header for chainID, if present.
func (d *SolutionDescriptor) GetPBaaSHeader(chainID ChainID) (PBaaSSubHeader, error) {
	for _, sh := range d.SubHeaders {
		if sh.ChainID == chainID {
			return sh, nil
		}
	}
	return PBaaSSubHeader{}, ErrChainIDNotFound
}

// SavePBaaSHeader appends or replaces the sub-header for sh.ChainID.
func (d *SolutionDescriptor) SavePBaaSHeader(sh PBaaSSubHeader) error {
	for i, existing := range d.SubHeaders {
		if existing.ChainID == sh.ChainID {
			d.SubHeaders[i] = sh
			return nil
		}
	}
	if len(d.SubHeaders) >= maxPBaaSHeaders {
		return ErrTooManyHeaders
	}
	d.SubHeaders = append(d.SubHeaders, sh)
	return nil
}

// UpdatePBaaSHeader replaces an existing sub-header's pre-header hash.
func (d *SolutionDescriptor) UpdatePBaaSHeader(chainID ChainID, hash Hash256) error {
	for i := range d.SubHeaders {
		if d.SubHeaders[i].ChainID == chainID {
			d.SubHeaders[i].PreHeaderHash = hash
			return nil
		}
	}
	return ErrChainIDNotFound
}

// DeletePBaaSHeader removes the sub-header for chainID, if present.
func (d *SolutionDescriptor) DeletePBaaSHeader(chainID ChainID) {
	out := d.SubHeaders[:0]
	for _, sh := range d.SubHeaders {
		if sh.ChainID != chainID {
			out = append(out, sh)
		}
	}
	d.SubHeaders = out
}
