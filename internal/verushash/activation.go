package verushash

import (
	"fmt"
	"math"
)

// unactivated marks a gated version that has not yet been assigned an
// activation height: it never becomes active until SetActivationHeight is
// called, rather than defaulting to "active from genesis".
const unactivated = math.MaxInt64

// Version identifies which VerusHash driver applies at a given height
// (spec.md §3's activation gates): version 0 (SolutionV1) is the original
// pre-VerusHash-v2 format and is always active; it can never be reassigned
// an activation height (blockhash.cpp's SetActivationHeight asserts
// version > 0).
type Version int

const (
	SolutionV1 Version = iota
	SolutionV2
	SolutionV21
	SolutionV22
	numVersions
)

// ActivationTable maps each gated version to the block height at which it
// first becomes active, matching blockhash.cpp's CActivationHeight.
type ActivationTable struct {
	heights [numVersions]int64
}

// NewActivationTable returns a table where every gated version is
// unactivated; callers assign each one's activation height via
// SetActivationHeight as the corresponding consensus rules dictate.
func NewActivationTable() *ActivationTable {
	t := &ActivationTable{}
	for v := SolutionV2; v < numVersions; v++ {
		t.heights[v] = unactivated
	}
	return t
}

// SetActivationHeight records the first height at which version becomes
// active. It rejects version SolutionV1, which is always active and cannot
// be gated, matching the reference implementation's assertion.
func (t *ActivationTable) SetActivationHeight(version Version, height int64) error {
	if version <= SolutionV1 || version >= numVersions {
		return fmt.Errorf("verushash: version %d cannot have its activation height changed", version)
	}
	t.heights[version] = height
	return nil
}

// ActiveVersion returns the highest gated version active at height.
func (t *ActivationTable) ActiveVersion(height int64) Version {
	active := SolutionV1
	for v := SolutionV2; v < numVersions; v++ {
		if height >= t.heights[v] {
			active = v
		}
	}
	return active
}
