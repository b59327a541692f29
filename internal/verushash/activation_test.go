package verushash

import "testing"

func TestActivationTableDefaultsToV1(t *testing.T) {
	tbl := NewActivationTable()
	if got := tbl.ActiveVersion(0); got != SolutionV1 {
		t.Errorf("ActiveVersion(0) = %d, want SolutionV1", got)
	}
	if got := tbl.ActiveVersion(1_000_000); got != SolutionV1 {
		t.Errorf("ActiveVersion(1_000_000) with no gates set = %d, want SolutionV1", got)
	}
}

func TestActivationTableGatesInOrder(t *testing.T) {
	tbl := NewActivationTable()
	if err := tbl.SetActivationHeight(SolutionV2, 100); err != nil {
		t.Fatalf("SetActivationHeight(V2): %v", err)
	}
	if err := tbl.SetActivationHeight(SolutionV21, 200); err != nil {
		t.Fatalf("SetActivationHeight(V21): %v", err)
	}
	if err := tbl.SetActivationHeight(SolutionV22, 300); err != nil {
		t.Fatalf("SetActivationHeight(V22): %v", err)
	}

	cases := []struct {
		height int64
		want   Version
	}{
		{0, SolutionV1},
		{99, SolutionV1},
		{100, SolutionV2},
		{199, SolutionV2},
		{200, SolutionV21},
		{299, SolutionV21},
		{300, SolutionV22},
		{10_000, SolutionV22},
	}
	for _, c := range cases {
		if got := tbl.ActiveVersion(c.height); got != c.want {
			t.Errorf("ActiveVersion(%d) = %d, want %d", c.height, got, c.want)
		}
	}
}

func TestSetActivationHeightRejectsV1(t *testing.T) {
	tbl := NewActivationTable()
	if err := tbl.SetActivationHeight(SolutionV1, 50); err == nil {
		t.Error("expected an error setting an activation height for SolutionV1")
	}
}
