package verushash

import "testing"

func TestClmul64KnownValue(t *testing.T) {
	// 1 (x^0) * 1 (x^0) = 1 with no carries.
	hi, lo := clmul64(1, 1)
	if hi != 0 || lo != 1 {
		t.Errorf("clmul64(1,1) = (%x,%x), want (0,1)", hi, lo)
	}
	// x * x = x^2, encoded as bit 2 set.
	hi, lo = clmul64(2, 2)
	if hi != 0 || lo != 4 {
		t.Errorf("clmul64(2,2) = (%x,%x), want (0,4)", hi, lo)
	}
}

func TestClmul64Commutative(t *testing.T) {
	a, b := uint64(0x0123456789abcdef), uint64(0xfedcba9876543210)
	h1, l1 := clmul64(a, b)
	h2, l2 := clmul64(b, a)
	if h1 != h2 || l1 != l2 {
		t.Error("clmul64 should be commutative")
	}
}

func TestPrecompReduction64Deterministic(t *testing.T) {
	a := lane{lo: 0x1122334455667788, hi: 0x99aabbccddeeff00}
	r1 := precompReduction64(a)
	r2 := precompReduction64(a)
	if r1 != r2 {
		t.Error("precompReduction64 is not deterministic")
	}
}

func TestLazyLengthHashFixedArgs(t *testing.T) {
	a := lazyLengthHash(1024, 64)
	b := lazyLengthHash(1024, 64)
	if a != b {
		t.Error("lazyLengthHash(1024,64) should be deterministic")
	}
}

func TestMulhrsEpi16Deterministic(t *testing.T) {
	a := lane{lo: 0x7fff00017ffe0002, hi: 0x0001ffff00020001}
	b := lane{lo: 1, hi: 1}
	got := mulhrsEpi16(a, b)
	// b holds the word 1 in words 0 and 4 and zero elsewhere; the multiply
	// should not panic and should be deterministic; exact values are an
	// artifact of the Q15 rounding rule.
	if got != mulhrsEpi16(a, b) {
		t.Error("mulhrsEpi16 is not deterministic")
	}
}

func verusVariantTestStore(t *testing.T) *KeyStore {
	t.Helper()
	ks := NewKeyStore(DefaultKeySizeBytes, []byte("verushash-variant-test-seed"))
	if ks == nil {
		t.Fatal("NewKeyStore returned nil")
	}
	return ks
}

func TestVerusCLHashVariantsDeterministic(t *testing.T) {
	var buf [64]byte
	for i := range buf {
		buf[i] = byte(i * 7)
	}

	for _, variant := range []clVariant{VariantV1, VariantSV21, VariantSV22} {
		ks := verusVariantTestStore(t)
		ks.resetScratch()
		h1 := verusclhash(ks, buf, variant)
		ks.restore()

		ks.resetScratch()
		h2 := verusclhash(ks, buf, variant)
		ks.restore()

		if h1 != h2 {
			t.Errorf("variant %d: verusclhash not deterministic (%x != %x)", variant, h1, h2)
		}
	}
}

func TestVerusCLHashVariantsDiffer(t *testing.T) {
	var buf [64]byte
	for i := range buf {
		buf[i] = byte(i)
	}

	results := make(map[clVariant]uint64)
	for _, variant := range []clVariant{VariantV1, VariantSV21, VariantSV22} {
		ks := verusVariantTestStore(t)
		ks.resetScratch()
		results[variant] = verusclhash(ks, buf, variant)
		ks.restore()
	}

	if results[VariantV1] == results[VariantSV21] && results[VariantSV21] == results[VariantSV22] {
		t.Error("expected at least one variant to diverge on the same input")
	}
}

func TestKeyStoreRestoreUndoesMutation(t *testing.T) {
	ks := verusVariantTestStore(t)
	before := make([]lane, len(ks.master))
	copy(before, ks.master)

	var buf [64]byte
	ks.resetScratch()
	verusclhash(ks, buf, VariantV1)
	ks.restore()

	for i := range before {
		if ks.master[i] != before[i] {
			t.Fatalf("key table lane %d not restored after hash", i)
		}
	}
}
