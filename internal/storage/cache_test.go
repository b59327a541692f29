package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := NewCache(mr.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestCacheHashRoundTrip(t *testing.T) {
	c, _ := setupTestCache(t)
	digest := []byte{1, 2, 3, 4}
	hash := []byte{5, 6, 7, 8}

	if _, found, err := c.GetHash(digest); err != nil || found {
		t.Fatalf("expected no cached hash yet, found=%v err=%v", found, err)
	}

	if err := c.PutHash(digest, hash); err != nil {
		t.Fatalf("PutHash: %v", err)
	}

	got, found, err := c.GetHash(digest)
	if err != nil || !found {
		t.Fatalf("GetHash after PutHash: found=%v err=%v", found, err)
	}
	if string(got) != string(hash) {
		t.Errorf("GetHash: got %x, want %x", got, hash)
	}
}

func TestCacheCanonicalRoundTrip(t *testing.T) {
	c, _ := setupTestCache(t)
	digest := []byte{9, 9, 9}
	canonical := []byte{1, 2, 3, 4, 5}

	if err := c.PutCanonical(digest, canonical); err != nil {
		t.Fatalf("PutCanonical: %v", err)
	}

	got, found, err := c.GetCanonical(digest)
	if err != nil || !found {
		t.Fatalf("GetCanonical: found=%v err=%v", found, err)
	}
	if string(got) != string(canonical) {
		t.Errorf("GetCanonical: got %x, want %x", got, canonical)
	}
}

func TestCacheExpiry(t *testing.T) {
	c, mr := setupTestCache(t)
	digest := []byte{1}
	if err := c.PutHash(digest, []byte{2}); err != nil {
		t.Fatalf("PutHash: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, err := c.GetHash(digest); err != nil || found {
		t.Errorf("expected entry to have expired, found=%v err=%v", found, err)
	}
}
