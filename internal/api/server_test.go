package api

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/verus-hash/verushash-service/internal/config"
	"github.com/verus-hash/verushash-service/internal/storage"
	"github.com/verus-hash/verushash-service/internal/verushash"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache, err := storage.NewCache(mr.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	cfg := &config.Config{
		API: config.APIConfig{Bind: ":0"},
		Activation: config.ActivationConfig{
			ChainID:      "test-chain",
			KeySizeBytes: 16 * 16,
		},
	}

	activation := verushash.NewActivationTable()
	var ownChain verushash.ChainID
	copy(ownChain[:], []byte("own-chain-for-tests!"))

	return NewServer(cfg, cache, activation, ownChain)
}

func doGet(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)
	rec := doGet(s, "/health")
	if rec.Code != 200 {
		t.Fatalf("GET /health: status %d", rec.Code)
	}
}

func TestHandleHashComputesAndCaches(t *testing.T) {
	s := testServer(t)
	header := hex.EncodeToString(make([]byte, 128))

	first := doGet(s, "/api/hash/"+header)
	if first.Code != 200 {
		t.Fatalf("GET /api/hash: status %d body %s", first.Code, first.Body.String())
	}
	if bodyContains(first.Body.String(), `"cached":true`) {
		t.Error("first request should not be served from cache")
	}

	second := doGet(s, "/api/hash/"+header)
	if second.Code != 200 {
		t.Fatalf("GET /api/hash (cached): status %d", second.Code)
	}
	if !bodyContains(second.Body.String(), `"cached":true`) {
		t.Errorf("second request should be served from cache, got %s", second.Body.String())
	}
}

func TestHandleHashRejectsMisalignedHeader(t *testing.T) {
	s := testServer(t)
	rec := doGet(s, "/api/hash/"+hex.EncodeToString(make([]byte, 10)))
	if rec.Code != 400 {
		t.Errorf("expected 400 for misaligned header, got %d", rec.Code)
	}
}

func TestHandleHashRejectsBadHeight(t *testing.T) {
	s := testServer(t)
	header := hex.EncodeToString(make([]byte, 64))
	rec := doGet(s, "/api/hash/"+header+"?height=not-a-number")
	if rec.Code != 400 {
		t.Errorf("expected 400 for non-numeric height, got %d", rec.Code)
	}
}

func buildSolutionHex(t *testing.T, chainID verushash.ChainID) string {
	t.Helper()
	sol := &verushash.SolutionDescriptor{Version: 1, IsPOW: true}
	if err := sol.SavePBaaSHeader(verushash.PBaaSSubHeader{ChainID: chainID, PreHeaderHash: verushash.Hash256{1, 2, 3}}); err != nil {
		t.Fatalf("SavePBaaSHeader: %v", err)
	}
	encoded, err := sol.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return hex.EncodeToString(encoded)
}

func TestHandleSubHeaderFound(t *testing.T) {
	s := testServer(t)
	var chainID verushash.ChainID
	copy(chainID[:], []byte("chain-under-test!!!!"))

	solHex := buildSolutionHex(t, chainID)
	rec := doGet(s, "/api/subheader/"+solHex+"/"+hex.EncodeToString(chainID[:]))
	if rec.Code != 200 {
		t.Fatalf("GET /api/subheader: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSubHeaderNotFound(t *testing.T) {
	s := testServer(t)
	var chainID, otherChain verushash.ChainID
	copy(chainID[:], []byte("chain-under-test!!!!"))
	copy(otherChain[:], []byte("some-other-chain!!!!"))

	solHex := buildSolutionHex(t, chainID)
	rec := doGet(s, "/api/subheader/"+solHex+"/"+hex.EncodeToString(otherChain[:]))
	if rec.Code != 404 {
		t.Errorf("expected 404 for unknown chain id, got %d", rec.Code)
	}
}

func TestHandleSubHeaderRejectsBadChainID(t *testing.T) {
	s := testServer(t)
	var chainID verushash.ChainID
	copy(chainID[:], []byte("chain-under-test!!!!"))
	solHex := buildSolutionHex(t, chainID)

	rec := doGet(s, "/api/subheader/"+solHex+"/"+"deadbeef")
	if rec.Code != 400 {
		t.Errorf("expected 400 for short chain id, got %d", rec.Code)
	}
}

func TestHandleCanonicalStripsOtherChains(t *testing.T) {
	s := testServer(t)
	var ownChain verushash.ChainID
	copy(ownChain[:], []byte("own-chain-for-tests!"))

	sol := &verushash.SolutionDescriptor{Version: 1, IsPOW: true}
	if err := sol.SavePBaaSHeader(verushash.PBaaSSubHeader{ChainID: ownChain, PreHeaderHash: verushash.Hash256{9}}); err != nil {
		t.Fatalf("SavePBaaSHeader own: %v", err)
	}
	var otherChain verushash.ChainID
	copy(otherChain[:], []byte("a-different-chain!!!"))
	if err := sol.SavePBaaSHeader(verushash.PBaaSSubHeader{ChainID: otherChain, PreHeaderHash: verushash.Hash256{1}}); err != nil {
		t.Fatalf("SavePBaaSHeader other: %v", err)
	}
	solBytes, err := sol.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	preimage := make([]byte, 64)
	full := append(preimage, solBytes...)

	rec := doGet(s, "/api/canonical/"+hex.EncodeToString(full))
	if rec.Code != 200 {
		t.Fatalf("GET /api/canonical: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCanonicalRejectsShortHeader(t *testing.T) {
	s := testServer(t)
	rec := doGet(s, "/api/canonical/"+hex.EncodeToString(make([]byte, 32)))
	if rec.Code != 400 {
		t.Errorf("expected 400 for header shorter than the solution blob, got %d", rec.Code)
	}
}

func bodyContains(body, substr string) bool {
	return indexOf(body, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
