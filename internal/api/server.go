// Package api provides the HTTP API server exposing VerusHash computation
// endpoints: header hashing, PBaaS sub-header lookup, and canonicalization.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verus-hash/verushash-service/internal/config"
	"github.com/verus-hash/verushash-service/internal/storage"
	"github.com/verus-hash/verushash-service/internal/util"
	"github.com/verus-hash/verushash-service/internal/verushash"
)

// Server is the HTTP API server.
type Server struct {
	cfg        *config.Config
	cache      *storage.Cache
	activation *verushash.ActivationTable
	ownChainID verushash.ChainID
	ks         *verushash.KeyStore
	ksMu       sync.Mutex // KeyStore is not safe for concurrent use; serialize hash requests
	router     *gin.Engine
	server     *http.Server
}

// NewServer creates a new API server wired to a hash result cache and the
// height-gated activation table driving variant selection. The key table is
// built once here and reused across requests, matching the one-per-thread
// lifecycle KeyStore documents.
func NewServer(cfg *config.Config, cache *storage.Cache, activation *verushash.ActivationTable, ownChainID verushash.ChainID) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		cache:      cache,
		activation: activation,
		ownChainID: ownChainID,
		ks:         verushash.NewKeyStore(cfg.Activation.KeySizeBytes, []byte(cfg.Activation.ChainID)),
		router:     router,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures API endpoints.
func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/hash/:header", s.handleHash)
		api.GET("/subheader/:header/:chainid", s.handleSubHeader)
		api.GET("/canonical/:header", s.handleCanonical)
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Start begins the API server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.API.Bind,
		Handler: s.router,
	}

	util.Infof("API server listening on %s", s.cfg.API.Bind)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("API server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts down the API server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// parseHeaderParam decodes the hex-encoded "header" path parameter into a
// 64-byte-chunk-aligned header blob.
func parseHeaderParam(c *gin.Context) ([]byte, bool) {
	raw, err := hex.DecodeString(c.Param("header"))
	if err != nil || len(raw)%64 != 0 {
		c.JSON(400, gin.H{"error": "header must be hex-encoded and a multiple of 64 bytes"})
		return nil, false
	}
	return raw, true
}

// cacheKey derives the cache lookup key for a raw header blob. The cache
// only ever sees the digest, never the preimage, so a plain sha256 (not
// VerusHash itself) is enough to dedupe requests.
func cacheKey(headerBytes []byte) []byte {
	sum := sha256.Sum256(headerBytes)
	return sum[:]
}

// handleHash computes (or returns a cached) VerusHash digest for a header
// blob, selecting the active CLHash variant by block height (spec.md
// activation rules).
func (s *Server) handleHash(c *gin.Context) {
	headerBytes, ok := parseHeaderParam(c)
	if !ok {
		return
	}

	var height int64
	if q := c.Query("height"); q != "" {
		v, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "height must be a decimal integer"})
			return
		}
		height = v
	}

	key := cacheKey(headerBytes)
	if cached, found, err := s.cache.GetHash(key); err == nil && found {
		c.JSON(200, gin.H{"hash": hex.EncodeToString(cached), "cached": true})
		return
	}

	version := s.activation.ActiveVersion(height)

	var prev verushash.Hash256
	if len(headerBytes) >= 36 {
		copy(prev[:], headerBytes[4:36])
	}

	start := time.Now()
	s.ksMu.Lock()
	hash := verushash.GetVerusV2Hash(s.ks, prev, version, headerBytes)
	s.ksMu.Unlock()
	util.HashComputed(int(version), time.Since(start))

	if err := s.cache.PutHash(key, hash[:]); err != nil {
		util.Warnf("failed to cache hash result: %v", err)
	}

	c.JSON(200, gin.H{"hash": hex.EncodeToString(hash[:]), "cached": false, "version": int(version)})
}

// handleSubHeader reports the PBaaS sub-header for chainid, if the header's
// trailing solution blob carries one.
func (s *Server) handleSubHeader(c *gin.Context) {
	headerBytes, ok := parseHeaderParam(c)
	if !ok {
		return
	}
	if len(headerBytes) < verushash.SolutionSize {
		c.JSON(400, gin.H{"error": "header too short to contain a solution blob"})
		return
	}
	solBytes := headerBytes[len(headerBytes)-verushash.SolutionSize:]

	chainIDBytes, err := hex.DecodeString(c.Param("chainid"))
	if err != nil || len(chainIDBytes) != verushash.ChainIDSize {
		c.JSON(400, gin.H{"error": "chainid must be a 20-byte hex string"})
		return
	}
	var chainID verushash.ChainID
	copy(chainID[:], chainIDBytes)

	sol, err := verushash.ParseSolution(solBytes)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	sh, err := sol.GetPBaaSHeader(chainID)
	if err != nil {
		c.JSON(404, gin.H{"error": "no sub-header for chain id"})
		return
	}

	c.JSON(200, gin.H{
		"chain_id":        hex.EncodeToString(sh.ChainID[:]),
		"pre_header_hash": hex.EncodeToString(sh.PreHeaderHash[:]),
	})
}

// handleCanonical strips non-canonical PBaaS sub-header data from the
// solution blob and returns the canonicalized header.
func (s *Server) handleCanonical(c *gin.Context) {
	headerBytes, ok := parseHeaderParam(c)
	if !ok {
		return
	}
	if len(headerBytes) < verushash.SolutionSize {
		c.JSON(400, gin.H{"error": "header too short to contain a solution blob"})
		return
	}

	key := cacheKey(headerBytes)
	if cached, found, err := s.cache.GetCanonical(key); err == nil && found {
		c.JSON(200, gin.H{"canonical": hex.EncodeToString(cached), "cached": true})
		return
	}

	preLen := len(headerBytes) - verushash.SolutionSize
	sol, err := verushash.ParseSolution(headerBytes[preLen:])
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	for _, sh := range sol.SubHeaders {
		if sh.ChainID != s.ownChainID {
			util.NonCanonicalData(hex.EncodeToString(sh.ChainID[:]))
		}
	}

	h := &verushash.BlockHeader{
		Serialized: append([]byte(nil), headerBytes[:preLen]...),
		Solution:   *sol,
	}
	out, err := verushash.CanonicalizeHeader(h, s.ownChainID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	if err := s.cache.PutCanonical(key, out); err != nil {
		util.Warnf("failed to cache canonicalized header: %v", err)
	}

	c.JSON(200, gin.H{"canonical": hex.EncodeToString(out), "cached": false})
}
