// ABOUTME: Unified storage layer for policies, chunks, and the vector index
// ABOUTME: Routes similarity queries to an exact scan or the ANN index by corpus size
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/tripcortex/trip-cortex/internal/index"
	"github.com/tripcortex/trip-cortex/internal/models"
	"github.com/tripcortex/trip-cortex/internal/storage/sqlite"
)

// DefaultIndexCutover is the chunk count above which similarity queries use
// the ANN index instead of an exact scan. Below it the exact scan is both
// simpler and fast enough.
const DefaultIndexCutover = 1000

// Storage manages all persistent policy data. Reads are safe to run
// concurrently; a retrieval racing a policy delete may cite chunks that have
// since vanished, which callers tolerate.
type Storage struct {
	db       *sqlite.DB
	policies *sqlite.PolicyStore
	chunks   *sqlite.ChunkStore
	vectors  *index.Index
	cutover  int
	mu       sync.RWMutex
}

// NewStorage initializes storage at the default XDG path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(sqlite.DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db)
}

// NewStorageInMemory initializes storage backed by an in-memory database (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db)
}

func newStorage(db *sqlite.DB) (*Storage, error) {
	s := &Storage{
		db:       db,
		policies: sqlite.NewPolicyStore(db),
		chunks:   sqlite.NewChunkStore(db),
		cutover:  DefaultIndexCutover,
	}

	vectors, err := index.New(models.EmbeddingDimension, index.DefaultOptions())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	s.vectors = vectors

	// Rebuild the in-process index from persisted embeddings
	stored, err := s.chunks.AllEmbeddings()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	for _, iv := range stored {
		if err := vectors.Add(iv.ID, iv.Vector); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to index chunk %s: %w", iv.ID, err)
		}
	}

	return s, nil
}

// SetIndexCutover overrides the exact-scan/ANN cutover (for testing and tuning)
func (s *Storage) SetIndexCutover(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutover = n
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// SearchSimilar returns chunks whose cosine similarity to queryVector is at
// least threshold, ordered by descending similarity, at most topK. Reported
// similarity values are always exact: the ANN index only proposes candidates,
// which are rescored against their stored vectors.
func (s *Storage) SearchSimilar(ctx context.Context, queryVector []float64, threshold float64, topK int) ([]models.PolicyChunkResult, error) {
	s.mu.RLock()
	cutover := s.cutover
	s.mu.RUnlock()

	count, err := s.chunks.Count()
	if err != nil {
		return nil, err
	}

	if count <= cutover {
		return s.chunks.SearchSimilar(ctx, queryVector, threshold, topK)
	}

	// Over-fetch candidates so threshold filtering still leaves topK results
	candidates, err := s.vectors.Search(queryVector, topK*4)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	results, err := s.chunks.ScoreChunks(ctx, ids, queryVector, threshold)
	if err != nil {
		return nil, err
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// SaveChunk persists a chunk and adds it to the vector index
func (s *Storage) SaveChunk(chunk *models.PolicyChunk) error {
	if err := s.chunks.Save(chunk); err != nil {
		return err
	}
	return s.vectors.Add(chunk.ID, chunk.Embedding)
}

// GetChunk retrieves a chunk by ID; nil when it no longer exists
func (s *Storage) GetChunk(id string) (*models.PolicyChunk, error) {
	return s.chunks.GetByID(id)
}

// GetPolicyChunks retrieves all chunks for a policy in reading order
func (s *Storage) GetPolicyChunks(policyID string) ([]models.PolicyChunk, error) {
	return s.chunks.GetByPolicy(policyID)
}

// ChunkCount returns the number of stored chunks
func (s *Storage) ChunkCount() (int, error) {
	return s.chunks.Count()
}

// SavePolicy persists a policy document record
func (s *Storage) SavePolicy(p *models.Policy) error {
	return s.policies.Save(p)
}

// GetPolicy retrieves a policy by ID; nil when not found
func (s *Storage) GetPolicy(id string) (*models.Policy, error) {
	return s.policies.GetByID(id)
}

// ListPolicies returns all policies, newest first
func (s *Storage) ListPolicies() ([]models.Policy, error) {
	return s.policies.List()
}

// UpdatePolicyStatus transitions a policy's ingestion status
func (s *Storage) UpdatePolicyStatus(id string, status models.PolicyStatus, errorMessage string) error {
	return s.policies.UpdateStatus(id, status, errorMessage)
}

// SetPolicyChunkStats records page and chunk totals after ingestion
func (s *Storage) SetPolicyChunkStats(id string, totalPages, totalChunks int) error {
	return s.policies.SetChunkStats(id, totalPages, totalChunks)
}

// DeletePolicy removes a policy, its chunks (by cascade), and their index entries
func (s *Storage) DeletePolicy(id string) error {
	chunks, err := s.chunks.GetByPolicy(id)
	if err != nil {
		return err
	}

	if err := s.policies.Delete(id); err != nil {
		return err
	}

	for _, chunk := range chunks {
		s.vectors.Remove(chunk.ID)
	}
	return nil
}
