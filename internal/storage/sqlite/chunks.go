// ABOUTME: Policy chunk persistence and similarity scan for SQLite
// ABOUTME: Stores 1024-dim embeddings as BLOBs and scores with exact cosine similarity
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/tripcortex/trip-cortex/internal/models"
)

// ChunkStore handles policy chunk persistence
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// Save inserts a chunk row (validates the 1024-dim embedding)
func (s *ChunkStore) Save(chunk *models.PolicyChunk) error {
	if len(chunk.Embedding) != models.EmbeddingDimension {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d",
			models.EmbeddingDimension, len(chunk.Embedding))
	}
	if !chunk.ContentType.Valid() {
		return fmt.Errorf("invalid content type: %q", chunk.ContentType)
	}

	var metadata any
	if len(chunk.Metadata) > 0 {
		data, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling chunk metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.db.Exec(`
		INSERT INTO policy_chunks (id, policy_id, content_type, content_text, source_page, section_title,
			reading_order, bda_entity_id, bda_entity_subtype, embedding, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, chunk.ID, chunk.PolicyID, string(chunk.ContentType), nullString(chunk.ContentText),
		nullInt(chunk.SourcePage), nullString(chunk.SectionTitle), chunk.ReadingOrder,
		nullString(chunk.BDAEntityID), nullString(chunk.BDAEntitySubtype),
		vectorToBlob(chunk.Embedding), metadata, chunk.CreatedAt, chunk.UpdatedAt)

	return err
}

// GetByID retrieves a chunk by ID. Returns nil when not found (the chunk may
// have been removed by a concurrent policy delete).
func (s *ChunkStore) GetByID(id string) (*models.PolicyChunk, error) {
	row := s.db.QueryRow(`
		SELECT id, policy_id, content_type, content_text, source_page, section_title,
			reading_order, bda_entity_id, bda_entity_subtype, embedding, metadata, created_at, updated_at
		FROM policy_chunks
		WHERE id = ?
	`, id)

	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetByPolicy retrieves all chunks for a policy in reading order
func (s *ChunkStore) GetByPolicy(policyID string) ([]models.PolicyChunk, error) {
	rows, err := s.db.Query(`
		SELECT id, policy_id, content_type, content_text, source_page, section_title,
			reading_order, bda_entity_id, bda_entity_subtype, embedding, metadata, created_at, updated_at
		FROM policy_chunks
		WHERE policy_id = ?
		ORDER BY reading_order, id
	`, policyID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.PolicyChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	return chunks, rows.Err()
}

// SearchSimilar scans every stored chunk and returns those whose cosine
// similarity to queryVector is at least threshold, ordered by descending
// similarity (chunk ID breaks ties), truncated to topK. Thresholding happens
// before truncation, so fewer than topK results (including zero) is normal.
func (s *ChunkStore) SearchSimilar(ctx context.Context, queryVector []float64, threshold float64, topK int) ([]models.PolicyChunkResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_text, section_title, source_page, content_type, bda_entity_subtype, embedding
		FROM policy_chunks
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.PolicyChunkResult
	for rows.Next() {
		result, vector, err := scanResult(rows)
		if err != nil {
			return nil, err
		}

		result.Similarity = CosineSimilarity(queryVector, vector)
		if result.Similarity >= threshold {
			results = append(results, result)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortResults(results)

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ScoreChunks computes exact similarity scores for the given chunk IDs,
// applying the same threshold filter as SearchSimilar. IDs whose rows have
// vanished (concurrent cascade delete) are silently skipped.
func (s *ChunkStore) ScoreChunks(ctx context.Context, ids []string, queryVector []float64, threshold float64) ([]models.PolicyChunkResult, error) {
	var results []models.PolicyChunkResult

	for _, id := range ids {
		row := s.db.QueryRow(`
			SELECT id, content_text, section_title, source_page, content_type, bda_entity_subtype, embedding
			FROM policy_chunks
			WHERE id = ?
		`, id)

		result, vector, err := scanResult(row)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Similarity = CosineSimilarity(queryVector, vector)
		if result.Similarity >= threshold {
			results = append(results, result)
		}
	}

	sortResults(results)
	return results, nil
}

// IDVector pairs a chunk ID with its embedding, for index construction
type IDVector struct {
	ID     string
	Vector []float64
}

// AllEmbeddings returns the ID and embedding of every stored chunk
func (s *ChunkStore) AllEmbeddings() ([]IDVector, error) {
	rows, err := s.db.Query("SELECT id, embedding FROM policy_chunks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var vectors []IDVector
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		vectors = append(vectors, IDVector{ID: id, Vector: blobToVector(blob)})
	}

	return vectors, rows.Err()
}

// Count returns the number of stored chunks
func (s *ChunkStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM policy_chunks").Scan(&count)
	return count, err
}

// sortResults orders by descending similarity with chunk ID as the stable
// deterministic tiebreak, so repeated identical queries return the same order
func sortResults(results []models.PolicyChunkResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})
}

// scanResult scans the similarity-query projection plus the raw vector
func scanResult(row scanner) (models.PolicyChunkResult, []float64, error) {
	var (
		result      models.PolicyChunkResult
		contentText sql.NullString
		section     sql.NullString
		page        sql.NullInt64
		contentType string
		subtype     sql.NullString
		blob        []byte
	)

	err := row.Scan(&result.ID, &contentText, &section, &page, &contentType, &subtype, &blob)
	if err != nil {
		return result, nil, err
	}

	result.ContentType = models.ContentType(contentType)
	if contentText.Valid {
		result.ContentText = contentText.String
	}
	if section.Valid {
		result.SectionTitle = section.String
	}
	if page.Valid {
		result.SourcePage = int(page.Int64)
	}
	if subtype.Valid {
		result.BDAEntitySubtype = subtype.String
	}

	return result, blobToVector(blob), nil
}

// scanChunk scans a full chunk row
func scanChunk(row scanner) (*models.PolicyChunk, error) {
	var (
		chunk       models.PolicyChunk
		contentType string
		contentText sql.NullString
		page        sql.NullInt64
		section     sql.NullString
		readingOrd  sql.NullInt64
		entityID    sql.NullString
		subtype     sql.NullString
		blob        []byte
		metadata    sql.NullString
	)

	err := row.Scan(&chunk.ID, &chunk.PolicyID, &contentType, &contentText, &page, &section,
		&readingOrd, &entityID, &subtype, &blob, &metadata, &chunk.CreatedAt, &chunk.UpdatedAt)
	if err != nil {
		return nil, err
	}

	chunk.ContentType = models.ContentType(contentType)
	if contentText.Valid {
		chunk.ContentText = contentText.String
	}
	if page.Valid {
		chunk.SourcePage = int(page.Int64)
	}
	if section.Valid {
		chunk.SectionTitle = section.String
	}
	if readingOrd.Valid {
		chunk.ReadingOrder = int(readingOrd.Int64)
	}
	if entityID.Valid {
		chunk.BDAEntityID = entityID.String
	}
	if subtype.Valid {
		chunk.BDAEntitySubtype = subtype.String
	}
	chunk.Embedding = blobToVector(blob)
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
