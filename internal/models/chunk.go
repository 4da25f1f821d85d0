// ABOUTME: PolicyChunk represents one retrievable passage of a travel policy
// ABOUTME: Chunks carry a 1024-dimensional embedding and extraction provenance
package models

import "time"

// ContentType classifies what kind of content a chunk was extracted from
type ContentType string

const (
	ContentTypeText   ContentType = "text"
	ContentTypeTable  ContentType = "table"
	ContentTypeFigure ContentType = "figure"
)

// Valid reports whether the content type is one of the enumerated values
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypeTable, ContentTypeFigure:
		return true
	}
	return false
}

// EmbeddingDimension is the required vector dimension for policy chunk embeddings
const EmbeddingDimension = 1024

// PolicyChunk is one retrievable unit of policy content.
// Created once at ingestion time and never mutated afterwards; deleted
// transitively when the owning policy is deleted.
type PolicyChunk struct {
	ID               string         `json:"id"`
	PolicyID         string         `json:"policy_id"`
	ContentType      ContentType    `json:"content_type"`
	ContentText      string         `json:"content_text,omitempty"`
	SourcePage       int            `json:"source_page,omitempty"`
	SectionTitle     string         `json:"section_title,omitempty"`
	ReadingOrder     int            `json:"reading_order,omitempty"`
	BDAEntityID      string         `json:"bda_entity_id,omitempty"`
	BDAEntitySubtype string         `json:"bda_entity_subtype,omitempty"`
	Embedding        []float64      `json:"embedding"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// PolicyChunkResult is the retrieval-time projection of a chunk plus the
// similarity score that placed it in the result set. Constructed per query,
// never persisted.
type PolicyChunkResult struct {
	ID               string      `json:"id"`
	ContentText      string      `json:"content_text,omitempty"`
	SectionTitle     string      `json:"section_title,omitempty"`
	SourcePage       int         `json:"source_page,omitempty"`
	ContentType      ContentType `json:"content_type"`
	BDAEntitySubtype string      `json:"bda_entity_subtype,omitempty"`
	Similarity       float64     `json:"similarity"`
}
