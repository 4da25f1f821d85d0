// ABOUTME: Policy represents an ingested travel policy document
// ABOUTME: Tracks ingestion lifecycle from pending through ready or failed
package models

import "time"

// PolicyStatus tracks where a policy document is in the ingestion pipeline
type PolicyStatus string

const (
	PolicyStatusPending    PolicyStatus = "pending"
	PolicyStatusProcessing PolicyStatus = "processing"
	PolicyStatusReady      PolicyStatus = "ready"
	PolicyStatusFailed     PolicyStatus = "failed"
)

// Valid reports whether the status is one of the enumerated values
func (s PolicyStatus) Valid() bool {
	switch s {
	case PolicyStatusPending, PolicyStatusProcessing, PolicyStatusReady, PolicyStatusFailed:
		return true
	}
	return false
}

// Policy is a source policy document. Chunks reference it by PolicyID and
// are removed by cascade when the policy is deleted.
type Policy struct {
	ID           string       `json:"id"`
	SourceURI    string       `json:"source_uri"`
	FileName     string       `json:"file_name"`
	Status       PolicyStatus `json:"status"`
	TotalPages   int          `json:"total_pages,omitempty"`
	TotalChunks  int          `json:"total_chunks"`
	UploadedBy   string       `json:"uploaded_by,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Version      int          `json:"version"`
}
