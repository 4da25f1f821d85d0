// ABOUTME: Policy document persistence operations for SQLite
// ABOUTME: Tracks ingestion lifecycle and owns the chunk cascade
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tripcortex/trip-cortex/internal/models"
)

// PolicyStore handles policy document persistence
type PolicyStore struct {
	db *DB
}

// NewPolicyStore creates a new PolicyStore
func NewPolicyStore(db *DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// Save inserts a policy row
func (s *PolicyStore) Save(p *models.Policy) error {
	if !p.Status.Valid() {
		return fmt.Errorf("invalid policy status: %q", p.Status)
	}

	_, err := s.db.Exec(`
		INSERT INTO policies (id, source_uri, file_name, status, total_pages, total_chunks, uploaded_by, error_message, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.SourceURI, p.FileName, string(p.Status), nullInt(p.TotalPages), p.TotalChunks,
		nullString(p.UploadedBy), nullString(p.ErrorMessage), p.CreatedAt, p.UpdatedAt, p.Version)

	return err
}

// GetByID retrieves a policy by ID. Returns nil when not found.
func (s *PolicyStore) GetByID(id string) (*models.Policy, error) {
	row := s.db.QueryRow(`
		SELECT id, source_uri, file_name, status, total_pages, total_chunks, uploaded_by, error_message, created_at, updated_at, version
		FROM policies
		WHERE id = ?
	`, id)

	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all policies ordered by creation time, newest first
func (s *PolicyStore) List() ([]models.Policy, error) {
	rows, err := s.db.Query(`
		SELECT id, source_uri, file_name, status, total_pages, total_chunks, uploaded_by, error_message, created_at, updated_at, version
		FROM policies
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var policies []models.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}

	return policies, rows.Err()
}

// UpdateStatus transitions a policy's ingestion status
func (s *PolicyStore) UpdateStatus(id string, status models.PolicyStatus, errorMessage string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid policy status: %q", status)
	}

	result, err := s.db.Exec(`
		UPDATE policies
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`, string(status), nullString(errorMessage), time.Now(), id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("policy not found: %s", id)
	}
	return nil
}

// SetChunkStats records page and chunk counts after ingestion completes
func (s *PolicyStore) SetChunkStats(id string, totalPages, totalChunks int) error {
	_, err := s.db.Exec(`
		UPDATE policies
		SET total_pages = ?, total_chunks = ?, updated_at = ?
		WHERE id = ?
	`, nullInt(totalPages), totalChunks, time.Now(), id)
	return err
}

// Delete removes a policy; its chunks are removed by cascade
func (s *PolicyStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM policies WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("policy not found: %s", id)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic
type scanner interface {
	Scan(dest ...any) error
}

// scanPolicy scans a single policy row
func scanPolicy(row scanner) (*models.Policy, error) {
	var (
		p            models.Policy
		status       string
		totalPages   sql.NullInt64
		uploadedBy   sql.NullString
		errorMessage sql.NullString
	)

	err := row.Scan(&p.ID, &p.SourceURI, &p.FileName, &status, &totalPages, &p.TotalChunks,
		&uploadedBy, &errorMessage, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		return nil, err
	}

	p.Status = models.PolicyStatus(status)
	if totalPages.Valid {
		p.TotalPages = int(totalPages.Int64)
	}
	if uploadedBy.Valid {
		p.UploadedBy = uploadedBy.String
	}
	if errorMessage.Valid {
		p.ErrorMessage = errorMessage.String
	}

	return &p, nil
}

// nullString converts empty strings to NULL
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt converts zero to NULL
func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
