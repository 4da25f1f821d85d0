// ABOUTME: Tests for policy document storage operations
// ABOUTME: Verifies lifecycle transitions and cascade ownership
package sqlite

import (
	"testing"
	"time"

	"github.com/tripcortex/trip-cortex/internal/models"
)

func testPolicy(id string) *models.Policy {
	now := time.Now()
	return &models.Policy{
		ID:        id,
		SourceURI: "s3://policies/" + id + ".pdf",
		FileName:  id + ".pdf",
		Status:    models.PolicyStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

func TestPolicyCRUD(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPolicyStore(db)

	policy := testPolicy("pol_1")
	policy.UploadedBy = "emp_42"
	if err := store.Save(policy); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	retrieved, err := store.GetByID("pol_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if retrieved == nil {
		t.Fatal("GetByID() returned nil")
	}
	if retrieved.FileName != "pol_1.pdf" {
		t.Errorf("FileName = %v, want pol_1.pdf", retrieved.FileName)
	}
	if retrieved.Status != models.PolicyStatusPending {
		t.Errorf("Status = %v, want pending", retrieved.Status)
	}
	if retrieved.UploadedBy != "emp_42" {
		t.Errorf("UploadedBy = %v, want emp_42", retrieved.UploadedBy)
	}

	// Missing policy returns nil, not an error
	missing, err := store.GetByID("pol_none")
	if err != nil {
		t.Fatalf("GetByID(missing) error = %v", err)
	}
	if missing != nil {
		t.Error("GetByID(missing) != nil, want nil")
	}
}

func TestPolicyStatusTransitions(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPolicyStore(db)
	if err := store.Save(testPolicy("pol_1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.UpdateStatus("pol_1", models.PolicyStatusProcessing, ""); err != nil {
		t.Fatalf("UpdateStatus(processing) error = %v", err)
	}
	if err := store.UpdateStatus("pol_1", models.PolicyStatusFailed, "extraction timed out"); err != nil {
		t.Fatalf("UpdateStatus(failed) error = %v", err)
	}

	p, err := store.GetByID("pol_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p.Status != models.PolicyStatusFailed {
		t.Errorf("Status = %v, want failed", p.Status)
	}
	if p.ErrorMessage != "extraction timed out" {
		t.Errorf("ErrorMessage = %v, want extraction timed out", p.ErrorMessage)
	}

	// Unknown status rejected
	if err := store.UpdateStatus("pol_1", models.PolicyStatus("archived"), ""); err == nil {
		t.Error("UpdateStatus(archived) error = nil, want error")
	}

	// Unknown policy rejected
	if err := store.UpdateStatus("pol_none", models.PolicyStatusReady, ""); err == nil {
		t.Error("UpdateStatus(missing policy) error = nil, want error")
	}
}

func TestPolicyChunkStats(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPolicyStore(db)
	if err := store.Save(testPolicy("pol_1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.SetChunkStats("pol_1", 12, 48); err != nil {
		t.Fatalf("SetChunkStats() error = %v", err)
	}

	p, err := store.GetByID("pol_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p.TotalPages != 12 {
		t.Errorf("TotalPages = %d, want 12", p.TotalPages)
	}
	if p.TotalChunks != 48 {
		t.Errorf("TotalChunks = %d, want 48", p.TotalChunks)
	}
}

func TestPolicyList(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPolicyStore(db)
	for _, id := range []string{"pol_a", "pol_b", "pol_c"} {
		if err := store.Save(testPolicy(id)); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	policies, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(policies) != 3 {
		t.Errorf("List() returned %d policies, want 3", len(policies))
	}
}

func TestPolicyDelete(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewPolicyStore(db)
	if err := store.Save(testPolicy("pol_1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Delete("pol_1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	p, err := store.GetByID("pol_1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p != nil {
		t.Error("GetByID() after delete != nil, want nil")
	}

	if err := store.Delete("pol_1"); err == nil {
		t.Error("Delete(missing) error = nil, want error")
	}
}
