// ABOUTME: Tests for the policy document chunker covering sections, tables, and ordering
package core

import (
	"testing"

	"github.com/tripcortex/trip-cortex/internal/models"
)

const samplePolicyText = `# Travel Policy

## Domestic Flights

Employees may book economy class for all domestic flights. Bookings must
be made at least 14 days in advance.

Exceptions require manager approval and a documented business reason.

## International Flights

Business class is permitted on flights longer than 8 hours.

| Route | Budget |
| Domestic | $500 |
| International | $2500 |
`

func TestChunkDocumentEmptyText(t *testing.T) {
	c := NewChunker()
	if _, err := c.ChunkDocument("pol-1", "   \n\n  "); err == nil {
		t.Error("expected error for empty document, got nil")
	}
}

func TestChunkDocumentSectionsAndOrder(t *testing.T) {
	c := NewChunker()
	chunks, err := c.ChunkDocument("pol-1", samplePolicyText)
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}

	for i, ch := range chunks {
		if ch.ReadingOrder != i {
			t.Errorf("chunk %d: got reading order %d, want %d", i, ch.ReadingOrder, i)
		}
		if ch.PolicyID != "pol-1" {
			t.Errorf("chunk %d: got policy ID %q, want pol-1", i, ch.PolicyID)
		}
		if ch.ID == "" {
			t.Errorf("chunk %d has no ID", i)
		}
	}

	if chunks[0].SectionTitle != "Domestic Flights" {
		t.Errorf("got section %q, want Domestic Flights", chunks[0].SectionTitle)
	}
	if chunks[2].SectionTitle != "International Flights" {
		t.Errorf("got section %q, want International Flights", chunks[2].SectionTitle)
	}
}

func TestChunkDocumentTableDetection(t *testing.T) {
	c := NewChunker()
	chunks, err := c.ChunkDocument("pol-1", samplePolicyText)
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}

	last := chunks[len(chunks)-1]
	if last.ContentType != models.ContentTypeTable {
		t.Errorf("got content type %s, want %s", last.ContentType, models.ContentTypeTable)
	}
	for _, ch := range chunks[:len(chunks)-1] {
		if ch.ContentType != models.ContentTypeText {
			t.Errorf("chunk %d: got content type %s, want %s", ch.ReadingOrder, ch.ContentType, models.ContentTypeText)
		}
	}
}

func TestChunkDocumentHeadingsOnly(t *testing.T) {
	c := NewChunker()
	if _, err := c.ChunkDocument("pol-1", "# Title\n\n## Section"); err == nil {
		t.Error("expected error for document with headings only, got nil")
	}
}

func TestChunkDocumentWindowsLineEndings(t *testing.T) {
	c := NewChunker()
	chunks, err := c.ChunkDocument("pol-1", "# Policy\r\n\r\nFirst paragraph of content.\r\n\r\nSecond paragraph of content.")
	if err != nil {
		t.Fatalf("chunking failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
}
