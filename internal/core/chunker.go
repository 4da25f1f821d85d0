// ABOUTME: Chunker splits a policy document into ordered passages ready for embedding
// ABOUTME: Detects section headings and emits one chunk per paragraph under them
package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tripcortex/trip-cortex/internal/models"
)

// Chunker splits policy document text into passages
type Chunker struct{}

// NewChunker creates a new Chunker instance
func NewChunker() *Chunker {
	return &Chunker{}
}

// ChunkDocument splits a policy document into ordered chunks. Lines that
// look like headings become the section title for the paragraphs that
// follow; pipe-delimited blocks are tagged as tables. Reading order is
// assigned in document order starting at zero.
func (c *Chunker) ChunkDocument(policyID string, text string) ([]models.PolicyChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot chunk empty document")
	}

	var chunks []models.PolicyChunk
	section := ""
	order := 0

	for _, para := range splitParagraphs(text) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if title, ok := headingTitle(para); ok {
			section = title
			continue
		}

		contentType := models.ContentTypeText
		if looksLikeTable(para) {
			contentType = models.ContentTypeTable
		}

		chunks = append(chunks, models.PolicyChunk{
			ID:           uuid.New().String(),
			PolicyID:     policyID,
			ContentType:  contentType,
			ContentText:  para,
			SectionTitle: section,
			ReadingOrder: order,
		})
		order++
	}

	if len(chunks) == 0 {
		return nil, errors.New("document contains no chunkable content")
	}

	return chunks, nil
}

// splitParagraphs splits text by blank lines, tolerating Windows line endings
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n\n")
}

// headingTitle reports whether a paragraph is a section heading and returns
// its title. Markdown-style hashes and short single lines ending without
// punctuation both count.
func headingTitle(para string) (string, bool) {
	if strings.Contains(para, "\n") {
		return "", false
	}

	line := strings.TrimSpace(para)
	if strings.HasPrefix(line, "#") {
		return strings.TrimSpace(strings.TrimLeft(line, "# ")), true
	}

	if len(line) <= 80 && !strings.ContainsAny(string(line[len(line)-1]), ".!?,;:") {
		words := strings.Fields(line)
		if len(words) > 0 && len(words) <= 10 && isTitleCased(words[0]) {
			return line, true
		}
	}

	return "", false
}

// isTitleCased reports whether a word starts with an uppercase letter or digit
func isTitleCased(word string) bool {
	if word == "" {
		return false
	}
	ch := word[0]
	return (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// looksLikeTable reports whether most lines in a paragraph are pipe-delimited
func looksLikeTable(para string) bool {
	lines := strings.Split(para, "\n")
	if len(lines) < 2 {
		return false
	}

	piped := 0
	for _, line := range lines {
		if strings.Count(line, "|") >= 2 {
			piped++
		}
	}
	return piped*2 >= len(lines)
}
