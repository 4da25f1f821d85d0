// ABOUTME: SQLite schema for policy document and chunk storage
// ABOUTME: Mirrors the production pgvector schema with BLOB-encoded embeddings
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Policy documents table (ingestion lifecycle tracking)
CREATE TABLE IF NOT EXISTS policies (
    id TEXT PRIMARY KEY,
    source_uri TEXT NOT NULL,
    file_name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'ready', 'failed')),
    total_pages INTEGER,
    total_chunks INTEGER DEFAULT 0,
    uploaded_by TEXT,
    error_message TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    version INTEGER NOT NULL DEFAULT 1
);

-- Policy chunks table (retrievable passages with embeddings)
CREATE TABLE IF NOT EXISTS policy_chunks (
    id TEXT PRIMARY KEY,
    policy_id TEXT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
    content_type TEXT NOT NULL CHECK (content_type IN ('text', 'table', 'figure')),
    content_text TEXT,
    source_page INTEGER,
    section_title TEXT,
    reading_order INTEGER,
    bda_entity_id TEXT,
    bda_entity_subtype TEXT,
    embedding BLOB NOT NULL,
    metadata TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_policies_status ON policies(status);
CREATE INDEX IF NOT EXISTS idx_policy_chunks_policy_id ON policy_chunks(policy_id);
CREATE INDEX IF NOT EXISTS idx_policy_chunks_content_type ON policy_chunks(content_type);
`
