// Package store provides PostgreSQL persistence for resume documents.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-chat-builder/internal/types"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the resume_documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS resume_documents (
			session_id UUID PRIMARY KEY,
			document   JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveDocument upserts the document for a session.
func (s *Store) SaveDocument(ctx context.Context, sessionID uuid.UUID, doc *types.ResumeDocument) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO resume_documents (session_id, document)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET document = $2, updated_at = NOW()`,
		sessionID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", sessionID, err)
	}
	return nil
}

// LoadDocument retrieves the document for a session. Returns (nil, nil)
// when the session has no stored document.
func (s *Store) LoadDocument(ctx context.Context, sessionID uuid.UUID) (*types.ResumeDocument, error) {
	var jsonBytes []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM resume_documents WHERE session_id = $1`,
		sessionID,
	).Scan(&jsonBytes)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load document %s: %w", sessionID, err)
	}

	doc := types.NewResumeDocument()
	if err := json.Unmarshal(jsonBytes, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", sessionID, err)
	}
	return doc, nil
}

// DeleteDocument removes the stored document for a session.
func (s *Store) DeleteDocument(ctx context.Context, sessionID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM resume_documents WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document not found: %s", sessionID)
	}
	return nil
}

// DocumentSummary is a lightweight view of a stored document for listing.
type DocumentSummary struct {
	SessionID uuid.UUID `json:"session_id"`
	FullName  string    `json:"full_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListDocuments retrieves recently updated documents.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT session_id, COALESCE(document->'contact'->>'full_name', ''), updated_at
		 FROM resume_documents ORDER BY updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var summaries []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		if err := rows.Scan(&d.SessionID, &d.FullName, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, d)
	}
	return summaries, nil
}
