// Package docstore persists completed inspection documents in a DuckDB file
// so they can be listed and queried across sessions and restarts.
package docstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/riv-inspector/backend/internal/models"
)

// Store is a DuckDB-backed document archive. The full document is stored as a
// JSON blob; blueprint properties are additionally flattened into their own
// table for cross-document searching.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// DocumentRecord is the listing row for one archived document.
type DocumentRecord struct {
	SessionID      string    `json:"sessionId"`
	FileName       string    `json:"fileName"`
	CreatedAt      time.Time `json:"createdAt"`
	ArtboardCount  int       `json:"artboardCount"`
	BlueprintCount int       `json:"blueprintCount"`
	AssetCount     int       `json:"assetCount"`
	EnumCount      int       `json:"enumCount"`
}

// PropertyHit is one blueprint property matched by a search.
type PropertyHit struct {
	SessionID     string `json:"sessionId"`
	BlueprintName string `json:"blueprintName"`
	PropertyName  string `json:"propertyName"`
	PropertyType  string `json:"propertyType"`
}

// NewStore opens (or creates) the document archive in dir.
func NewStore(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "documents.duckdb")

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				fmt.Printf("[DocStore] Pragma warning: %v\n", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			session_id      VARCHAR PRIMARY KEY,
			file_name       VARCHAR NOT NULL,
			created_at      BIGINT NOT NULL,
			artboard_count  INTEGER NOT NULL,
			blueprint_count INTEGER NOT NULL,
			asset_count     INTEGER NOT NULL,
			enum_count      INTEGER NOT NULL,
			body            VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS blueprint_properties (
			session_id     VARCHAR NOT NULL,
			blueprint_name VARCHAR NOT NULL,
			prop_name      VARCHAR NOT NULL,
			prop_type      VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create properties table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Put archives one completed document under its session ID.
func (s *Store) Put(sessionID, fileName string, doc *models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO documents VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, fileName, time.Now().UnixMilli(),
		len(doc.Artboards), len(doc.ViewModels), len(doc.Assets), len(doc.Enums),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	for _, bp := range doc.ViewModels {
		for _, p := range bp.Properties {
			_, err = tx.Exec(
				`INSERT INTO blueprint_properties VALUES (?, ?, ?, ?)`,
				sessionID, bp.BlueprintName, p.Name, string(p.Type),
			)
			if err != nil {
				return fmt.Errorf("inserting property row: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Get loads one archived document by session ID.
func (s *Store) Get(sessionID string) (*models.Document, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE session_id = ?`, sessionID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// Recent lists the most recently archived documents.
func (s *Store) Recent(limit int) ([]DocumentRecord, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT session_id, file_name, created_at,
		       artboard_count, blueprint_count, asset_count, enum_count
		FROM documents ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	out := make([]DocumentRecord, 0, limit)
	for rows.Next() {
		var rec DocumentRecord
		var createdMs int64
		if err := rows.Scan(&rec.SessionID, &rec.FileName, &createdMs,
			&rec.ArtboardCount, &rec.BlueprintCount, &rec.AssetCount, &rec.EnumCount); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SearchByProperty finds blueprint properties by name across all archived
// documents.
func (s *Store) SearchByProperty(name string) ([]PropertyHit, error) {
	rows, err := s.db.Query(`
		SELECT session_id, blueprint_name, prop_name, prop_type
		FROM blueprint_properties WHERE prop_name = ?
		ORDER BY session_id, blueprint_name`, name)
	if err != nil {
		return nil, fmt.Errorf("searching properties: %w", err)
	}
	defer rows.Close()

	out := make([]PropertyHit, 0)
	for rows.Next() {
		var hit PropertyHit
		if err := rows.Scan(&hit.SessionID, &hit.BlueprintName, &hit.PropertyName, &hit.PropertyType); err != nil {
			return nil, fmt.Errorf("scanning property row: %w", err)
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
