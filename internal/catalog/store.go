// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists per-section build statistics and a full-text
// index over the book's prose. See docs/ARCHITECTURE § Catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "book.db"
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates the catalog database at catalogDir/index/book.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sections (
			id TEXT PRIMARY KEY,
			chapter TEXT NOT NULL,
			section TEXT NOT NULL,
			title TEXT,
			source_path TEXT,
			file_mod_time TEXT,
			prose_lines INTEGER,
			code_lines INTEGER,
			segments INTEGER,
			solutions INTEGER,
			quoted INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_chapter ON sections(chapter)`,
		`CREATE TABLE IF NOT EXISTS prose (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id TEXT NOT NULL UNIQUE REFERENCES sections(id),
			content TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			indexed INTEGER,
			updated INTEGER,
			skipped INTEGER,
			failed INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='prose_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE prose_fts USING fts5(content, content=prose, content_rowid=rowid)`,
			`CREATE TRIGGER prose_ai AFTER INSERT ON prose BEGIN
				INSERT INTO prose_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER prose_ad AFTER DELETE ON prose BEGIN
				INSERT INTO prose_fts(prose_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER prose_au AFTER UPDATE ON prose BEGIN
				INSERT INTO prose_fts(prose_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO prose_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IndexSummary holds counts from a catalog indexing run.
type IndexSummary struct {
	RunID   string
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of sections processed.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Index parses every section of the book and records its statistics and
// prose text. Sections whose source file is unchanged since the last run
// are skipped; changed sections are replaced transactionally. Each run is
// recorded with a fresh UUID.
func (s *Store) Index(ctx context.Context, book *types.Book, sourceDir string, opts extract.Options, w io.Writer) (IndexSummary, error) {
	summary := IndexSummary{RunID: uuid.NewString()}
	startedAt := time.Now().UTC().Format(time.RFC3339)

	for _, ch := range book.Chapters {
		for _, sec := range ch.Sections {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			id := ch.ID + "/" + sec.ID
			srcPath := manifest.SourcePath(sourceDir, ch.ID, sec.ID)

			info, err := os.Stat(srcPath)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				summary.Failed++
				continue
			}
			modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

			var storedModTime string
			err = s.db.QueryRowContext(ctx,
				`SELECT file_mod_time FROM sections WHERE id = ?`, id,
			).Scan(&storedModTime)

			if err == nil && storedModTime == modTime {
				fmt.Fprintf(w, "skipped %s\n", id)
				summary.Skipped++
				continue
			}
			isUpdate := err == nil

			src, err := os.ReadFile(srcPath)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				summary.Failed++
				continue
			}

			doc, err := extract.Parse(srcPath, src, opts)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				summary.Failed++
				continue
			}

			if err := s.indexSection(ctx, id, ch, sec, srcPath, modTime, doc, isUpdate); err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				summary.Failed++
				continue
			}

			if isUpdate {
				fmt.Fprintf(w, "updated %s\n", id)
				summary.Updated++
			} else {
				fmt.Fprintf(w, "indexed %s\n", id)
				summary.Indexed++
			}
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, indexed, updated, skipped, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, startedAt, summary.Indexed, summary.Updated, summary.Skipped, summary.Failed,
	)
	if err != nil {
		return summary, fmt.Errorf("recording run: %w", err)
	}

	return summary, nil
}

func (s *Store) indexSection(ctx context.Context, id string, ch types.Chapter, sec types.Section, srcPath, modTime string, doc *extract.Document, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM prose WHERE section_id = ?`, id); err != nil {
			return fmt.Errorf("deleting old prose: %w", err)
		}
	}

	title := sec.Title
	if title == "" {
		title = sec.ID
	}

	stats := doc.Stats()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sections (id, chapter, section, title, source_path, file_mod_time,
			prose_lines, code_lines, segments, solutions, quoted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, source_path=excluded.source_path,
			file_mod_time=excluded.file_mod_time, prose_lines=excluded.prose_lines,
			code_lines=excluded.code_lines, segments=excluded.segments,
			solutions=excluded.solutions, quoted=excluded.quoted`,
		id, ch.ID, sec.ID, title, srcPath, modTime,
		stats.ProseLines, stats.CodeLines, stats.Segments, stats.Solutions, stats.Quoted,
	)
	if err != nil {
		return fmt.Errorf("upserting section: %w", err)
	}

	if prose := doc.ProseText(); prose != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO prose (section_id, content) VALUES (?, ?)`, id, prose)
		if err != nil {
			return fmt.Errorf("inserting prose: %w", err)
		}
	}

	return tx.Commit()
}
