// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over the book's prose.
	Query string

	// Chapter filters results to one chapter id.
	Chapter string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Chapter == ""
}

// SearchResult is one catalog entry matched by a query.
type SearchResult struct {
	SectionID  string `json:"section_id" yaml:"section_id"`
	Chapter    string `json:"chapter" yaml:"chapter"`
	Section    string `json:"section" yaml:"section"`
	Title      string `json:"title" yaml:"title"`
	Excerpt    string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	ProseLines int    `json:"prose_lines" yaml:"prose_lines"`
	CodeLines  int    `json:"code_lines" yaml:"code_lines"`
	Solutions  int    `json:"solutions" yaml:"solutions"`
}

// Search queries the catalog. With a full-text query the results are ranked
// by relevance and carry a highlighted excerpt; a chapter-only query lists
// that chapter's sections in id order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT sec.id, sec.chapter, sec.section, sec.title,
				snippet(prose_fts, 0, '[', ']', '…', 12),
				sec.prose_lines, sec.code_lines, sec.solutions
			FROM prose_fts
			JOIN prose p ON p.rowid = prose_fts.rowid
			JOIN sections sec ON sec.id = p.section_id
			WHERE prose_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT sec.id, sec.chapter, sec.section, sec.title,
				'' AS excerpt,
				sec.prose_lines, sec.code_lines, sec.solutions
			FROM sections sec
			WHERE 1=1`)
	}

	if opts.Chapter != "" {
		qb.WriteString(` AND sec.chapter = ?`)
		args = append(args, opts.Chapter)
	}

	if useFTS {
		qb.WriteString(` ORDER BY prose_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY sec.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r       SearchResult
			excerpt sql.NullString
			title   sql.NullString
		)
		if err := rows.Scan(
			&r.SectionID, &r.Chapter, &r.Section, &title,
			&excerpt, &r.ProseLines, &r.CodeLines, &r.Solutions,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if title.Valid {
			r.Title = title.String
		}
		if excerpt.Valid {
			r.Excerpt = excerpt.String
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// ExportYAML writes the catalog (or a filtered subset) to
// catalogDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.catalogDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the catalog (or a filtered subset) to
// catalogDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.catalogDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

const exportLimit = 100000

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	opts.MaxResults = exportLimit
	results, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return results, nil
}
