// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest loads the book manifest mapping chapter ids to ordered
// section ids. The manifest lives in book.yaml at the source root; when the
// file is absent the structure is discovered from the directory tree.
// See docs/ARCHITECTURE § Manifest.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

// FileName is the manifest filename looked up under the source root.
const FileName = "book.yaml"

// sourceExt is the extension of section source files.
const sourceExt = ".lean"

// Load returns the book manifest for sourceDir: book.yaml when present,
// otherwise the structure discovered from the directory listing. The result
// is validated either way.
func Load(sourceDir string) (*types.Book, error) {
	path := filepath.Join(sourceDir, FileName)

	var (
		book *types.Book
		err  error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		book, err = Read(path)
	} else {
		book, err = Discover(sourceDir)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(book, sourceDir); err != nil {
		return nil, err
	}
	return book, nil
}

// Read parses a manifest file.
func Read(path string) (*types.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var book types.Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &book, nil
}

// Discover builds a manifest from the directory tree: every subdirectory of
// sourceDir is a chapter and every .lean file inside it a section, both in
// lexical order. Hidden entries are skipped.
func Discover(sourceDir string) (*types.Book, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", sourceDir, err)
	}

	book := &types.Book{Title: filepath.Base(sourceDir)}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		chapter := types.Chapter{ID: entry.Name(), Title: entry.Name()}

		files, err := os.ReadDir(filepath.Join(sourceDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading chapter directory %s: %w", entry.Name(), err)
		}

		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), sourceExt) {
				continue
			}
			id := strings.TrimSuffix(f.Name(), sourceExt)
			chapter.Sections = append(chapter.Sections, types.Section{ID: id, Title: id})
		}

		sort.Slice(chapter.Sections, func(i, j int) bool {
			return chapter.Sections[i].ID < chapter.Sections[j].ID
		})

		if len(chapter.Sections) > 0 {
			book.Chapters = append(book.Chapters, chapter)
		}
	}

	sort.Slice(book.Chapters, func(i, j int) bool {
		return book.Chapters[i].ID < book.Chapters[j].ID
	})

	return book, nil
}

// Validate checks manifest integrity: non-empty ids, no duplicate chapter or
// section ids, and an existing source file for every section.
func Validate(book *types.Book, sourceDir string) error {
	seenChapters := make(map[string]bool)

	for _, ch := range book.Chapters {
		if ch.ID == "" {
			return fmt.Errorf("manifest: chapter with empty id")
		}
		if seenChapters[ch.ID] {
			return fmt.Errorf("manifest: duplicate chapter id %q", ch.ID)
		}
		seenChapters[ch.ID] = true

		seenSections := make(map[string]bool)
		for _, sec := range ch.Sections {
			if sec.ID == "" {
				return fmt.Errorf("manifest: chapter %s has a section with empty id", ch.ID)
			}
			if seenSections[sec.ID] {
				return fmt.Errorf("manifest: duplicate section id %q in chapter %s", sec.ID, ch.ID)
			}
			seenSections[sec.ID] = true

			path := SourcePath(sourceDir, ch.ID, sec.ID)
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("manifest: section %s/%s: source file missing: %w", ch.ID, sec.ID, err)
			}
		}
	}

	return nil
}

// SourcePath returns the source file for a section.
func SourcePath(sourceDir, chapterID, sectionID string) string {
	return filepath.Join(sourceDir, chapterID, sectionID+sourceExt)
}
