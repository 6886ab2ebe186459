// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package build renders the solved and exercise versions of every section in
// the book. See docs/ARCHITECTURE § Build.
package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

const (
	// solutionsDir is the subdirectory under the output root for solved files.
	solutionsDir = "solutions"
	// exercisesDir is the subdirectory under the output root for exercise files.
	exercisesDir = "exercises"
)

// BatchResult holds the outcome of a whole-book build.
type BatchResult struct {
	Built   int
	Skipped int
	Failed  int
}

// Total returns the total number of sections processed.
func (r BatchResult) Total() int {
	return r.Built + r.Skipped + r.Failed
}

// HasFailures reports whether any section failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// BuildSection renders one section, writing the solved and exercise files
// under the output root. When the outputs are newer than the source the
// section is skipped, unless cfg.Force is set. Renderings are produced in
// memory before anything is written, so a structural error leaves no
// partial output.
func BuildSection(chapterID, sectionID string, cfg types.BuildConfig, w io.Writer) (types.BuildStatus, error) {
	id := chapterID + "/" + sectionID
	srcPath := manifest.SourcePath(cfg.SourceDir, chapterID, sectionID)
	solvedPath := filepath.Join(cfg.OutputDir, solutionsDir, chapterID, sectionID+".lean")
	exercisePath := filepath.Join(cfg.OutputDir, exercisesDir, chapterID, sectionID+".lean")

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
		return types.BuildFailed, err
	}

	if !cfg.Force && upToDate(srcInfo, solvedPath) && upToDate(srcInfo, exercisePath) {
		fmt.Fprintf(w, "skipped: %s (up to date)\n", id)
		return types.BuildSkipped, nil
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
		return types.BuildFailed, err
	}

	doc, err := extract.Parse(srcPath, src, extract.Options{Strict: cfg.Strict})
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
		return types.BuildFailed, err
	}
	doc.ChapterID = chapterID
	doc.SectionID = sectionID

	solved := doc.Solved()
	exercise := doc.Exercise(cfg.Placeholder)

	outputs := []struct{ path, content string }{
		{solvedPath, solved},
		{exercisePath, exercise},
	}
	for _, out := range outputs {
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			return types.BuildFailed, err
		}
		if err := os.WriteFile(out.path, []byte(out.content), 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			return types.BuildFailed, err
		}
	}

	fmt.Fprintf(w, "built:   %s\n", id)
	return types.BuildDone, nil
}

// BuildBook renders every section the manifest names, in manifest order.
// The default policy stops at the first failure; with cfg.KeepGoing the
// remaining sections are still processed and counted. cfg.Only restricts
// the build to sections whose "chapter/section" path matches the glob.
func BuildBook(book *types.Book, cfg types.BuildConfig, w io.Writer) (BatchResult, error) {
	matcher, err := onlyMatcher(cfg.Only)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult

	for _, ch := range book.Chapters {
		for _, sec := range ch.Sections {
			if matcher != nil && !matcher.Match(ch.ID+"/"+sec.ID) {
				continue
			}

			status, err := BuildSection(ch.ID, sec.ID, cfg, w)
			switch status {
			case types.BuildDone:
				result.Built++
			case types.BuildSkipped:
				result.Skipped++
			case types.BuildFailed:
				result.Failed++
				if !cfg.KeepGoing {
					return result, err
				}
			}
		}
	}

	fmt.Fprintf(w, "\nBuild summary: %d built, %d skipped, %d failed (total: %d)\n",
		result.Built, result.Skipped, result.Failed, result.Total())

	if result.HasFailures() {
		return result, fmt.Errorf("%d section(s) failed", result.Failed)
	}
	return result, nil
}

// Check parses every section without writing output and reports structural
// errors. Unlike BuildBook it never stops early; the return value is the
// number of sections that failed.
func Check(book *types.Book, cfg types.BuildConfig, w io.Writer) int {
	failed := 0

	for _, ch := range book.Chapters {
		for _, sec := range ch.Sections {
			id := ch.ID + "/" + sec.ID
			srcPath := manifest.SourcePath(cfg.SourceDir, ch.ID, sec.ID)

			src, err := os.ReadFile(srcPath)
			if err != nil {
				fmt.Fprintf(w, "error: %s: %v\n", id, err)
				failed++
				continue
			}

			if _, err := extract.Parse(srcPath, src, extract.Options{Strict: cfg.Strict}); err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				failed++
				continue
			}

			fmt.Fprintf(w, "ok:    %s\n", id)
		}
	}

	fmt.Fprintf(w, "\n%d section(s) checked, %d with errors\n", book.SectionCount(), failed)
	return failed
}

// onlyMatcher compiles the --only glob with '/' as separator, so that
// patterns like "C03_*/S02*" match against "chapter/section" paths.
func onlyMatcher(pattern string) (glob.Glob, error) {
	if pattern == "" {
		return nil, nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid --only pattern %q: %w", pattern, err)
	}
	return g, nil
}

// upToDate reports whether path exists and is at least as new as the source.
func upToDate(srcInfo os.FileInfo, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(srcInfo.ModTime())
}
