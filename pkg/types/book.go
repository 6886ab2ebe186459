// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data structures for the milbuild pipeline:
// the book manifest, build status values, and stage configuration.
// See docs/ARCHITECTURE § Data Model.
package types

// Section identifies one source file of the book within a chapter.
type Section struct {
	// ID is the section's file stem (e.g. "S01_Calculating").
	ID string `json:"id" yaml:"id"`

	// Title is the section heading shown in listings and HTML pages.
	// Optional; defaults to the ID when empty.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Chapter groups an ordered list of sections.
type Chapter struct {
	// ID is the chapter's directory name (e.g. "C02_Basics").
	ID string `json:"id" yaml:"id"`

	// Title is the chapter heading shown in listings and HTML pages.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Sections lists the chapter's sections in book order.
	Sections []Section `json:"sections" yaml:"sections"`
}

// Book is the manifest of the whole manuscript: ordered chapters, each with
// ordered sections. Output filenames and ordering derive from it.
type Book struct {
	// Title is the book title (e.g. "Mathematics in Lean").
	Title string `json:"title" yaml:"title"`

	// Chapters lists the book's chapters in order.
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}

// SectionCount returns the total number of sections across all chapters.
func (b *Book) SectionCount() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Sections)
	}
	return n
}

// BuildStatus records the outcome of building one section.
type BuildStatus string

const (
	// BuildDone means the solved and exercise files were written.
	BuildDone BuildStatus = "done"

	// BuildSkipped means the outputs were already up to date.
	BuildSkipped BuildStatus = "skipped"

	// BuildFailed means parsing or writing failed.
	BuildFailed BuildStatus = "failed"
)
