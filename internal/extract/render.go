// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

// DefaultPlaceholder is the exercise hole substituted for solution segments.
// "sorry" keeps the exercise file accepted by Lean's elaborator.
const DefaultPlaceholder = "sorry"

// Solved returns the rendering with every visible line of the source in
// original order: prose, shared code, examples, and solutions. Markers and
// omitted segments are gone.
func (d *Document) Solved() string {
	return d.render(true, "")
}

// Exercise returns the rendering for learners: identical to Solved except
// each solution segment is replaced by exactly one placeholder line. An
// empty placeholder selects DefaultPlaceholder.
func (d *Document) Exercise(placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return d.render(false, placeholder)
}

func (d *Document) render(solved bool, placeholder string) string {
	var lines []string

	for _, seg := range d.Segments {
		if seg.Kind == SegmentCode && seg.Visibility == Omitted {
			continue
		}
		if !solved && seg.Kind == SegmentCode && seg.Visibility == SolutionsOnly {
			lines = append(lines, placeholder)
			continue
		}
		lines = append(lines, seg.Lines...)
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// ProseText returns the narrative text of the section: prose segments joined
// by blank lines. The catalog indexes this for full-text search.
func (d *Document) ProseText() string {
	var parts []string
	for _, seg := range d.Segments {
		if seg.Kind == SegmentProse {
			parts = append(parts, strings.Join(seg.Lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Stats summarizes a parsed section for the catalog.
type Stats struct {
	ProseLines int
	CodeLines  int
	Segments   int
	Solutions  int // solution segments, i.e. exercise holes
	Quoted     int // quoted code segments displayed in the narrative
}

// Stats counts lines and segments by kind. Omitted segments count toward
// Segments but not toward CodeLines.
func (d *Document) Stats() Stats {
	var s Stats
	s.Segments = len(d.Segments)

	for _, seg := range d.Segments {
		switch {
		case seg.Kind == SegmentProse:
			s.ProseLines += len(seg.Lines)
		case seg.Visibility == Omitted:
		default:
			s.CodeLines += len(seg.Lines)
		}

		if seg.Kind == SegmentCode && seg.Visibility == SolutionsOnly {
			s.Solutions++
		}
		if seg.Kind == SegmentCode && seg.Quoted {
			s.Quoted++
		}
	}

	return s
}
