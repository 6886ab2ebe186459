// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract partitions a marked-up Lean source file into prose and code
// segments and renders the solved and exercise versions of the section.
// See docs/ARCHITECTURE § Extraction.
//
// A source file interleaves narrative text and code using sentinel marker
// lines. A marker must appear alone on its line (surrounding whitespace is
// ignored); it toggles parser state and never appears in any rendering.
package extract

import (
	"fmt"
	"strings"
)

// Marker tokens. Text blocks are fenced by a Lean block comment; the case
// toggles and quote fence are line comments.
const (
	markerProseOpen  = "/- TEXT:"
	markerProseClose = "TEXT. -/"
	markerQuoteOpen  = "-- QUOTE:"
	markerQuoteClose = "-- QUOTE."
	markerExamples   = "-- EXAMPLES:"
	markerSolutions  = "-- SOLUTIONS:"
	markerBoth       = "-- BOTH:"
	markerOmit       = "-- OMIT:"
)

// SegmentKind distinguishes narrative text from code.
type SegmentKind int

const (
	SegmentProse SegmentKind = iota
	SegmentCode
)

// String returns the kind name used in the catalog and in error messages.
func (k SegmentKind) String() string {
	if k == SegmentProse {
		return "prose"
	}
	return "code"
}

// Visibility controls which renderings a code segment appears in.
type Visibility int

const (
	// VisibleBoth code appears in the solved and the exercise rendering.
	VisibleBoth Visibility = iota

	// ExamplesOnly code is worked-example material; it appears in both
	// renderings but is tagged so downstream stages can tell it apart.
	ExamplesOnly

	// SolutionsOnly code appears in the solved rendering and is replaced by
	// a single placeholder line in the exercise rendering.
	SolutionsOnly

	// Omitted code appears in no rendering.
	Omitted
)

// String returns the visibility name used in the catalog.
func (v Visibility) String() string {
	switch v {
	case ExamplesOnly:
		return "examples"
	case SolutionsOnly:
		return "solutions"
	case Omitted:
		return "omit"
	default:
		return "both"
	}
}

// Segment is a contiguous run of non-marker lines.
type Segment struct {
	// Kind is prose or code.
	Kind SegmentKind

	// Visibility applies to code segments; prose is always VisibleBoth.
	Visibility Visibility

	// Quoted marks code fenced by -- QUOTE: / -- QUOTE., i.e. code that is
	// displayed inside the narrative in the HTML build.
	Quoted bool

	// Lines holds the segment's lines verbatim, without trailing newlines.
	Lines []string

	// StartLine is the 1-based source line of the segment's first line.
	StartLine int
}

// Document is the ordered segment sequence of one section. It is built once
// per source file and immutable afterwards; renderings consume it.
type Document struct {
	ChapterID string
	SectionID string
	Segments  []Segment
}

// StructuralError reports an unmatched or mis-nested marker. The whole file's
// render is aborted; there is no partial output.
type StructuralError struct {
	Path string
	Line int
	Msg  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Options controls parsing policy.
type Options struct {
	// Strict turns a region left open at end of input into a structural
	// error. The default closes it implicitly, since manuscript files do
	// end inside open regions.
	Strict bool
}

type region int

const (
	regionNone region = iota
	regionProse
	regionQuote
)

func (r region) String() string {
	switch r {
	case regionProse:
		return "text block"
	case regionQuote:
		return "quote block"
	default:
		return "no region"
	}
}

type parser struct {
	path string
	opts Options

	doc *Document
	cur *Segment

	region   region
	vis      Visibility
	openLine int // line of the marker that opened the current region

	// splitLine is the line of a case toggle opened inside the current
	// quote block, or 0. A split must return to -- BOTH: before -- QUOTE.
	splitLine int
}

// Parse scans src line by line and builds the section's Document. path is
// used only in error messages. A structural error aborts the parse.
func Parse(path string, src []byte, opts Options) (*Document, error) {
	p := &parser{
		path: path,
		opts: opts,
		doc:  &Document{},
		vis:  VisibleBoth,
	}

	lines := splitLines(src)
	for i, line := range lines {
		if err := p.line(i+1, line); err != nil {
			return nil, err
		}
	}

	if err := p.finish(len(lines)); err != nil {
		return nil, err
	}

	return p.doc, nil
}

// splitLines splits src on newlines, dropping the empty tail a trailing
// newline would produce. Carriage returns before the newline are stripped;
// all other whitespace is preserved verbatim.
func splitLines(src []byte) []string {
	if len(src) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(src), "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (p *parser) line(n int, line string) error {
	switch strings.TrimSpace(line) {
	case markerProseOpen:
		return p.proseOpen(n)
	case markerProseClose:
		return p.proseClose(n)
	case markerQuoteOpen:
		return p.quoteOpen(n)
	case markerQuoteClose:
		return p.quoteClose(n)
	case markerExamples:
		return p.toggle(n, ExamplesOnly)
	case markerSolutions:
		return p.toggle(n, SolutionsOnly)
	case markerBoth:
		return p.toggle(n, VisibleBoth)
	case markerOmit:
		return p.toggle(n, Omitted)
	default:
		p.content(n, line)
		return nil
	}
}

func (p *parser) proseOpen(n int) error {
	switch p.region {
	case regionProse:
		return p.errorf(n, "%s: text block already open at line %d", markerProseOpen, p.openLine)
	case regionQuote:
		return p.errorf(n, "%s: quote block opened at line %d is still open", markerProseOpen, p.openLine)
	}

	p.flush()
	p.region = regionProse
	p.openLine = n
	p.vis = VisibleBoth
	p.start(SegmentProse, false, n+1)
	return nil
}

func (p *parser) proseClose(n int) error {
	if p.region != regionProse {
		return p.errorf(n, "%s without a matching %s", markerProseClose, markerProseOpen)
	}

	p.flush()
	p.region = regionNone
	return nil
}

func (p *parser) quoteOpen(n int) error {
	switch p.region {
	case regionProse:
		return p.errorf(n, "%s inside a text block opened at line %d", markerQuoteOpen, p.openLine)
	case regionQuote:
		return p.errorf(n, "%s: quote block already open at line %d", markerQuoteOpen, p.openLine)
	}

	p.flush()
	p.region = regionQuote
	p.openLine = n
	p.splitLine = 0
	p.start(SegmentCode, true, n+1)
	return nil
}

func (p *parser) quoteClose(n int) error {
	if p.region != regionQuote {
		return p.errorf(n, "%s without a matching %s", markerQuoteClose, markerQuoteOpen)
	}
	if p.splitLine != 0 && p.vis != VisibleBoth {
		return p.errorf(n, "%s closes a quote block while the %s split opened at line %d is still open",
			markerQuoteClose, p.vis, p.splitLine)
	}

	p.flush()
	p.region = regionNone
	return nil
}

func (p *parser) toggle(n int, vis Visibility) error {
	if p.region == regionProse {
		return p.errorf(n, "case marker inside a text block opened at line %d", p.openLine)
	}

	p.flush()
	p.vis = vis

	if p.region == regionQuote {
		if vis == VisibleBoth {
			p.splitLine = 0
		} else {
			p.splitLine = n
		}
	}

	p.start(SegmentCode, p.region == regionQuote, n+1)
	return nil
}

// content appends a non-marker line to the active segment. Outside any
// region the line is ambient code shown in both renderings, so a file with
// no markers at all renders to itself.
func (p *parser) content(n int, line string) {
	if p.cur == nil {
		kind := SegmentCode
		if p.region == regionProse {
			kind = SegmentProse
		}
		p.start(kind, p.region == regionQuote, n)
	}
	p.cur.Lines = append(p.cur.Lines, line)
}

// finish flushes the trailing segment. Regions still open at end of input
// are closed implicitly unless Strict is set.
func (p *parser) finish(lastLine int) error {
	if p.opts.Strict && p.region != regionNone {
		return p.errorf(lastLine, "end of input with unclosed %s opened at line %d", p.region, p.openLine)
	}

	p.flush()
	return nil
}

// start begins accumulating a new segment. Prose segments ignore the current
// visibility; code segments inherit it.
func (p *parser) start(kind SegmentKind, quoted bool, startLine int) {
	seg := Segment{Kind: kind, Quoted: quoted, StartLine: startLine}
	if kind == SegmentCode {
		seg.Visibility = p.vis
	}
	p.cur = &seg
}

// flush appends the accumulated segment to the document. Segments with no
// lines (consecutive markers) are dropped.
func (p *parser) flush() {
	if p.cur != nil && len(p.cur.Lines) > 0 {
		p.doc.Segments = append(p.doc.Segments, *p.cur)
	}
	p.cur = nil
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &StructuralError{Path: p.path, Line: line, Msg: fmt.Sprintf(format, args...)}
}
