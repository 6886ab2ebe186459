// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmldoc renders parsed sections to HTML documentation pages. Prose
// segments are treated as Markdown and converted with goldmark; quoted code
// segments are displayed as Lean code blocks. Hidden and omitted code never
// reaches a page. See docs/ARCHITECTURE § HTML.
package htmldoc

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<h1>%s</h1>
%s</body>
</html>
`

// RenderPage converts one parsed section into a standalone HTML page.
func RenderPage(doc *extract.Document, title string) (string, error) {
	var (
		body bytes.Buffer
		md   strings.Builder
	)

	flushProse := func() error {
		if md.Len() == 0 {
			return nil
		}
		if err := goldmark.Convert([]byte(md.String()), &body); err != nil {
			return fmt.Errorf("converting prose: %w", err)
		}
		md.Reset()
		return nil
	}

	for _, seg := range doc.Segments {
		switch {
		case seg.Kind == extract.SegmentProse:
			md.WriteString(strings.Join(seg.Lines, "\n"))
			md.WriteString("\n\n")
		case seg.Quoted && seg.Visibility != extract.Omitted:
			if err := flushProse(); err != nil {
				return "", err
			}
			code := html.EscapeString(strings.Join(seg.Lines, "\n"))
			fmt.Fprintf(&body, "<pre><code class=\"language-lean\">%s</code></pre>\n", code)
		}
	}
	if err := flushProse(); err != nil {
		return "", err
	}

	esc := html.EscapeString(title)
	return fmt.Sprintf(pageTemplate, esc, esc, body.String()), nil
}

// RenderIndex builds the book's index page: chapters with links to their
// section pages.
func RenderIndex(book *types.Book) string {
	var body bytes.Buffer

	for _, ch := range book.Chapters {
		title := ch.Title
		if title == "" {
			title = ch.ID
		}
		fmt.Fprintf(&body, "<h2>%s</h2>\n<ul>\n", html.EscapeString(title))

		for _, sec := range ch.Sections {
			secTitle := sec.Title
			if secTitle == "" {
				secTitle = sec.ID
			}
			fmt.Fprintf(&body, "<li><a href=\"%s/%s.html\">%s</a></li>\n",
				ch.ID, sec.ID, html.EscapeString(secTitle))
		}

		body.WriteString("</ul>\n")
	}

	esc := html.EscapeString(book.Title)
	return fmt.Sprintf(pageTemplate, esc, esc, body.String())
}

// BuildHTML renders a page for every section plus the index page, writing
// them under cfg.OutputDir. It stops at the first error and returns the
// number of pages written.
func BuildHTML(book *types.Book, sourceDir string, cfg types.HTMLConfig, opts extract.Options, w io.Writer) (int, error) {
	pages := 0

	for _, ch := range book.Chapters {
		for _, sec := range ch.Sections {
			id := ch.ID + "/" + sec.ID
			srcPath := manifest.SourcePath(sourceDir, ch.ID, sec.ID)

			src, err := os.ReadFile(srcPath)
			if err != nil {
				return pages, err
			}

			doc, err := extract.Parse(srcPath, src, opts)
			if err != nil {
				return pages, err
			}

			title := sec.Title
			if title == "" {
				title = sec.ID
			}
			page, err := RenderPage(doc, title)
			if err != nil {
				return pages, fmt.Errorf("rendering %s: %w", id, err)
			}

			outPath := filepath.Join(cfg.OutputDir, ch.ID, sec.ID+".html")
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return pages, err
			}
			if err := os.WriteFile(outPath, []byte(page), 0o644); err != nil {
				return pages, err
			}

			fmt.Fprintf(w, "page:  %s\n", id)
			pages++
		}
	}

	indexPath := filepath.Join(cfg.OutputDir, "index.html")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return pages, err
	}
	if err := os.WriteFile(indexPath, []byte(RenderIndex(book)), 0o644); err != nil {
		return pages, err
	}

	fmt.Fprintf(w, "index: %s\n", indexPath)
	return pages, nil
}
