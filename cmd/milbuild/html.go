// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/htmldoc"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Build HTML documentation pages",
	Long: `Html renders every section to an HTML page: narrative text is converted
as Markdown, quoted code blocks are displayed as Lean listings, and an
index page links all chapters and sections.`,
	RunE: runHTML,
}

func runHTML(cmd *cobra.Command, args []string) error {
	sourceDir := stringOpt(cmd, "source-dir", "build.source_dir")
	cfg := types.HTMLConfig{
		OutputDir: stringOpt(cmd, "html-dir", "html.output_dir"),
	}
	opts := extract.Options{Strict: boolOpt(cmd, "strict", "build.strict")}

	book, err := manifest.Load(sourceDir)
	if err != nil {
		return err
	}

	pages, err := htmldoc.BuildHTML(book, sourceDir, cfg, opts, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d page(s) written to %s\n", pages, cfg.OutputDir)
	return nil
}

func init() {
	htmlCmd.Flags().String("source-dir", "MIL", "root directory of the manuscript sources")
	htmlCmd.Flags().String("html-dir", "build/html", "output directory for HTML pages")
	htmlCmd.Flags().Bool("strict", false, "treat regions left open at end of file as errors")

	rootCmd.AddCommand(htmlCmd)
}
