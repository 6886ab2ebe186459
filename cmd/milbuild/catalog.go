// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/catalog"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the section catalog (index, search, export)",
	Long: `Catalog maintains a local SQLite index of the book: per-section build
statistics and a full-text index over the narrative prose. Use subcommands
to index sections, search them, or export the catalog.`,
}

// --- index subcommand ---

var catalogIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Parse every section and record it in the catalog",
	Long: `Index parses each section, records its statistics (prose and code lines,
exercise holes, quoted blocks), and adds its prose to the full-text index.
Unchanged sections are skipped on subsequent runs.`,
	RunE: runCatalogIndex,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	sourceDir := stringOpt(cmd, "source-dir", "build.source_dir")
	cfg := catalogConfig(cmd)

	book, err := manifest.Load(sourceDir)
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := extract.Options{Strict: boolOpt(cmd, "strict", "build.strict")}
	summary, err := store.Index(context.Background(), book, sourceDir, opts, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d section(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the book's prose with full-text search",
	Long: `Search runs an FTS5 full-text query over the narrative prose of every
indexed section. Results are ranked by relevance and show a highlighted
excerpt. Use --chapter to restrict the search, or on its own to list a
chapter's sections.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --chapter")
	}

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []catalog.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	tbl := table.New("Section", "Title", "Excerpt")
	for _, r := range results {
		excerpt := r.Excerpt
		if len(excerpt) > 60 {
			excerpt = excerpt[:57] + "..."
		}
		tbl.AddRow(r.SectionID, r.Title, excerpt)
	}
	tbl.Print()

	fmt.Printf("\n%d result(s)\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the catalog (or a subset selected with the search flags)
to catalog/index/export.yaml or export.json.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to catalog/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to catalog/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.CatalogConfig{
		CatalogDir: stringOpt(cmd, "catalog-dir", "catalog.catalog_dir"),
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	chapter, _ := cmd.Flags().GetString("chapter")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	opts := catalog.QueryOptions{
		Chapter:    chapter,
		MaxResults: maxResults,
	}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	return opts
}

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog-dir", "catalog", "base directory for the catalog (contains index/)")
	cmd.Flags().String("chapter", "", "filter by chapter id")
	cmd.Flags().Int("max-results", 20, "maximum number of results")
}

func init() {
	catalogIndexCmd.Flags().String("source-dir", "MIL", "root directory of the manuscript sources")
	catalogIndexCmd.Flags().String("catalog-dir", "catalog", "base directory for the catalog (contains index/)")
	catalogIndexCmd.Flags().Int("max-results", 20, "maximum number of results")
	catalogIndexCmd.Flags().Bool("strict", false, "treat regions left open at end of file as errors")

	addCatalogFlags(catalogSearchCmd)
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	addCatalogFlags(catalogExportCmd)
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
