// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the book's chapters and sections",
	Long: `List prints the chapter and section table in book order, as given by
book.yaml or discovered from the source directory layout.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	sourceDir := stringOpt(cmd, "source-dir", "build.source_dir")

	book, err := manifest.Load(sourceDir)
	if err != nil {
		return err
	}

	if book.Title != "" {
		fmt.Printf("%s\n\n", book.Title)
	}

	tbl := table.New("Chapter", "Section", "Title")
	for _, ch := range book.Chapters {
		for _, sec := range ch.Sections {
			title := sec.Title
			if title == "" {
				title = sec.ID
			}
			tbl.AddRow(ch.ID, sec.ID, title)
		}
	}
	tbl.Print()

	fmt.Printf("\n%d chapter(s), %d section(s)\n", len(book.Chapters), book.SectionCount())
	return nil
}

func init() {
	listCmd.Flags().String("source-dir", "MIL", "root directory of the manuscript sources")

	rootCmd.AddCommand(listCmd)
}
