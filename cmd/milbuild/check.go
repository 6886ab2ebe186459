// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/build"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the marker structure of every section",
	Long: `Check parses every section and reports unmatched or mis-nested markers
with their line numbers, without writing any output. Unlike build it does
not stop at the first error; the whole manuscript is checked in one run.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := types.BuildConfig{
		SourceDir: stringOpt(cmd, "source-dir", "build.source_dir"),
		Strict:    boolOpt(cmd, "strict", "build.strict"),
	}

	book, err := manifest.Load(cfg.SourceDir)
	if err != nil {
		return err
	}

	if failed := build.Check(book, cfg, os.Stdout); failed > 0 {
		return fmt.Errorf("%d section(s) with errors", failed)
	}
	return nil
}

func init() {
	checkCmd.Flags().String("source-dir", "MIL", "root directory of the manuscript sources")
	checkCmd.Flags().Bool("strict", false, "treat regions left open at end of file as errors")

	rootCmd.AddCommand(checkCmd)
}
