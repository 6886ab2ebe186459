// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/build"
	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/manifest"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the solved and exercise files for every section",
	Long: `Build parses each section's marker structure and writes two files under
the output root: solutions/<chapter>/<section>.lean with all code and
solutions visible, and exercises/<chapter>/<section>.lean with each
solution replaced by a placeholder line.

Sections whose outputs are newer than their source are skipped. The build
stops at the first structural or I/O error unless --keep-going is set.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := buildConfigFromFlags(cmd)

	book, err := manifest.Load(cfg.SourceDir)
	if err != nil {
		return err
	}

	_, err = build.BuildBook(book, cfg, os.Stdout)
	return err
}

// buildConfigFromFlags assembles the build configuration, letting explicit
// flags override milbuild.yaml values.
func buildConfigFromFlags(cmd *cobra.Command) types.BuildConfig {
	return types.BuildConfig{
		SourceDir:   stringOpt(cmd, "source-dir", "build.source_dir"),
		OutputDir:   stringOpt(cmd, "output-dir", "build.output_dir"),
		Placeholder: stringOpt(cmd, "placeholder", "build.placeholder"),
		Strict:      boolOpt(cmd, "strict", "build.strict"),
		KeepGoing:   boolOpt(cmd, "keep-going", "build.keep_going"),
		Only:        stringOpt(cmd, "only", "build.only"),
		Force:       boolOpt(cmd, "force", "build.force"),
	}
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-dir", "MIL", "root directory of the manuscript sources")
	cmd.Flags().String("output-dir", "build", "root directory for rendered output")
	cmd.Flags().String("placeholder", "", "exercise placeholder line (default \"sorry\")")
	cmd.Flags().Bool("strict", false, "treat regions left open at end of file as errors")
	cmd.Flags().Bool("keep-going", false, "continue past failed sections and summarize")
	cmd.Flags().String("only", "", "build only sections matching this chapter/section glob")
	cmd.Flags().Bool("force", false, "rebuild sections whose outputs are up to date")
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
