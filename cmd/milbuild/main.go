// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the milbuild CLI, the build tooling
// for the Mathematics in Lean manuscript.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the milbuild CLI.
var rootCmd = &cobra.Command{
	Use:   "milbuild",
	Short: "Build tooling for the Mathematics in Lean manuscript",
	Long: `milbuild turns the marked-up Lean sources of Mathematics in Lean into
the artifacts readers use: solved section files, exercise files with the
solutions blanked out, and HTML documentation pages.

Each stage is a subcommand: build renders the solved and exercise files,
check validates the marker structure, html builds documentation pages, and
catalog maintains a searchable SQLite index of the book.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./milbuild.yaml or ~/.config/milbuild/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("milbuild")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "milbuild"))
		}
	}

	viper.SetEnvPrefix("MILBUILD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringOpt resolves a string option: an explicitly set flag wins, then the
// config file value, then the flag default.
func stringOpt(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	return viper.GetString(key)
}

// boolOpt resolves a bool option with the same precedence as stringOpt.
func boolOpt(cmd *cobra.Command, flag, key string) bool {
	if cmd.Flags().Changed(flag) || !viper.IsSet(key) {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
