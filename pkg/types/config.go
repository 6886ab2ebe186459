// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BuildConfig holds settings for the build stage.
type BuildConfig struct {
	// SourceDir is the root of the manuscript sources. Each chapter is a
	// subdirectory containing one .lean file per section.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutputDir is the root for rendered output (contains solutions/, exercises/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Placeholder is the line substituted for each solution segment in the
	// exercise rendering (default "sorry").
	Placeholder string `json:"placeholder" yaml:"placeholder"`

	// Strict makes a region left open at end of input a structural error
	// instead of being closed implicitly.
	Strict bool `json:"strict" yaml:"strict"`

	// KeepGoing continues past failed sections and reports a batch summary
	// instead of stopping at the first error.
	KeepGoing bool `json:"keep_going" yaml:"keep_going"`

	// Only restricts the build to sections whose "chapter/section" path
	// matches this glob pattern. Empty means build everything.
	Only string `json:"only,omitempty" yaml:"only,omitempty"`

	// Force rebuilds sections even when their outputs are up to date.
	Force bool `json:"force" yaml:"force"`
}

// HTMLConfig holds settings for the HTML documentation stage.
type HTMLConfig struct {
	// OutputDir is the directory for generated HTML pages (e.g. "out/html").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// CatalogConfig holds settings for the section catalog.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Build   BuildConfig   `json:"build" yaml:"build"`
	HTML    HTMLConfig    `json:"html" yaml:"html"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}
