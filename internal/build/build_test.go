// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package build

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DenisGorbachev/mathematics-in-lean-source/internal/extract"
	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

const goodSource = `/- TEXT:
Commutativity of addition.
TEXT. -/
-- QUOTE:
example : a + b = b + a := by
-- SOLUTIONS:
  exact add_comm a b
-- BOTH:
-- QUOTE.
`

const badSource = `example : True := trivial
-- QUOTE.
`

// writeSection creates sourceDir/chapter/section.lean with the given content
// and backdates it so freshly written outputs always count as up to date.
func writeSection(t *testing.T, sourceDir, chapter, section, content string) string {
	t.Helper()
	dir := filepath.Join(sourceDir, chapter)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, section+".lean")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) types.BuildConfig {
	t.Helper()
	tmp := t.TempDir()
	return types.BuildConfig{
		SourceDir: filepath.Join(tmp, "src"),
		OutputDir: filepath.Join(tmp, "out"),
	}
}

func TestBuildSection(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S01_Calculating", goodSource)

	var log bytes.Buffer
	status, err := BuildSection("C02_Basics", "S01_Calculating", cfg, &log)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.BuildDone {
		t.Fatalf("status = %q, want %q", status, types.BuildDone)
	}
	if !strings.Contains(log.String(), "built:") {
		t.Errorf("log %q should contain built:", log.String())
	}

	solved, err := os.ReadFile(filepath.Join(cfg.OutputDir, "solutions", "C02_Basics", "S01_Calculating.lean"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(solved), "exact add_comm a b") {
		t.Errorf("solved output missing the solution:\n%s", solved)
	}
	if strings.Contains(string(solved), "QUOTE") {
		t.Errorf("solved output should not contain markers:\n%s", solved)
	}

	exercise, err := os.ReadFile(filepath.Join(cfg.OutputDir, "exercises", "C02_Basics", "S01_Calculating.lean"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(exercise), "add_comm") {
		t.Errorf("exercise output should not contain the solution:\n%s", exercise)
	}
	if !strings.Contains(string(exercise), extract.DefaultPlaceholder) {
		t.Errorf("exercise output should contain the placeholder:\n%s", exercise)
	}
}

func TestBuildSectionSkipAndForce(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S01_Calculating", goodSource)

	var log bytes.Buffer
	if _, err := BuildSection("C02_Basics", "S01_Calculating", cfg, &log); err != nil {
		t.Fatal(err)
	}

	// Second run: outputs are newer than the backdated source.
	log.Reset()
	status, err := BuildSection("C02_Basics", "S01_Calculating", cfg, &log)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.BuildSkipped {
		t.Fatalf("status = %q, want %q", status, types.BuildSkipped)
	}
	if !strings.Contains(log.String(), "skipped:") {
		t.Errorf("log %q should contain skipped:", log.String())
	}

	// Force rebuilds regardless.
	cfg.Force = true
	log.Reset()
	status, err = BuildSection("C02_Basics", "S01_Calculating", cfg, &log)
	if err != nil {
		t.Fatal(err)
	}
	if status != types.BuildDone {
		t.Fatalf("forced status = %q, want %q", status, types.BuildDone)
	}
}

func TestBuildSectionStructuralError(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S03_Broken", badSource)

	var log bytes.Buffer
	status, err := BuildSection("C02_Basics", "S03_Broken", cfg, &log)
	if status != types.BuildFailed {
		t.Fatalf("status = %q, want %q", status, types.BuildFailed)
	}

	var serr *extract.StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("want StructuralError, got %T: %v", err, err)
	}
	if serr.Line != 2 {
		t.Errorf("error line = %d, want 2", serr.Line)
	}

	// No partial output.
	for _, sub := range []string{"solutions", "exercises"} {
		path := filepath.Join(cfg.OutputDir, sub, "C02_Basics", "S03_Broken.lean")
		if _, err := os.Stat(path); err == nil {
			t.Errorf("%s should not exist after a structural error", path)
		}
	}
}

func TestBuildBook(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S01_Calculating", goodSource)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S02_Broken", badSource)
	writeSection(t, cfg.SourceDir, "C03_Logic", "S01_Implication", goodSource)

	book := &types.Book{Chapters: []types.Chapter{
		{ID: "C02_Basics", Sections: []types.Section{{ID: "S01_Calculating"}, {ID: "S02_Broken"}}},
		{ID: "C03_Logic", Sections: []types.Section{{ID: "S01_Implication"}}},
	}}

	// Fail-fast: stops at the broken section, C03 never builds.
	var log bytes.Buffer
	result, err := BuildBook(book, cfg, &log)
	if err == nil {
		t.Fatal("expected an error from the broken section")
	}
	if result.Built != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 built / 1 failed", result)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, "solutions", "C03_Logic", "S01_Implication.lean")); statErr == nil {
		t.Error("fail-fast build should not have reached C03_Logic")
	}

	// Keep-going: everything is processed and the summary is printed.
	cfg.KeepGoing = true
	cfg.Force = true
	log.Reset()
	result, err = BuildBook(book, cfg, &log)
	if err == nil {
		t.Fatal("keep-going build with failures should still return an error")
	}
	if result.Built != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 built / 1 failed", result)
	}
	if !result.HasFailures() || result.Total() != 3 {
		t.Errorf("unexpected summary: %+v", result)
	}
	if !strings.Contains(log.String(), "Build summary:") {
		t.Error("keep-going output should contain the summary line")
	}
}

func TestBuildBookOnlyFilter(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S01_Calculating", goodSource)
	writeSection(t, cfg.SourceDir, "C03_Logic", "S01_Implication", goodSource)

	book := &types.Book{Chapters: []types.Chapter{
		{ID: "C02_Basics", Sections: []types.Section{{ID: "S01_Calculating"}}},
		{ID: "C03_Logic", Sections: []types.Section{{ID: "S01_Implication"}}},
	}}

	cfg.Only = "C03_*/S01*"
	var log bytes.Buffer
	result, err := BuildBook(book, cfg, &log)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total() != 1 || result.Built != 1 {
		t.Errorf("result = %+v, want exactly one section built", result)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, "solutions", "C02_Basics", "S01_Calculating.lean")); statErr == nil {
		t.Error("filtered-out section should not have been built")
	}

	cfg.Only = "[invalid"
	if _, err := BuildBook(book, cfg, &log); err == nil {
		t.Error("invalid glob pattern should be an error")
	}
}

func TestCheck(t *testing.T) {
	cfg := testConfig(t)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S01_Calculating", goodSource)
	writeSection(t, cfg.SourceDir, "C02_Basics", "S02_Broken", badSource)

	book := &types.Book{Chapters: []types.Chapter{
		{ID: "C02_Basics", Sections: []types.Section{{ID: "S01_Calculating"}, {ID: "S02_Broken"}, {ID: "S03_Missing"}}},
	}}

	var log bytes.Buffer
	failed := Check(book, cfg, &log)
	if failed != 2 {
		t.Fatalf("failed = %d, want 2 (one structural, one missing file)", failed)
	}

	out := log.String()
	if !strings.Contains(out, "ok:    C02_Basics/S01_Calculating") {
		t.Errorf("output should mark the good section ok:\n%s", out)
	}
	if !strings.Contains(out, "S02_Broken.lean:2:") {
		t.Errorf("output should carry the line-qualified structural error:\n%s", out)
	}
	if !strings.Contains(out, "3 section(s) checked, 2 with errors") {
		t.Errorf("output should end with the check summary:\n%s", out)
	}
}
