// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DenisGorbachev/mathematics-in-lean-source/pkg/types"
)

func writeSource(t *testing.T, root, chapter, section string) {
	t.Helper()
	dir := filepath.Join(root, chapter)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, section+sourceExt)
	require.NoError(t, os.WriteFile(path, []byte("example : True := trivial\n"), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "C03_Logic", "S02_The_Existential_Quantifier")
	writeSource(t, root, "C03_Logic", "S01_Implication")
	writeSource(t, root, "C02_Basics", "S01_Calculating")

	// Noise that discovery must ignore.
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "C99_Empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "C02_Basics", "notes.txt"), []byte("x"), 0o644))

	book, err := Discover(root)
	require.NoError(t, err)

	require.Len(t, book.Chapters, 2)
	assert.Equal(t, "C02_Basics", book.Chapters[0].ID)
	assert.Equal(t, "C03_Logic", book.Chapters[1].ID)

	// Sections come back in lexical order.
	var ids []string
	for _, s := range book.Chapters[1].Sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"S01_Implication", "S02_The_Existential_Quantifier"}, ids)

	assert.Equal(t, 3, book.SectionCount())
}

func TestLoadPrefersManifestFile(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "C02_Basics", "S01_Calculating")
	writeSource(t, root, "C02_Basics", "S02_Proving_Identities")

	// The manifest lists only one section, in its own order and with titles.
	manifest := `title: Mathematics in Lean
chapters:
  - id: C02_Basics
    title: Basics
    sections:
      - id: S02_Proving_Identities
        title: Proving Identities
      - id: S01_Calculating
        title: Calculating
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(manifest), 0o644))

	book, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "Mathematics in Lean", book.Title)
	require.Len(t, book.Chapters, 1)
	require.Len(t, book.Chapters[0].Sections, 2)
	// Manifest order wins over lexical order.
	assert.Equal(t, "S02_Proving_Identities", book.Chapters[0].Sections[0].ID)
	assert.Equal(t, "Proving Identities", book.Chapters[0].Sections[0].Title)
}

func TestLoadFallsBackToDiscovery(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "C02_Basics", "S01_Calculating")

	book, err := Load(root)
	require.NoError(t, err)
	require.Len(t, book.Chapters, 1)
	assert.Equal(t, "C02_Basics", book.Chapters[0].ID)
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "C02_Basics", "S01_Calculating")

	tests := []struct {
		name   string
		book   *types.Book
		errMsg string
	}{
		{
			name: "valid",
			book: &types.Book{Chapters: []types.Chapter{
				{ID: "C02_Basics", Sections: []types.Section{{ID: "S01_Calculating"}}},
			}},
		},
		{
			name: "missing source file",
			book: &types.Book{Chapters: []types.Chapter{
				{ID: "C02_Basics", Sections: []types.Section{{ID: "S09_Missing"}}},
			}},
			errMsg: "source file missing",
		},
		{
			name: "duplicate section id",
			book: &types.Book{Chapters: []types.Chapter{
				{ID: "C02_Basics", Sections: []types.Section{
					{ID: "S01_Calculating"}, {ID: "S01_Calculating"},
				}},
			}},
			errMsg: "duplicate section id",
		},
		{
			name: "duplicate chapter id",
			book: &types.Book{Chapters: []types.Chapter{
				{ID: "C02_Basics"}, {ID: "C02_Basics"},
			}},
			errMsg: "duplicate chapter id",
		},
		{
			name:   "empty chapter id",
			book:   &types.Book{Chapters: []types.Chapter{{ID: ""}}},
			errMsg: "empty id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.book, root)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSourcePath(t *testing.T) {
	got := SourcePath("src", "C04_Sets", "S01_Sets")
	assert.Equal(t, filepath.Join("src", "C04_Sets", "S01_Sets.lean"), got)
}
