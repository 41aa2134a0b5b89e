package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedrock-up/internal/manifest"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

const snapshot = `{"result":{"links":[{"downloadType":"serverBedrockLinux","downloadUrl":"https://x/v1.zip"}]}}`

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	doc, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, doc)
}

// TestFileRepository_Corrupt verifies Load reports unparsable snapshots.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	doc, err := NewFileRepository(file).Load(context.Background())
	require.ErrorIs(t, err, manifest.ErrInvalidDocument)
	require.Nil(t, doc)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save creates directories and Load reads the same document.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := NewFileRepository("~/.bedrock-up/links.json", WithPathExpander(common.HomeRelativeExpander(home)))

	doc, err := manifest.Parse([]byte(snapshot))
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), doc))

	written, err := os.ReadFile(filepath.Join(home, ".bedrock-up", "links.json"))
	require.NoError(t, err)
	require.JSONEq(t, snapshot, string(written))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)

	url, ok := manifest.ResolveDownloadURL(loaded, stringer("serverBedrockLinux"))
	require.True(t, ok)
	require.Equal(t, "https://x/v1.zip", url)
}

// TestFileRepository_SaveAbsent refuses to overwrite the snapshot with nothing.
func TestFileRepository_SaveAbsent(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "links.json")
	require.Error(t, NewFileRepository(file).Save(context.Background(), nil))

	_, err := os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_SaveFailsOnBlockedDirectory reports a file where a directory is needed.
func TestFileRepository_SaveFailsOnBlockedDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	doc, err := manifest.Parse([]byte(snapshot))
	require.NoError(t, err)

	err = NewFileRepository(filepath.Join(blocker, "links.json")).Save(context.Background(), doc)
	require.Error(t, err)
}

// TestNewFileRepository_DefaultPath falls back to the per-user location.
func TestNewFileRepository_DefaultPath(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	repo := NewFileRepository("", WithPathExpander(common.HomeRelativeExpander(home)))

	path, err := repo.Path()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".bedrock-up", "links.json"), path)
}

type stringer string

func (s stringer) String() string {
	return string(s)
}
