package updater

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// archiveEntry is a single file or directory placed into a test archive.
type archiveEntry struct {
	name string
	body string
}

// buildArchive returns zip bytes with entries in the given order.
// Names ending with "/" become directories.
func buildArchive(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:   entry.name,
			Method: zip.Deflate,
		}

		if entry.name != "" && entry.name[len(entry.name)-1] == '/' {
			header.SetMode(fs.ModeDir | 0o755)
		} else {
			header.SetMode(0o644)
		}

		w, err := writer.CreateHeader(header)
		require.NoError(t, err)

		_, err = w.Write([]byte(entry.body))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// buildPlainArchive returns zip bytes whose entries carry no Unix attributes,
// as produced by tools that write MS-DOS headers.
func buildPlainArchive(t *testing.T, entries ...archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	for _, entry := range entries {
		w, err := writer.Create(entry.name)
		require.NoError(t, err)

		_, err = w.Write([]byte(entry.body))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// writeArchiveFile stores archive bytes in a temporary file.
func writeArchiveFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "update.zip")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// snapshotTree maps every relative path below root to its contents ("/" for directories).
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()

	tree := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		if d.IsDir() {
			tree[filepath.ToSlash(rel)] = "/"
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		tree[filepath.ToSlash(rel)] = string(data)

		return nil
	})
	require.NoError(t, err)

	return tree
}

// releaseServer serves a catalog and archives, counting requests per path.
type releaseServer struct {
	*httptest.Server

	catalog atomic.Value
	archive []byte
	hits    map[string]*atomic.Int32
}

// newReleaseServer starts a server whose catalog points the Linux build at /files/<name>.
func newReleaseServer(t *testing.T, archive []byte) *releaseServer {
	t.Helper()

	s := &releaseServer{
		archive: archive,
		hits: map[string]*atomic.Int32{
			"/links": new(atomic.Int32),
			"/files": new(atomic.Int32),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/links", func(w http.ResponseWriter, _ *http.Request) {
		s.hits["/links"].Add(1)

		body, _ := s.catalog.Load().(string)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, _ *http.Request) {
		s.hits["/files"].Add(1)

		_, _ = w.Write(s.archive)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	s.setVersion("v2")

	return s
}

// setVersion publishes a catalog whose Linux link ends with <version>.zip.
func (s *releaseServer) setVersion(version string) {
	s.catalog.Store(catalogFor(s.URL, version))
}

// versionURL is the download URL published for version.
func (s *releaseServer) versionURL(version string) string {
	return fmt.Sprintf("%s/files/%s.zip", s.URL, version)
}

// catalogFor renders a catalog with a Windows and a Linux link.
func catalogFor(base, version string) string {
	return fmt.Sprintf(`{"result":{"links":[`+
		`{"downloadType":"serverBedrockWindows","downloadUrl":"%[1]s/files/win-%[2]s.zip"},`+
		`{"downloadType":"serverBedrockLinux","downloadUrl":"%[1]s/files/%[2]s.zip"}]}}`, base, version)
}
