package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

// fetcher streams an update archive to a temporary file.
type fetcher struct {
	// client performs the download.
	client *http.Client
	// tempDir is where the archive is stored.
	tempDir string
}

// Fetch downloads downloadURL into the temporary directory.
// It returns false, after logging the cause, when nothing usable was downloaded.
func (f *fetcher) Fetch(ctx context.Context, downloadURL string) (string, bool) {
	response, err := common.Get(ctx, f.client, downloadURL)
	if response != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}

	if err != nil {
		if response != nil {
			logger.Errorf(ctx, "Failed to download update: %s", response.Status)
		} else {
			logger.Errorf(ctx, "Failed to fetch update zip: %v", err)
		}

		return "", false
	}

	archivePath := filepath.Join(f.tempDir, archiveFileName(downloadURL))

	written, err := writeArchive(archivePath, response.Body)
	if err != nil {
		logger.Errorf(ctx, "Failed to save update zip: %v", err)
		return "", false
	}

	logger.InfoKV(ctx, "Downloaded update to: "+archivePath, "size", humanize.Bytes(uint64(written)))

	return archivePath, true
}

// writeArchive copies body into path and removes the partial file on failure.
func writeArchive(path string, body io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(file, body)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return written, fmt.Errorf("write %s: %w", path, err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(path)

		return written, fmt.Errorf("close %s: %w", path, err)
	}

	return written, nil
}

// archiveFileName takes the text after the final '/' of the URL path.
// Query and fragment are ignored; unusable names fall back to DefaultArchiveName.
func archiveFileName(downloadURL string) string {
	name := downloadURL

	if parsed, err := url.Parse(downloadURL); err == nil {
		name = parsed.Path
	}

	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	switch {
	case name == "", name == ".", name == "..":
		return DefaultArchiveName
	case strings.ContainsAny(name, `/\:`) || strings.ContainsRune(name, 0):
		return DefaultArchiveName
	default:
		return name
	}
}
