package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/klauspost/compress/zip"

	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

// applier extracts an update archive over an installation directory.
// Extraction is not transactional: a failure leaves a mix of old and new files.
type applier struct {
	// expand resolves "~" in the target directory.
	expand common.PathExpander
	// executable is the relative path of the server binary, replaced via go-update.
	executable string
}

// Apply extracts every entry of archivePath into targetDir in archive order.
// Excluded entries that already exist on the target are left untouched.
// Entries escaping the target are skipped. Any other failure is returned.
func (a *applier) Apply(ctx context.Context, targetDir, archivePath string, exclusions release.ExclusionSet) error {
	logger.Infof(ctx, "Applying update from: %s", archivePath)
	logger.Infof(ctx, "Excluded files: %v", exclusions.Paths())

	root, err := a.resolveTarget(targetDir)
	if err != nil {
		return err
	}

	// Non-local names are handled per entry by enclosedName.
	reader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, archivePath, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, entry := range reader.File {
		if err = a.applyEntry(ctx, root, entry, exclusions); err != nil {
			return err
		}
	}

	return nil
}

// resolveTarget expands and canonicalizes the installation directory, which must exist.
func (a *applier) resolveTarget(targetDir string) (string, error) {
	expanded, err := a.expand(targetDir)
	if err != nil {
		return "", err
	}

	absolute, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve server path: %w", err)
	}

	canonical, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("resolve server path: %w", err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("stat server path: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", canonical, errTargetNotDirectory)
	}

	return canonical, nil
}

// applyEntry writes a single archive entry below root.
func (a *applier) applyEntry(ctx context.Context, root string, entry *zip.File, exclusions release.ExclusionSet) error {
	relativePath, ok := enclosedName(entry.Name)
	if !ok {
		logger.Warnf(ctx, "Skipping unsafe archive entry: %q", entry.Name)
		return nil
	}

	destination := filepath.Join(root, filepath.FromSlash(relativePath))

	existing, err := os.Lstat(destination)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", destination, err)
	}

	if release.ShouldSkip(relativePath, exclusions, existing != nil) {
		logger.Infof(ctx, "Skipping excluded file: %s", relativePath)
		return nil
	}

	if isDirectoryEntry(entry) {
		if err = os.MkdirAll(destination, entryMode(entry, nil, defaultDirMode)); err != nil {
			return fmt.Errorf("create directory %s: %w", destination, err)
		}

		return nil
	}

	if err = os.MkdirAll(filepath.Dir(destination), defaultDirMode); err != nil {
		return fmt.Errorf("create directory for %s: %w", destination, err)
	}

	logger.Debugf(ctx, "Extracting %s", relativePath)

	swap := a.executable != "" && relativePath == a.executable

	if err = writeEntry(entry, destination, existing, swap); err != nil {
		return fmt.Errorf("extract %s: %w", relativePath, err)
	}

	return nil
}

// writeEntry copies the entry contents to destination, overwriting it.
// With swap set an existing server binary is replaced via go-update so that a
// running executable can be updated on every platform. go-update buffers the
// whole entry, so every other file is streamed in place.
func writeEntry(entry *zip.File, destination string, existing fs.FileInfo, swap bool) error {
	contents, err := entry.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = contents.Close()
	}()

	mode := entryMode(entry, existing, defaultFileMode)

	if swap && existing != nil && existing.Mode().IsRegular() {
		options := goupdate.Options{
			TargetPath: destination,
			TargetMode: mode,
		}

		return goupdate.Apply(contents, options)
	}

	file, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(file, contents); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

// entryMode keeps the permission bits of an existing destination. New files
// take the archive bits only when the entry was stored with Unix attributes.
func entryMode(entry *zip.File, existing fs.FileInfo, fallback os.FileMode) os.FileMode {
	if existing != nil {
		if perm := existing.Mode().Perm(); perm != 0 {
			return perm
		}
	}

	switch entry.CreatorVersion >> 8 {
	case creatorUnix, creatorMacOSX:
		if perm := entry.Mode().Perm(); perm != 0 {
			return perm
		}
	}

	return fallback
}

// isDirectoryEntry reports whether the entry denotes a directory.
func isDirectoryEntry(entry *zip.File) bool {
	return strings.HasSuffix(entry.Name, "/") || entry.FileInfo().IsDir()
}

// enclosedName turns a stored entry name into a clean slash-separated path
// that stays inside the extraction root. Absolute names, drive letters, NUL
// bytes and ".." segments climbing above the root are rejected.
func enclosedName(name string) (string, bool) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", false
	}

	name = strings.ReplaceAll(name, `\`, "/")

	if strings.HasPrefix(name, "/") || hasDriveLetter(name) {
		return "", false
	}

	segments := make([]string, 0, strings.Count(name, "/")+1)

	for _, segment := range strings.Split(name, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", false
			}

			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	if len(segments) == 0 {
		return "", false
	}

	return strings.Join(segments, "/"), true
}

// hasDriveLetter reports whether name starts with a Windows volume like "C:".
func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}

	c := name[0]

	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
