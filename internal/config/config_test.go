package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/repository/cache"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing download type.
	settings := &Config{ServerPath: "/srv/bedrock"}
	require.ErrorIs(t, Validate(settings), errDownloadTypeRequired)

	// Unknown download type.
	settings = &Config{DownloadType: "xbox", ServerPath: "/srv/bedrock"}
	require.ErrorIs(t, Validate(settings), release.ErrUnknownDownloadType)

	// Missing server path.
	settings = &Config{DownloadType: "linux"}
	require.ErrorIs(t, Validate(settings), errServerPathRequired)

	// Bad manifest URL.
	settings = &Config{DownloadType: "linux", ServerPath: "/srv/bedrock", ManifestURL: "not a url"}
	require.Error(t, Validate(settings))

	// Retries out of range.
	settings = &Config{DownloadType: "linux", ServerPath: "/srv/bedrock", Retries: 11}
	require.ErrorIs(t, Validate(settings), errInvalidRetries)

	// Negative timeout.
	settings = &Config{DownloadType: "linux", ServerPath: "/srv/bedrock", Timeout: -time.Second}
	require.ErrorIs(t, Validate(settings), errInvalidTimeout)

	// Unknown log level.
	settings = &Config{DownloadType: "linux", ServerPath: "/srv/bedrock", LogLevel: "loud"}
	require.ErrorIs(t, Validate(settings), errInvalidLogLevel)
}

// TestValidate_FillsDefaults fills optional fields and keeps an explicit empty exclusion list.
func TestValidate_FillsDefaults(t *testing.T) {
	t.Parallel()

	settings := &Config{DownloadType: "preview-windows", ServerPath: "/srv/bedrock"}
	require.NoError(t, Validate(settings))
	require.Equal(t, cache.DefaultPath, settings.CachePath)
	require.Equal(t, DefaultManifestURL, settings.ManifestURL)
	require.Equal(t, release.DefaultExclusions, settings.Exclude)
	require.Equal(t, DefaultLogLevel, settings.LogLevel)

	settings = &Config{DownloadType: "linux", ServerPath: "/srv/bedrock", Exclude: []string{}}
	require.NoError(t, Validate(settings))
	require.Empty(t, settings.Exclude)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		DownloadType: "linux",
		ServerPath:   "/srv/bedrock",
		Exclude:      []string{"server.properties", "worlds"},
		Timeout:      30 * time.Second,
		Retries:      2,
		StopServer:   true,
		Force:        true,
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.DownloadType, loaded.DownloadType)
	require.Equal(t, settings.ServerPath, loaded.ServerPath)
	require.Equal(t, settings.Exclude, loaded.Exclude)
	require.Equal(t, settings.Timeout, loaded.Timeout)
	require.Equal(t, settings.Retries, loaded.Retries)
	require.True(t, loaded.StopServer)
	require.False(t, loaded.Force)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_KeepsDefaultsForMissingKeys leaves unspecified settings at their defaults.
func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download_type: linux\nserver_path: /srv/bedrock\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultManifestURL, loaded.ManifestURL)
	require.Equal(t, cache.DefaultPath, loaded.CachePath)
	require.Equal(t, release.DefaultExclusions, loaded.Exclude)
	require.NoError(t, Validate(loaded))
}

// TestLoad_Errors covers a missing file and malformed YAML.
func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exclude: [unterminated"), 0o600))

	_, err = Load(path)
	require.Error(t, err)
}
