package updater

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/manifest"
	"github.com/oshokin/bedrock-up/internal/repository/cache"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

// CheckResult describes the outcome of comparing the remote and cached catalogs.
type CheckResult struct {
	// RemoteAvailable is false when the remote catalog could not be fetched.
	RemoteAvailable bool
	// RemoteVersion is the download URL found in the remote catalog.
	RemoteVersion string
	// CachedVersion is the download URL of the last applied update, or NoCachedVersion.
	CachedVersion string
	// UpdateNeeded is true when the versions differ or the run is forced.
	UpdateNeeded bool
}

// runner holds the collaborators of a single update execution.
// It is unexported, call Run(ctx, Options) or Check(ctx, Options) from callers.
type runner struct {
	opts          *Options
	exclusions    release.ExclusionSet
	source        *manifestSource
	cache         cache.Repository
	fetcher       *fetcher
	applier       *applier
	findProcesses processFinder
	killProcesses processKiller
}

// decision is the state carried from the version comparison to the update.
type decision struct {
	remote *manifest.Document
	result CheckResult
}

// Run executes the update lifecycle and is the public entry point for the CLI.
// Soft failures (catalog or archive unavailable) end the run without an error.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bedrock-up")

	up, err := newRunner(opts)
	if err != nil {
		return err
	}

	ctx = logger.WithFields(ctx, map[string]any{
		"download_type": up.opts.DownloadType.String(),
		"server_path":   up.opts.ServerPath,
	})

	cachePath, err := up.opts.ExpandPath(up.opts.CachePath)
	if err != nil {
		return err
	}

	unlock, err := acquireLock(ctx, up.opts.TempDir, cachePath)
	if err != nil {
		return err
	}

	defer unlock()

	if err = up.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return err
	}

	return nil
}

// Check compares the remote and cached catalogs without downloading anything.
func Check(ctx context.Context, opts *Options) (*CheckResult, error) {
	ctx = logger.WithName(ctx, "bedrock-up")

	up, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "download_type", up.opts.DownloadType.String())

	d, err := up.decide(ctx)
	if err != nil {
		return nil, err
	}

	return &d.result, nil
}

// newRunner validates options and wires the default collaborators.
func newRunner(opts *Options) (*runner, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	return &runner{
		opts:       resolved,
		exclusions: release.NewExclusionSet(resolved.Exclude),
		source: &manifestSource{
			url:           resolved.ManifestURL,
			client:        resolved.HTTPClient,
			retries:       resolved.Retries,
			retryInterval: resolved.RetryInterval,
		},
		cache: cache.NewFileRepository(resolved.CachePath, cache.WithPathExpander(resolved.ExpandPath)),
		fetcher: &fetcher{
			client:  resolved.HTTPClient,
			tempDir: resolved.TempDir,
		},
		applier: &applier{
			expand:     resolved.ExpandPath,
			executable: resolved.DownloadType.ServerExecutable(),
		},
		findProcesses: common.FindProcesses,
		killProcesses: common.KillProcesses,
	}, nil
}

// Run executes the workflow for this runner instance:
// 1) Fetch the remote catalog and resolve both versions.
// 2) Compare them.
// 3) Download, apply and clean up the archive if needed.
// 4) Cache the applied catalog.
func (u *runner) Run(ctx context.Context) error {
	d, err := u.decide(ctx)
	if err != nil {
		return err
	}

	if !d.result.RemoteAvailable {
		return nil
	}

	if !d.result.UpdateNeeded {
		logger.Infof(ctx, "You are already on the latest version: %s", d.result.CachedVersion)
		return nil
	}

	logger.Infof(ctx, "New version available: %s", d.result.RemoteVersion)

	return u.update(ctx, d)
}

// decide fetches both catalogs and compares the resolved versions.
func (u *runner) decide(ctx context.Context) (*decision, error) {
	remote := u.source.Fetch(ctx)
	if remote.IsAbsent() {
		return &decision{}, nil
	}

	remoteVersion, ok := manifest.ResolveDownloadURL(remote, u.opts.DownloadType)
	if !ok {
		return nil, fmt.Errorf("%s: %w", u.opts.DownloadType, ErrDownloadLinkNotFound)
	}

	cachedVersion := u.cachedVersion(ctx)

	logger.Infof(ctx, "Current version in cache: %s", cachedVersion)
	logger.Infof(ctx, "Version available on the web: %s", remoteVersion)

	return &decision{
		remote: remote,
		result: CheckResult{
			RemoteAvailable: true,
			RemoteVersion:   remoteVersion,
			CachedVersion:   cachedVersion,
			UpdateNeeded:    u.opts.Force || remoteVersion != cachedVersion,
		},
	}, nil
}

// cachedVersion resolves the download URL from the cached catalog.
// Any cache problem means no version is known.
func (u *runner) cachedVersion(ctx context.Context) string {
	if path, err := u.opts.ExpandPath(u.opts.CachePath); err == nil {
		logger.Infof(ctx, "Reading cache from: %s", path)
	}

	cached, err := u.cache.Load(ctx)

	switch {
	case errors.Is(err, cache.ErrNotFound):
		logger.Debug(ctx, "No cached catalog found")
	case err != nil:
		logger.Errorf(ctx, "Failed to read or parse cache file: %v", err)
	}

	version, ok := manifest.ResolveDownloadURL(cached, u.opts.DownloadType)
	if !ok {
		return NoCachedVersion
	}

	return version
}

// update downloads and applies the archive, then caches the applied catalog.
func (u *runner) update(ctx context.Context, d *decision) error {
	archivePath, ok := u.fetcher.Fetch(ctx, d.result.RemoteVersion)
	if !ok {
		return nil
	}

	defer u.removeArchive(ctx, archivePath)

	if err := u.handleRunningServer(ctx); err != nil {
		return err
	}

	if err := u.applier.Apply(ctx, u.opts.ServerPath, archivePath, u.exclusions); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	if err := u.cache.Save(ctx, d.remote); err != nil {
		// The tree is already updated; the next run simply applies it again.
		logger.Errorf(ctx, "Failed to update cache: %v", err)
	}

	logger.Info(ctx, "Update applied successfully.")

	return nil
}

// removeArchive deletes the downloaded archive.
func (u *runner) removeArchive(ctx context.Context, archivePath string) {
	if err := os.Remove(archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Failed to remove %s: %v", archivePath, err)
	}
}
