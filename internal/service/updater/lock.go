package updater

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strconv"

	"github.com/nightlyone/lockfile"

	"github.com/oshokin/bedrock-up/internal/logger"
)

// lockFilePath names the run lock in tempDir after the absolute cache path,
// so runs sharing a cache share a lock and nothing is created next to the cache.
func lockFilePath(tempDir, cachePath string) (string, error) {
	absoluteCache, err := filepath.Abs(cachePath)
	if err != nil {
		return "", err
	}

	digest := fnv.New64a()
	_, _ = digest.Write([]byte(absoluteCache))

	return filepath.Abs(filepath.Join(tempDir, lockPrefix+strconv.FormatUint(digest.Sum64(), 16)+lockSuffix))
}

// acquireLock takes the run lock for cachePath.
// A busy lock aborts the run; any other lock failure only warns.
// The returned function releases the lock and is never nil.
func acquireLock(ctx context.Context, tempDir, cachePath string) (func(), error) {
	noop := func() {}

	lockPath, err := lockFilePath(tempDir, cachePath)
	if err != nil {
		logger.Warnf(ctx, "Proceeding without a run lock: %v", err)
		return noop, nil
	}

	lock, err := lockfile.New(lockPath)
	if err != nil {
		logger.Warnf(ctx, "Proceeding without a run lock: %v", err)
		return noop, nil
	}

	if err = lock.TryLock(); err != nil {
		if errors.Is(err, lockfile.ErrBusy) {
			return noop, fmt.Errorf("%s: %w", lockPath, ErrUpdaterAlreadyRunning)
		}

		logger.Warnf(ctx, "Proceeding without a run lock: %v", err)

		return noop, nil
	}

	logger.Debugf(ctx, "Acquired run lock %s", lockPath)

	return func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warnf(ctx, "Failed to release run lock %s: %v", lockPath, unlockErr)
		}
	}, nil
}
