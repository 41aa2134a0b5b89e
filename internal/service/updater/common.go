package updater

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oshokin/bedrock-up/internal/config"
	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/repository/cache"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

const (
	// NoCachedVersion is the version token used when no cache is available.
	NoCachedVersion = "0.0.0"

	// DefaultArchiveName is used when the download URL has no usable file name.
	DefaultArchiveName = "update.zip"

	// lockPrefix and lockSuffix surround the cache path digest in the run lock name.
	lockPrefix = "bedrock-up-"
	lockSuffix = ".lock"

	// defaultFileMode is applied to extracted files that carry no permission bits.
	defaultFileMode os.FileMode = 0o644

	// defaultDirMode is applied to created directories that carry no permission bits.
	defaultDirMode os.FileMode = 0o755

	// creatorUnix and creatorMacOSX are the "version made by" hosts whose
	// archives carry Unix permission bits.
	creatorUnix   = 3
	creatorMacOSX = 19

	// defaultRetryInterval is the first pause between catalog retries.
	defaultRetryInterval = time.Second
)

var (
	// ErrUpdaterAlreadyRunning is returned when another run holds the lock.
	ErrUpdaterAlreadyRunning = errors.New("the updater is already running")
	// ErrDownloadLinkNotFound is returned when the catalog has no link for the download type.
	ErrDownloadLinkNotFound = errors.New("download link not found in catalog")
	// ErrInvalidArchive is returned when the downloaded file is not a readable zip archive.
	ErrInvalidArchive = errors.New("invalid update archive")

	errOptionsNotSet      = errors.New("options are not set")
	errServerPathRequired = errors.New("server path must be provided")
	errTargetNotDirectory = errors.New("server path is not a directory")
)

// Options are inputs accepted by the updater entry points.
type Options struct {
	// DownloadType is the build tracked by this run.
	DownloadType release.DownloadType
	// Force applies the update even if the cached version matches.
	Force bool
	// ServerPath is the installation directory the archive is applied to.
	ServerPath string
	// CachePath is the catalog snapshot of the last applied update.
	CachePath string
	// Exclude lists relative paths preserved when they already exist.
	Exclude []string
	// ManifestURL is the download catalog endpoint.
	ManifestURL string
	// Timeout bounds every HTTP request. Zero disables the timeout.
	Timeout time.Duration
	// Retries is how many times a failed catalog request is retried.
	Retries int
	// StopServer kills a running dedicated server before applying.
	StopServer bool

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	// TempDir overrides the directory the archive is downloaded to.
	TempDir string
	// ExpandPath overrides home directory expansion.
	ExpandPath common.PathExpander
	// RetryInterval overrides the first pause between catalog retries.
	RetryInterval time.Duration
}

// OptionsFromConfig converts validated settings into updater options.
func OptionsFromConfig(cfg *config.Config) (*Options, error) {
	downloadType, err := release.ParseDownloadType(cfg.DownloadType)
	if err != nil {
		return nil, err
	}

	return &Options{
		DownloadType: downloadType,
		Force:        cfg.Force,
		ServerPath:   cfg.ServerPath,
		CachePath:    cfg.CachePath,
		Exclude:      cfg.Exclude,
		ManifestURL:  cfg.ManifestURL,
		Timeout:      cfg.Timeout,
		Retries:      cfg.Retries,
		StopServer:   cfg.StopServer,
	}, nil
}

// withDefaults returns a copy of opts with every injectable dependency filled in.
func (o *Options) withDefaults() (*Options, error) {
	if o == nil {
		return nil, errOptionsNotSet
	}

	if !o.DownloadType.IsValid() {
		return nil, release.ErrUnknownDownloadType
	}

	if strings.TrimSpace(o.ServerPath) == "" {
		return nil, errServerPathRequired
	}

	opts := *o

	if opts.CachePath == "" {
		opts.CachePath = cache.DefaultPath
	}

	if opts.ManifestURL == "" {
		opts.ManifestURL = config.DefaultManifestURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = common.NewHTTPClient(opts.Timeout)
	}

	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}

	if opts.ExpandPath == nil {
		opts.ExpandPath = common.ExpandPath
	}

	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}

	return &opts, nil
}
