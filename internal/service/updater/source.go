package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/manifest"
	"github.com/oshokin/bedrock-up/internal/service/common"
)

// manifestSource downloads the catalog from the remote endpoint.
type manifestSource struct {
	// url is the catalog endpoint.
	url string
	// client performs the requests.
	client *http.Client
	// retries is the number of extra attempts after a retryable failure.
	retries int
	// retryInterval is the first pause between attempts.
	retryInterval time.Duration
}

// Fetch returns the remote catalog, or nil when it cannot be fetched or parsed.
// Failures are logged and never fatal.
func (s *manifestSource) Fetch(ctx context.Context) *manifest.Document {
	logger.Info(ctx, "Fetching links from the web...")

	doc, err := s.fetch(ctx)
	if err != nil {
		logger.Errorf(ctx, "Failed to fetch links from %s: %v", s.url, err)
		return nil
	}

	if doc.IsAbsent() {
		logger.Errorf(ctx, "The catalog at %s is empty", s.url)
		return nil
	}

	return doc
}

// fetch performs the request with exponential backoff on transport and 5xx failures.
func (s *manifestSource) fetch(ctx context.Context) (*manifest.Document, error) {
	var doc *manifest.Document

	operation := func() error {
		response, err := common.Get(ctx, s.client, s.url)
		if response != nil {
			defer func() {
				_ = response.Body.Close()
			}()
		}

		if err != nil {
			if common.IsServerError(response, err) {
				logger.Warnf(ctx, "Fetching links failed: %v", err)
				return err
			}

			return backoff.Permanent(err)
		}

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		parsed, err := manifest.Parse(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("parse links: %w", err))
		}

		doc = parsed

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval

	retries := s.retries
	if retries < 0 {
		retries = 0
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx))
	if err != nil {
		return nil, err
	}

	return doc, nil
}
