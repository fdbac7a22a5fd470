package tools

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retry executes operation with exponential backoff. 5xx and transport
// failures are retried; everything else is permanent.
func retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}
