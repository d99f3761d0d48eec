// Package httperr classifies AI provider HTTP failures into the
// domain error taxonomy. All provider adapters share this mapping so
// the retry loop treats every provider the same way.
package httperr

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// Classify wraps a failed HTTP response into the domain taxonomy.
// 401 and 403 mark rejected credentials and are never retried. 429
// and all 5xx statuses are transient: callers retry them with
// backoff. Any other status passes through unclassified.
func Classify(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	default:
		return err
	}
}

// Transport wraps a transport-level failure, one with no HTTP status:
// timeouts, refused connections, DNS errors. These are transient, the
// provider may be reachable again by the next attempt.
func Transport(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransient, err)
}
