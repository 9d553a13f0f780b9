package fetcher

import (
	"context"

	"bustedscan/internal/types"
)

// Fetcher retrieves listing pages. Implementations block until the
// response arrives or the context deadline expires; there is no
// automatic retry.
type Fetcher interface {
	// Fetch retrieves a single URL. Network failures and non-2xx
	// statuses return a *types.FetchError.
	Fetch(ctx context.Context, url string) (*types.Page, error)

	// Close releases resources.
	Close() error
}
