package upstream

import (
	"context"

	"github.com/rohmanhakim/seraphim/pkg/failure"
)

// Client is the fetch collaborator used by the catalog. Implementations
// distinguish a missing document (IsNotFound) from everything else.
type Client interface {
	FetchDirectoryListing(ctx context.Context) ([]RawEntry, failure.ClassifiedError)
	FetchDocument(ctx context.Context, name string) (string, failure.ClassifiedError)
}
