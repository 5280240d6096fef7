package domain

import "context"

// Publisher receives the output of the ingestion pipeline. Delivery is
// fire-and-forget: an error is logged by the caller and never retried.
type Publisher interface {
	PublishStatus(ctx context.Context, status string) error
	PublishSnapshot(ctx context.Context, snap MarketSnapshot) error
}
