package port

import "context"

type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
