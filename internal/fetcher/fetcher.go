package fetcher

import "context"

// PageFetcher retrieves the text content of a product page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}
