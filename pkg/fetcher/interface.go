// Package fetcher retrieves the raw markup of a web page with a single GET
// and classifies every way that can go wrong.
package fetcher

import (
	"contactfinder/pkg/domain"
	"context"
)

// Fetcher retrieves the content behind a URL. Failures are always *Error.
//
//go:generate mockgen -package mockfetcher -source=interface.go -destination=mock/mockfetcher.go *
type Fetcher interface {
	Fetch(ctx context.Context, url string) (domain.FetchedContent, error)
}
