package acquire

import (
	"context"
	"net/http"

	"github.com/revealboard/revealboard/pkg/types"
)

// Fetcher performs one acquisition attempt.
type Fetcher interface {
	Fetch(ctx context.Context) (types.ValuePair, error)
}

// ValuesFetcher reads the REST pull endpoint, {base}/api/values.
type ValuesFetcher struct {
	url    string
	client *http.Client
}

// NewValuesFetcher returns a Fetcher for url using client.
func NewValuesFetcher(url string, client *http.Client) *ValuesFetcher {
	return &ValuesFetcher{url: url, client: client}
}

// Fetch performs one uncached GET and decodes the JSON value pair.
func (f *ValuesFetcher) Fetch(ctx context.Context) (types.ValuePair, error) {
	body, err := get(ctx, f.client, f.url, "application/json")
	if err != nil {
		return types.ValuePair{}, err
	}
	pair, err := types.ParseValuePair(body)
	if err != nil {
		return types.ValuePair{}, &ParseError{Err: err}
	}
	return pair, nil
}
