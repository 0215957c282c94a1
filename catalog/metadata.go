package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tokenbay/tokenbay/types"
)

// MetadataFetcher resolves a token URI to a metadata document.
type MetadataFetcher interface {
	FetchDocument(ctx context.Context, uri string) (*types.Metadata, error)
}

// HTTPFetcher fetches metadata documents over plain HTTP(S). A document
// that is not valid JSON of the expected shape is a fetch failure.
type HTTPFetcher struct {
	client   *http.Client
	validate *validator.Validate
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:   client,
		validate: validator.New(),
	}
}

func (f *HTTPFetcher) FetchDocument(ctx context.Context, uri string) (*types.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch metadata: unexpected status %d", resp.StatusCode)
	}

	var meta types.Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := f.validate.Struct(&meta); err != nil {
		return nil, fmt.Errorf("metadata document has unexpected shape: %w", err)
	}
	return &meta, nil
}
