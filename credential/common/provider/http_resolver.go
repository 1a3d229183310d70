package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// HTTPResolver resolves DIDs against a universal-resolver style endpoint: GET <baseURL>/<did>.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// HTTPResolverOpt configures an HTTPResolver.
type HTTPResolverOpt func(*HTTPResolver)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(client *http.Client) HTTPResolverOpt {
	return func(r *HTTPResolver) {
		r.client = client
	}
}

// NewHTTPResolver creates a resolver for the given base URL.
func NewHTTPResolver(baseURL string, opts ...HTTPResolverOpt) *HTTPResolver {
	r := &HTTPResolver{
		baseURL: baseURL,
		client:  NewHTTPClient(DefaultTimeout),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the DID document. Both bare documents and DID resolution results
// ({"didDocument": ...}) are accepted.
func (r *HTTPResolver) Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error) {
	// Construct and encode API URL
	apiURL := r.baseURL + "/" + url.PathEscape(did)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build DID resolver request: %w", err)
	}
	req.Header.Set("Accept", "application/did+ld+json, application/ld+json, application/json")

	return fetchDocument(r.client, req)
}

func fetchDocument(client *http.Client, req *http.Request) (jsonmap.JSONMap, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request to DID resolver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.String())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DID resolver API returned non-200 status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from DID resolver: %w", err)
	}

	var doc jsonmap.JSONMap
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DID document JSON: %w", err)
	}

	if inner, ok := jsonmap.AsObject(doc["didDocument"]); ok {
		return inner, nil
	}
	if doc.GetString("id") == "" {
		return nil, fmt.Errorf("DID resolver returned a document without id")
	}
	return doc, nil
}
