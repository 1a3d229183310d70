package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// WebResolver resolves did:web identifiers by fetching did.json over HTTPS.
type WebResolver struct {
	client *http.Client
	scheme string
}

// NewWebResolver creates a did:web resolver. A nil client selects the default instrumented client.
func NewWebResolver(client *http.Client) *WebResolver {
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &WebResolver{client: client, scheme: "https"}
}

// Method returns "web".
func (r *WebResolver) Method() string {
	return "web"
}

// DocumentURL maps a did:web identifier to the location of its DID document.
func (r *WebResolver) DocumentURL(did string) (string, error) {
	if !strings.HasPrefix(did, "did:web:") {
		return "", fmt.Errorf("not a did:web identifier: %s", did)
	}

	segments := strings.Split(strings.TrimPrefix(did, "did:web:"), ":")
	host, err := url.PathUnescape(segments[0])
	if err != nil || host == "" {
		return "", fmt.Errorf("invalid did:web host in %s", did)
	}

	path := "/.well-known"
	if len(segments) > 1 {
		path = "/" + strings.Join(segments[1:], "/")
	}
	return r.scheme + "://" + host + path + "/did.json", nil
}

// Resolve fetches the did:web document.
func (r *WebResolver) Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error) {
	docURL, err := r.DocumentURL(did)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build did:web request: %w", err)
	}

	doc, err := fetchDocument(r.client, req)
	if err != nil {
		return nil, err
	}
	if doc.GetString("id") != did {
		return nil, fmt.Errorf("did:web document id %q does not match %q", doc.GetString("id"), did)
	}
	return doc, nil
}
