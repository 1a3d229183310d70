package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// ErrNotFound is returned when a DID cannot be resolved because it does not exist.
var ErrNotFound = errors.New("DID not found")

// DefaultTimeout bounds every outgoing resolver request.
const DefaultTimeout = 10 * time.Second

// Resolver resolves a DID into its DID document. The returned document is owned by the caller.
// Implementations can be injected into the credential and document loading logic.
type Resolver interface {
	Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error)
}

// MethodResolver is a Resolver bound to a single DID method.
type MethodResolver interface {
	Resolver
	Method() string
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, did string) (jsonmap.JSONMap, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error) {
	return f(ctx, did)
}

// NewHTTPClient returns an instrumented HTTP client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// MethodOf returns the method name of a DID ("key" for "did:key:z6Mk...").
func MethodOf(did string) (string, error) {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) != 3 || !strings.EqualFold(parts[0], "did") || parts[1] == "" || parts[2] == "" {
		return "", errors.Errorf("invalid DID: %s", did)
	}
	return parts[1], nil
}
