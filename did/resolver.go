package did

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
)

// BuildMultiMethodResolver builds a resolver over the locally supported methods in the list.
func BuildMultiMethodResolver(methods []string, client *http.Client) (*provider.MultiMethodResolver, error) {
	if len(methods) == 0 {
		return nil, errors.New("no methods provided")
	}
	resolvers := make([]provider.MethodResolver, 0, len(methods))
	for _, method := range methods {
		resolver, err := getKnownResolver(method, client)
		if err != nil {
			// not every method can be resolved locally
			logrus.WithError(err).Errorf("failed to create resolver for method %s", method)
			continue
		}
		resolvers = append(resolvers, resolver)
	}
	if len(resolvers) == 0 {
		return nil, errors.New("no resolvers created")
	}
	return provider.NewMultiMethodResolver(resolvers...)
}

func getKnownResolver(method string, client *http.Client) (provider.MethodResolver, error) {
	switch method {
	case KeyMethod:
		return NewKeyResolver(), nil
	case "web":
		return provider.NewWebResolver(client), nil
	}
	return nil, fmt.Errorf("unsupported method: %s", method)
}

// ServiceResolver resolves with the local method resolvers first and falls back to a universal
// resolver.
type ServiceResolver struct {
	local     provider.Resolver
	universal provider.Resolver
}

var _ provider.Resolver = (*ServiceResolver)(nil)

// NewServiceResolver creates a resolver for the local methods and, when universalResolverURL is
// set, a universal resolver for everything else.
func NewServiceResolver(localMethods []string, universalResolverURL string, client *http.Client) (*ServiceResolver, error) {
	if client == nil {
		client = provider.NewHTTPClient(provider.DefaultTimeout)
	}

	sr := new(ServiceResolver)
	if len(localMethods) > 0 {
		local, err := BuildMultiMethodResolver(localMethods, client)
		if err != nil {
			return nil, errors.Wrap(err, "instantiating local DID resolver")
		}
		sr.local = local
	}
	if universalResolverURL != "" {
		sr.universal = provider.NewHTTPResolver(universalResolverURL, provider.WithHTTPClient(client))
	}
	if sr.local == nil && sr.universal == nil {
		return nil, errors.New("no local methods or universal resolver configured")
	}
	return sr, nil
}

// Resolve tries the local resolvers, then the universal resolver.
func (sr *ServiceResolver) Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error) {
	if _, err := provider.MethodOf(did); err != nil {
		return nil, errors.Wrap(err, "getting method DID")
	}

	if sr.local != nil {
		doc, err := sr.local.Resolve(ctx, did)
		if err == nil {
			return doc, nil
		}
		if sr.universal == nil {
			return nil, err
		}
		logrus.WithError(err).Debugf("could not resolve %s locally", did)
	}

	doc, err := sr.universal.Resolve(ctx, did)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s with universal resolver", did)
	}
	return doc, nil
}
