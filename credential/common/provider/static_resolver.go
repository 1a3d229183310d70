package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// StaticResolver serves DID documents from memory.
type StaticResolver struct {
	mu   sync.RWMutex
	docs map[string]jsonmap.JSONMap
}

// NewStaticResolver creates a resolver over the given documents, keyed by their id.
func NewStaticResolver(docs ...jsonmap.JSONMap) *StaticResolver {
	r := &StaticResolver{docs: make(map[string]jsonmap.JSONMap, len(docs))}
	for _, doc := range docs {
		r.Add(doc)
	}
	return r
}

// Add registers or replaces a document.
func (r *StaticResolver) Add(doc jsonmap.JSONMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.GetString("id")] = doc.MustClone()
}

// Resolve returns a copy of the stored document.
func (r *StaticResolver) Resolve(_ context.Context, did string) (jsonmap.JSONMap, error) {
	r.mu.RLock()
	doc, ok := r.docs[did]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, did)
	}
	return doc.Clone()
}

// MultiMethodResolver dispatches resolution by DID method.
type MultiMethodResolver struct {
	resolvers map[string]Resolver
	methods   []string
}

// NewMultiMethodResolver creates a resolver over the method resolvers. The first resolver
// registered for a method wins.
func NewMultiMethodResolver(resolvers ...MethodResolver) (*MultiMethodResolver, error) {
	if len(resolvers) == 0 {
		return nil, errors.New("no resolvers provided")
	}

	r := &MultiMethodResolver{resolvers: make(map[string]Resolver, len(resolvers))}
	for _, resolver := range resolvers {
		method := resolver.Method()
		if _, ok := r.resolvers[method]; ok {
			continue
		}
		r.resolvers[method] = resolver
		r.methods = append(r.methods, method)
	}
	return r, nil
}

// Methods lists the supported DID methods in registration order.
func (r *MultiMethodResolver) Methods() []string {
	return append([]string(nil), r.methods...)
}

// Resolve resolves the DID with the resolver registered for its method.
func (r *MultiMethodResolver) Resolve(ctx context.Context, did string) (jsonmap.JSONMap, error) {
	method, err := MethodOf(did)
	if err != nil {
		return nil, err
	}

	resolver, ok := r.resolvers[method]
	if !ok {
		return nil, errors.Errorf("unsupported DID method %q", method)
	}
	return resolver.Resolve(ctx, did)
}

// MethodBound binds a method-agnostic resolver (for example a universal resolver) to a method.
func MethodBound(method string, resolver Resolver) MethodResolver {
	return methodBound{Resolver: resolver, method: method}
}

type methodBound struct {
	Resolver
	method string
}

func (m methodBound) Method() string {
	return m.method
}
