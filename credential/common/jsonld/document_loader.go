// Package jsonld resolves JSON-LD documents for signing and verification: DID URLs, bundled
// contexts, optionally remote contexts, and finally a fallback loader.
package jsonld

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/piprate/json-gold/ld"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/processor"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/bbsblssignature2020"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/util"
	verificationmethod "github.com/pilacorp/go-ld-credential-sdk/credential/common/verification-method"
)

const (
	// DefaultCacheSize is the number of remote contexts kept in memory.
	DefaultCacheSize = 100
	// DefaultStripIDHost serves contexts carrying a database "_id" member.
	DefaultStripIDHost = "https://vc-api.sphereon.io"
)

var log = logrus.WithField("component", "jsonld")

type documentLoaderOpts struct {
	attemptToFetchContexts bool
	fallback               ld.DocumentLoader
	client                 *http.Client
	cacheSize              int
	cacheTTL               time.Duration
	stripIDHosts           []string
	maxDocumentSize        int64
}

// Opt configures a DocumentLoader during creation.
type Opt func(opts *documentLoaderOpts)

// WithFetchContexts sets whether unknown contexts are fetched over the network by default.
func WithFetchContexts(fetch bool) Opt {
	return func(opts *documentLoaderOpts) {
		opts.attemptToFetchContexts = fetch
	}
}

// WithFallback sets the last-resort loader. By default json-gold's caching HTTP loader is used.
func WithFallback(fallback ld.DocumentLoader) Opt {
	return func(opts *documentLoaderOpts) {
		opts.fallback = fallback
	}
}

// WithHTTPClient sets the client used for remote contexts.
func WithHTTPClient(client *http.Client) Opt {
	return func(opts *documentLoaderOpts) {
		opts.client = client
	}
}

// WithCache sets the size and lifetime of the remote context cache. A zero ttl keeps entries
// until they are evicted.
func WithCache(size int, ttl time.Duration) Opt {
	return func(opts *documentLoaderOpts) {
		opts.cacheSize = size
		opts.cacheTTL = ttl
	}
}

// WithStripIDHosts replaces the URL prefixes whose documents get their "_id" member removed.
func WithStripIDHosts(hosts ...string) Opt {
	return func(opts *documentLoaderOpts) {
		opts.stripIDHosts = hosts
	}
}

// WithMaxDocumentSize bounds the size of a fetched context. It defaults to util.MaxResponseSize.
func WithMaxDocumentSize(size int64) Opt {
	return func(opts *documentLoaderOpts) {
		opts.maxDocumentSize = size
	}
}

// DocumentLoader builds per-call json-gold loaders. It is safe for concurrent use.
type DocumentLoader struct {
	resolver     provider.Resolver
	contexts     *contexts.ContextLoader
	suites       *suite.Loader
	fetch        bool
	fallback     ld.DocumentLoader
	client       *http.Client
	cache        gcache.Cache
	stripIDHosts []string

	maxDocumentSize int64
}

// NewDocumentLoader creates a loader over a DID resolver, a context table and a suite loader.
func NewDocumentLoader(resolver provider.Resolver, contextLoader *contexts.ContextLoader, suites *suite.Loader, opts ...Opt) *DocumentLoader {
	options := &documentLoaderOpts{
		cacheSize:    DefaultCacheSize,
		stripIDHosts: []string{DefaultStripIDHost},
	}
	for i := range opts {
		opts[i](options)
	}

	if contextLoader == nil {
		contextLoader = contexts.NewContextLoader(contexts.Default())
	}
	if suites == nil {
		suites = suite.NewLoader()
	}
	if options.fallback == nil {
		options.fallback = processor.DefaultDocumentLoader()
	}
	if options.client == nil {
		options.client = provider.NewHTTPClient(provider.DefaultTimeout)
	}
	if options.cacheSize <= 0 {
		options.cacheSize = DefaultCacheSize
	}
	if options.maxDocumentSize <= 0 {
		options.maxDocumentSize = util.MaxResponseSize
	}

	builder := gcache.New(options.cacheSize).LRU()
	if options.cacheTTL > 0 {
		builder = builder.Expiration(options.cacheTTL)
	}

	return &DocumentLoader{
		resolver:     resolver,
		contexts:     contextLoader,
		suites:       suites,
		fetch:        options.attemptToFetchContexts,
		fallback:     options.fallback,
		client:       options.client,
		cache:        builder.Build(),
		stripIDHosts: options.stripIDHosts,

		maxDocumentSize: options.maxDocumentSize,
	}
}

// NewBbsDocumentLoader creates a loader that resolves DID components for the BBS+ suite.
func NewBbsDocumentLoader(resolver provider.Resolver, contextLoader *contexts.ContextLoader, opts ...Opt) *DocumentLoader {
	return NewDocumentLoader(resolver, contextLoader, bbsblssignature2020.NewSuiteLoader(), opts...)
}

// Suites returns the suite loader the document loader patches DID documents with.
func (l *DocumentLoader) Suites() *suite.Loader {
	return l.suites
}

type loadOpts struct {
	attemptToFetchContexts bool
}

// LoadOpt configures a single Loader call.
type LoadOpt func(opts *loadOpts)

// WithAttemptToFetchContexts overrides the default remote fetching behavior for one loader.
func WithAttemptToFetchContexts(fetch bool) LoadOpt {
	return func(opts *loadOpts) {
		opts.attemptToFetchContexts = fetch
	}
}

// Loader returns a json-gold document loader bound to ctx. DID resolution and remote fetches
// run under ctx.
func (l *DocumentLoader) Loader(ctx context.Context, opts ...LoadOpt) ld.DocumentLoader {
	options := &loadOpts{attemptToFetchContexts: l.fetch}
	for _, opt := range opts {
		opt(options)
	}
	return &boundLoader{parent: l, ctx: ctx, fetch: options.attemptToFetchContexts}
}

// LoadDocument resolves u with the default options and no deadline.
func (l *DocumentLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return l.Loader(context.Background()).LoadDocument(u)
}

type boundLoader struct {
	parent *DocumentLoader
	ctx    context.Context
	fetch  bool
}

// LoadDocument resolves u in order: DID URL, bundled context, remote fetch, fallback.
func (b *boundLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	l := b.parent

	if strings.HasPrefix(strings.ToLower(u), "did:") {
		return l.loadDID(b.ctx, u)
	}

	if l.contexts.Has(u) {
		return &ld.RemoteDocument{DocumentURL: u, Document: l.contexts.Get(u).Plain()}, nil
	}

	if b.fetch {
		doc, err := l.fetchContext(b.ctx, u)
		if err == nil {
			return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
		}
		log.WithError(err).Warnf("failed to fetch context %s, using fallback loader", u)
	}

	return l.fallback.LoadDocument(u)
}

func (l *DocumentLoader) loadDID(ctx context.Context, u string) (*ld.RemoteDocument, error) {
	if l.resolver == nil {
		return nil, fmt.Errorf("cannot load %s: no DID resolver configured", u)
	}

	did, fragment := verificationmethod.SplitDIDURL(u)
	doc, err := l.resolver.Resolve(ctx, did)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", did, err)
	}

	for _, s := range l.suites.All() {
		doc = s.PreDIDResolutionModification(u, doc)
	}
	doc = MigrateLegacyPublicKeys(doc)

	if fragment == "" {
		return &ld.RemoteDocument{DocumentURL: u, Document: doc.MustClone().Plain()}, nil
	}

	component, err := verificationmethod.FindComponent(doc, u)
	if err != nil {
		return nil, err
	}
	component = component.MustClone()

	if vmType := component.GetString("type"); vmType != "" {
		if s, err := l.suites.SignatureSuiteForKeyType("", vmType); err == nil {
			component["@context"] = s.Context()
		}
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: component.Plain()}, nil
}

// MigrateLegacyPublicKeys returns a copy of doc in which the legacy "publicKey" entries are
// appended to "verificationMethod" and "publicKey" is removed. doc is not modified.
func MigrateLegacyPublicKeys(doc jsonmap.JSONMap) jsonmap.JSONMap {
	legacy, ok := doc["publicKey"]
	if !ok {
		return doc
	}

	existing := jsonmap.AsArray(doc["verificationMethod"])
	publicKeys := jsonmap.AsArray(legacy)

	methods := make([]interface{}, 0, len(existing)+len(publicKeys))
	methods = append(methods, existing...)
	methods = append(methods, publicKeys...)

	out := doc.Without("publicKey")
	out["verificationMethod"] = methods
	return out
}
