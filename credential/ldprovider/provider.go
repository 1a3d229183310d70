// Package ldprovider issues and verifies credentials and presentations carrying Linked Data
// proofs. Signing keys come from a kms.KeyManager, verification keys from DID resolution.
package ldprovider

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	credentialstatus "github.com/pilacorp/go-ld-credential-sdk/credential/common/credential-status"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/schema"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/bbsblssignature2020"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/ecdsasecp256k1signature2019"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/ed25519signature2018"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/ed25519signature2020"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/jsonwebsignature2020"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vc"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vp"
)

var log = logrus.WithField("component", "ldprovider")

// ErrKeyNotFound is returned when the issuer or holder has no key usable with a loaded suite.
var ErrKeyNotFound = errors.New("key_not_found")

// DefaultSuites returns a loader with every signature suite of the module.
func DefaultSuites() *suite.Loader {
	return suite.NewLoader(
		ed25519signature2018.New(),
		ed25519signature2020.New(),
		ecdsasecp256k1signature2019.New(),
		jsonwebsignature2020.New(model.KeyTypeEd25519),
		jsonwebsignature2020.New(model.KeyTypeSecp256k1),
		jsonwebsignature2020.New(model.KeyTypeP256),
		bbsblssignature2020.New(),
	)
}

type providerOpts struct {
	suites        *suite.Loader
	contexts      *contexts.ContextLoader
	loaderOpts    []jsonld.Opt
	fetchContexts bool
	clock         clock.Clock
	status        *credentialstatus.Client
	schemas       *schema.Validator
}

// Option configures a CredentialProvider.
type Option func(opts *providerOpts)

// WithSuiteLoader replaces the default suites.
func WithSuiteLoader(suites *suite.Loader) Option {
	return func(opts *providerOpts) {
		opts.suites = suites
	}
}

// WithContexts adds context documents on top of the bundled ones.
func WithContexts(extra ...contexts.Contexts) Option {
	return func(opts *providerOpts) {
		opts.contexts = contexts.NewContextLoader(append([]contexts.Contexts{contexts.Default()}, extra...)...)
	}
}

// WithContextLoader sets the context loader used by the document loader.
func WithContextLoader(loader *contexts.ContextLoader) Option {
	return func(opts *providerOpts) {
		opts.contexts = loader
	}
}

// WithDocumentLoaderOptions passes options through to the document loader.
func WithDocumentLoaderOptions(loaderOpts ...jsonld.Opt) Option {
	return func(opts *providerOpts) {
		opts.loaderOpts = append(opts.loaderOpts, loaderOpts...)
	}
}

// WithFetchRemoteContexts makes every operation fetch unknown contexts over HTTP.
func WithFetchRemoteContexts(fetch bool) Option {
	return func(opts *providerOpts) {
		opts.fetchContexts = fetch
	}
}

// WithClock sets the clock used for issuance dates, proof timestamps and expiration checks.
func WithClock(c clock.Clock) Option {
	return func(opts *providerOpts) {
		opts.clock = c
	}
}

// WithStatusClient sets the client used to check credentialStatus entries.
func WithStatusClient(client *credentialstatus.Client) Option {
	return func(opts *providerOpts) {
		opts.status = client
	}
}

// WithSchemaValidator sets the validator used for credentialSchema entries.
func WithSchemaValidator(validator *schema.Validator) Option {
	return func(opts *providerOpts) {
		opts.schemas = validator
	}
}

// CredentialProvider creates and verifies Linked Data credentials and presentations.
type CredentialProvider struct {
	keys          kms.KeyManager
	resolver      provider.Resolver
	suites        *suite.Loader
	loader        *jsonld.DocumentLoader
	fetchContexts bool
	clock         clock.Clock
	status        *credentialstatus.Client
	schemas       *schema.Validator
}

// New creates a provider. keys holds the issuer and holder keys, resolver resolves every DID
// the provider meets.
func New(keys kms.KeyManager, resolver provider.Resolver, opts ...Option) (*CredentialProvider, error) {
	if keys == nil {
		return nil, errors.New("key manager is required")
	}
	if resolver == nil {
		return nil, errors.New("DID resolver is required")
	}

	options := &providerOpts{}
	for _, opt := range opts {
		opt(options)
	}
	if options.suites == nil {
		options.suites = DefaultSuites()
	}
	if options.clock == nil {
		options.clock = clock.New()
	}
	if options.status == nil {
		options.status = credentialstatus.NewClient(nil)
	}
	if options.schemas == nil {
		options.schemas = schema.NewValidator()
	}

	loaderOpts := append([]jsonld.Opt{jsonld.WithFetchContexts(options.fetchContexts)}, options.loaderOpts...)

	return &CredentialProvider{
		keys:          keys,
		resolver:      resolver,
		suites:        options.suites,
		loader:        jsonld.NewDocumentLoader(resolver, options.contexts, options.suites, loaderOpts...),
		fetchContexts: options.fetchContexts,
		clock:         options.clock,
		status:        options.status,
		schemas:       options.schemas,
	}, nil
}

// Suites returns the suite loader.
func (p *CredentialProvider) Suites() *suite.Loader {
	return p.suites
}

// DocumentLoader returns the document loader used for canonicalization.
func (p *CredentialProvider) DocumentLoader() *jsonld.DocumentLoader {
	return p.loader
}

// CreateCredentialArgs are the inputs of CreateVerifiableCredential.
type CreateCredentialArgs struct {
	// Credential is the unsigned credential. issuer must be a DID managed by the key manager.
	Credential jsonmap.JSONMap
	// KeyRef selects the signing key by kid or verification method id.
	KeyRef              string
	FetchRemoteContexts bool
}

// CreateVerifiableCredential completes and signs a credential with an assertionMethod key of
// the issuer.
func (p *CredentialProvider) CreateVerifiableCredential(ctx context.Context, args CreateCredentialArgs) (jsonmap.JSONMap, error) {
	now := p.clock.Now()

	cred, err := vc.Prepare(args.Credential, now)
	if err != nil {
		return nil, errors.Wrap(err, "invalid credential")
	}
	doc := cred.Map()
	if _, ok := doc["id"]; !ok {
		doc["id"] = "urn:uuid:" + uuid.NewString()
	}

	key, err := p.findSigningKey(ctx, cred.IssuerID(), model.AssertionMethod, args.KeyRef)
	if err != nil {
		return nil, err
	}

	s, err := p.suites.SignatureSuiteForKeyType(key.Key.Type, key.VerificationType())
	if err != nil {
		return nil, err
	}
	doc = s.PreSigningCredentialModification(doc)

	signed, err := p.sign(ctx, s, doc, key, suite.ProofOptions{
		VerificationMethod: key.VerificationMethodID(),
		ProofPurpose:       model.AssertionMethod,
		Created:            now,
	}, args.FetchRemoteContexts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign credential for %s", cred.IssuerID())
	}

	log.WithField("issuer", cred.IssuerID()).Debugf("issued credential with %s", s.ProofType())
	return signed, nil
}

// CreatePresentationArgs are the inputs of CreateVerifiablePresentation.
type CreatePresentationArgs struct {
	// Presentation is the unsigned presentation. holder must be a DID managed by the key manager.
	Presentation        jsonmap.JSONMap
	KeyRef              string
	Challenge           string
	Domain              string
	FetchRemoteContexts bool
}

// CreateVerifiablePresentation signs a presentation with an authentication key of the holder.
func (p *CredentialProvider) CreateVerifiablePresentation(ctx context.Context, args CreatePresentationArgs) (jsonmap.JSONMap, error) {
	pres, err := vp.Prepare(args.Presentation)
	if err != nil {
		return nil, errors.Wrap(err, "invalid presentation")
	}
	holder := pres.Holder()
	if holder == "" {
		return nil, errors.New("presentation holder is required")
	}

	key, err := p.findSigningKey(ctx, holder, model.Authentication, args.KeyRef)
	if err != nil {
		return nil, err
	}

	s, err := p.suites.SignatureSuiteForKeyType(key.Key.Type, key.VerificationType())
	if err != nil {
		return nil, err
	}
	doc := s.PreSigningPresentationModification(pres.Map())

	signed, err := p.sign(ctx, s, doc, key, suite.ProofOptions{
		VerificationMethod: key.VerificationMethodID(),
		ProofPurpose:       model.Authentication,
		Created:            p.clock.Now(),
		Challenge:          args.Challenge,
		Domain:             args.Domain,
	}, args.FetchRemoteContexts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sign presentation for %s", holder)
	}
	return signed, nil
}

func (p *CredentialProvider) sign(ctx context.Context, s suite.Suite, doc jsonmap.JSONMap, key *signingKey, opts suite.ProofOptions, fetch bool) (jsonmap.JSONMap, error) {
	signer, err := p.keys.Signer(ctx, key.Key.Kid)
	if err != nil {
		return nil, err
	}

	proof, err := s.CreateProof(ctx, doc, opts, signer, p.documentLoader(ctx, fetch))
	if err != nil {
		return nil, err
	}

	doc["proof"] = proof.ToMap()
	return doc, nil
}

func (p *CredentialProvider) documentLoader(ctx context.Context, fetch bool) ld.DocumentLoader {
	return p.loader.Loader(ctx, jsonld.WithAttemptToFetchContexts(p.fetchContexts || fetch))
}
