package processor

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"
)

const nQuadsFormat = "application/n-quads"

// ProcessorOpt represents an option for JSON-LD processing.
type ProcessorOpt func(*processorOptions)

type processorOptions struct {
	documentLoader ld.DocumentLoader
	algorithm      string
	safeMode       bool
}

// WithDocumentLoader sets the document loader for JSON-LD processing.
func WithDocumentLoader(loader ld.DocumentLoader) ProcessorOpt {
	return func(p *processorOptions) {
		p.documentLoader = loader
	}
}

// WithAlgorithm sets the canonicalization algorithm.
func WithAlgorithm(alg string) ProcessorOpt {
	return func(p *processorOptions) {
		p.algorithm = alg
	}
}

// WithSafeMode controls whether terms that no context defines are rejected. It is on by
// default; with it off such members are dropped from the output and never signed.
func WithSafeMode(safe bool) ProcessorOpt {
	return func(p *processorOptions) {
		p.safeMode = safe
	}
}

// defaultDocumentLoader is a shared caching loader to prevent repeated fetches across function calls.
var defaultDocumentLoader = ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(nil))

// DefaultDocumentLoader returns the process-wide caching loader used when no loader is supplied.
func DefaultDocumentLoader() ld.DocumentLoader {
	return defaultDocumentLoader
}

func newOptions(opts []ProcessorOpt) *ld.JsonLdOptions {
	p := &processorOptions{
		documentLoader: defaultDocumentLoader,
		algorithm:      ld.AlgorithmURDNA2015,
		safeMode:       true,
	}
	for _, opt := range opts {
		opt(p)
	}

	jsonldOptions := ld.NewJsonLdOptions("")
	jsonldOptions.Format = nQuadsFormat
	jsonldOptions.Algorithm = p.algorithm
	jsonldOptions.ProcessingMode = ld.JsonLd_1_1
	jsonldOptions.DocumentLoader = p.documentLoader
	jsonldOptions.SafeMode = p.safeMode
	return jsonldOptions
}

// CanonicalizeDocument canonicalizes a document into N-Quads using JSON-LD processing.
func CanonicalizeDocument(doc map[string]interface{}, opts ...ProcessorOpt) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("failed to canonicalize document: document is nil")
	}

	options := newOptions(opts)
	proc := ld.NewJsonLdProcessor()

	// Normalize does not pass SafeMode on to its own expansion.
	if options.SafeMode {
		if _, err := proc.Expand(doc, options); err != nil {
			return nil, fmt.Errorf("failed to expand document: %w", err)
		}
	}

	canonicalized, err := proc.Normalize(doc, options)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}

	nquads, ok := canonicalized.(string)
	if !ok {
		return nil, fmt.Errorf("failed to normalize document: unexpected result %T", canonicalized)
	}
	return []byte(nquads), nil
}

// CanonicalStatements returns the canonical N-Quad statements of a document, one per entry,
// without trailing newlines. BBS+ signs every statement as a separate message.
func CanonicalStatements(doc map[string]interface{}, opts ...ProcessorOpt) ([]string, error) {
	canonical, err := CanonicalizeDocument(doc, opts...)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSuffix(string(canonical), "\n"), "\n")
	statements := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		statements = append(statements, line)
	}
	return statements, nil
}

// ComputeDigest computes the SHA-256 digest of the input data.
func ComputeDigest(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("failed to compute digest: input data is nil")
	}
	hash := sha256.Sum256(data)
	return hash[:], nil
}
