// Package contexts holds the static JSON-LD context documents the document loader serves
// without network access.
package contexts

import (
	"embed"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"sort"
	"sync"

	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// Well-known context URLs.
const (
	CredentialsV1    = "https://www.w3.org/2018/credentials/v1"
	DIDV1            = "https://www.w3.org/ns/did/v1"
	Ed25519Suite2018 = "https://w3id.org/security/suites/ed25519-2018/v1"
	Ed25519Suite2020 = "https://w3id.org/security/suites/ed25519-2020/v1"
	Secp256k1Suite   = "https://w3id.org/security/suites/secp256k1-2019/v1"
	JWSSuite2020     = "https://w3id.org/security/suites/jws-2020/v1"
	BbsV1            = "https://w3id.org/security/bbs/v1"
	StatusList2021   = "https://w3id.org/vc/status-list/2021/v1"
)

//go:embed documents/*.jsonld
var documents embed.FS

var embedded = map[string]string{
	CredentialsV1:    "documents/credentials-v1.jsonld",
	DIDV1:            "documents/did-v1.jsonld",
	Ed25519Suite2018: "documents/ed25519-2018-v1.jsonld",
	Ed25519Suite2020: "documents/ed25519-2020-v1.jsonld",
	Secp256k1Suite:   "documents/secp256k1-2019-v1.jsonld",
	JWSSuite2020:     "documents/jws-2020-v1.jsonld",
	BbsV1:            "documents/bbs-v1.jsonld",
	StatusList2021:   "documents/status-list-2021-v1.jsonld",
}

// Contexts maps a context URL to its context document.
type Contexts map[string]jsonmap.JSONMap

var (
	defaultOnce     sync.Once
	defaultContexts Contexts
)

// Default returns a copy of the bundled context documents.
func Default() Contexts {
	defaultOnce.Do(func() {
		loaded := make(Contexts, len(embedded))
		for url, name := range embedded {
			raw, err := documents.ReadFile(name)
			if err != nil {
				panic(errors.Wrapf(err, "embedded context %s", name))
			}
			doc, err := jsonmap.Parse(raw)
			if err != nil {
				panic(errors.Wrapf(err, "embedded context %s", name))
			}
			loaded[url] = doc
		}
		defaultContexts = loaded
	})

	out := make(Contexts, len(defaultContexts))
	for url, doc := range defaultContexts {
		out[url] = doc.MustClone()
	}
	return out
}

// FromSeq collects a key/value sequence into a Contexts source.
func FromSeq(seq iter.Seq2[string, jsonmap.JSONMap]) Contexts {
	out := make(Contexts)
	for url, doc := range seq {
		out[url] = doc
	}
	return out
}

// LoadFiles reads context documents from disk, keyed by the URL they are served under.
func LoadFiles(files map[string]string) (Contexts, error) {
	out := make(Contexts, len(files))
	for url, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read context file for %s", url)
		}

		var doc jsonmap.JSONMap
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrapf(err, "could not parse context file for %s", url)
		}
		if _, ok := doc["@context"]; !ok {
			return nil, errors.Errorf("context file for %s has no @context", url)
		}
		out[url] = doc
	}
	return out, nil
}

// ContextLoader is a read-only lookup table of context documents.
type ContextLoader struct {
	contexts Contexts
}

// NewContextLoader merges the sources left to right; a later source wins for a duplicate URL.
// Documents are copied, so later changes to the sources are not observed.
func NewContextLoader(sources ...Contexts) *ContextLoader {
	merged := make(Contexts)
	for _, source := range sources {
		for url, doc := range source {
			merged[url] = doc.MustClone()
		}
	}
	return &ContextLoader{contexts: merged}
}

// Has reports whether the URL is known.
func (l *ContextLoader) Has(url string) bool {
	_, ok := l.contexts[url]
	return ok
}

// Get returns a copy of the document for url, or nil when the URL is unknown.
func (l *ContextLoader) Get(url string) jsonmap.JSONMap {
	doc, ok := l.contexts[url]
	if !ok {
		return nil
	}
	return doc.MustClone()
}

// URLs lists the known context URLs in sorted order.
func (l *ContextLoader) URLs() []string {
	urls := make([]string, 0, len(l.contexts))
	for url := range l.contexts {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// LoadDocument serves the table as a json-gold document loader. Unknown URLs fail.
func (l *ContextLoader) LoadDocument(url string) (*ld.RemoteDocument, error) {
	doc := l.Get(url)
	if doc == nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("unknown context %s", url))
	}
	return &ld.RemoteDocument{DocumentURL: url, Document: doc.Plain()}, nil
}
