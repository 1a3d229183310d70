package jsonld

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bluele/gcache"
	"github.com/piprate/json-gold/ld"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/util"
)

// fetchContext downloads a context document, keeping successful results in the LRU cache.
func (l *DocumentLoader) fetchContext(ctx context.Context, u string) (interface{}, error) {
	if cached, err := l.cache.Get(u); err == nil {
		return copyDocument(cached)
	} else if err != gcache.KeyNotFoundError {
		return nil, fmt.Errorf("read context cache: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build context request: %w", err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch context: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch context: unexpected status %s", resp.Status)
	}

	body, err := util.ReadLimited(resp.Body, l.maxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}

	doc, err := ld.DocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}

	if obj, ok := doc.(map[string]interface{}); ok && l.stripsID(u) {
		delete(obj, "_id")
	}

	if err := l.cache.Set(u, doc); err != nil {
		return nil, fmt.Errorf("write context cache: %w", err)
	}
	return copyDocument(doc)
}

func (l *DocumentLoader) stripsID(u string) bool {
	target, err := url.Parse(u)
	if err != nil {
		return false
	}
	for _, host := range l.stripIDHosts {
		if sameOrigin(target, host) {
			return true
		}
	}
	return false
}

// sameOrigin reports whether target has the scheme and host of prefix and lies under its path.
func sameOrigin(target *url.URL, prefix string) bool {
	p, err := url.Parse(prefix)
	if err != nil || p.Host == "" {
		return false
	}
	if !strings.EqualFold(target.Scheme, p.Scheme) || !strings.EqualFold(target.Host, p.Host) {
		return false
	}
	base := strings.TrimSuffix(p.Path, "/")
	return base == "" || target.Path == base || strings.HasPrefix(target.Path, base+"/")
}

func copyDocument(doc interface{}) (interface{}, error) {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return doc, nil
	}
	cloned, err := jsonmap.JSONMap(obj).Clone()
	if err != nil {
		return nil, err
	}
	return cloned.Plain(), nil
}
