package suite

import (
	"fmt"

	"github.com/multiformats/go-multibase"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// WithContext returns a shallow copy of doc whose @context includes url. The document is returned
// unchanged when it already references url.
func WithContext(doc jsonmap.JSONMap, url string) jsonmap.JSONMap {
	if url == "" || doc == nil {
		return doc
	}

	current := jsonmap.AsArray(doc["@context"])
	for _, c := range current {
		if s, ok := c.(string); ok && s == url {
			return doc
		}
	}

	updated := make([]interface{}, 0, len(current)+1)
	updated = append(updated, current...)
	updated = append(updated, url)

	out := doc.Without()
	out["@context"] = updated
	return out
}

// HasMethodOfType reports whether any verification method (or legacy publicKey) has the type.
func HasMethodOfType(doc jsonmap.JSONMap, vmType string) bool {
	for _, section := range []string{"verificationMethod", "publicKey"} {
		for _, item := range jsonmap.AsArray(doc[section]) {
			if vm, ok := jsonmap.AsObject(item); ok && vm.GetString("type") == vmType {
				return true
			}
		}
	}
	return false
}

// EncodeProofValue encodes a signature as base58btc multibase.
func EncodeProofValue(signature []byte) (string, error) {
	value, err := multibase.Encode(multibase.Base58BTC, signature)
	if err != nil {
		return "", fmt.Errorf("failed to encode proofValue: %w", err)
	}
	return value, nil
}

// DecodeProofValue decodes a base58btc multibase proofValue.
func DecodeProofValue(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("proofValue is missing")
	}
	enc, data, err := multibase.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode proofValue: %w", err)
	}
	if enc != multibase.Base58BTC {
		return nil, fmt.Errorf("proofValue must be base58btc encoded")
	}
	return data, nil
}
