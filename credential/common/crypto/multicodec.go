package crypto

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-multibase"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// Multicodec headers (unsigned varint) of the key types that appear in did:key identifiers.
var multicodecPrefixes = map[model.KeyType][]byte{
	model.KeyTypeEd25519:    {0xed, 0x01},
	model.KeyTypeSecp256k1:  {0xe7, 0x01},
	model.KeyTypeBls12381G2: {0xeb, 0x01},
	model.KeyTypeP256:       {0x80, 0x24},
}

// EncodeMultikey encodes a public key as base58btc multibase with its multicodec header.
func EncodeMultikey(pub *PublicKey) (string, error) {
	prefix, ok := multicodecPrefixes[pub.Type]
	if !ok {
		return "", fmt.Errorf("no multicodec for key type %q", pub.Type)
	}
	return multibase.Encode(multibase.Base58BTC, append(append([]byte{}, prefix...), pub.Raw...))
}

// DecodeMultikey decodes a multibase value carrying a multicodec-prefixed public key.
func DecodeMultikey(value string) (*PublicKey, error) {
	data, err := decodeMultibase(value)
	if err != nil {
		return nil, err
	}

	for keyType, prefix := range multicodecPrefixes {
		if bytes.HasPrefix(data, prefix) {
			return &PublicKey{Type: keyType, Raw: data[len(prefix):]}, nil
		}
	}
	return nil, fmt.Errorf("unknown multicodec header in %q", value)
}

func decodeMultibase(value string) ([]byte, error) {
	_, data, err := multibase.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode multibase value: %w", err)
	}
	return data, nil
}
