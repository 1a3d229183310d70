package did

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
)

// KeyResolver resolves did:key identifiers without any network access.
type KeyResolver struct{}

var _ provider.MethodResolver = (*KeyResolver)(nil)

// NewKeyResolver creates a did:key resolver.
func NewKeyResolver() *KeyResolver {
	return &KeyResolver{}
}

func (r *KeyResolver) Method() string {
	return KeyMethod
}

// Resolve expands a did:key identifier into its DID document.
func (r *KeyResolver) Resolve(_ context.Context, did string) (jsonmap.JSONMap, error) {
	pub, err := ParseKeyDID(did)
	if err != nil {
		return nil, err
	}

	doc, err := Document(did, pub)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal DID document: %w", err)
	}
	return jsonmap.Parse(raw)
}

// ParseKeyDID decodes the public key of a did:key identifier.
func ParseKeyDID(did string) (*crypto.PublicKey, error) {
	method, err := provider.MethodOf(did)
	if err != nil {
		return nil, err
	}
	if method != KeyMethod {
		return nil, errors.Errorf("not a did:key identifier: %s", did)
	}

	multikey := strings.SplitN(did, ":", 3)[2]
	pub, err := crypto.DecodeMultikey(multikey)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid did:key %s", did)
	}
	return pub, nil
}

// Document builds the DID document of a did:key identifier. The single verification method is
// referenced from every verification relationship.
func Document(did string, pub *crypto.PublicKey) (*model.DIDDocument, error) {
	vmType, ok := verificationMethodTypes[pub.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported key type %q", pub.Type)
	}

	vm := model.VerificationMethodEntry{
		ID:         did + "#" + strings.TrimPrefix(did, "did:key:"),
		Type:       vmType,
		Controller: did,
	}
	switch pub.Type {
	case model.KeyTypeSecp256k1:
		vm.PublicKeyHex = hex.EncodeToString(pub.Raw)
	case model.KeyTypeP256:
		jwk, err := pub.JWK()
		if err != nil {
			return nil, err
		}
		vm.PublicKeyJwk = jwk
	default:
		vm.PublicKeyBase58 = base58.Encode(pub.Raw)
	}

	refs := []interface{}{vm.ID}
	return &model.DIDDocument{
		Context:              []string{contexts.DIDV1, verificationMethodContexts[vmType]},
		ID:                   did,
		VerificationMethod:   []model.VerificationMethodEntry{vm},
		Authentication:       refs,
		AssertionMethod:      refs,
		CapabilityInvocation: refs,
		CapabilityDelegation: refs,
	}, nil
}
