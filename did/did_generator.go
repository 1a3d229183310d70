package did

import (
	"context"
	"fmt"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// verificationMethodTypes is the verification method type written for each key type.
var verificationMethodTypes = map[model.KeyType]string{
	model.KeyTypeEd25519:    model.Ed25519VerificationKey2018,
	model.KeyTypeSecp256k1:  model.EcdsaSecp256k1VerificationKey2019,
	model.KeyTypeBls12381G2: model.Bls12381G2Key2020,
	model.KeyTypeP256:       model.JSONWebKey2020,
}

var verificationMethodContexts = map[string]string{
	model.Ed25519VerificationKey2018:        contexts.Ed25519Suite2018,
	model.Ed25519VerificationKey2020:        contexts.Ed25519Suite2020,
	model.EcdsaSecp256k1VerificationKey2019: contexts.Secp256k1Suite,
	model.Bls12381G2Key2020:                 contexts.BbsV1,
	model.JSONWebKey2020:                    contexts.JWSSuite2020,
}

// Generator creates did:key identifiers backed by a key manager.
type Generator struct {
	keys kms.KeyManager
}

// NewGenerator creates a generator that stores keys and identifiers in keys.
func NewGenerator(keys kms.KeyManager) *Generator {
	return &Generator{keys: keys}
}

// Generate creates a key of the given type and registers the did:key identifier derived from it.
func (g *Generator) Generate(ctx context.Context, keyType model.KeyType) (*DID, error) {
	key, err := g.keys.CreateKey(ctx, keyType)
	if err != nil {
		return nil, fmt.Errorf("failed to create key: %w", err)
	}
	return g.register(ctx, key)
}

// Import registers the did:key identifier of an existing private key.
func (g *Generator) Import(ctx context.Context, keyType model.KeyType, privateKey []byte) (*DID, error) {
	key, err := g.keys.ImportKey(ctx, keyType, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to import key: %w", err)
	}
	return g.register(ctx, key)
}

func (g *Generator) register(ctx context.Context, key *kms.Key) (*DID, error) {
	pub, err := key.PublicKey()
	if err != nil {
		return nil, err
	}

	id, err := KeyDID(pub)
	if err != nil {
		return nil, err
	}

	doc, err := Document(id, pub)
	if err != nil {
		return nil, err
	}

	err = g.keys.SaveIdentifier(ctx, kms.Identifier{
		DID:             id,
		Provider:        Provider,
		ControllerKeyID: key.Kid,
		Keys:            []kms.Key{*key},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save identifier: %w", err)
	}

	return &DID{DID: id, Key: *key, Document: *doc}, nil
}

// KeyDID returns the did:key identifier of a public key.
func KeyDID(pub *crypto.PublicKey) (string, error) {
	if pub.Type == model.KeyTypeSecp256k1 {
		compressed, err := crypto.CompressSecp256k1(pub.Raw)
		if err != nil {
			return "", err
		}
		pub = &crypto.PublicKey{Type: pub.Type, Raw: compressed}
	}

	multikey, err := crypto.EncodeMultikey(pub)
	if err != nil {
		return "", err
	}
	return "did:key:" + multikey, nil
}
