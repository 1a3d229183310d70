// Package jsonwebsignature2020 implements the JsonWebSignature2020 suite. The detached JWS
// algorithm follows the key: EdDSA, ES256K or ES256.
package jsonwebsignature2020

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// SignatureType is the proof type of the suite.
const SignatureType = "JsonWebSignature2020"

// Suite implements JsonWebSignature2020 for one signing key type.
type Suite struct {
	suite.Base
}

var _ suite.Suite = (*Suite)(nil)

// New creates the suite for signing with keyType (Ed25519, Secp256k1 or P-256). Verification
// accepts all three.
func New(keyType model.KeyType) *Suite {
	return &Suite{Base: suite.Base{
		Type:             SignatureType,
		KeyType:          keyType,
		VerificationType: model.JSONWebKey2020,
		ContextURL:       contexts.JWSSuite2020,
		Encoding:         suite.DetachedJWS,
		AcceptedKeyTypes: []model.KeyType{model.KeyTypeEd25519, model.KeyTypeSecp256k1, model.KeyTypeP256},
	}}
}
