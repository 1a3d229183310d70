// Package ed25519signature2018 implements the Ed25519Signature2018 suite: URDNA2015
// canonicalization, SHA-256 digests and an Ed25519 detached JWS.
package ed25519signature2018

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// SignatureType is the proof type of the suite.
const SignatureType = "Ed25519Signature2018"

// Suite implements Ed25519Signature2018.
type Suite struct {
	suite.Base
}

var _ suite.Suite = (*Suite)(nil)

// New creates the suite.
func New() *Suite {
	return &Suite{Base: suite.Base{
		Type:             SignatureType,
		KeyType:          model.KeyTypeEd25519,
		VerificationType: model.Ed25519VerificationKey2018,
		ContextURL:       contexts.Ed25519Suite2018,
		Encoding:         suite.DetachedJWS,
		DIDKeyOnly:       true,
	}}
}
