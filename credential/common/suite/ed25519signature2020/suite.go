// Package ed25519signature2020 implements the Ed25519Signature2020 suite. The signature is carried
// as a base58btc multibase proofValue.
package ed25519signature2020

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// SignatureType is the proof type of the suite.
const SignatureType = "Ed25519Signature2020"

// Suite implements Ed25519Signature2020.
type Suite struct {
	suite.Base
}

var _ suite.Suite = (*Suite)(nil)

// New creates the suite.
func New() *Suite {
	return &Suite{Base: suite.Base{
		Type:             SignatureType,
		KeyType:          model.KeyTypeEd25519,
		VerificationType: model.Ed25519VerificationKey2020,
		ContextURL:       contexts.Ed25519Suite2020,
		Encoding:         suite.MultibaseProofValue,
		DIDKeyOnly:       true,
	}}
}
