// Package ecdsasecp256k1signature2019 implements the EcdsaSecp256k1Signature2019 suite with an
// ES256K detached JWS.
package ecdsasecp256k1signature2019

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// SignatureType is the proof type of the suite.
const SignatureType = "EcdsaSecp256k1Signature2019"

// Suite implements EcdsaSecp256k1Signature2019.
type Suite struct {
	suite.Base
}

var _ suite.Suite = (*Suite)(nil)

// New creates the suite.
func New() *Suite {
	return &Suite{Base: suite.Base{
		Type:             SignatureType,
		KeyType:          model.KeyTypeSecp256k1,
		VerificationType: model.EcdsaSecp256k1VerificationKey2019,
		ContextURL:       contexts.Secp256k1Suite,
		Encoding:         suite.DetachedJWS,
		DIDKeyOnly:       true,
	}}
}
