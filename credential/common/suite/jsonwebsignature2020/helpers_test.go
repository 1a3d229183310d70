package jsonwebsignature2020

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

func options() suite.ProofOptions {
	return suite.ProofOptions{VerificationMethod: "did:example:issuer#key-1", ProofPurpose: model.AssertionMethod}
}
