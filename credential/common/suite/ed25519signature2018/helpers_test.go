package ed25519signature2018

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

func suiteOptions() suite.ProofOptions {
	return suite.ProofOptions{VerificationMethod: "did:example:issuer#key-1", ProofPurpose: model.AssertionMethod}
}
