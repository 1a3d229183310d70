package ed25519signature2020

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/suitetest"
)

func TestSuite_RoundTrip(t *testing.T) {
	proof := suitetest.RoundTrip(t, New(), model.KeyTypeEd25519)
	assert.Empty(t, proof.JWS)
	require.NotEmpty(t, proof.ProofValue)
	assert.Equal(t, byte('z'), proof.ProofValue[0])

	signature, err := suite.DecodeProofValue(proof.ProofValue)
	require.NoError(t, err)
	assert.Len(t, signature, 64)
}

func TestSuite_Descriptor(t *testing.T) {
	s := New()
	assert.Equal(t, SignatureType, s.ProofType())
	assert.Equal(t, model.KeyTypeEd25519, s.SupportedKeyType())
	assert.Equal(t, model.Ed25519VerificationKey2020, s.SupportedVerificationType())
	assert.Equal(t, "https://w3id.org/security/suites/ed25519-2020/v1", s.Context())
}
