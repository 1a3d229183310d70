// Package suitetest provides shared fixtures for signature suite tests.
package suitetest

import (
	"context"
	"testing"
	"time"

	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/storage"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// Credential returns an unsigned credential whose subject terms are defined inline.
func Credential() jsonmap.JSONMap {
	return jsonmap.JSONMap{
		"@context": []interface{}{
			contexts.CredentialsV1,
			map[string]interface{}{
				"name":   "https://schema.org/name",
				"degree": "https://schema.org/educationalCredentialAwarded",
			},
		},
		"id":           "urn:uuid:3978344f-8596-4c3a-a978-8fcaba3903c5",
		"type":         []interface{}{"VerifiableCredential"},
		"issuer":       "did:example:issuer",
		"issuanceDate": "2024-01-01T00:00:00Z",
		"credentialSubject": map[string]interface{}{
			"id":     "did:example:subject",
			"name":   "Alice",
			"degree": "Bachelor of Science",
		},
	}
}

// Loader serves the bundled contexts without network access.
func Loader() ld.DocumentLoader {
	return contexts.NewContextLoader(contexts.Default())
}

// Signer creates a fresh key of the given type in an in-memory key manager.
func Signer(t *testing.T, keyType model.KeyType) kms.Signer {
	t.Helper()

	ctx := context.Background()
	km := kms.NewLocalKeyManager(storage.NewMemoryDB())
	key, err := km.CreateKey(ctx, keyType)
	require.NoError(t, err)

	signer, err := km.Signer(ctx, key.Kid)
	require.NoError(t, err)
	return signer
}

// RoundTrip signs the fixture credential with s and checks that the proof verifies, and stops
// verifying once the credential is altered.
func RoundTrip(t *testing.T, s suite.Suite, keyType model.KeyType) model.Proof {
	t.Helper()

	ctx := context.Background()
	signer := Signer(t, keyType)
	loader := Loader()

	cred := s.PreSigningCredentialModification(Credential())
	assert.Contains(t, jsonmap.AsArray(cred["@context"]), s.Context())

	proof, err := s.CreateProof(ctx, cred, suite.ProofOptions{
		VerificationMethod: "did:example:issuer#key-1",
		ProofPurpose:       model.AssertionMethod,
		Created:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, signer, loader)
	require.NoError(t, err)
	assert.Equal(t, s.ProofType(), proof.Type)
	assert.Equal(t, "2024-01-01T00:00:00Z", proof.Created)

	signed := cred.Without()
	signed["proof"] = proof.ToMap()

	require.NoError(t, s.VerifyProof(ctx, signed, *proof, signer.PublicKey(), loader))

	tampered := signed.MustClone()
	tampered["credentialSubject"].(map[string]interface{})["name"] = "Mallory"
	assert.Error(t, s.VerifyProof(ctx, tampered, *proof, signer.PublicKey(), loader))

	otherPurpose := *proof
	otherPurpose.ProofPurpose = model.Authentication
	assert.Error(t, s.VerifyProof(ctx, signed, otherPurpose, signer.PublicKey(), loader))

	return *proof
}
