package vp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vc"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vp"
)

const holder = "did:example:holder"

func testCredential(t *testing.T, subject string) *vc.Credential {
	t.Helper()

	cred, err := vc.New(vc.CredentialContents{
		Context: []interface{}{contexts.CredentialsV1},
		ID:      "urn:uuid:" + subject,
		Types:   []string{vc.TypeVerifiableCredential},
		Issuer:  "did:example:issuer",
		Subject: []vc.Subject{{ID: "did:example:" + subject}},
	})
	require.NoError(t, err)
	return cred
}

func TestNew(t *testing.T) {
	pres, err := vp.New(vp.PresentationContents{
		Context:               []interface{}{contexts.CredentialsV1},
		ID:                    "urn:uuid:abcd1234-5678-90ab-cdef-1234567890ab",
		Types:                 []string{vp.TypeVerifiablePresentation},
		Holder:                holder,
		VerifiableCredentials: []*vc.Credential{testCredential(t, "alice"), testCredential(t, "bob")},
	})
	require.NoError(t, err)

	assert.Equal(t, holder, pres.Holder())

	creds, err := pres.Credentials()
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "did:example:alice", creds[0].SubjectID())
	assert.Equal(t, "did:example:bob", creds[1].SubjectID())

	_, err = vp.New(vp.PresentationContents{
		Context:               []interface{}{contexts.CredentialsV1},
		Types:                 []string{vp.TypeVerifiablePresentation},
		VerifiableCredentials: []*vc.Credential{nil},
	})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	raw := []byte(`{
		"@context": ["https://www.w3.org/2018/credentials/v1"],
		"type": "VerifiablePresentation",
		"holder": {"id": "did:example:holder"},
		"verifiableCredential": {
			"@context": ["https://www.w3.org/2018/credentials/v1"],
			"type": ["VerifiableCredential"],
			"issuer": "did:example:issuer",
			"credentialSubject": {"id": "did:example:holder"}
		},
		"proof": [
			{"type": "Ed25519Signature2018", "verificationMethod": "did:example:holder#key-1", "proofPurpose": "authentication", "challenge": "abc", "jws": "eyJ..sig"}
		]
	}`)

	pres, err := vp.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, holder, pres.Holder())

	proofs := pres.Proofs()
	require.Len(t, proofs, 1)
	assert.Equal(t, "abc", proofs[0].Challenge)
	assert.NotContains(t, pres.WithoutProof(), "proof")

	contents, err := pres.Contents()
	require.NoError(t, err)
	assert.Equal(t, []string{vp.TypeVerifiablePresentation}, contents.Types)
	require.Len(t, contents.VerifiableCredentials, 1)
	assert.Equal(t, "did:example:issuer", contents.VerifiableCredentials[0].IssuerID())

	for name, input := range map[string][]byte{
		"empty":        {},
		"invalid":      []byte(`[]`),
		"missing type": []byte(`{"@context":[]}`),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := vp.Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestPresentation_JWTCredential(t *testing.T) {
	pres, err := vp.FromMap(jsonmap.JSONMap{
		"@context":             []interface{}{contexts.CredentialsV1},
		"type":                 []interface{}{vp.TypeVerifiablePresentation},
		"verifiableCredential": []interface{}{"eyJhbGciOiJFUzI1NksifQ.e30.c2ln"},
	})
	require.NoError(t, err)

	_, err = pres.Credentials()
	assert.ErrorIs(t, err, vp.ErrUnsupportedCredentialFormat)
}

func TestPrepare(t *testing.T) {
	pres, err := vp.Prepare(jsonmap.JSONMap{"holder": holder})
	require.NoError(t, err)

	m := pres.Map()
	assert.Equal(t, []interface{}{contexts.CredentialsV1}, m["@context"])
	assert.Equal(t, []interface{}{vp.TypeVerifiablePresentation}, m["type"])

	_, err = vp.Prepare(nil)
	assert.Error(t, err)
}
