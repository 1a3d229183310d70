package ldprovider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/piprate/json-gold/ld"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialstatus "github.com/pilacorp/go-ld-credential-sdk/credential/common/credential-status"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/schema"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/storage"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite/ed25519signature2018"
	"github.com/pilacorp/go-ld-credential-sdk/credential/ldprovider"
	"github.com/pilacorp/go-ld-credential-sdk/did"
)

var issuedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type offlineLoader struct{}

func (offlineLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, "offline: "+u)
}

type fixture struct {
	provider *ldprovider.CredentialProvider
	dids     *did.Generator
	clock    *clock.Mock
}

func newFixture(t *testing.T, opts ...ldprovider.Option) *fixture {
	t.Helper()

	keys := kms.NewLocalKeyManager(storage.NewMemoryDB())
	resolver, err := provider.NewMultiMethodResolver(did.NewKeyResolver())
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(issuedAt)

	opts = append([]ldprovider.Option{
		ldprovider.WithClock(mock),
		ldprovider.WithDocumentLoaderOptions(jsonld.WithFallback(offlineLoader{})),
	}, opts...)
	p, err := ldprovider.New(keys, resolver, opts...)
	require.NoError(t, err)

	return &fixture{provider: p, dids: did.NewGenerator(keys), clock: mock}
}

func (f *fixture) identity(t *testing.T, keyType model.KeyType) *did.DID {
	t.Helper()

	generated, err := f.dids.Generate(context.Background(), keyType)
	require.NoError(t, err)
	return generated
}

func unsignedCredential(issuer string) jsonmap.JSONMap {
	return jsonmap.JSONMap{
		"@context": []interface{}{
			contexts.CredentialsV1,
			map[string]interface{}{
				"name":   "https://schema.org/name",
				"degree": "https://schema.org/educationalCredentialAwarded",
			},
		},
		"type":   []interface{}{"VerifiableCredential", "UniversityDegreeCredential"},
		"issuer": issuer,
		"credentialSubject": map[string]interface{}{
			"id":     "did:example:subject",
			"name":   "Alice",
			"degree": "Bachelor of Science",
		},
	}
}

func TestNew(t *testing.T) {
	keys := kms.NewLocalKeyManager(storage.NewMemoryDB())

	_, err := ldprovider.New(nil, provider.NewStaticResolver())
	require.Error(t, err)

	_, err = ldprovider.New(keys, nil)
	require.Error(t, err)

	p, err := ldprovider.New(keys, provider.NewStaticResolver())
	require.NoError(t, err)
	assert.Len(t, p.Suites().All(), 7)
	assert.Same(t, p.Suites(), p.DocumentLoader().Suites())
}

func TestCredentialProvider_CredentialRoundTrip(t *testing.T) {
	tests := []struct {
		keyType   model.KeyType
		proofType string
	}{
		{model.KeyTypeEd25519, "Ed25519Signature2018"},
		{model.KeyTypeSecp256k1, "EcdsaSecp256k1Signature2019"},
		{model.KeyTypeP256, "JsonWebSignature2020"},
		{model.KeyTypeBls12381G2, "BbsBlsSignature2020"},
	}

	for _, tt := range tests {
		t.Run(string(tt.keyType), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			issuer := f.identity(t, tt.keyType)

			signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
				Credential: unsignedCredential(issuer.DID),
			})
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(signed.GetString("id"), "urn:uuid:"))
			assert.Equal(t, "2024-03-01T12:00:00Z", signed.GetString("issuanceDate"))

			proof, ok := jsonmap.AsObject(signed["proof"])
			require.True(t, ok)
			assert.Equal(t, tt.proofType, proof["type"])
			assert.Equal(t, model.AssertionMethod, proof["proofPurpose"])
			assert.True(t, strings.HasPrefix(proof.GetString("verificationMethod"), issuer.DID+"#"))

			err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: signed})
			require.NoError(t, err)

			tampered := signed.MustClone()
			tampered["credentialSubject"].(map[string]interface{})["name"] = "Mallory"
			err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: tampered})
			require.Error(t, err)
		})
	}
}

func TestCredentialProvider_KeepsCredentialID(t *testing.T) {
	f := newFixture(t)
	issuer := f.identity(t, model.KeyTypeEd25519)

	unsigned := unsignedCredential(issuer.DID)
	unsigned["id"] = "https://example.com/credentials/1"

	signed, err := f.provider.CreateVerifiableCredential(context.Background(), ldprovider.CreateCredentialArgs{Credential: unsigned})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/credentials/1", signed.GetString("id"))
	assert.NotContains(t, unsigned, "proof")
}

func TestCredentialProvider_UndefinedTerms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issuer := f.identity(t, model.KeyTypeEd25519)

	unsigned := unsignedCredential(issuer.DID)
	unsigned["credentialSubject"].(map[string]interface{})["creditLimit"] = "100"
	_, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{Credential: unsigned})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid property")

	signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{Credential: unsignedCredential(issuer.DID)})
	require.NoError(t, err)
	require.NoError(t, f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: signed}))

	for name, mutate := range map[string]func(subject map[string]interface{}){
		"isAdmin": func(subject map[string]interface{}) { subject["isAdmin"] = true },
		"creditLimit": func(subject map[string]interface{}) {
			subject["creditLimit"] = "1000000"
		},
	} {
		t.Run(name, func(t *testing.T) {
			tampered := signed.MustClone()
			mutate(tampered["credentialSubject"].(map[string]interface{}))
			err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: tampered})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid property")
		})
	}

	tampered := signed.MustClone()
	tampered["evidence"] = map[string]interface{}{"id": "urn:example:evidence", "grade": "A"}
	assert.Error(t, f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: tampered}))
}

func TestCredentialProvider_KeySelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issuer := f.identity(t, model.KeyTypeEd25519)
	vmID := issuer.DID + "#" + strings.TrimPrefix(issuer.DID, "did:key:")

	t.Run("kid", func(t *testing.T) {
		signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
			Credential: unsignedCredential(issuer.DID),
			KeyRef:     issuer.Key.Kid,
		})
		require.NoError(t, err)
		proof, _ := jsonmap.AsObject(signed["proof"])
		assert.Equal(t, vmID, proof["verificationMethod"])
	})

	t.Run("verification method id", func(t *testing.T) {
		_, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
			Credential: unsignedCredential(issuer.DID),
			KeyRef:     vmID,
		})
		require.NoError(t, err)
	})

	t.Run("unknown key ref", func(t *testing.T) {
		_, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
			Credential: unsignedCredential(issuer.DID),
			KeyRef:     "unknown",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ldprovider.ErrKeyNotFound)
	})

	t.Run("unmanaged issuer", func(t *testing.T) {
		other := newFixture(t).identity(t, model.KeyTypeEd25519)
		_, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
			Credential: unsignedCredential(other.DID),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ldprovider.ErrKeyNotFound)
		assert.Contains(t, err.Error(), "key_not_found")
	})
}

func TestCredentialProvider_UnsupportedVerificationType(t *testing.T) {
	f := newFixture(t, ldprovider.WithSuiteLoader(suite.NewLoader(ed25519signature2018.New())))
	issuer := f.identity(t, model.KeyTypeSecp256k1)

	_, err := f.provider.CreateVerifiableCredential(context.Background(), ldprovider.CreateCredentialArgs{
		Credential: unsignedCredential(issuer.DID),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ldprovider.ErrKeyNotFound)
}

func TestCredentialProvider_VerifyCredentialErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issuer := f.identity(t, model.KeyTypeEd25519)

	unsigned := unsignedCredential(issuer.DID)
	unsigned["expirationDate"] = "2024-03-02T12:00:00Z"
	signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{Credential: unsigned})
	require.NoError(t, err)

	t.Run("no proof", func(t *testing.T) {
		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: signed.Without("proof")})
		assert.ErrorIs(t, err, ldprovider.ErrProofNotFound)
	})

	t.Run("other issuer", func(t *testing.T) {
		other := f.identity(t, model.KeyTypeEd25519)
		forged := signed.MustClone()
		forged["issuer"] = other.DID
		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: forged})
		assert.ErrorIs(t, err, ldprovider.ErrInvalidProof)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		forged := signed.MustClone()
		forged["proof"].(map[string]interface{})["proofPurpose"] = model.Authentication
		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: forged})
		assert.ErrorIs(t, err, ldprovider.ErrInvalidProof)
	})

	t.Run("unknown proof type", func(t *testing.T) {
		forged := signed.MustClone()
		forged["proof"].(map[string]interface{})["type"] = "RsaSignature2018"
		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: forged})
		assert.ErrorIs(t, err, suite.ErrNoSuite)
	})

	t.Run("expired", func(t *testing.T) {
		f.clock.Add(48 * time.Hour)
		defer f.clock.Set(issuedAt)

		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: signed})
		assert.ErrorIs(t, err, ldprovider.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		f.clock.Set(issuedAt.Add(-time.Hour))
		defer f.clock.Set(issuedAt)

		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: signed})
		assert.ErrorIs(t, err, ldprovider.ErrNotYetValid)
	})
}

// statusListServer serves whatever list was last stored in it.
type statusListServer struct {
	*httptest.Server
	list atomic.Value
}

func newStatusListServer(t *testing.T) *statusListServer {
	t.Helper()

	s := &statusListServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.list.Load())
	}))
	return s
}

func (s *statusListServer) serve(list jsonmap.JSONMap) {
	s.list.Store(list)
}

// statusList issues a revocation list credential with the given positions set.
func (f *fixture) statusList(t *testing.T, issuer, listURL string, revoked ...int) jsonmap.JSONMap {
	t.Helper()

	bits := make([]byte, 16)
	for _, position := range revoked {
		bits[position/8] |= 0x80 >> (position % 8)
	}
	encoded, err := credentialstatus.EncodeList(bits)
	require.NoError(t, err)

	signed, err := f.provider.CreateVerifiableCredential(context.Background(), ldprovider.CreateCredentialArgs{
		Credential: jsonmap.JSONMap{
			"@context": []interface{}{contexts.CredentialsV1, contexts.StatusList2021},
			"id":       listURL,
			"type":     []interface{}{"VerifiableCredential", "StatusList2021Credential"},
			"issuer":   issuer,
			"credentialSubject": map[string]interface{}{
				"id":            listURL + "#list",
				"type":          "StatusList2021",
				"statusPurpose": credentialstatus.PurposeRevocation,
				"encodedList":   encoded,
			},
		},
	})
	require.NoError(t, err)
	return signed
}

func TestCredentialProvider_CheckStatus(t *testing.T) {
	ctx := context.Background()
	server := newStatusListServer(t)
	defer server.Close()

	f := newFixture(t, ldprovider.WithStatusClient(credentialstatus.NewClient(server.Client())))
	issuer := f.identity(t, model.KeyTypeEd25519)
	list := f.statusList(t, issuer.DID, server.URL, 5)
	server.serve(list)

	issue := func(index string) jsonmap.JSONMap {
		unsigned := unsignedCredential(issuer.DID)
		unsigned["@context"] = append(jsonmap.AsArray(unsigned["@context"]), contexts.StatusList2021)
		unsigned["credentialStatus"] = map[string]interface{}{
			"id":                   server.URL + "#" + index,
			"type":                 credentialstatus.StatusList2021Entry,
			"statusPurpose":        credentialstatus.PurposeRevocation,
			"statusListIndex":      index,
			"statusListCredential": server.URL,
		}
		signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{Credential: unsigned})
		require.NoError(t, err)
		return signed
	}

	revoked := issue("5")
	err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: revoked, CheckStatus: true})
	assert.ErrorIs(t, err, ldprovider.ErrRevoked)

	err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: revoked})
	require.NoError(t, err)

	valid := issue("6")
	err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: valid, CheckStatus: true})
	require.NoError(t, err)

	t.Run("unsigned list", func(t *testing.T) {
		server.serve(list.Without("proof"))
		defer server.serve(list)

		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: revoked, CheckStatus: true})
		assert.ErrorIs(t, err, ldprovider.ErrProofNotFound)
	})

	t.Run("tampered list", func(t *testing.T) {
		cleared, err := credentialstatus.EncodeList(make([]byte, 16))
		require.NoError(t, err)
		tampered := list.MustClone()
		tampered["credentialSubject"].(map[string]interface{})["encodedList"] = cleared
		server.serve(tampered)
		defer server.serve(list)

		err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: revoked, CheckStatus: true})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ldprovider.ErrRevoked)
	})

	t.Run("list from another issuer", func(t *testing.T) {
		other := f.identity(t, model.KeyTypeEd25519)
		server.serve(f.statusList(t, other.DID, server.URL))
		defer server.serve(list)

		err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{Credential: revoked, CheckStatus: true})
		assert.ErrorIs(t, err, ldprovider.ErrInvalidProof)
	})
}

func TestCredentialProvider_ValidateSchema(t *testing.T) {
	ctx := context.Background()
	validator := schema.NewValidator(
		schema.WithSchema("https://example.com/schemas/degree.json", []byte(`{
			"type": "object",
			"properties": {"credentialSubject": {"type": "object", "required": ["name", "degree"]}}
		}`)),
		schema.WithSchema("https://example.com/schemas/age.json", []byte(`{
			"type": "object",
			"properties": {"credentialSubject": {"type": "object", "required": ["age"]}}
		}`)),
	)
	f := newFixture(t, ldprovider.WithSchemaValidator(validator))
	issuer := f.identity(t, model.KeyTypeEd25519)

	issue := func(schemaID string) jsonmap.JSONMap {
		unsigned := unsignedCredential(issuer.DID)
		unsigned["credentialSchema"] = map[string]interface{}{"id": schemaID, "type": schema.JSONSchemaValidator2018}
		signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{Credential: unsigned})
		require.NoError(t, err)
		return signed
	}

	err := f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{
		Credential:     issue("https://example.com/schemas/degree.json"),
		ValidateSchema: true,
	})
	require.NoError(t, err)

	err = f.provider.VerifyCredential(ctx, ldprovider.VerifyCredentialArgs{
		Credential:     issue("https://example.com/schemas/age.json"),
		ValidateSchema: true,
	})
	assert.ErrorIs(t, err, schema.ErrInvalidCredential)
}

func TestCredentialProvider_PresentationRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issuer := f.identity(t, model.KeyTypeEd25519)
	holder := f.identity(t, model.KeyTypeSecp256k1)

	var credentials []interface{}
	for i := 0; i < 3; i++ {
		signed, err := f.provider.CreateVerifiableCredential(ctx, ldprovider.CreateCredentialArgs{
			Credential: unsignedCredential(issuer.DID),
		})
		require.NoError(t, err)
		credentials = append(credentials, signed.Plain())
	}

	presentation, err := f.provider.CreateVerifiablePresentation(ctx, ldprovider.CreatePresentationArgs{
		Presentation: jsonmap.JSONMap{
			"holder":               holder.DID,
			"verifiableCredential": credentials,
		},
		Challenge: "c0ffee",
		Domain:    "example.com",
	})
	require.NoError(t, err)

	proof, ok := jsonmap.AsObject(presentation["proof"])
	require.True(t, ok)
	assert.Equal(t, model.Authentication, proof["proofPurpose"])
	assert.Equal(t, "c0ffee", proof["challenge"])

	err = f.provider.VerifyPresentation(ctx, ldprovider.VerifyPresentationArgs{
		Presentation: presentation,
		Challenge:    "c0ffee",
		Domain:       "example.com",
	})
	require.NoError(t, err)

	t.Run("challenge mismatch", func(t *testing.T) {
		err := f.provider.VerifyPresentation(ctx, ldprovider.VerifyPresentationArgs{
			Presentation: presentation,
			Challenge:    "other",
		})
		assert.ErrorIs(t, err, ldprovider.ErrInvalidProof)
	})

	t.Run("tampered credential", func(t *testing.T) {
		tampered := presentation.MustClone()
		creds := tampered["verifiableCredential"].([]interface{})
		creds[1].(map[string]interface{})["credentialSubject"].(map[string]interface{})["name"] = "Mallory"
		err := f.provider.VerifyPresentation(ctx, ldprovider.VerifyPresentationArgs{Presentation: tampered})
		require.Error(t, err)
	})
}

func TestCredentialProvider_PresentationRequiresHolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.provider.CreateVerifiablePresentation(context.Background(), ldprovider.CreatePresentationArgs{
		Presentation: jsonmap.JSONMap{},
	})
	require.Error(t, err)
}
