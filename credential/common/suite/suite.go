// Package suite defines the Linked Data signature suite contract and the loader that selects a
// suite for a key.
package suite

import (
	"context"
	"time"

	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

var (
	// ErrNoSuite is returned when no registered suite matches a key or proof type.
	ErrNoSuite = errors.New("no suite")
	// ErrProofTypeMismatch is returned when a suite is asked to verify a foreign proof.
	ErrProofTypeMismatch = errors.New("proof type mismatch")
)

// ProofOptions are the proof members chosen by the signer.
type ProofOptions struct {
	VerificationMethod string
	ProofPurpose       string
	Created            time.Time
	Challenge          string
	Domain             string
	Nonce              string
}

// Suite is a Linked Data signature suite.
type Suite interface {
	// ProofType is the proof "type" the suite produces, e.g. Ed25519Signature2020.
	ProofType() string
	SupportedKeyType() model.KeyType
	SupportedVerificationType() string
	// Context is the JSON-LD context URL that defines the suite terms.
	Context() string

	// PreDIDResolutionModification returns a patched copy of a resolved DID document.
	PreDIDResolutionModification(didURL string, doc jsonmap.JSONMap) jsonmap.JSONMap
	// PreSigningCredentialModification returns a copy of the credential prepared for signing.
	PreSigningCredentialModification(cred jsonmap.JSONMap) jsonmap.JSONMap
	// PreSigningPresentationModification returns a copy of the presentation prepared for signing.
	PreSigningPresentationModification(pres jsonmap.JSONMap) jsonmap.JSONMap

	CreateProof(ctx context.Context, doc jsonmap.JSONMap, opts ProofOptions, signer kms.Signer, loader ld.DocumentLoader) (*model.Proof, error)
	VerifyProof(ctx context.Context, doc jsonmap.JSONMap, proof model.Proof, pub *crypto.PublicKey, loader ld.DocumentLoader) error
}

// FormatTime renders proof timestamps (RFC 3339, UTC, second precision).
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
