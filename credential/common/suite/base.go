package suite

import (
	"context"
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"
	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jws"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/processor"
)

// Encoding is how a suite carries the signature inside the proof.
type Encoding int

const (
	// DetachedJWS writes the signature as a detached JWS with unencoded payload into "jws".
	DetachedJWS Encoding = iota
	// MultibaseProofValue writes the base58btc multibase signature into "proofValue".
	MultibaseProofValue
)

// Base implements Suite for single-message signature suites. Concrete suites configure it.
type Base struct {
	Type             string
	KeyType          model.KeyType
	VerificationType string
	ContextURL       string
	Encoding         Encoding
	// AcceptedKeyTypes are the key types VerifyProof accepts. Defaults to KeyType.
	AcceptedKeyTypes []model.KeyType
	// DIDKeyOnly limits PreDIDResolutionModification to did:key documents.
	DIDKeyOnly bool
}

func (b *Base) ProofType() string {
	return b.Type
}

func (b *Base) SupportedKeyType() model.KeyType {
	return b.KeyType
}

func (b *Base) SupportedVerificationType() string {
	return b.VerificationType
}

func (b *Base) Context() string {
	return b.ContextURL
}

// PreDIDResolutionModification adds the suite context to DID documents holding verification
// methods of the suite's type.
func (b *Base) PreDIDResolutionModification(didURL string, doc jsonmap.JSONMap) jsonmap.JSONMap {
	if b.DIDKeyOnly && !strings.HasPrefix(strings.ToLower(didURL), "did:key:") {
		return doc
	}
	if !HasMethodOfType(doc, b.VerificationType) {
		return doc
	}
	return WithContext(doc, b.ContextURL)
}

func (b *Base) PreSigningCredentialModification(cred jsonmap.JSONMap) jsonmap.JSONMap {
	return WithContext(cred, b.ContextURL)
}

func (b *Base) PreSigningPresentationModification(pres jsonmap.JSONMap) jsonmap.JSONMap {
	return WithContext(pres, b.ContextURL)
}

// CreateProof signs the document.
func (b *Base) CreateProof(ctx context.Context, doc jsonmap.JSONMap, opts ProofOptions, signer kms.Signer, loader ld.DocumentLoader) (*model.Proof, error) {
	if signer == nil {
		return nil, fmt.Errorf("failed to create %s proof: signer is nil", b.Type)
	}
	if err := b.acceptKey(signer.PublicKey()); err != nil {
		return nil, err
	}

	proof := NewProof(b.Type, opts)
	verifyData, err := CreateVerifyData(doc, proof, loader)
	if err != nil {
		return nil, err
	}

	switch b.Encoding {
	case MultibaseProofValue:
		signature, err := signer.Sign(ctx, verifyData)
		if err != nil {
			return nil, fmt.Errorf("failed to sign %s proof: %w", b.Type, err)
		}
		proof.ProofValue, err = EncodeProofValue(signature)
		if err != nil {
			return nil, err
		}
	default:
		alg, err := JWSAlgorithm(signer.PublicKey().Type)
		if err != nil {
			return nil, err
		}
		header, err := jws.NewHeader(alg).Encode()
		if err != nil {
			return nil, err
		}
		signature, err := signer.Sign(ctx, jws.SigningInput(header, verifyData))
		if err != nil {
			return nil, fmt.Errorf("failed to sign %s proof: %w", b.Type, err)
		}
		proof.JWS = jws.Detached(header, signature)
	}

	return &proof, nil
}

// VerifyProof checks the proof against the document and the verification key.
func (b *Base) VerifyProof(_ context.Context, doc jsonmap.JSONMap, proof model.Proof, pub *crypto.PublicKey, loader ld.DocumentLoader) error {
	if proof.Type != b.Type {
		return fmt.Errorf("%w: %s cannot verify %s", ErrProofTypeMismatch, b.Type, proof.Type)
	}
	if err := b.acceptKey(pub); err != nil {
		return err
	}

	verifyData, err := CreateVerifyData(doc, proof, loader)
	if err != nil {
		return err
	}

	switch b.Encoding {
	case MultibaseProofValue:
		signature, err := DecodeProofValue(proof.ProofValue)
		if err != nil {
			return err
		}
		return crypto.Verify(pub, verifyData, signature)
	default:
		parsed, err := jws.Parse(proof.JWS)
		if err != nil {
			return fmt.Errorf("failed to parse proof jws: %w", err)
		}
		alg, err := JWSAlgorithm(pub.Type)
		if err != nil {
			return err
		}
		if parsed.Header.Alg != alg {
			return fmt.Errorf("JWS alg %q does not match %s key", parsed.Header.Alg, pub.Type)
		}
		return crypto.Verify(pub, jws.SigningInput(parsed.EncodedHeader, verifyData), parsed.Signature)
	}
}

func (b *Base) acceptKey(pub *crypto.PublicKey) error {
	if pub == nil {
		return fmt.Errorf("%s: public key is nil", b.Type)
	}
	accepted := b.AcceptedKeyTypes
	if len(accepted) == 0 {
		accepted = []model.KeyType{b.KeyType}
	}
	if !slices.Contains(accepted, pub.Type) {
		return fmt.Errorf("%s does not support %s keys", b.Type, pub.Type)
	}
	return nil
}

// JWSAlgorithm returns the JWS alg for a key type.
func JWSAlgorithm(keyType model.KeyType) (string, error) {
	switch keyType {
	case model.KeyTypeEd25519:
		return jws.AlgEdDSA, nil
	case model.KeyTypeSecp256k1:
		return jws.AlgES256K, nil
	case model.KeyTypeP256:
		return jws.AlgES256, nil
	default:
		return "", fmt.Errorf("no JWS algorithm for %s keys", keyType)
	}
}

// NewProof builds the proof skeleton from the options.
func NewProof(proofType string, opts ProofOptions) model.Proof {
	proof := model.Proof{
		Type:               proofType,
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
		Challenge:          opts.Challenge,
		Domain:             opts.Domain,
		Nonce:              opts.Nonce,
	}
	if !opts.Created.IsZero() {
		proof.Created = FormatTime(opts.Created)
	}
	return proof
}

// ProofOptionsDocument is the proof without its signature, under the document's @context.
func ProofOptionsDocument(doc jsonmap.JSONMap, proof model.Proof) jsonmap.JSONMap {
	proof.JWS = ""
	proof.ProofValue = ""
	options := jsonmap.JSONMap(proof.ToMap())
	if docContext, ok := doc["@context"]; ok {
		options["@context"] = docContext
	}
	return options
}

// CreateVerifyData returns SHA-256(canonical proof options) || SHA-256(canonical document).
func CreateVerifyData(doc jsonmap.JSONMap, proof model.Proof, loader ld.DocumentLoader) ([]byte, error) {
	opts := processorOptions(loader)

	optionsDoc, err := ProofOptionsDocument(doc, proof).Clone()
	if err != nil {
		return nil, err
	}
	canonicalOptions, err := processor.CanonicalizeDocument(optionsDoc.Plain(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize proof options: %w", err)
	}

	unsigned, err := doc.Without("proof").Clone()
	if err != nil {
		return nil, err
	}
	canonicalDoc, err := processor.CanonicalizeDocument(unsigned.Plain(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	optionsDigest, err := processor.ComputeDigest(canonicalOptions)
	if err != nil {
		return nil, err
	}
	docDigest, err := processor.ComputeDigest(canonicalDoc)
	if err != nil {
		return nil, err
	}
	return append(optionsDigest, docDigest...), nil
}

func processorOptions(loader ld.DocumentLoader) []processor.ProcessorOpt {
	if loader == nil {
		return nil
	}
	return []processor.ProcessorOpt{processor.WithDocumentLoader(loader)}
}
