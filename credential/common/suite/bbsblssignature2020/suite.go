// Package bbsblssignature2020 implements the BbsBlsSignature2020 suite. Every canonical N-Quad
// statement of the proof options and of the document is signed as a separate BBS+ message.
package bbsblssignature2020

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/processor"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/suite"
)

// SignatureType is the proof type of the suite.
const SignatureType = "BbsBlsSignature2020"

// Suite implements BbsBlsSignature2020.
type Suite struct {
	suite.Base
}

var _ suite.Suite = (*Suite)(nil)

// New creates the suite.
func New() *Suite {
	return &Suite{Base: suite.Base{
		Type:             SignatureType,
		KeyType:          model.KeyTypeBls12381G2,
		VerificationType: model.Bls12381G2Key2020,
		ContextURL:       contexts.BbsV1,
	}}
}

// NewSuiteLoader returns a loader that only knows the BBS+ suite.
func NewSuiteLoader() *suite.Loader {
	return suite.NewLoader(New())
}

// CreateProof signs the statement list of the document.
func (s *Suite) CreateProof(ctx context.Context, doc jsonmap.JSONMap, opts suite.ProofOptions, signer kms.Signer, loader ld.DocumentLoader) (*model.Proof, error) {
	multi, ok := signer.(kms.MultiMessageSigner)
	if !ok {
		return nil, fmt.Errorf("failed to create %s proof: signer cannot sign multiple messages", SignatureType)
	}
	if pub := multi.PublicKey(); pub == nil || pub.Type != model.KeyTypeBls12381G2 {
		return nil, fmt.Errorf("%s requires a %s key", SignatureType, model.KeyTypeBls12381G2)
	}

	proof := suite.NewProof(SignatureType, opts)
	messages, err := Messages(doc, proof, loader)
	if err != nil {
		return nil, err
	}

	signature, err := multi.SignMessages(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s proof: %w", SignatureType, err)
	}
	proof.ProofValue = base64.StdEncoding.EncodeToString(signature)
	return &proof, nil
}

// VerifyProof verifies the BBS+ signature over the statement list.
func (s *Suite) VerifyProof(_ context.Context, doc jsonmap.JSONMap, proof model.Proof, pub *crypto.PublicKey, loader ld.DocumentLoader) error {
	if proof.Type != SignatureType {
		return fmt.Errorf("%w: %s cannot verify %s", suite.ErrProofTypeMismatch, SignatureType, proof.Type)
	}
	if pub == nil || pub.Type != model.KeyTypeBls12381G2 {
		return fmt.Errorf("%s requires a %s key", SignatureType, model.KeyTypeBls12381G2)
	}

	signature, err := base64.StdEncoding.DecodeString(proof.ProofValue)
	if err != nil {
		return fmt.Errorf("failed to decode proofValue: %w", err)
	}

	messages, err := Messages(doc, proof, loader)
	if err != nil {
		return err
	}
	return crypto.VerifyBBS(pub.Raw, messages, signature)
}

// Messages returns the canonical statements of the proof options followed by those of the
// document without its proof.
func Messages(doc jsonmap.JSONMap, proof model.Proof, loader ld.DocumentLoader) ([][]byte, error) {
	var opts []processor.ProcessorOpt
	if loader != nil {
		opts = append(opts, processor.WithDocumentLoader(loader))
	}

	optionsDoc, err := suite.ProofOptionsDocument(doc, proof).Clone()
	if err != nil {
		return nil, err
	}
	optionStatements, err := processor.CanonicalStatements(optionsDoc.Plain(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize proof options: %w", err)
	}

	unsigned, err := doc.Without("proof").Clone()
	if err != nil {
		return nil, err
	}
	docStatements, err := processor.CanonicalStatements(unsigned.Plain(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	messages := make([][]byte, 0, len(optionStatements)+len(docStatements))
	for _, statement := range append(optionStatements, docStatements...) {
		messages = append(messages, []byte(statement))
	}
	return messages, nil
}
