package kms

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// Signer produces signatures with a single key. Ed25519 signs the data as-is; ECDSA keys sign
// SHA-256(data).
type Signer interface {
	KeyID() string
	PublicKey() *crypto.PublicKey
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// MultiMessageSigner signs an ordered list of messages at once (BBS+).
type MultiMessageSigner interface {
	Signer
	SignMessages(ctx context.Context, messages [][]byte) ([]byte, error)
}

// LocalSigner signs with in-memory private key material.
type LocalSigner struct {
	kid     string
	pub     *crypto.PublicKey
	private []byte
}

var _ MultiMessageSigner = (*LocalSigner)(nil)

// NewLocalSigner creates a signer for the given key.
func NewLocalSigner(kid string, pub *crypto.PublicKey, private []byte) (*LocalSigner, error) {
	if pub == nil || len(private) == 0 {
		return nil, errors.New("signer requires a key pair")
	}
	return &LocalSigner{kid: kid, pub: pub, private: private}, nil
}

func (s *LocalSigner) KeyID() string {
	return s.kid
}

func (s *LocalSigner) PublicKey() *crypto.PublicKey {
	return s.pub
}

func (s *LocalSigner) Sign(ctx context.Context, data []byte) ([]byte, error) {
	switch s.pub.Type {
	case model.KeyTypeEd25519:
		return crypto.SignEd25519(s.private, data)
	case model.KeyTypeSecp256k1:
		return crypto.SignSecp256k1(s.private, data)
	case model.KeyTypeP256:
		return crypto.SignP256(s.private, data)
	case model.KeyTypeBls12381G2:
		return s.SignMessages(ctx, [][]byte{data})
	default:
		return nil, errors.Errorf("unsupported key type %q", s.pub.Type)
	}
}

func (s *LocalSigner) SignMessages(_ context.Context, messages [][]byte) ([]byte, error) {
	if s.pub.Type != model.KeyTypeBls12381G2 {
		return nil, errors.Errorf("key type %q cannot sign multiple messages", s.pub.Type)
	}
	return crypto.SignBBS(s.private, messages)
}
