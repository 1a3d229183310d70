package kms

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/storage"
)

const (
	keyNamespace        = "keys"
	identifierNamespace = "identifiers"
)

var (
	// ErrKeyNotFound is returned when the key manager does not hold the requested key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIdentifierNotFound is returned for unknown identifiers.
	ErrIdentifierNotFound = errors.New("identifier not found")
)

// Key is the public view of a managed key.
type Key struct {
	Kid          string        `json:"kid"`
	Type         model.KeyType `json:"type"`
	PublicKeyHex string        `json:"publicKeyHex"`
}

// PublicKey decodes the public key material.
func (k Key) PublicKey() (*crypto.PublicKey, error) {
	raw, err := hex.DecodeString(k.PublicKeyHex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid public key of %s", k.Kid)
	}
	return &crypto.PublicKey{Type: k.Type, Raw: raw}, nil
}

// Identifier is a DID together with the keys the key manager holds for it.
type Identifier struct {
	DID             string `json:"did"`
	Provider        string `json:"provider"`
	ControllerKeyID string `json:"controllerKeyId,omitempty"`
	Keys            []Key  `json:"keys"`
}

// KeyManager creates, stores and signs with keys, and tracks the identifiers that own them.
type KeyManager interface {
	CreateKey(ctx context.Context, keyType model.KeyType) (*Key, error)
	ImportKey(ctx context.Context, keyType model.KeyType, privateKey []byte) (*Key, error)
	GetKey(ctx context.Context, kid string) (*Key, error)
	DeleteKey(ctx context.Context, kid string) error
	Signer(ctx context.Context, kid string) (Signer, error)
	SaveIdentifier(ctx context.Context, identifier Identifier) error
	GetIdentifier(ctx context.Context, did string) (*Identifier, error)
	ListIdentifiers(ctx context.Context) ([]Identifier, error)
}

type storedKey struct {
	Key
	PrivateKeyHex string `json:"privateKeyHex"`
}

// LocalKeyManager keeps key material in a storage.Store.
type LocalKeyManager struct {
	store storage.Store
}

var _ KeyManager = (*LocalKeyManager)(nil)

// NewLocalKeyManager creates a key manager on top of the store.
func NewLocalKeyManager(store storage.Store) *LocalKeyManager {
	return &LocalKeyManager{store: store}
}

// CreateKey generates a new key. The kid is the hex-encoded public key.
func (m *LocalKeyManager) CreateKey(_ context.Context, keyType model.KeyType) (*Key, error) {
	kp, err := crypto.GenerateKey(keyType)
	if err != nil {
		return nil, err
	}
	return m.save(keyType, kp.Private, kp.Public)
}

// ImportKey stores existing private key material.
func (m *LocalKeyManager) ImportKey(_ context.Context, keyType model.KeyType, privateKey []byte) (*Key, error) {
	pub, err := crypto.PublicKeyFromPrivate(keyType, privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "could not import key")
	}
	return m.save(keyType, privateKey, pub)
}

func (m *LocalKeyManager) save(keyType model.KeyType, private, public []byte) (*Key, error) {
	stored := storedKey{
		Key: Key{
			Kid:          hex.EncodeToString(public),
			Type:         keyType,
			PublicKeyHex: hex.EncodeToString(public),
		},
		PrivateKeyHex: hex.EncodeToString(private),
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal key")
	}
	if err := m.store.Write(keyNamespace, stored.Kid, raw); err != nil {
		return nil, errors.Wrapf(err, "could not store key %s", stored.Kid)
	}

	key := stored.Key
	return &key, nil
}

func (m *LocalKeyManager) load(kid string) (*storedKey, error) {
	raw, err := m.store.Read(keyNamespace, kid)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read key %s", kid)
	}
	if raw == nil {
		return nil, errors.Wrap(ErrKeyNotFound, kid)
	}

	var stored storedKey
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal key %s", kid)
	}
	return &stored, nil
}

func (m *LocalKeyManager) GetKey(_ context.Context, kid string) (*Key, error) {
	stored, err := m.load(kid)
	if err != nil {
		return nil, err
	}
	return &stored.Key, nil
}

func (m *LocalKeyManager) DeleteKey(_ context.Context, kid string) error {
	if _, err := m.load(kid); err != nil {
		return err
	}
	return m.store.Delete(keyNamespace, kid)
}

// Signer returns a signer bound to the stored private key.
func (m *LocalKeyManager) Signer(_ context.Context, kid string) (Signer, error) {
	stored, err := m.load(kid)
	if err != nil {
		return nil, err
	}

	private, err := hex.DecodeString(stored.PrivateKeyHex)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid private key of %s", kid)
	}
	pub, err := stored.Key.PublicKey()
	if err != nil {
		return nil, err
	}
	return NewLocalSigner(stored.Kid, pub, private)
}

func (m *LocalKeyManager) SaveIdentifier(_ context.Context, identifier Identifier) error {
	if identifier.DID == "" {
		return errors.New("identifier has no DID")
	}
	raw, err := json.Marshal(identifier)
	if err != nil {
		return errors.Wrap(err, "could not marshal identifier")
	}
	return m.store.Write(identifierNamespace, identifier.DID, raw)
}

func (m *LocalKeyManager) GetIdentifier(_ context.Context, did string) (*Identifier, error) {
	raw, err := m.store.Read(identifierNamespace, did)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read identifier %s", did)
	}
	if raw == nil {
		return nil, errors.Wrap(ErrIdentifierNotFound, did)
	}

	var identifier Identifier
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal identifier %s", did)
	}
	return &identifier, nil
}

func (m *LocalKeyManager) ListIdentifiers(_ context.Context) ([]Identifier, error) {
	all, err := m.store.ReadAll(identifierNamespace)
	if err != nil {
		return nil, errors.Wrap(err, "could not list identifiers")
	}

	identifiers := make([]Identifier, 0, len(all))
	for did, raw := range all {
		var identifier Identifier
		if err := json.Unmarshal(raw, &identifier); err != nil {
			return nil, errors.Wrapf(err, "could not unmarshal identifier %s", did)
		}
		identifiers = append(identifiers, identifier)
	}
	return identifiers, nil
}
