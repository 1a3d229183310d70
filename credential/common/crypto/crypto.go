package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// ErrInvalidSignature is returned when a signature does not verify against the public key.
var ErrInvalidSignature = errors.New("signature verification failed")

// KeyToBytes converts a hex string, with or without the 0x prefix, to a byte array.
func KeyToBytes(key string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(key, "0x"))
}

// ParsePrivateKey parses a private key of type secp256k1 from bytes
// The length of the private key is 32 bytes.
func ParsePrivateKey(privateKeyBytes []byte) (*ecdsa.PrivateKey, error) {
	if len(privateKeyBytes) != 32 {
		return nil, errors.New("private key must be 32 bytes")
	}

	privKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, err
	}

	return privKey, nil
}

// SignSecp256k1 hashes the message with SHA-256 and signs it, returning the 64-byte R || S form
// used by ES256K.
func SignSecp256k1(privateKey, message []byte) ([]byte, error) {
	privKey, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(message)
	signature, err := crypto.Sign(hash[:], privKey)
	if err != nil {
		return nil, fmt.Errorf("secp256k1: sign error: %w", err)
	}

	// drop the recovery byte
	return signature[:64], nil
}

// VerifySecp256k1 verifies a secp256k1 signature over SHA-256(message).
// The public key may be compressed (33 bytes) or uncompressed (65 bytes).
// The signature may carry a recovery byte (65 bytes) or not (64 bytes).
func VerifySecp256k1(publicKey, message, signature []byte) bool {
	if len(message) == 0 {
		return false
	}

	compressed, err := CompressSecp256k1(publicKey)
	if err != nil {
		return false
	}

	hash := sha256.Sum256(message)

	switch len(signature) {
	case 64:
		return crypto.VerifySignature(compressed, hash[:], signature)
	case 65:
		recoveredPubKey, err := crypto.Ecrecover(hash[:], signature)
		if err != nil {
			return false
		}

		recoveredPubKeyObj, err := crypto.UnmarshalPubkey(recoveredPubKey)
		if err != nil {
			return false
		}

		return bytes.Equal(crypto.CompressPubkey(recoveredPubKeyObj), compressed)
	default:
		return false
	}
}

// CompressSecp256k1 returns the 33-byte compressed form of a secp256k1 public key.
func CompressSecp256k1(publicKey []byte) ([]byte, error) {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secp256k1 public key: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// SignP256 hashes the message with SHA-256 and signs it, returning the fixed 64-byte R || S form
// used by ES256.
func SignP256(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != 32 {
		return nil, errors.New("P-256 private key must be 32 bytes")
	}

	curve := elliptic.P256()
	priv := &ecdsa.PrivateKey{D: new(big.Int).SetBytes(privateKey)}
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(privateKey)

	hash := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(randReader, priv, hash[:])
	if err != nil {
		return nil, fmt.Errorf("P-256: sign error: %w", err)
	}

	signature := make([]byte, 64)
	r.FillBytes(signature[:32])
	s.FillBytes(signature[32:])
	return signature, nil
}

// VerifyP256 verifies a fixed-size R || S signature over SHA-256(message).
func VerifyP256(publicKey, message, signature []byte) bool {
	if len(signature) != 64 {
		return false
	}

	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), publicKey)
	if x == nil {
		x, y = elliptic.Unmarshal(elliptic.P256(), publicKey) //nolint:staticcheck
	}
	if x == nil {
		return false
	}

	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	hash := sha256.Sum256(message)
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(pub, hash[:], r, s)
}

// Verify checks a single-message signature made by the key. BBS+ keys sign statement lists and
// are verified with VerifyBBS instead.
func Verify(pub *PublicKey, message, signature []byte) error {
	if pub == nil {
		return errors.New("public key is nil")
	}

	var ok bool
	switch pub.Type {
	case model.KeyTypeEd25519:
		if len(pub.Raw) != ed25519.PublicKeySize {
			return fmt.Errorf("invalid Ed25519 public key length %d", len(pub.Raw))
		}
		ok = ed25519.Verify(pub.Raw, message, signature)
	case model.KeyTypeSecp256k1:
		ok = VerifySecp256k1(pub.Raw, message, signature)
	case model.KeyTypeP256:
		ok = VerifyP256(pub.Raw, message, signature)
	default:
		return fmt.Errorf("unsupported key type %q for single message verification", pub.Type)
	}

	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

// SignEd25519 signs the raw message with an Ed25519 private key.
func SignEd25519(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid Ed25519 private key length %d", len(privateKey))
	}
	return ed25519.Sign(ed25519.PrivateKey(privateKey), message), nil
}
