package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/go-jose/go-jose/v3"
	"github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"github.com/mr-tron/base58"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

var randReader io.Reader = rand.Reader

// PublicKey is a decoded verification key.
type PublicKey struct {
	Type model.KeyType
	// Raw holds 32 bytes for Ed25519, the 33-byte compressed point for secp256k1 and P-256,
	// and the 96-byte G2 point for BLS12-381.
	Raw []byte
}

// KeyPair is freshly generated key material.
type KeyPair struct {
	Type    model.KeyType
	Private []byte
	Public  []byte
}

// GenerateKey creates a key pair of the given type.
func GenerateKey(keyType model.KeyType) (*KeyPair, error) {
	switch keyType {
	case model.KeyTypeEd25519:
		pub, priv, err := ed25519.GenerateKey(randReader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate Ed25519 key: %w", err)
		}
		return &KeyPair{Type: keyType, Private: priv, Public: pub}, nil
	case model.KeyTypeSecp256k1:
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
		}
		return &KeyPair{Type: keyType, Private: priv.Serialize(), Public: priv.PubKey().SerializeCompressed()}, nil
	case model.KeyTypeP256:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), randReader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate P-256 key: %w", err)
		}
		d := make([]byte, 32)
		priv.D.FillBytes(d)
		return &KeyPair{Type: keyType, Private: d, Public: elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y)}, nil
	case model.KeyTypeBls12381G2:
		pub, priv, err := bbs12381g2pub.GenerateKeyPair(sha256.New, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate BLS12-381 G2 key: %w", err)
		}
		return bbsKeyPair(pub, priv)
	default:
		return nil, fmt.Errorf("unsupported key type %q", keyType)
	}
}

// PublicKeyFromPrivate derives the public key for imported private key material.
func PublicKeyFromPrivate(keyType model.KeyType, private []byte) ([]byte, error) {
	switch keyType {
	case model.KeyTypeEd25519:
		if len(private) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("invalid Ed25519 private key length %d", len(private))
		}
		return ed25519.PrivateKey(private).Public().(ed25519.PublicKey), nil
	case model.KeyTypeSecp256k1:
		priv, err := ParsePrivateKey(private)
		if err != nil {
			return nil, err
		}
		return ethcrypto.CompressPubkey(&priv.PublicKey), nil
	case model.KeyTypeP256:
		if len(private) != 32 {
			return nil, fmt.Errorf("invalid P-256 private key length %d", len(private))
		}
		x, y := elliptic.P256().ScalarBaseMult(private)
		return elliptic.MarshalCompressed(elliptic.P256(), x, y), nil
	case model.KeyTypeBls12381G2:
		priv, err := bbs12381g2pub.UnmarshalPrivateKey(private)
		if err != nil {
			return nil, fmt.Errorf("failed to parse BLS12-381 private key: %w", err)
		}
		return priv.PublicKey().Marshal()
	default:
		return nil, fmt.Errorf("unsupported key type %q", keyType)
	}
}

func bbsKeyPair(pub *bbs12381g2pub.PublicKey, priv *bbs12381g2pub.PrivateKey) (*KeyPair, error) {
	privBytes, err := priv.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal BLS12-381 private key: %w", err)
	}
	pubBytes, err := pub.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal BLS12-381 public key: %w", err)
	}
	return &KeyPair{Type: model.KeyTypeBls12381G2, Private: privBytes, Public: pubBytes}, nil
}

// KeyTypeForVerificationMethod maps a verification method type to the key type it carries.
// JsonWebKey2020 is resolved from the JWK curve instead.
func KeyTypeForVerificationMethod(vmType string) (model.KeyType, bool) {
	switch vmType {
	case model.Ed25519VerificationKey2018, model.Ed25519VerificationKey2020:
		return model.KeyTypeEd25519, true
	case model.EcdsaSecp256k1VerificationKey2019:
		return model.KeyTypeSecp256k1, true
	case model.Bls12381G2Key2020:
		return model.KeyTypeBls12381G2, true
	default:
		return "", false
	}
}

// PublicKeyFromVerificationMethod decodes the key material of a verification method.
// publicKeyJwk, publicKeyMultibase, publicKeyBase58 and publicKeyHex are tried in that order.
func PublicKeyFromVerificationMethod(vm jsonmap.JSONMap) (*PublicKey, error) {
	if vm == nil {
		return nil, fmt.Errorf("verification method is nil")
	}

	if jwk, ok := vm["publicKeyJwk"]; ok {
		raw, err := json.Marshal(jwk)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal publicKeyJwk: %w", err)
		}
		return PublicKeyFromJWK(raw)
	}

	keyType, known := KeyTypeForVerificationMethod(vm.GetString("type"))

	if mb := vm.GetString("publicKeyMultibase"); mb != "" {
		pub, err := DecodeMultikey(mb)
		if err == nil {
			return pub, nil
		}
		if !known {
			return nil, err
		}
		// some documents carry the bare key without a multicodec header
		raw, derr := decodeMultibase(mb)
		if derr != nil {
			return nil, derr
		}
		return &PublicKey{Type: keyType, Raw: raw}, nil
	}

	if !known {
		return nil, fmt.Errorf("unsupported verification method type %q", vm.GetString("type"))
	}

	var (
		raw []byte
		err error
	)
	switch {
	case vm.GetString("publicKeyBase58") != "":
		raw, err = base58.Decode(vm.GetString("publicKeyBase58"))
	case vm.GetString("publicKeyHex") != "":
		raw, err = KeyToBytes(vm.GetString("publicKeyHex"))
	default:
		return nil, fmt.Errorf("verification method %q has no public key material", vm.GetString("id"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key of %q: %w", vm.GetString("id"), err)
	}

	if keyType == model.KeyTypeSecp256k1 {
		if raw, err = CompressSecp256k1(raw); err != nil {
			return nil, err
		}
	}
	return &PublicKey{Type: keyType, Raw: raw}, nil
}

// PublicKeyFromJWK decodes an OKP Ed25519 or EC (P-256, secp256k1) JSON Web Key.
func PublicKeyFromJWK(raw []byte) (*PublicKey, error) {
	var header model.JWK
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JWK: %w", err)
	}

	// go-jose does not know secp256k1
	if header.Kty == "EC" && header.Crv == "secp256k1" {
		return secp256k1FromJWK(header)
	}

	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to parse JWK: %w", err)
	}

	switch key := jwk.Key.(type) {
	case ed25519.PublicKey:
		return &PublicKey{Type: model.KeyTypeEd25519, Raw: key}, nil
	case *ecdsa.PublicKey:
		if key.Curve != elliptic.P256() {
			return nil, fmt.Errorf("unsupported JWK curve %q", header.Crv)
		}
		return &PublicKey{Type: model.KeyTypeP256, Raw: elliptic.MarshalCompressed(key.Curve, key.X, key.Y)}, nil
	default:
		return nil, fmt.Errorf("unsupported JWK key %T", jwk.Key)
	}
}

func secp256k1FromJWK(jwk model.JWK) (*PublicKey, error) {
	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWK x: %w", err)
	}
	y, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWK y: %w", err)
	}
	if len(x) != 32 || len(y) != 32 {
		return nil, fmt.Errorf("invalid secp256k1 JWK coordinates")
	}

	uncompressed := append(append([]byte{0x04}, x...), y...)
	compressed, err := CompressSecp256k1(uncompressed)
	if err != nil {
		return nil, err
	}
	return &PublicKey{Type: model.KeyTypeSecp256k1, Raw: compressed}, nil
}

// JWK encodes the public key as a JSON Web Key. BLS12-381 keys have no JWK form here.
func (k *PublicKey) JWK() (*model.JWK, error) {
	switch k.Type {
	case model.KeyTypeEd25519:
		raw, err := jose.JSONWebKey{Key: ed25519.PublicKey(k.Raw)}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JWK: %w", err)
		}
		var jwk model.JWK
		if err := json.Unmarshal(raw, &jwk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JWK: %w", err)
		}
		return &jwk, nil
	case model.KeyTypeP256:
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), k.Raw)
		if x == nil {
			return nil, fmt.Errorf("invalid P-256 public key")
		}
		raw, err := jose.JSONWebKey{Key: &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}}.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JWK: %w", err)
		}
		var jwk model.JWK
		if err := json.Unmarshal(raw, &jwk); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JWK: %w", err)
		}
		return &jwk, nil
	case model.KeyTypeSecp256k1:
		pub, err := btcec.ParsePubKey(k.Raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse secp256k1 public key: %w", err)
		}
		uncompressed := pub.SerializeUncompressed()
		return &model.JWK{
			Kty: "EC",
			Crv: "secp256k1",
			X:   base64.RawURLEncoding.EncodeToString(uncompressed[1:33]),
			Y:   base64.RawURLEncoding.EncodeToString(uncompressed[33:]),
		}, nil
	default:
		return nil, fmt.Errorf("key type %q has no JWK encoding", k.Type)
	}
}
