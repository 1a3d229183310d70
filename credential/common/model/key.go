package model

// KeyType names the algorithm family of a key.
type KeyType string

const (
	KeyTypeEd25519    KeyType = "Ed25519"
	KeyTypeSecp256k1  KeyType = "Secp256k1"
	KeyTypeP256       KeyType = "P-256"
	KeyTypeBls12381G2 KeyType = "Bls12381G2"
)

// Verification method types.
const (
	Ed25519VerificationKey2018        = "Ed25519VerificationKey2018"
	Ed25519VerificationKey2020        = "Ed25519VerificationKey2020"
	EcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	JSONWebKey2020                    = "JsonWebKey2020"
	Bls12381G2Key2020                 = "Bls12381G2Key2020"
)
