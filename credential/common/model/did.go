package model

// DIDDocument is the typed view of a resolved DID document used for key matching.
// Resolution itself works on the untyped document so that suite-specific fields survive.
type DIDDocument struct {
	Context            interface{}               `json:"@context,omitempty"`
	ID                 string                    `json:"id"`
	Controller         interface{}               `json:"controller,omitempty"` // Can be string or []string
	VerificationMethod []VerificationMethodEntry `json:"verificationMethod,omitempty"`
	Authentication     []interface{}             `json:"authentication,omitempty"`
	AssertionMethod    []interface{}             `json:"assertionMethod,omitempty"`

	CapabilityInvocation []interface{} `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []interface{} `json:"capabilityDelegation,omitempty"`
}

// VerificationMethodEntry represents a single verification method in a DID Document.
type VerificationMethodEntry struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyHex       string `json:"publicKeyHex,omitempty"`
	PublicKeyBase58    string `json:"publicKeyBase58,omitempty"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
	PublicKeyJwk       *JWK   `json:"publicKeyJwk,omitempty"`
}

// JWK represents a JSON Web Key structure
type JWK struct {
	Kty string `json:"kty"`           // Key type
	Crv string `json:"crv"`           // Curve
	X   string `json:"x"`             // X coordinate
	Y   string `json:"y,omitempty"`   // Y coordinate
	Kid string `json:"kid,omitempty"` // Key ID
}
