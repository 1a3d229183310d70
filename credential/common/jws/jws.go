package jws

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Algorithms used by the detached JWS proof suites.
const (
	AlgEdDSA  = "EdDSA"
	AlgES256K = "ES256K"
	AlgES256  = "ES256"
)

// Header is the protected header of a detached JWS with an unencoded payload.
type Header struct {
	Alg  string   `json:"alg"`
	B64  bool     `json:"b64"`
	Crit []string `json:"crit"`
	Kid  string   `json:"kid,omitempty"`
}

// NewHeader returns the RFC 7797 header for the given algorithm.
func NewHeader(alg string) Header {
	return Header{Alg: alg, B64: false, Crit: []string{"b64"}}
}

// Encode returns the base64url form of the header.
func (h Header) Encode() (string, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWS header: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// SigningInput builds "<header>." || payload. The payload is not encoded.
func SigningInput(encodedHeader string, payload []byte) []byte {
	input := make([]byte, 0, len(encodedHeader)+1+len(payload))
	input = append(input, encodedHeader...)
	input = append(input, '.')
	return append(input, payload...)
}

// Detached assembles "<header>..<signature>".
func Detached(encodedHeader string, signature []byte) string {
	return encodedHeader + ".." + base64.RawURLEncoding.EncodeToString(signature)
}

// Parsed is a decoded detached JWS.
type Parsed struct {
	Header        Header
	EncodedHeader string
	Signature     []byte
}

// Parse decodes a detached JWS and checks the unencoded payload header.
func Parse(token string) (*Parsed, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid JWS format")
	}
	if parts[1] != "" {
		return nil, fmt.Errorf("JWS payload is not detached")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}
	if header.B64 || !containsB64(header.Crit) {
		return nil, fmt.Errorf("JWS header must declare b64=false as critical")
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	return &Parsed{Header: header, EncodedHeader: parts[0], Signature: signature}, nil
}

func containsB64(crit []string) bool {
	for _, c := range crit {
		if c == "b64" {
			return true
		}
	}
	return false
}
