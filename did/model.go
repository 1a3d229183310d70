package did

import (
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// KeyMethod is the DID method this package creates and resolves.
const KeyMethod = "key"

// Provider is recorded on identifiers created by the Generator.
const Provider = "did:key"

// DID is a generated identifier with its controller key and document.
type DID struct {
	DID      string            `json:"did"`
	Key      kms.Key           `json:"key"`
	Document model.DIDDocument `json:"document"`
}
