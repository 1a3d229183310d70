package credentialstatus

import "github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"

// Status entry types.
const (
	StatusList2021Entry      = "StatusList2021Entry"
	BitstringStatusListEntry = "BitstringStatusListEntry"
)

// Status purposes.
const (
	PurposeRevocation = "revocation"
	PurposeSuspension = "suspension"
)

// Entry is a credentialStatus entry pointing into a status list.
type Entry struct {
	ID                   string `json:"id,omitempty"`
	Type                 string `json:"type"`
	StatusPurpose        string `json:"statusPurpose,omitempty"`
	StatusListIndex      string `json:"statusListIndex,omitempty"`
	StatusListCredential string `json:"statusListCredential,omitempty"`
}

// StatusListCredentialResponse is the wrapper some status services put around the credential.
type StatusListCredentialResponse struct {
	Data *StatusListCredential `json:"data"`
}

// StatusListCredential models the status list credential. Only the members needed to check a
// status are typed.
type StatusListCredential struct {
	Context           []interface{}               `json:"@context"`
	CredentialSubject StatusListCredentialSubject `json:"credentialSubject"`
	ID                string                      `json:"id"`
	Issuer            interface{}                 `json:"issuer"`
	Proof             interface{}                 `json:"proof,omitempty"`
	Type              []string                    `json:"type"`

	// Raw is the credential as fetched, for proof verification.
	Raw jsonmap.JSONMap `json:"-"`
}

// StatusListCredentialSubject represents the credentialSubject of the
// status list credential, including the encoded bitstring list.
type StatusListCredentialSubject struct {
	EncodedList   string `json:"encodedList"`
	ID            string `json:"id"`
	StatusPurpose string `json:"statusPurpose"`
	Type          string `json:"type"`
}
