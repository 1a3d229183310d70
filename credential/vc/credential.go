package vc

import (
	"fmt"
	"time"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// TypeVerifiableCredential is the base type every credential carries.
const TypeVerifiableCredential = "VerifiableCredential"

// Credential is a Verifiable Credential in its JSON-LD form.
type Credential struct {
	data jsonmap.JSONMap
}

// CredentialContents represents the structured contents of a Credential.
type CredentialContents struct {
	Context          []interface{} // JSON-LD contexts
	ID               string        // Credential identifier
	Types            []string      // Credential types
	Issuer           string        // Issuer identifier
	IssuanceDate     time.Time     // Issuance date
	ExpirationDate   time.Time     // Expiration date
	CredentialStatus []Status      // Credential status entries
	Subject          []Subject     // Credential subjects
	Schemas          []Schema      // Credential schemas
	CustomFields     jsonmap.JSONMap
}

// Status represents the credentialStatus field as per W3C Verifiable Credentials.
type Status struct {
	ID                   string `json:"id,omitempty"`
	Type                 string `json:"type"`
	StatusPurpose        string `json:"statusPurpose,omitempty"`
	StatusListIndex      string `json:"statusListIndex,omitempty"`
	StatusListCredential string `json:"statusListCredential,omitempty"`
}

// Subject represents the credentialSubject field.
type Subject struct {
	ID           string                 // Subject identifier
	CustomFields map[string]interface{} // Additional subject data
}

// Schema represents a credential schema with an ID and type.
type Schema struct {
	ID   string // Schema identifier
	Type string // Schema type
}

// New builds a credential from its contents.
func New(vcc CredentialContents) (*Credential, error) {
	m, err := serializeCredentialContents(&vcc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential contents: %w", err)
	}
	return FromMap(m)
}

// Prepare completes an unsigned credential payload: the credentials context comes first, the
// VerifiableCredential type is present and a missing issuanceDate is set to issuedAt.
// payload is not modified.
func Prepare(payload jsonmap.JSONMap, issuedAt time.Time) (*Credential, error) {
	if payload == nil {
		return nil, fmt.Errorf("credential payload is nil")
	}

	m, err := payload.Clone()
	if err != nil {
		return nil, err
	}
	m["@context"] = prependUnique(jsonmap.AsArray(m["@context"]), contexts.CredentialsV1)
	m["type"] = prependUnique(jsonmap.AsArray(m["type"]), TypeVerifiableCredential)
	if _, ok := m["issuanceDate"]; !ok {
		m["issuanceDate"] = FormatDate(issuedAt)
	}
	return FromMap(m)
}

// Parse decodes a JSON credential.
func Parse(raw []byte) (*Credential, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}
	m, err := jsonmap.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return FromMap(m)
}

// FromMap wraps a JSON credential after checking its required members.
func FromMap(m jsonmap.JSONMap) (*Credential, error) {
	if m == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	for _, key := range []string{"@context", "type", "issuer", "credentialSubject"} {
		if _, ok := m[key]; !ok {
			return nil, fmt.Errorf("%s is required", key)
		}
	}
	c := &Credential{data: m}
	if c.IssuerID() == "" {
		return nil, fmt.Errorf("issuer must be a string or an object with an id")
	}
	return c, nil
}

// Map returns a deep copy of the credential.
func (c *Credential) Map() jsonmap.JSONMap {
	return c.data.MustClone()
}

// ToJSON serializes the credential.
func (c *Credential) ToJSON() ([]byte, error) {
	return c.data.ToJSON()
}

// WithoutProof returns a copy of the credential without its proof.
func (c *Credential) WithoutProof() jsonmap.JSONMap {
	return c.data.Without("proof").MustClone()
}

// IssuerID returns the issuer, which may be given as a string or as an object with an id.
func (c *Credential) IssuerID() string {
	return idOf(c.data["issuer"])
}

// SubjectID returns the id of the first credential subject.
func (c *Credential) SubjectID() string {
	subjects := jsonmap.AsArray(c.data["credentialSubject"])
	if len(subjects) == 0 {
		return ""
	}
	return idOf(subjects[0])
}

// Types returns the credential types.
func (c *Credential) Types() []string {
	return stringsOf(c.data["type"])
}

// Proofs returns the attached proofs.
func (c *Credential) Proofs() []model.Proof {
	return proofsOf(c.data["proof"])
}

// IssuanceDate parses issuanceDate, falling back to validFrom.
func (c *Credential) IssuanceDate() (time.Time, error) {
	for _, key := range []string{"issuanceDate", "validFrom"} {
		if s := c.data.GetString(key); s != "" {
			return ParseDate(s)
		}
	}
	return time.Time{}, fmt.Errorf("credential has no issuanceDate")
}

// ExpirationDate parses expirationDate, falling back to validUntil. ok is false when the
// credential does not expire.
func (c *Credential) ExpirationDate() (t time.Time, ok bool, err error) {
	for _, key := range []string{"expirationDate", "validUntil"} {
		if s := c.data.GetString(key); s != "" {
			t, err = ParseDate(s)
			return t, err == nil, err
		}
	}
	return time.Time{}, false, nil
}

// Contents parses the credential into its structured form.
func (c *Credential) Contents() (*CredentialContents, error) {
	contents := &CredentialContents{}
	parsers := []func(jsonmap.JSONMap, *CredentialContents) error{
		parseContext,
		parseID,
		parseTypes,
		parseIssuer,
		parseDates,
		parseSubject,
		parseSchema,
		parseStatus,
		parseCustomFields,
	}
	for _, parse := range parsers {
		if err := parse(c.data, contents); err != nil {
			return nil, err
		}
	}
	return contents, nil
}

// FormatDate renders credential dates (RFC 3339, UTC, second precision).
func FormatDate(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ParseDate parses an RFC 3339 date, with or without fractional seconds.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
