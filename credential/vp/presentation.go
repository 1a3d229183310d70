package vp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vc"
)

// TypeVerifiablePresentation is the base type every presentation carries.
const TypeVerifiablePresentation = "VerifiablePresentation"

// ErrUnsupportedCredentialFormat is returned for embedded credentials that are not JSON-LD objects,
// such as JWT strings.
var ErrUnsupportedCredentialFormat = errors.New("unsupported credential format")

// Presentation is a Verifiable Presentation in its JSON-LD form.
type Presentation struct {
	data jsonmap.JSONMap
}

// PresentationContents represents the structured contents of a Presentation.
type PresentationContents struct {
	Context               []interface{}
	ID                    string
	Types                 []string
	Holder                string
	VerifiableCredentials []*vc.Credential
}

// New builds a presentation from its contents.
func New(vpc PresentationContents) (*Presentation, error) {
	m, err := serializePresentationContents(&vpc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize presentation contents: %w", err)
	}
	return FromMap(m)
}

// Prepare completes an unsigned presentation payload: the credentials context comes first and
// the VerifiablePresentation type is present. payload is not modified.
func Prepare(payload jsonmap.JSONMap) (*Presentation, error) {
	if payload == nil {
		return nil, fmt.Errorf("presentation payload is nil")
	}

	m, err := payload.Clone()
	if err != nil {
		return nil, err
	}
	m["@context"] = prependUnique(jsonmap.AsArray(m["@context"]), contexts.CredentialsV1)
	m["type"] = prependUnique(jsonmap.AsArray(m["type"]), TypeVerifiablePresentation)
	return FromMap(m)
}

// Parse decodes a JSON presentation.
func Parse(raw []byte) (*Presentation, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("presentation is empty")
	}
	m, err := jsonmap.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal presentation: %w", err)
	}
	return FromMap(m)
}

// FromMap wraps a JSON presentation after checking its required members.
func FromMap(m jsonmap.JSONMap) (*Presentation, error) {
	if m == nil {
		return nil, fmt.Errorf("presentation is nil")
	}
	for _, key := range []string{"@context", "type"} {
		if _, ok := m[key]; !ok {
			return nil, fmt.Errorf("%s is required", key)
		}
	}
	return &Presentation{data: m}, nil
}

// Map returns a deep copy of the presentation.
func (p *Presentation) Map() jsonmap.JSONMap {
	return p.data.MustClone()
}

// ToJSON serializes the presentation.
func (p *Presentation) ToJSON() ([]byte, error) {
	return p.data.ToJSON()
}

// WithoutProof returns a copy of the presentation without its proof.
func (p *Presentation) WithoutProof() jsonmap.JSONMap {
	return p.data.Without("proof").MustClone()
}

// Holder returns the holder, which may be given as a string or as an object with an id.
func (p *Presentation) Holder() string {
	switch h := p.data["holder"].(type) {
	case string:
		return h
	case map[string]interface{}:
		s, _ := h["id"].(string)
		return s
	}
	return ""
}

// Proofs returns the attached proofs.
func (p *Presentation) Proofs() []model.Proof {
	var proofs []model.Proof
	for _, raw := range jsonmap.AsArray(p.data["proof"]) {
		if obj, ok := jsonmap.AsObject(raw); ok {
			proofs = append(proofs, model.ProofFromMap(obj))
		}
	}
	return proofs
}

// Credentials returns the embedded credentials.
func (p *Presentation) Credentials() ([]*vc.Credential, error) {
	var creds []*vc.Credential
	for i, raw := range jsonmap.AsArray(p.data["verifiableCredential"]) {
		obj, ok := jsonmap.AsObject(raw)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedCredentialFormat, "credential at index %d", i)
		}
		cred, err := vc.FromMap(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credential at index %d: %w", i, err)
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// Contents parses the presentation into its structured form.
func (p *Presentation) Contents() (*PresentationContents, error) {
	contents := &PresentationContents{}
	parsers := []func(jsonmap.JSONMap, *PresentationContents) error{
		parseContext,
		parseID,
		parseTypes,
		parseHolder,
	}
	for _, parse := range parsers {
		if err := parse(p.data, contents); err != nil {
			return nil, err
		}
	}

	creds, err := p.Credentials()
	if err != nil {
		return nil, err
	}
	contents.VerifiableCredentials = creds
	return contents, nil
}
