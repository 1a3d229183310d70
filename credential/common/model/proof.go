package model

// Proof represents a Linked Data Proof for a Verifiable Credential or Presentation.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created,omitempty"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue,omitempty"`
	JWS                string `json:"jws,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
	Domain             string `json:"domain,omitempty"`
	Nonce              string `json:"nonce,omitempty"`
}

// Proof purposes.
const (
	AssertionMethod = "assertionMethod"
	Authentication  = "authentication"
)

// ToMap returns the proof as a JSON object.
func (p Proof) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"type":               p.Type,
		"verificationMethod": p.VerificationMethod,
		"proofPurpose":       p.ProofPurpose,
	}
	optional := map[string]string{
		"created":    p.Created,
		"proofValue": p.ProofValue,
		"jws":        p.JWS,
		"challenge":  p.Challenge,
		"domain":     p.Domain,
		"nonce":      p.Nonce,
	}
	for k, v := range optional {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// ProofFromMap reads a proof from a JSON object. Unknown members are ignored.
func ProofFromMap(m map[string]interface{}) Proof {
	get := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return Proof{
		Type:               get("type"),
		Created:            get("created"),
		VerificationMethod: get("verificationMethod"),
		ProofPurpose:       get("proofPurpose"),
		ProofValue:         get("proofValue"),
		JWS:                get("jws"),
		Challenge:          get("challenge"),
		Domain:             get("domain"),
		Nonce:              get("nonce"),
	}
}
