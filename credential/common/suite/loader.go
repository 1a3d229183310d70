package suite

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

// Loader selects suites from a fixed, ordered list. It is safe for concurrent use.
type Loader struct {
	suites []Suite
}

// NewLoader creates a loader. The order of suites is the lookup order.
func NewLoader(suites ...Suite) *Loader {
	return &Loader{suites: slices.Clone(suites)}
}

// SignatureSuiteForKeyType returns the first suite registered for both the verification method
// type and the key type, then the first for the verification method type alone, then the first
// for the key type alone.
func (l *Loader) SignatureSuiteForKeyType(keyType model.KeyType, verificationType string) (Suite, error) {
	matchers := []func(Suite) bool{
		func(s Suite) bool {
			return verificationType != "" && s.SupportedVerificationType() == verificationType && s.SupportedKeyType() == keyType
		},
		func(s Suite) bool {
			return verificationType != "" && s.SupportedVerificationType() == verificationType
		},
		func(s Suite) bool {
			return keyType != "" && s.SupportedKeyType() == keyType
		},
	}

	for _, match := range matchers {
		if i := slices.IndexFunc(l.suites, match); i >= 0 {
			return l.suites[i], nil
		}
	}

	missing := verificationType
	if missing == "" {
		missing = string(keyType)
	}
	return nil, fmt.Errorf("%w for %s", ErrNoSuite, missing)
}

// SuiteForProofType returns the first suite producing the proof type.
func (l *Loader) SuiteForProofType(proofType string) (Suite, error) {
	i := slices.IndexFunc(l.suites, func(s Suite) bool { return s.ProofType() == proofType })
	if i < 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoSuite, proofType)
	}
	return l.suites[i], nil
}

// SupportedVerificationTypes lists the distinct verification method types in registration order.
func (l *Loader) SupportedVerificationTypes() []string {
	var types []string
	for _, s := range l.suites {
		if !slices.Contains(types, s.SupportedVerificationType()) {
			types = append(types, s.SupportedVerificationType())
		}
	}
	return types
}

// All returns the registered suites.
func (l *Loader) All() []Suite {
	return slices.Clone(l.suites)
}
