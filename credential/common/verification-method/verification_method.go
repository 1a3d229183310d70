package verificationmethod

import (
	"fmt"
	"strings"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

// SplitDIDURL splits a DID URL into the DID and the fragment (without '#').
// Paths and queries stay attached to the DID part.
func SplitDIDURL(didURL string) (string, string) {
	did, fragment, _ := strings.Cut(didURL, "#")
	return did, fragment
}

// GetDIDFromVerificationMethod extracts the DID from a verification method URL.
func GetDIDFromVerificationMethod(verificationMethod string) (string, error) {
	if verificationMethod == "" {
		return "", fmt.Errorf("verification method is empty")
	}

	// Extract DID by removing fragment
	didPart, _, found := strings.Cut(verificationMethod, "#")
	if !found || didPart == "" {
		return "", fmt.Errorf("invalid verification method URL, could not extract DID: %s", verificationMethod)
	}

	// Validate DID prefix
	if !strings.HasPrefix(strings.ToLower(didPart), "did:") {
		return "", fmt.Errorf("extracted DID '%s' is invalid, must start with 'did:'", didPart)
	}

	return didPart, nil
}

// componentSections are searched in order when dereferencing a fragment.
var componentSections = []string{
	"verificationMethod",
	"publicKey",
	"authentication",
	"assertionMethod",
	"keyAgreement",
	"capabilityInvocation",
	"capabilityDelegation",
	"service",
}

// FindComponent dereferences the fragment of didURL inside a resolved DID document.
// Component ids may be absolute ("did:example:123#key-1") or relative ("#key-1").
func FindComponent(doc jsonmap.JSONMap, didURL string) (jsonmap.JSONMap, error) {
	if doc == nil {
		return nil, fmt.Errorf("DID document is nil")
	}

	did, fragment := SplitDIDURL(didURL)
	if fragment == "" {
		return nil, fmt.Errorf("DID URL '%s' has no fragment", didURL)
	}

	for _, section := range componentSections {
		for _, item := range jsonmap.AsArray(doc[section]) {
			component, ok := jsonmap.AsObject(item)
			if !ok {
				continue
			}
			if matchesID(component.GetString("id"), doc.GetString("id"), did, fragment) {
				return component, nil
			}
		}
	}

	return nil, fmt.Errorf("component '%s' not found in DID document", didURL)
}

func matchesID(id, docID, did, fragment string) bool {
	if id == "" {
		return false
	}
	if strings.HasPrefix(id, "#") {
		return id[1:] == fragment
	}
	idDID, idFragment := SplitDIDURL(id)
	if idFragment != fragment {
		return false
	}
	return idDID == did || idDID == docID
}

// MethodsFor returns the verification methods referenced from a verification relationship
// ("assertionMethod", "authentication", ...). String references are dereferenced against the
// document; embedded methods are returned as-is.
func MethodsFor(doc jsonmap.JSONMap, relationship string) []jsonmap.JSONMap {
	docID := doc.GetString("id")

	var methods []jsonmap.JSONMap
	for _, item := range jsonmap.AsArray(doc[relationship]) {
		switch ref := item.(type) {
		case string:
			if strings.HasPrefix(ref, "#") {
				ref = docID + ref
			}
			vm, err := FindComponent(doc, ref)
			if err != nil {
				continue
			}
			methods = append(methods, absolutize(vm, docID))
		default:
			if vm, ok := jsonmap.AsObject(ref); ok {
				methods = append(methods, absolutize(vm, docID))
			}
		}
	}
	return methods
}

// absolutize returns the method with a DID-qualified id and controller.
func absolutize(vm jsonmap.JSONMap, docID string) jsonmap.JSONMap {
	id := vm.GetString("id")
	if !strings.HasPrefix(id, "#") && vm.GetString("controller") != "" {
		return vm
	}

	out := vm.Without()
	if strings.HasPrefix(id, "#") {
		out["id"] = docID + id
	}
	if out.GetString("controller") == "" {
		out["controller"] = docID
	}
	return out
}

// IsAuthorized reports whether the verification method is listed under the proof purpose
// relationship of the document.
func IsAuthorized(doc jsonmap.JSONMap, verificationMethodID, purpose string) bool {
	for _, vm := range MethodsFor(doc, purpose) {
		if vm.GetString("id") == verificationMethodID {
			return true
		}
	}
	return false
}
