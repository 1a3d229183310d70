package vp

import (
	"fmt"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/util"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vc"
)

// serializePresentationContents serializes PresentationContents into a JSON map.
func serializePresentationContents(vpc *PresentationContents) (jsonmap.JSONMap, error) {
	if vpc == nil {
		return nil, fmt.Errorf("presentation contents is nil")
	}

	vpJSON := make(jsonmap.JSONMap)

	if len(vpc.Context) > 0 {
		validatedContext, err := util.SerializeContexts(vpc.Context)
		if err != nil {
			return nil, fmt.Errorf("invalid @context: %w", err)
		}
		vpJSON["@context"] = validatedContext
	}
	if vpc.ID != "" {
		vpJSON["id"] = vpc.ID
	}
	if len(vpc.Types) > 0 {
		vpJSON["type"] = util.SerializeTypes(vpc.Types)
	}
	if vpc.Holder != "" {
		vpJSON["holder"] = vpc.Holder
	}
	if len(vpc.VerifiableCredentials) > 0 {
		for i, cred := range vpc.VerifiableCredentials {
			if cred == nil {
				return nil, fmt.Errorf("credential at index %d is nil", i)
			}
		}
		vpJSON["verifiableCredential"] = util.MapSlice(vpc.VerifiableCredentials, func(c *vc.Credential) interface{} {
			return c.Map().Plain()
		})
	}

	return vpJSON, nil
}

// parseContext extracts the @context field from a Presentation.
func parseContext(vp jsonmap.JSONMap, contents *PresentationContents) error {
	for _, ctx := range jsonmap.AsArray(vp["@context"]) {
		switch v := ctx.(type) {
		case string, map[string]interface{}:
			contents.Context = append(contents.Context, v)
		default:
			return fmt.Errorf("unsupported context type: %T", v)
		}
	}
	return nil
}

// parseID extracts the ID field from a Presentation.
func parseID(vp jsonmap.JSONMap, contents *PresentationContents) error {
	contents.ID = vp.GetString("id")
	return nil
}

// parseTypes extracts the type field from a Presentation.
func parseTypes(vp jsonmap.JSONMap, contents *PresentationContents) error {
	for _, t := range jsonmap.AsArray(vp["type"]) {
		typeStr, ok := t.(string)
		if !ok {
			return fmt.Errorf("presentation type must be a string, got %T", t)
		}
		contents.Types = append(contents.Types, typeStr)
	}
	return nil
}

// parseHolder extracts the holder field from a Presentation.
func parseHolder(vp jsonmap.JSONMap, contents *PresentationContents) error {
	contents.Holder = (&Presentation{data: vp}).Holder()
	return nil
}

// prependUnique puts value first, removing any later occurrence.
func prependUnique(items []interface{}, value string) []interface{} {
	out := []interface{}{value}
	for _, item := range items {
		if s, ok := item.(string); ok && s == value {
			continue
		}
		out = append(out, item)
	}
	return out
}
