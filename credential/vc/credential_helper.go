package vc

import (
	"fmt"
	"strconv"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/util"
)

var knownFields = []string{
	"@context", "id", "type", "issuer", "issuanceDate", "expirationDate", "validFrom", "validUntil",
	"credentialSubject", "credentialSchema", "credentialStatus", "proof",
}

// serializeCredentialContents serializes CredentialContents into a JSON credential.
func serializeCredentialContents(vcc *CredentialContents) (jsonmap.JSONMap, error) {
	if vcc == nil {
		return nil, fmt.Errorf("credential contents is nil")
	}

	vcJSON := make(jsonmap.JSONMap)
	for k, v := range vcc.CustomFields {
		vcJSON[k] = v
	}
	if len(vcc.Context) > 0 {
		validatedContext, err := util.SerializeContexts(vcc.Context)
		if err != nil {
			return nil, fmt.Errorf("invalid @context: %w", err)
		}
		vcJSON["@context"] = validatedContext
	}
	if vcc.ID != "" {
		vcJSON["id"] = vcc.ID
	}
	if len(vcc.Types) > 0 {
		vcJSON["type"] = util.SerializeTypes(vcc.Types)
	}
	if len(vcc.Subject) > 0 {
		vcJSON["credentialSubject"] = util.OneOrMany(vcc.Subject, serializeSubject)
	}
	if vcc.Issuer != "" {
		vcJSON["issuer"] = vcc.Issuer
	}
	if len(vcc.Schemas) > 0 {
		vcJSON["credentialSchema"] = util.OneOrMany(vcc.Schemas, serializeSchema)
	}
	if len(vcc.CredentialStatus) > 0 {
		vcJSON["credentialStatus"] = util.OneOrMany(vcc.CredentialStatus, serializeStatus)
	}
	if !vcc.IssuanceDate.IsZero() {
		vcJSON["issuanceDate"] = FormatDate(vcc.IssuanceDate)
	}
	if !vcc.ExpirationDate.IsZero() {
		vcJSON["expirationDate"] = FormatDate(vcc.ExpirationDate)
	}
	return vcJSON, nil
}

func serializeSubject(subject Subject) interface{} {
	jsonObj := util.ShallowCopyObj(subject.CustomFields)
	if subject.ID != "" {
		jsonObj["id"] = subject.ID
	}
	return jsonObj
}

func serializeSchema(schema Schema) interface{} {
	return map[string]interface{}{
		"id":   schema.ID,
		"type": schema.Type,
	}
}

func serializeStatus(status Status) interface{} {
	result := make(map[string]interface{})
	if status.ID != "" {
		result["id"] = status.ID
	}
	if status.Type != "" {
		result["type"] = status.Type
	}
	if status.StatusPurpose != "" {
		result["statusPurpose"] = status.StatusPurpose
	}
	if status.StatusListIndex != "" {
		result["statusListIndex"] = status.StatusListIndex
	}
	if status.StatusListCredential != "" {
		result["statusListCredential"] = status.StatusListCredential
	}
	return result
}

// parseContext extracts the @context field.
func parseContext(c jsonmap.JSONMap, contents *CredentialContents) error {
	for _, ctx := range jsonmap.AsArray(c["@context"]) {
		switch v := ctx.(type) {
		case string, map[string]interface{}:
			contents.Context = append(contents.Context, v)
		default:
			return fmt.Errorf("unsupported context type: %T", v)
		}
	}
	return nil
}

func parseID(c jsonmap.JSONMap, contents *CredentialContents) error {
	contents.ID = c.GetString("id")
	return nil
}

// parseTypes extracts the type field.
func parseTypes(c jsonmap.JSONMap, contents *CredentialContents) error {
	switch v := c["type"].(type) {
	case string:
		contents.Types = append(contents.Types, v)
	case []interface{}:
		for _, t := range v {
			if typeStr, ok := t.(string); ok {
				contents.Types = append(contents.Types, typeStr)
			}
		}
	default:
		return fmt.Errorf("unsupported type field: %T", v)
	}
	return nil
}

func parseIssuer(c jsonmap.JSONMap, contents *CredentialContents) error {
	contents.Issuer = idOf(c["issuer"])
	return nil
}

// parseDates reads issuanceDate and expirationDate, accepting validFrom and validUntil too.
func parseDates(c jsonmap.JSONMap, contents *CredentialContents) error {
	cred := Credential{data: c}
	if _, ok := c["issuanceDate"]; ok || c["validFrom"] != nil {
		t, err := cred.IssuanceDate()
		if err != nil {
			return fmt.Errorf("failed to parse issuanceDate: %w", err)
		}
		contents.IssuanceDate = t
	}
	t, ok, err := cred.ExpirationDate()
	if err != nil {
		return fmt.Errorf("failed to parse expirationDate: %w", err)
	}
	if ok {
		contents.ExpirationDate = t
	}
	return nil
}

// parseSubject extracts the credentialSubject field.
func parseSubject(c jsonmap.JSONMap, contents *CredentialContents) error {
	subjectRaw := c["credentialSubject"]
	if subjectRaw == nil {
		return nil
	}

	if subject, ok := subjectRaw.(string); ok {
		contents.Subject = []Subject{{ID: subject}}
		return nil
	}

	for _, raw := range jsonmap.AsArray(subjectRaw) {
		sub, ok := jsonmap.AsObject(raw)
		if !ok {
			return fmt.Errorf("unsupported subject format: %T", raw)
		}
		parsed, err := SubjectFromJSON(sub)
		if err != nil {
			return fmt.Errorf("failed to parse subject: %w", err)
		}
		contents.Subject = append(contents.Subject, parsed)
	}
	return nil
}

// SubjectFromJSON creates a credential subject from a JSON object.
func SubjectFromJSON(subjectObj jsonmap.JSONMap) (Subject, error) {
	flds, rest := util.SplitJSONObj(subjectObj, "id")
	id, err := parseStringField(flds, "id")
	if err != nil {
		return Subject{}, fmt.Errorf("failed to parse subject id: %w", err)
	}
	return Subject{ID: id, CustomFields: rest}, nil
}

// parseSchema extracts the credentialSchema field.
func parseSchema(c jsonmap.JSONMap, contents *CredentialContents) error {
	for _, raw := range jsonmap.AsArray(c["credentialSchema"]) {
		parsed, err := parseSchemaID(raw)
		if err != nil {
			return fmt.Errorf("failed to parse schema: %w", err)
		}
		contents.Schemas = append(contents.Schemas, parsed)
	}
	return nil
}

// parseStatus extracts the credentialStatus field.
func parseStatus(c jsonmap.JSONMap, contents *CredentialContents) error {
	for _, raw := range jsonmap.AsArray(c["credentialStatus"]) {
		status, ok := jsonmap.AsObject(raw)
		if !ok {
			return fmt.Errorf("unsupported status format: %T", raw)
		}
		contents.CredentialStatus = append(contents.CredentialStatus, parseStatusEntry(status))
	}
	return nil
}

func parseStatusEntry(status jsonmap.JSONMap) Status {
	s := Status{
		ID:                   status.GetString("id"),
		Type:                 status.GetString("type"),
		StatusPurpose:        status.GetString("statusPurpose"),
		StatusListIndex:      status.GetString("statusListIndex"),
		StatusListCredential: status.GetString("statusListCredential"),
	}
	// some issuers write the index as a number
	if n, ok := status["statusListIndex"].(float64); ok {
		s.StatusListIndex = strconv.FormatInt(int64(n), 10)
	}
	return s
}

func parseCustomFields(c jsonmap.JSONMap, contents *CredentialContents) error {
	_, rest := util.SplitJSONObj(c, knownFields...)
	if len(rest) > 0 {
		contents.CustomFields = rest
	}
	return nil
}

// parseSchemaID parses a Schema from a value.
func parseSchemaID(value interface{}) (Schema, error) {
	var schema Schema
	switch v := value.(type) {
	case string:
		schema.ID = v
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok {
			schema.ID = id
		}
		if t, ok := v["type"].(string); ok {
			schema.Type = t
		}
	default:
		return schema, fmt.Errorf("invalid schema format: %T", v)
	}
	return schema, nil
}

// parseStringField extracts a string field from a JSON object.
func parseStringField(obj jsonmap.JSONMap, fieldName string) (string, error) {
	if value, ok := obj[fieldName]; ok {
		if str, ok := value.(string); ok {
			return str, nil
		}
		return "", fmt.Errorf("field %q must be a string, got %T", fieldName, value)
	}
	return "", nil
}

func idOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		s, _ := t["id"].(string)
		return s
	case jsonmap.JSONMap:
		return t.GetString("id")
	}
	return ""
}

func stringsOf(v interface{}) []string {
	var out []string
	for _, item := range jsonmap.AsArray(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func proofsOf(v interface{}) []model.Proof {
	var proofs []model.Proof
	for _, raw := range jsonmap.AsArray(v) {
		if obj, ok := jsonmap.AsObject(raw); ok {
			proofs = append(proofs, model.ProofFromMap(obj))
		}
	}
	return proofs
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
