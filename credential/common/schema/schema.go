// Package schema validates credentials against the JSON Schemas named in credentialSchema.
package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
)

// Schema types validated with JSON Schema.
const (
	JSONSchemaValidator2018       = "JsonSchemaValidator2018"
	JSONSchema                    = "JsonSchema"
	EdTechJSONSchemaValidator2019 = "1EdTechJsonSchemaValidator2019"
)

const (
	defaultSchemaCacheSize = 64
	defaultSchemaCacheTTL  = time.Hour
)

var (
	// ErrInvalidCredential is returned when a credential does not satisfy its schema.
	ErrInvalidCredential = errors.New("credential does not match schema")
	// ErrUnsupportedSchemaType is returned for credentialSchema entries of an unknown type.
	ErrUnsupportedSchemaType = errors.New("unsupported credential schema type")
)

// ValidatorOpt configures a Validator.
type ValidatorOpt func(*Validator)

// WithHTTPClient sets the client used to download schemas.
func WithHTTPClient(client *http.Client) ValidatorOpt {
	return func(v *Validator) {
		v.client = client
	}
}

// WithSchema registers a schema document for an id so it is never downloaded.
func WithSchema(id string, schema []byte) ValidatorOpt {
	return func(v *Validator) {
		v.static[id] = schema
	}
}

// Validator validates credentials against their credentialSchema entries.
type Validator struct {
	client *http.Client
	static map[string][]byte
	cache  gcache.Cache
}

// NewValidator creates a validator. Downloaded schemas are cached for an hour.
func NewValidator(opts ...ValidatorOpt) *Validator {
	v := &Validator{static: map[string][]byte{}}
	for _, opt := range opts {
		opt(v)
	}
	if v.client == nil {
		v.client = provider.NewHTTPClient(provider.DefaultTimeout)
	}
	v.cache = gcache.New(defaultSchemaCacheSize).LRU().Expiration(defaultSchemaCacheTTL).Build()
	return v
}

// Validate checks the credential against every credentialSchema entry. A credential without
// credentialSchema is valid.
func (v *Validator) Validate(ctx context.Context, credential jsonmap.JSONMap) error {
	for _, raw := range jsonmap.AsArray(credential["credentialSchema"]) {
		entry, ok := jsonmap.AsObject(raw)
		if !ok {
			return fmt.Errorf("credentialSchema entry must be an object, got %T", raw)
		}

		schemaID := entry.GetString("id")
		if schemaID == "" {
			return fmt.Errorf("credentialSchema.id must be a non-empty string")
		}
		switch entry.GetString("type") {
		case JSONSchemaValidator2018, JSONSchema, EdTechJSONSchemaValidator2019:
		default:
			return errors.Wrap(ErrUnsupportedSchemaType, entry.GetString("type"))
		}

		schemaDoc, err := v.load(ctx, schemaID)
		if err != nil {
			return err
		}

		result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaDoc), gojsonschema.NewGoLoader(credential.Plain()))
		if err != nil {
			return fmt.Errorf("failed to validate schema %s: %w", schemaID, err)
		}
		if !result.Valid() {
			return errors.Wrapf(ErrInvalidCredential, "%s: %s", schemaID, describe(result.Errors()))
		}
	}
	return nil
}

func (v *Validator) load(ctx context.Context, id string) ([]byte, error) {
	if doc, ok := v.static[id]; ok {
		return doc, nil
	}
	if cached, err := v.cache.Get(id); err == nil {
		return cached.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schema %s returned non-200 status: %s", id, resp.Status)
	}
	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", id, err)
	}

	if err := v.cache.Set(id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func describe(errs []gojsonschema.ResultError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}
