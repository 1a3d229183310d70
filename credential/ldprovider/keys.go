package ldprovider

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	verificationmethod "github.com/pilacorp/go-ld-credential-sdk/credential/common/verification-method"
)

// signingKey is a managed key together with the verification method that publishes it.
type signingKey struct {
	Key    kms.Key
	Method jsonmap.JSONMap
}

func (k *signingKey) VerificationMethodID() string {
	return k.Method.GetString("id")
}

func (k *signingKey) VerificationType() string {
	return k.Method.GetString("type")
}

// findSigningKey picks the key of did used for the relationship. Candidates are the
// verification methods of the relationship whose type a loaded suite supports and whose public
// key the key manager holds. keyRef, when set, must name the kid or the verification method id
// of a candidate.
func (p *CredentialProvider) findSigningKey(ctx context.Context, did, relationship, keyRef string) (*signingKey, error) {
	candidates, err := p.signingKeys(ctx, did, relationship)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if keyRef == "" || candidate.Key.Kid == keyRef || candidate.VerificationMethodID() == keyRef {
			return candidate, nil
		}
	}

	if keyRef != "" {
		return nil, errors.Wrapf(ErrKeyNotFound, "no %s key %s for %s", relationship, keyRef, did)
	}
	return nil, errors.Wrapf(ErrKeyNotFound, "no supported %s key for %s", relationship, did)
}

func (p *CredentialProvider) signingKeys(ctx context.Context, did, relationship string) ([]*signingKey, error) {
	identifier, err := p.keys.GetIdentifier(ctx, did)
	if err != nil {
		if errors.Is(err, kms.ErrIdentifierNotFound) {
			return nil, errors.Wrapf(ErrKeyNotFound, "%s is not managed by the key manager", did)
		}
		return nil, err
	}

	doc, err := p.resolver.Resolve(ctx, did)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", did)
	}
	doc = jsonld.MigrateLegacyPublicKeys(doc)

	supported := p.suites.SupportedVerificationTypes()

	var candidates []*signingKey
	for _, vm := range verificationmethod.MethodsFor(doc, relationship) {
		if !slices.Contains(supported, vm.GetString("type")) {
			continue
		}
		pub, err := crypto.PublicKeyFromVerificationMethod(vm)
		if err != nil {
			log.WithError(err).Debugf("skipping verification method %s", vm.GetString("id"))
			continue
		}
		if key, ok := managedKey(identifier.Keys, pub); ok {
			candidates = append(candidates, &signingKey{Key: key, Method: vm})
		}
	}
	return candidates, nil
}

func managedKey(keys []kms.Key, pub *crypto.PublicKey) (kms.Key, bool) {
	for _, key := range keys {
		managed, err := key.PublicKey()
		if err != nil {
			continue
		}
		if managed.Type == pub.Type && bytes.Equal(managed.Raw, pub.Raw) {
			return key, true
		}
	}
	return kms.Key{}, false
}
