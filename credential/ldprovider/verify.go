package ldprovider

import (
	"context"

	"github.com/piprate/json-gold/ld"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	credentialstatus "github.com/pilacorp/go-ld-credential-sdk/credential/common/credential-status"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	verificationmethod "github.com/pilacorp/go-ld-credential-sdk/credential/common/verification-method"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vc"
	"github.com/pilacorp/go-ld-credential-sdk/credential/vp"
)

var (
	// ErrProofNotFound is returned for documents without a proof.
	ErrProofNotFound = errors.New("proof not found")
	// ErrInvalidProof is returned when a proof does not satisfy its purpose.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrExpired is returned for credentials past their expirationDate.
	ErrExpired = errors.New("credential expired")
	// ErrNotYetValid is returned for credentials whose issuanceDate is in the future.
	ErrNotYetValid = errors.New("credential not yet valid")
	// ErrRevoked is returned when a revocation status bit is set.
	ErrRevoked = errors.New("credential revoked")
	// ErrSuspended is returned when a suspension status bit is set.
	ErrSuspended = errors.New("credential suspended")
)

// VerifyCredentialArgs are the inputs of VerifyCredential.
type VerifyCredentialArgs struct {
	Credential          jsonmap.JSONMap
	FetchRemoteContexts bool
	// CheckStatus looks up every credentialStatus entry.
	CheckStatus bool
	// ValidateSchema validates the credential against its credentialSchema entries.
	ValidateSchema bool
}

// VerifyCredential checks every proof of the credential, its validity period and, on request,
// its status and schema.
func (p *CredentialProvider) VerifyCredential(ctx context.Context, args VerifyCredentialArgs) error {
	cred, err := vc.FromMap(args.Credential)
	if err != nil {
		return errors.Wrap(err, "invalid credential")
	}

	proofs := cred.Proofs()
	if len(proofs) == 0 {
		return ErrProofNotFound
	}

	doc := cred.Map()
	loader := p.documentLoader(ctx, args.FetchRemoteContexts)
	for _, proof := range proofs {
		if err := p.verifyProof(ctx, doc, proof, cred.IssuerID(), model.AssertionMethod, loader); err != nil {
			return err
		}
	}

	if err := p.checkValidity(cred); err != nil {
		return err
	}

	if args.CheckStatus {
		if err := p.checkStatus(ctx, cred, loader); err != nil {
			return err
		}
	}

	if args.ValidateSchema {
		if err := p.schemas.Validate(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// VerifyPresentationArgs are the inputs of VerifyPresentation.
type VerifyPresentationArgs struct {
	Presentation jsonmap.JSONMap
	// Challenge and Domain, when set, must equal the proof members.
	Challenge           string
	Domain              string
	FetchRemoteContexts bool
	// CheckStatus and ValidateSchema apply to the embedded credentials.
	CheckStatus    bool
	ValidateSchema bool
}

// VerifyPresentation checks the presentation proofs and every embedded credential.
func (p *CredentialProvider) VerifyPresentation(ctx context.Context, args VerifyPresentationArgs) error {
	pres, err := vp.FromMap(args.Presentation)
	if err != nil {
		return errors.Wrap(err, "invalid presentation")
	}

	proofs := pres.Proofs()
	if len(proofs) == 0 {
		return ErrProofNotFound
	}

	doc := pres.Map()
	loader := p.documentLoader(ctx, args.FetchRemoteContexts)
	for _, proof := range proofs {
		if args.Challenge != "" && proof.Challenge != args.Challenge {
			return errors.Wrapf(ErrInvalidProof, "challenge %q does not match", proof.Challenge)
		}
		if args.Domain != "" && proof.Domain != args.Domain {
			return errors.Wrapf(ErrInvalidProof, "domain %q does not match", proof.Domain)
		}
		if err := p.verifyProof(ctx, doc, proof, pres.Holder(), model.Authentication, loader); err != nil {
			return err
		}
	}

	credentials, err := pres.Credentials()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, cred := range credentials {
		g.Go(func() error {
			err := p.VerifyCredential(gctx, VerifyCredentialArgs{
				Credential:          cred.Map(),
				FetchRemoteContexts: args.FetchRemoteContexts,
				CheckStatus:         args.CheckStatus,
				ValidateSchema:      args.ValidateSchema,
			})
			return errors.Wrapf(err, "verifiableCredential[%d]", i)
		})
	}
	return g.Wait()
}

// verifyProof checks one proof. The verification method is dereferenced through the document
// loader, must belong to controller (when known) and be authorized for purpose.
func (p *CredentialProvider) verifyProof(ctx context.Context, doc jsonmap.JSONMap, proof model.Proof, controller, purpose string, loader ld.DocumentLoader) error {
	if proof.ProofPurpose != purpose {
		return errors.Wrapf(ErrInvalidProof, "proof purpose %q, expected %q", proof.ProofPurpose, purpose)
	}

	s, err := p.suites.SuiteForProofType(proof.Type)
	if err != nil {
		return err
	}

	vmDID, _ := verificationmethod.SplitDIDURL(proof.VerificationMethod)
	if controller != "" && vmDID != controller {
		return errors.Wrapf(ErrInvalidProof, "verification method %s is not controlled by %s", proof.VerificationMethod, controller)
	}

	vm, err := loadObject(loader, proof.VerificationMethod)
	if err != nil {
		return err
	}
	if owner := vm.GetString("controller"); owner != "" {
		vmDID = owner
	}

	controllerDoc, err := loadObject(loader, vmDID)
	if err != nil {
		return err
	}
	if !verificationmethod.IsAuthorized(controllerDoc, proof.VerificationMethod, purpose) {
		return errors.Wrapf(ErrInvalidProof, "%s is not authorized for %s", proof.VerificationMethod, purpose)
	}

	pub, err := crypto.PublicKeyFromVerificationMethod(vm)
	if err != nil {
		return err
	}

	if err := s.VerifyProof(ctx, doc, proof, pub, loader); err != nil {
		return errors.Wrapf(err, "%s proof by %s", proof.Type, proof.VerificationMethod)
	}
	return nil
}

func loadObject(loader ld.DocumentLoader, u string) (jsonmap.JSONMap, error) {
	remote, err := loader.LoadDocument(u)
	if err != nil {
		return nil, err
	}
	obj, ok := jsonmap.AsObject(remote.Document)
	if !ok {
		return nil, errors.Errorf("%s is not a JSON object", u)
	}
	return obj, nil
}

func (p *CredentialProvider) checkValidity(cred *vc.Credential) error {
	now := p.clock.Now()

	issued, err := cred.IssuanceDate()
	if err != nil {
		return err
	}
	if now.Before(issued) {
		return errors.Wrapf(ErrNotYetValid, "issued at %s", vc.FormatDate(issued))
	}

	expires, ok, err := cred.ExpirationDate()
	if err != nil {
		return err
	}
	if ok && now.After(expires) {
		return errors.Wrapf(ErrExpired, "expired at %s", vc.FormatDate(expires))
	}
	return nil
}

// checkStatus looks up every credentialStatus entry. A status list only counts once its own
// proof verifies, it was issued by the issuer of cred and it is within its validity period.
func (p *CredentialProvider) checkStatus(ctx context.Context, cred *vc.Credential, loader ld.DocumentLoader) error {
	contents, err := cred.Contents()
	if err != nil {
		return err
	}

	for _, status := range contents.CredentialStatus {
		entry := credentialstatus.Entry(status)
		if err := entry.Validate(); err != nil {
			return err
		}

		list, err := p.status.FetchStatusListCredential(ctx, entry.StatusListCredential)
		if err != nil {
			return errors.Wrap(err, "failed to check credential status")
		}
		if err := p.verifyStatusList(ctx, list, cred.IssuerID(), loader); err != nil {
			return errors.Wrapf(err, "status list %s", entry.StatusListCredential)
		}

		set, err := credentialstatus.Check(entry, list)
		if err != nil {
			return errors.Wrap(err, "failed to check credential status")
		}
		if !set {
			continue
		}
		if status.StatusPurpose == credentialstatus.PurposeSuspension {
			return ErrSuspended
		}
		return ErrRevoked
	}
	return nil
}

func (p *CredentialProvider) verifyStatusList(ctx context.Context, list *credentialstatus.StatusListCredential, issuer string, loader ld.DocumentLoader) error {
	statusList, err := vc.FromMap(list.Raw)
	if err != nil {
		return errors.Wrap(err, "invalid status list credential")
	}
	if statusList.IssuerID() != issuer {
		return errors.Wrapf(ErrInvalidProof, "issued by %s, not %s", statusList.IssuerID(), issuer)
	}

	proofs := statusList.Proofs()
	if len(proofs) == 0 {
		return ErrProofNotFound
	}
	doc := statusList.Map()
	for _, proof := range proofs {
		if err := p.verifyProof(ctx, doc, proof, issuer, model.AssertionMethod, loader); err != nil {
			return err
		}
	}
	return p.checkValidity(statusList)
}
