package main

import (
	"github.com/pkg/errors"

	"github.com/pilacorp/go-ld-credential-sdk/config"
	credentialstatus "github.com/pilacorp/go-ld-credential-sdk/credential/common/credential-status"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/kms"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/provider"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/schema"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/storage"
	"github.com/pilacorp/go-ld-credential-sdk/credential/ldprovider"
	"github.com/pilacorp/go-ld-credential-sdk/did"
)

// environment is everything a command needs, built from the configuration.
type environment struct {
	store    storage.Store
	keys     *kms.LocalKeyManager
	dids     *did.Generator
	contexts *contexts.ContextLoader
	provider *ldprovider.CredentialProvider
}

func newEnvironment(cfg *config.Config) (*environment, error) {
	store, err := openStore(cfg.KeyStore)
	if err != nil {
		return nil, err
	}

	env, err := buildEnvironment(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return env, nil
}

func buildEnvironment(cfg *config.Config, store storage.Store) (*environment, error) {
	client := provider.NewHTTPClient(cfg.Loader.Timeout)

	resolver, err := did.NewServiceResolver(cfg.Resolver.Methods, cfg.Resolver.UniversalResolverURL, client)
	if err != nil {
		return nil, errors.Wrap(err, "building DID resolver")
	}

	extra, err := cfg.Loader.Contexts()
	if err != nil {
		return nil, err
	}
	contextLoader := contexts.NewContextLoader(contexts.Default(), extra)

	keys := kms.NewLocalKeyManager(store)
	p, err := ldprovider.New(keys, resolver,
		ldprovider.WithContextLoader(contextLoader),
		ldprovider.WithFetchRemoteContexts(cfg.Loader.FetchRemoteContexts),
		ldprovider.WithDocumentLoaderOptions(
			jsonld.WithHTTPClient(client),
			jsonld.WithCache(cfg.Loader.CacheSize, cfg.Loader.CacheTTL),
			jsonld.WithStripIDHosts(cfg.Loader.StripIDHosts...),
		),
		ldprovider.WithStatusClient(credentialstatus.NewClient(client)),
		ldprovider.WithSchemaValidator(schema.NewValidator(schema.WithHTTPClient(client))),
	)
	if err != nil {
		return nil, err
	}

	return &environment{
		store:    store,
		keys:     keys,
		dids:     did.NewGenerator(keys),
		contexts: contextLoader,
		provider: p,
	}, nil
}

func openStore(cfg config.KeyStoreConfig) (storage.Store, error) {
	switch cfg.Provider {
	case config.KeyStoreBolt:
		db, err := storage.NewBoltDB(cfg.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening key store %s", cfg.Path)
		}
		return db, nil
	case config.KeyStoreMemory:
		return storage.NewMemoryDB(), nil
	default:
		return nil, errors.Errorf("unsupported keystore provider: %s", cfg.Provider)
	}
}

// withEnvironment runs fn against a fresh environment and closes the key store afterwards.
func withEnvironment(flags *rootFlags, fn func(env *environment) error) (err error) {
	env, err := newEnvironment(flags.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := env.store.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(env)
}
