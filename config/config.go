// Package config loads the ldcred settings: defaults and environment through conf tags, then
// overrides from a TOML file.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
)

const (
	ServiceName     = "ldcred"
	ConfigExtension = ".toml"

	KeyStoreMemory = "memory"
	KeyStoreBolt   = "bolt"
)

type Config struct {
	conf.Version
	LogLevel string         `toml:"log_level" conf:"default:info"`
	Loader   LoaderConfig   `toml:"loader"`
	Resolver ResolverConfig `toml:"resolver"`
	KeyStore KeyStoreConfig `toml:"keystore"`
}

// LoaderConfig configures the JSON-LD document loader.
type LoaderConfig struct {
	FetchRemoteContexts bool          `toml:"fetch_remote_contexts" conf:"default:false"`
	Timeout             time.Duration `toml:"timeout" conf:"default:10s"`
	CacheSize           int           `toml:"cache_size" conf:"default:100"`
	CacheTTL            time.Duration `toml:"cache_ttl" conf:"default:24h"`
	StripIDHosts        []string      `toml:"strip_id_hosts" conf:"default:https://vc-api.sphereon.io"`
	// ContextFiles maps a context URL to a local JSON-LD file served for it.
	ContextFiles map[string]string `toml:"context_files"`
}

// Contexts reads the configured context files.
func (c LoaderConfig) Contexts() (contexts.Contexts, error) {
	if len(c.ContextFiles) == 0 {
		return contexts.Contexts{}, nil
	}
	return contexts.LoadFiles(c.ContextFiles)
}

type ResolverConfig struct {
	// UniversalResolverURL resolves the methods that have no local resolver. Empty disables it.
	UniversalResolverURL string   `toml:"universal_resolver_url"`
	Methods              []string `toml:"methods" conf:"default:key;web"`
}

type KeyStoreConfig struct {
	Provider string `toml:"provider" conf:"default:memory"`
	Path     string `toml:"path" conf:"default:ldcred.db"`
}

// LoadConfig parses args and the environment into the defaults, then applies the TOML file at
// path when path is set. A nil config and nil error mean help or version output was printed.
func LoadConfig(path string, args []string) (*Config, error) {
	if path != "" && filepath.Ext(path) != ConfigExtension {
		return nil, fmt.Errorf("path<%s> did not match the expected TOML format", path)
	}

	var config Config
	if err := conf.Parse(args, ServiceName, &config); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(ServiceName, &config)
			if err != nil {
				return nil, errors.Wrap(err, "parsing config")
			}
			fmt.Println(usage)
			return nil, nil

		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(ServiceName, &config)
			if err != nil {
				return nil, errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil, nil
		}
		return nil, errors.Wrap(err, "parsing config")
	}

	if path == "" {
		logrus.Debug("no config path provided, using defaults")
	} else if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, errors.Wrapf(err, "could not load config: %s", path)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.KeyStore.Provider {
	case KeyStoreMemory:
	case KeyStoreBolt:
		if c.KeyStore.Path == "" {
			return errors.New("keystore path is required for the bolt provider")
		}
	default:
		return errors.Errorf("unsupported keystore provider: %s", c.KeyStore.Provider)
	}

	if len(c.Resolver.Methods) == 0 && c.Resolver.UniversalResolverURL == "" {
		return errors.New("at least one resolver method or a universal resolver URL is required")
	}
	return nil
}

// ConfigureLogging sets the logrus level from the config.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	logrus.SetLevel(level)
	return nil
}
