package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pilacorp/go-ld-credential-sdk/config"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

type rootFlags struct {
	configFile    string
	fetchContexts bool
	cfg           *config.Config
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "ldcred",
		Short: "Linked Data credential tool",
		Long: `
Issue and verify W3C verifiable credentials and presentations with Linked Data proofs.
Keys are did:key identifiers kept in the configured key store.
	`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(flags.configFile, nil)
			if err != nil {
				return err
			}
			if cfg == nil {
				return errors.New("configuration was not loaded")
			}
			if cmd.Flags().Changed("fetch-contexts") {
				cfg.Loader.FetchRemoteContexts = flags.fetchContexts
			}
			flags.cfg = cfg
			return cfg.ConfigureLogging()
		},
	}

	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&flags.configFile, "config", os.Getenv("LDCRED_CONFIG"), "TOML configuration file")
	pflags.BoolVar(&flags.fetchContexts, "fetch-contexts", false, "fetch unknown JSON-LD contexts over HTTP")

	rootCmd.AddCommand(
		newContextsCmd(flags),
		newKeyCmd(flags),
		newCredentialCmd(flags),
		newPresentationCmd(flags),
	)
	return rootCmd
}

// readDocument reads a JSON object from path, or from stdin when path is "-".
func readDocument(cmd *cobra.Command, path string) (jsonmap.JSONMap, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	return jsonmap.Parse(raw)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
