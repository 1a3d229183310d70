package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
)

var keyTypes = map[string]model.KeyType{
	"ed25519":    model.KeyTypeEd25519,
	"secp256k1":  model.KeyTypeSecp256k1,
	"p-256":      model.KeyTypeP256,
	"bls12381g2": model.KeyTypeBls12381G2,
}

func newKeyCmd(flags *rootFlags) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Parent command for did:key identifiers",
	}

	var keyType string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a did:key identifier and store its key",
		Long: `
Create a did:key identifier and store its key

Example
	ldcred key create --type ed25519
	`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kt, ok := keyTypes[keyType]
			if !ok {
				return errors.Errorf("unsupported key type %q", keyType)
			}
			return withEnvironment(flags, func(env *environment) error {
				generated, err := env.dids.Generate(cmd.Context(), kt)
				if err != nil {
					return err
				}
				return writeJSON(cmd, generated)
			})
		},
	}
	createCmd.Flags().StringVar(&keyType, "type", "ed25519", "key type: ed25519, secp256k1, p-256 or bls12381g2")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(flags, func(env *environment) error {
				identifiers, err := env.keys.ListIdentifiers(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd, identifiers)
			})
		},
	}

	keyCmd.AddCommand(createCmd, listCmd)
	return keyCmd
}
