package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-ld-credential-sdk/credential/ldprovider"
)

func newCredentialCmd(flags *rootFlags) *cobra.Command {
	credentialCmd := &cobra.Command{
		Use:   "credential",
		Short: "Parent command for verifiable credentials",
	}

	var issueArgs struct {
		in     string
		keyRef string
	}
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a credential with a key of its issuer",
		Long: `
Sign a credential with a key of its issuer. The issuer must be an identifier of the key store.

Example
	ldcred credential issue --in credential.json
	`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unsigned, err := readDocument(cmd, issueArgs.in)
			if err != nil {
				return err
			}
			return withEnvironment(flags, func(env *environment) error {
				signed, err := env.provider.CreateVerifiableCredential(cmd.Context(), ldprovider.CreateCredentialArgs{
					Credential: unsigned,
					KeyRef:     issueArgs.keyRef,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd, signed)
			})
		},
	}
	issueCmd.Flags().StringVar(&issueArgs.in, "in", "-", "unsigned credential file, - for stdin")
	issueCmd.Flags().StringVar(&issueArgs.keyRef, "key-ref", "", "kid or verification method id of the signing key")

	var verifyArgs struct {
		in             string
		checkStatus    bool
		validateSchema bool
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the proofs of a credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signed, err := readDocument(cmd, verifyArgs.in)
			if err != nil {
				return err
			}
			return withEnvironment(flags, func(env *environment) error {
				err := env.provider.VerifyCredential(cmd.Context(), ldprovider.VerifyCredentialArgs{
					Credential:     signed,
					CheckStatus:    verifyArgs.checkStatus,
					ValidateSchema: verifyArgs.validateSchema,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "credential verified")
				return nil
			})
		},
	}
	verifyCmd.Flags().StringVar(&verifyArgs.in, "in", "-", "signed credential file, - for stdin")
	verifyCmd.Flags().BoolVar(&verifyArgs.checkStatus, "check-status", false, "check credentialStatus entries")
	verifyCmd.Flags().BoolVar(&verifyArgs.validateSchema, "validate-schema", false, "validate credentialSchema entries")

	credentialCmd.AddCommand(issueCmd, verifyCmd)
	return credentialCmd
}
