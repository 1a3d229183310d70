package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-ld-credential-sdk/credential/ldprovider"
)

func newPresentationCmd(flags *rootFlags) *cobra.Command {
	presentationCmd := &cobra.Command{
		Use:   "presentation",
		Short: "Parent command for verifiable presentations",
	}

	var createArgs struct {
		in, keyRef, challenge, domain string
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a presentation with an authentication key of its holder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			unsigned, err := readDocument(cmd, createArgs.in)
			if err != nil {
				return err
			}
			return withEnvironment(flags, func(env *environment) error {
				signed, err := env.provider.CreateVerifiablePresentation(cmd.Context(), ldprovider.CreatePresentationArgs{
					Presentation: unsigned,
					KeyRef:       createArgs.keyRef,
					Challenge:    createArgs.challenge,
					Domain:       createArgs.domain,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd, signed)
			})
		},
	}
	createCmd.Flags().StringVar(&createArgs.in, "in", "-", "unsigned presentation file, - for stdin")
	createCmd.Flags().StringVar(&createArgs.keyRef, "key-ref", "", "kid or verification method id of the signing key")
	createCmd.Flags().StringVar(&createArgs.challenge, "challenge", "", "proof challenge")
	createCmd.Flags().StringVar(&createArgs.domain, "domain", "", "proof domain")

	var verifyArgs struct {
		in, challenge, domain string
		checkStatus           bool
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a presentation and the credentials it embeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signed, err := readDocument(cmd, verifyArgs.in)
			if err != nil {
				return err
			}
			return withEnvironment(flags, func(env *environment) error {
				err := env.provider.VerifyPresentation(cmd.Context(), ldprovider.VerifyPresentationArgs{
					Presentation: signed,
					Challenge:    verifyArgs.challenge,
					Domain:       verifyArgs.domain,
					CheckStatus:  verifyArgs.checkStatus,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "presentation verified")
				return nil
			})
		},
	}
	verifyCmd.Flags().StringVar(&verifyArgs.in, "in", "-", "signed presentation file, - for stdin")
	verifyCmd.Flags().StringVar(&verifyArgs.challenge, "challenge", "", "expected proof challenge")
	verifyCmd.Flags().StringVar(&verifyArgs.domain, "domain", "", "expected proof domain")
	verifyCmd.Flags().BoolVar(&verifyArgs.checkStatus, "check-status", false, "check the status of embedded credentials")

	presentationCmd.AddCommand(createCmd, verifyCmd)
	return presentationCmd
}
