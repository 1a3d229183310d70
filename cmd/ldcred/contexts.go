package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newContextsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "contexts",
		Short: "List the JSON-LD contexts served without network access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(flags, func(env *environment) error {
				for _, url := range env.contexts.URLs() {
					fmt.Fprintln(cmd.OutOrStdout(), url)
				}
				return nil
			})
		},
	}
}
