package cli

import (
	"github.com/spf13/cobra"
)

func newIdentityCmd() *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "id",
		Short: "Show or regenerate the local identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if regenerate {
				if err := cfg.SaveIdentity(GenerateIdentity()); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(IdentityResult{
				ID:   cfg.Identity,
				File: cfg.IdentityFile,
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Discard the stored identity and mint a new one")

	return cmd
}
