package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/quickchess/internal/model"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := Connect(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Send(model.EventRequestUsers, nil); err != nil {
				return err
			}
			ev, err := client.WaitFor(model.EventUsers, 10*time.Second)
			if err != nil {
				return err
			}
			users, err := Decode[model.UsersPayload](ev)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(users)
			return nil
		},
	}
}
