package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addRefresh(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Mark reminders whose time already passed today as missed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			changed := sess.missedOnLoad + sess.store.RefreshMissedFlags(cmd.Context())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) newly marked missed.\n", changed)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
