package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addRemove(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a reminder and cancel its notifications",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			if err := sess.store.Remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
