package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addEnable(topLevel *cobra.Command, o *rootOptions) {
	for _, enabled := range []bool{true, false} {
		verb, short := "enable", "Schedule a reminder's notifications again"
		if !enabled {
			verb, short = "disable", "Cancel a reminder's notifications and clear its missed flag"
		}

		cmd := &cobra.Command{
			Use:   verb + " [id]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := o.open(cmd.Context())
				if err != nil {
					return err
				}
				defer sess.close()

				r, err := sess.store.ToggleEnabled(cmd.Context(), args[0], enabled)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", r.Name, r.Status())
				return nil
			},
		}
		topLevel.AddCommand(cmd)
	}
}
