package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/noahxzhu/med-reminder/internal/model"
)

func addList(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List reminders with their status",
		Example: `
remindctl list
remindctl --config ./dev.yaml ls
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			printReminders(cmd.OutOrStdout(), sess.store.List())
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func printReminders(out io.Writer, list []*model.Reminder) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No reminders found.")
		return
	}

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("TIME"), bold.Sprint("NAME"), bold.Sprint("DAYS"), bold.Sprint("STATUS"))
	for _, r := range list {
		name := r.Name
		if r.Dosage != "" {
			name += " (" + r.Dosage + ")"
		}
		tbl.AddRow(r.ID, r.Clock(), name, r.DaysLabel(), statusColor(r.Status()).Sprint(r.Status()))
	}

	_, _ = fmt.Fprintln(out, tbl)
}

func statusColor(s model.ReminderStatus) *color.Color {
	switch s {
	case model.StatusMissed:
		return color.New(color.FgRed, color.Bold)
	case model.StatusDisabled:
		return color.New(color.Faint)
	default:
		return color.New(color.FgGreen)
	}
}
