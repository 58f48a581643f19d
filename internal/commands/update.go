package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noahxzhu/med-reminder/internal/model"
)

func addUpdate(topLevel *cobra.Command, o *rootOptions) {
	so := &ScheduleOptions{}
	var name string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change a reminder; flags that are not set keep their value",
		Example: `
remindctl update 7c0e... --minute 45
remindctl update 7c0e... --name "Vitamin D3" --days 0,3
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := patchFromFlags(cmd, name, so)
			if err != nil {
				return err
			}

			sess, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			r, err := sess.store.Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s at %s, %s\n", r.ID, r.Name, r.Clock(), r.DaysLabel())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name.")
	addScheduleArgs(cmd, so)

	topLevel.AddCommand(cmd)
}

func patchFromFlags(cmd *cobra.Command, name string, so *ScheduleOptions) (model.Patch, error) {
	var p model.Patch
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = &name
	}
	if flags.Changed("dosage") {
		p.Dosage = &so.Dosage
	}
	if flags.Changed("hour") {
		p.Hour = &so.Hour
	}
	if flags.Changed("minute") {
		p.Minute = &so.Minute
	}
	if flags.Changed("days") {
		days, err := model.ParseWeekdays(so.Days)
		if err != nil {
			return p, err
		}
		if days == nil {
			days = []model.Weekday{}
		}
		p.Weekdays = days
	}
	if p.Name == nil && p.Dosage == nil && p.Hour == nil && p.Minute == nil && p.Weekdays == nil {
		return p, errors.New("nothing to update: set at least one of --name, --dosage, --hour, --minute, --days")
	}
	return p, nil
}
