package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// ScheduleOptions holds the flags shared by add and update.
type ScheduleOptions struct {
	Dosage string
	Hour   int
	Minute int
	Days   string
}

func addScheduleArgs(cmd *cobra.Command, o *ScheduleOptions) {
	cmd.Flags().StringVar(&o.Dosage, "dosage", "", "Dosage shown in the notification, example: --dosage=\"1 tablet\".")
	cmd.Flags().IntVar(&o.Hour, "hour", 0, "Hour of day, 0-23.")
	cmd.Flags().IntVar(&o.Minute, "minute", 0, "Minute, 0-59.")
	cmd.Flags().StringVar(&o.Days, "days", "all",
		`Weekdays as Monday=0 .. Sunday=6, example: --days=0,2,4. Also accepts "all", "weekdays" and "weekends".`)
}

func addAdd(topLevel *cobra.Command, o *rootOptions) {
	so := &ScheduleOptions{}
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a weekly reminder",
		Example: `
remindctl add Vitamin D --hour 8 --dosage "1 tablet"
remindctl add Eye drops --hour 21 --minute 30 --days weekdays
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := model.ParseWeekdays(so.Days)
			if err != nil {
				return err
			}

			sess, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.close()

			r, err := sess.store.Add(cmd.Context(), model.Draft{
				Name:     strings.Join(args, " "),
				Dosage:   so.Dosage,
				Hour:     so.Hour,
				Minute:   so.Minute,
				Enabled:  !disabled,
				Weekdays: days,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s at %s, %s\n", r.ID, r.Name, r.Clock(), r.DaysLabel())
			return nil
		},
	}

	addScheduleArgs(cmd, so)
	_ = cmd.MarkFlagRequired("hour")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the reminder without scheduling it.")

	topLevel.AddCommand(cmd)
}
