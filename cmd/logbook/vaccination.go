package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/familylog/internal/domain/vaccination"
)

var (
	vaccinationDOB      string
	vaccinationGiven    []string
	vaccinationPossible bool
	vaccinationTimezone string
)

var vaccinationCmd = &cobra.Command{
	Use:   "vaccination",
	Short: "Show the next recommended vaccination for a child",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := time.LoadLocation(vaccinationTimezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		dob, err := time.ParseInLocation(time.DateOnly, vaccinationDOB, loc)
		if err != nil {
			return fmt.Errorf("invalid --dob, expected YYYY-MM-DD: %w", err)
		}
		calendar := vaccination.NewCalendar(loc)
		if vaccinationPossible {
			return printJSON(cmd, calendar.PossibleForAge(dob))
		}
		rec := calendar.NextVaccination(dob, vaccinationGiven)
		if rec == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "nothing due in the next two months")
			return nil
		}
		return printJSON(cmd, rec)
	},
}

func init() {
	vaccinationCmd.Flags().StringVar(&vaccinationDOB, "dob", "", "Date of birth (YYYY-MM-DD)")
	vaccinationCmd.Flags().StringSliceVar(&vaccinationGiven, "given", nil, "Vaccinations already given (repeatable)")
	vaccinationCmd.Flags().BoolVar(&vaccinationPossible, "possible", false, "List every vaccination possible for the age")
	vaccinationCmd.Flags().StringVar(&vaccinationTimezone, "tz", "Europe/Zagreb", "Timezone for date arithmetic")
	_ = vaccinationCmd.MarkFlagRequired("dob")
	rootCmd.AddCommand(vaccinationCmd)
}
