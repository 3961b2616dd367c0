package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
)

const dateLayout = "2006-01-02"

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.AddCommand(studyLogCmd, studyGradeCmd, studyShowCmd)

	studyLogCmd.Flags().String("date", "", "session date (YYYY-MM-DD, default today)")
	studyGradeCmd.Flags().String("date", "", "grade date (YYYY-MM-DD, default today)")
}

// parseDate returns the zero time for an empty flag so the shell
// substitutes the current time.
func parseDate(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Track study sessions and grades",
}

var studyLogCmd = &cobra.Command{
	Use:   "log <subject> <minutes>",
	Short: "Log a study session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q", args[1])
		}
		date, err := parseDate(cmd)
		if err != nil {
			return err
		}
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			s, err := shell.LogStudy(ctx, args[0], minutes, date)
			if err != nil {
				return fmt.Errorf("log study: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Logged %d min of %s on %s.\n", s.DurationMinutes, s.Subject, s.Date.Format(dateLayout))
			return nil
		})
	},
}

var studyGradeCmd = &cobra.Command{
	Use:   "grade <subject> <grade> <max>",
	Short: "Record a grade",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid grade %q", args[1])
		}
		maxGrade, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid max grade %q", args[2])
		}
		date, err := parseDate(cmd)
		if err != nil {
			return err
		}
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			g, err := shell.AddGrade(ctx, args[0], grade, maxGrade, date)
			if err != nil {
				return fmt.Errorf("add grade: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Recorded %s: %g/%g.\n", g.Subject, g.Grade, g.MaxGrade)
			return nil
		})
	},
}

var studyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show study sessions and grades",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			data, err := shell.StudyData(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSUBJECT\tMINUTES")
			total := 0
			for _, s := range data.Sessions {
				fmt.Fprintf(w, "%s\t%s\t%d\n", s.Date.Format(dateLayout), s.Subject, s.DurationMinutes)
				total += s.DurationMinutes
			}
			fmt.Fprintf(w, "\tTOTAL\t%d\n\n", total)
			fmt.Fprintln(w, "DATE\tSUBJECT\tGRADE")
			for _, g := range data.Grades {
				fmt.Fprintf(w, "%s\t%s\t%g/%g\n", g.Date.Format(dateLayout), g.Subject, g.Grade, g.MaxGrade)
			}
			return w.Flush()
		})
	},
}
