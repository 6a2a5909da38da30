package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/guiguit045/tailored-trainer-coach/internal/streak"
)

func newStreakCmd(root *rootOptions) *cobra.Command {
	var target int

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show workout streaks, the current 7 day cycle and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target <= 0 {
				return fmt.Errorf("--target must be positive")
			}

			store, err := root.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			service := streak.NewService(store, target).WithClock(root.now)
			summary, err := service.Summary(cmd.Context(), target)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), root.output, summary, func(w io.Writer) error {
				printTitle(w, "Streak")
				printField(w, "Current", fmt.Sprintf("%d days", summary.Streak.CurrentStreak))
				printField(w, "Best", fmt.Sprintf("%d days", summary.Streak.MaxStreak))
				printField(w, "Total workouts", summary.TotalWorkouts)
				if c := summary.Cycle; c != nil {
					printField(w, fmt.Sprintf("Cycle %d", c.Index+1), fmt.Sprintf("%d/%d (%s - %s)",
						c.CompletedWorkouts, c.Target, c.Start.Format(time.DateOnly), c.End.Format(time.DateOnly)))
				}
				if len(summary.Achievements) > 0 {
					printTitle(w, "Achievements")
					for _, a := range summary.Achievements {
						fmt.Fprintf(w, "  %s %s\n", valueStyle.Render(a.Title), labelStyle.Render(a.Description))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&target, "target", "t", streak.DefaultWeeklyTarget, "Workouts per 7 day cycle")

	return cmd
}
