package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
)

func newPerformanceCmd(root *rootOptions) *cobra.Command {
	var weeks int

	cmd := &cobra.Command{
		Use:   "performance <exercise>",
		Short: "Summarize recent performance of an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			engine := progression.NewEngine(store).WithClock(root.now)
			perf, err := engine.AnalyzePerformance(cmd.Context(), args[0], weeks)
			if err != nil {
				return err
			}
			if perf == nil {
				return render(cmd.OutOrStdout(), root.output, progression.InsufficientDataResponse{
					ExerciseName:     args[0],
					InsufficientData: true,
				}, func(w io.Writer) error {
					printTitle(w, args[0])
					fmt.Fprintf(w, "  No completed sessions in the last %d weeks.\n", weeks)
					return nil
				})
			}

			return render(cmd.OutOrStdout(), root.output, perf, func(w io.Writer) error {
				printTitle(w, fmt.Sprintf("%s (last %d weeks)", perf.ExerciseName, perf.LookbackWeeks))
				printField(w, "Sessions", perf.CompletedSessions)
				printField(w, "Average weight", strconv.FormatFloat(perf.AverageWeight, 'f', 2, 64)+"kg")
				printField(w, "Average reps", strconv.FormatFloat(perf.AverageReps, 'f', 1, 64))
				printField(w, "Last set", fmt.Sprintf("%gkg x %d", perf.LastWeight, perf.LastReps))
				printField(w, "Consistency", fmt.Sprintf("%d%%", perf.ConsistencyScore))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&weeks, "weeks", "w", progression.DefaultPerformanceLookbackWeeks, "Lookback window in weeks")

	return cmd
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	req := progression.SuggestionRequest{}
	var kind string

	cmd := &cobra.Command{
		Use:   "suggest <exercise>",
		Short: "Suggest the next progression step for an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := progression.ParseKind(kind)
			if err != nil {
				return err
			}
			req.ExerciseName = args[0]
			req.Kind = k

			store, err := root.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			engine := progression.NewEngine(store).WithClock(root.now)
			suggestion, err := engine.SuggestProgression(cmd.Context(), req)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), root.output, suggestion, func(w io.Writer) error {
				printTitle(w, req.ExerciseName)
				printField(w, "Change", suggestion.Type)
				printField(w, "From", suggestion.CurrentValue)
				printField(w, "To", suggestion.SuggestedValue)
				fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-20s", "Confidence:")), renderConfidence(suggestion.Confidence.String()))
				fmt.Fprintf(w, "\n  %s\n", suggestion.Reason)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.CurrentSets, "sets", "3", "Current sets, e.g. 3 or 3-4")
	cmd.Flags().StringVar(&req.CurrentReps, "reps", "8-12", "Current rep range, e.g. 8-12")
	cmd.Flags().StringVar(&req.CurrentWeight, "weight", "", "Current working weight in kg")
	cmd.Flags().StringVarP(&kind, "kind", "k", "compound", "Exercise kind: compound or isolation")

	return cmd
}

func newPlateauCmd(root *rootOptions) *cobra.Command {
	var weeks int

	cmd := &cobra.Command{
		Use:   "plateau <exercise>",
		Short: "Check an exercise for a plateau and list strategies to break it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			engine := progression.NewEngine(store).WithClock(root.now)
			state, err := engine.PlateauReport(cmd.Context(), args[0], weeks)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), root.output, state, func(w io.Writer) error {
				printTitle(w, state.ExerciseName)
				if !state.Plateau {
					fmt.Fprintln(w, "  No plateau detected.")
					return nil
				}
				fmt.Fprintln(w, "  Plateau detected. Try one of:")
				for _, s := range state.Strategies {
					fmt.Fprintf(w, "    - %s\n", s)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&weeks, "weeks", "w", progression.DefaultPlateauLookbackWeeks, "Lookback window in weeks")

	return cmd
}
