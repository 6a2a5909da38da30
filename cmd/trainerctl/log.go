package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

const skipSuffix = ":skip"

type logOptions struct {
	name       string
	sets       []string
	at         string
	file       string
	inProgress bool
}

func newLogCmd(root *rootOptions) *cobra.Command {
	opts := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log [exercise]",
		Short: "Record a workout",
		Long: `Record a workout in the local store.

Either pass one exercise with its sets:

  trainerctl log "Bench Press" --set 60x8 --set 60x8 --set 60x6:skip

or a whole workout from a JSON or YAML file with --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workout, err := opts.workout(args, root.now())
			if err != nil {
				return err
			}

			for _, e := range workout.Exercises {
				for i, s := range e.Sets {
					if (s.Weight != "" && !s.Weight.Valid()) || (s.Reps != "" && !s.Reps.Valid()) {
						log.Debugf("log workout, exercise [%s] set %d: non numeric weight/reps [%s]/[%s]", e.ExerciseName, i, s.Weight, s.Reps)
					}
				}
			}

			store, err := root.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			added, err := store.Add(cmd.Context(), *workout)
			if err != nil {
				return fmt.Errorf("add workout: %w", err)
			}

			return render(cmd.OutOrStdout(), root.output, added, func(w io.Writer) error {
				printTitle(w, fmt.Sprintf("Workout #%d logged", added.ID))
				if added.Name != "" {
					printField(w, "Name", added.Name)
				}
				printField(w, "Status", added.Status)
				if added.CompletedAt != nil {
					printField(w, "Completed at", added.CompletedAt.Format(time.DateTime))
				}
				for _, e := range added.Exercises {
					printField(w, e.ExerciseName, formatSets(e.Sets))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Workout name")
	cmd.Flags().StringArrayVarP(&opts.sets, "set", "s", nil, "Set as WEIGHTxREPS, append "+skipSuffix+" for a missed set (repeatable)")
	cmd.Flags().StringVar(&opts.at, "at", "", "Completion date, YYYY-MM-DD or RFC3339 (default now)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the workout from a JSON or YAML file")
	cmd.Flags().BoolVar(&opts.inProgress, "in-progress", false, "Store the workout as not yet completed")

	return cmd
}

func (o *logOptions) workout(args []string, now time.Time) (*workouts.Workout, error) {
	var workout *workouts.Workout
	if o.file != "" {
		if len(args) > 0 || len(o.sets) > 0 {
			return nil, fmt.Errorf("--file cannot be combined with an exercise argument or --set")
		}
		w, err := readWorkoutFile(o.file)
		if err != nil {
			return nil, err
		}
		workout = w
	} else {
		if len(args) == 0 {
			return nil, fmt.Errorf("exercise name required (or use --file)")
		}
		sets := make([]workouts.ExerciseSet, 0, len(o.sets))
		for _, raw := range o.sets {
			set, err := parseSet(raw)
			if err != nil {
				return nil, err
			}
			sets = append(sets, set)
		}
		workout = &workouts.Workout{
			Exercises: []workouts.ExerciseLog{{ExerciseName: args[0], Sets: sets}},
		}
	}

	if o.name != "" {
		workout.Name = o.name
	}

	at := now
	if o.at != "" {
		t, err := parseWhen(o.at, now.Location())
		if err != nil {
			return nil, err
		}
		at = t
	}

	if workout.Status == "" {
		workout.Status = workouts.StatusCompleted
		if o.inProgress {
			workout.Status = workouts.StatusInProgress
		}
	}
	if err := workout.Validate(); err != nil {
		return nil, err
	}

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = at
	}
	if workout.Status == workouts.StatusCompleted && workout.CompletedAt == nil {
		workout.CompletedAt = &at
	}
	if workout.Status == workouts.StatusInProgress {
		workout.CompletedAt = nil
	}

	return workout, nil
}

// parseSet reads "60x8", "60 x 8" or "60x8:skip". Values are kept as typed.
func parseSet(raw string) (workouts.ExerciseSet, error) {
	text := strings.TrimSpace(raw)
	completed := true
	if s, ok := strings.CutSuffix(text, skipSuffix); ok {
		text = s
		completed = false
	}

	weight, reps, ok := strings.Cut(strings.ToLower(text), "x")
	if !ok {
		return workouts.ExerciseSet{}, fmt.Errorf("invalid set %q, expected WEIGHTxREPS", raw)
	}

	return workouts.ExerciseSet{
		Weight:    workouts.LooseNumber(strings.TrimSpace(weight)),
		Reps:      workouts.LooseNumber(strings.TrimSpace(reps)),
		Completed: completed,
	}, nil
}

func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, expected YYYY-MM-DD or RFC3339", s)
	}
	// midday keeps the calendar day stable across small zone shifts
	return t.Add(12 * time.Hour), nil
}

func readWorkoutFile(path string) (*workouts.Workout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workout file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// decode generically and reuse the json tags for field names
		var generic any
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return nil, fmt.Errorf("parse yaml workout: %w", err)
		}
		if b, err = json.Marshal(generic); err != nil {
			return nil, fmt.Errorf("convert yaml workout: %w", err)
		}
	}

	var workout workouts.Workout
	if err := json.Unmarshal(b, &workout); err != nil {
		return nil, fmt.Errorf("parse workout: %w", err)
	}
	return &workout, nil
}

func formatSets(sets []workouts.ExerciseSet) string {
	parts := make([]string, 0, len(sets))
	for _, s := range sets {
		p := fmt.Sprintf("%sx%s", s.Weight, s.Reps)
		if !s.Completed {
			p += skipSuffix
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
