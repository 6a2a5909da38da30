package progression

import (
	"context"
	"fmt"
	"math"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

const (
	plateauMinSessions   = 4
	plateauFetchSessions = 6
	plateauWindow        = 4
	plateauTolerance     = 0.05
)

// plateauStrategies is the same for every exercise.
var plateauStrategies = []string{
	"Deload: drop the load by about 10% for one week, then build back up.",
	"Exercise variation: swap in a close variation of the movement for 3-4 weeks.",
	"Time under tension: slow the eccentric phase to 3-4 seconds per rep.",
	"Drop sets: after the last set, cut the load by 20-30% and continue until failure.",
	"Pause reps: hold for 1-2 seconds at the hardest point of the movement.",
	"Undulation: alternate heavy low-rep sessions with lighter high-rep sessions.",
}

type PlateauState struct {
	ExerciseName  string   `json:"exerciseName"`
	LookbackWeeks int      `json:"lookbackWeeks"`
	Plateau       bool     `json:"plateau"`
	Strategies    []string `json:"strategies"`
}

// DetectPlateau reports whether the mean session weight of the last 4
// sessions stays within 5% of their average.
func (e *Engine) DetectPlateau(
	ctx context.Context,
	exerciseName string,
	lookbackWeeks int,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.progression.detectPlateau")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if lookbackWeeks <= 0 {
		lookbackWeeks = e.plateauLookbackWeeks
	}
	span.SetAttributes(attribute.String("exercise", exerciseName))
	span.SetAttributes(attribute.Int("lookback.weeks", lookbackWeeks))

	perf, err := e.AnalyzePerformance(ctx, exerciseName, lookbackWeeks)
	if err != nil {
		return false, err
	}
	if perf == nil || perf.CompletedSessions < plateauMinSessions {
		return false, nil
	}

	sessions, err := e.fetchSessions(ctx, exerciseName, e.cutoff(lookbackWeeks), plateauFetchSessions)
	if err != nil {
		return false, fmt.Errorf("fetch plateau sessions: %w", err)
	}
	// oldest first
	slices.Reverse(sessions)

	means := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		means = append(means, sessionMeanWeight(s))
	}

	plateau := isPlateau(means)
	span.SetAttributes(attribute.Bool("plateau", plateau))

	return plateau, nil
}

// PlateauStrategies returns the strategy catalog when the exercise is on a
// plateau and an empty list otherwise.
func (e *Engine) PlateauStrategies(ctx context.Context, exerciseName string) ([]string, error) {
	plateau, err := e.DetectPlateau(ctx, exerciseName, e.plateauLookbackWeeks)
	if err != nil {
		return nil, err
	}
	return strategiesFor(plateau), nil
}

// PlateauReport combines DetectPlateau with the matching strategies.
func (e *Engine) PlateauReport(ctx context.Context, exerciseName string, lookbackWeeks int) (*PlateauState, error) {
	if lookbackWeeks <= 0 {
		lookbackWeeks = e.plateauLookbackWeeks
	}
	plateau, err := e.DetectPlateau(ctx, exerciseName, lookbackWeeks)
	if err != nil {
		return nil, err
	}
	return &PlateauState{
		ExerciseName:  exerciseName,
		LookbackWeeks: lookbackWeeks,
		Plateau:       plateau,
		Strategies:    strategiesFor(plateau),
	}, nil
}

func strategiesFor(plateau bool) []string {
	if !plateau {
		return []string{}
	}
	return slices.Clone(plateauStrategies)
}

func sessionMeanWeight(s workouts.ExerciseSession) float64 {
	var total float64
	var n int
	for _, set := range s.Sets {
		if !set.Completed {
			continue
		}
		total += set.Weight.Float()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// isPlateau looks at the last 4 means, oldest first.
// An all-zero window (e.g. bodyweight work) is not a plateau.
func isPlateau(means []float64) bool {
	if len(means) < plateauWindow {
		return false
	}
	window := means[len(means)-plateauWindow:]

	var avg float64
	for _, m := range window {
		avg += m
	}
	avg /= float64(len(window))
	if avg <= 0 {
		return false
	}

	var maxDeviation float64
	for _, m := range window {
		maxDeviation = math.Max(maxDeviation, math.Abs(m-avg))
	}
	return maxDeviation < avg*plateauTolerance
}
