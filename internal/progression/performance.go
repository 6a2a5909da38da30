package progression

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

// ExercisePerformance aggregates the sessions of one exercise inside a lookback window.
type ExercisePerformance struct {
	ExerciseName      string  `json:"exerciseName"`
	LookbackWeeks     int     `json:"lookbackWeeks"`
	CompletedSessions int     `json:"completedSessions"`
	AverageWeight     float64 `json:"averageWeight"`
	AverageReps       float64 `json:"averageReps"`
	LastWeight        float64 `json:"lastWeight"`
	LastReps          int     `json:"lastReps"`
	// ConsistencyScore is the percentage (0-100) of sessions with every set completed.
	ConsistencyScore int `json:"consistencyScore"`
}

// AnalyzePerformance aggregates the exercise history of the last lookbackWeeks.
// It returns nil without an error when there is no qualifying session.
func (e *Engine) AnalyzePerformance(
	ctx context.Context,
	exerciseName string,
	lookbackWeeks int,
) (_ *ExercisePerformance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.progression.analyzePerformance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkExerciseName(exerciseName); err != nil {
		return nil, err
	}
	if lookbackWeeks <= 0 {
		lookbackWeeks = e.performanceLookbackWeeks
	}
	span.SetAttributes(attribute.String("exercise", exerciseName))
	span.SetAttributes(attribute.Int("lookback.weeks", lookbackWeeks))

	sessions, err := e.fetchSessions(ctx, exerciseName, e.cutoff(lookbackWeeks), 0)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}
	span.SetAttributes(attribute.Int("sessions", len(sessions)))
	if len(sessions) == 0 {
		return nil, nil
	}

	perf := aggregate(sessions)
	perf.ExerciseName = exerciseName
	perf.LookbackWeeks = lookbackWeeks

	return perf, nil
}

// aggregate expects sessions newest first.
func aggregate(sessions []workouts.ExerciseSession) *ExercisePerformance {
	var (
		totalWeight    float64
		totalReps      float64
		completedSets  int
		fullyCompleted int
	)

	for _, s := range sessions {
		allCompleted := len(s.Sets) > 0
		for _, set := range s.Sets {
			if !set.Completed {
				allCompleted = false
				continue
			}
			totalWeight += set.Weight.Float()
			totalReps += float64(set.Reps.Int())
			completedSets++
		}
		if allCompleted {
			fullyCompleted++
		}
	}

	perf := &ExercisePerformance{
		CompletedSessions: len(sessions),
		ConsistencyScore:  int(math.Round(100 * float64(fullyCompleted) / float64(len(sessions)))),
	}
	if completedSets > 0 {
		perf.AverageWeight = totalWeight / float64(completedSets)
		perf.AverageReps = totalReps / float64(completedSets)
	}

	newest := sessions[0].Sets
	for i := len(newest) - 1; i >= 0; i-- {
		if newest[i].Completed {
			perf.LastWeight = newest[i].Weight.Float()
			perf.LastReps = newest[i].Reps.Int()
			break
		}
	}

	return perf
}
