package progression

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

// Kind controls the size of suggested weight increments.
type Kind string

const (
	KindCompound  Kind = "compound"
	KindIsolation Kind = "isolation"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindCompound, KindIsolation:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind maps an empty value to KindCompound.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindCompound, nil
	}
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown exercise kind: %s", s)
	}
	return k, nil
}

type SuggestionType string

const (
	SuggestionWeight SuggestionType = "weight"
	SuggestionReps   SuggestionType = "reps"
	SuggestionSets   SuggestionType = "sets"
)

func (t SuggestionType) String() string {
	return string(t)
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) String() string {
	return string(c)
}

const (
	defaultRepsLow  = 8
	defaultRepsHigh = 12
	defaultSetsLow  = 3

	repRangeWidening = 2
	overshootMargin  = 4
	maxSetsForVolume = 5
)

type increments struct {
	step float64 // top of the rep range reached
	jump float64 // rep range clearly overshot
}

var weightIncrements = map[Kind]increments{
	KindCompound:  {step: 2.5, jump: 5},
	KindIsolation: {step: 1.25, jump: 2.5},
}

type SuggestionRequest struct {
	ExerciseName  string `json:"exerciseName"`
	CurrentSets   string `json:"currentSets"`
	CurrentReps   string `json:"currentReps"`
	CurrentWeight string `json:"currentWeight"`
	Kind          Kind   `json:"kind"`
}

type ProgressionSuggestion struct {
	Type           SuggestionType `json:"type"`
	CurrentValue   string         `json:"currentValue"`
	SuggestedValue string         `json:"suggestedValue"`
	Reason         string         `json:"reason"`
	Confidence     Confidence     `json:"confidence"`
}

// SuggestProgression evaluates the progression rules against the recent
// performance of the exercise. The first matching rule wins.
func (e *Engine) SuggestProgression(
	ctx context.Context,
	req SuggestionRequest,
) (_ *ProgressionSuggestion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "engine.progression.suggestProgression")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := checkExerciseName(req.ExerciseName); err != nil {
		return nil, err
	}
	if req.Kind == "" {
		req.Kind = KindCompound
	}
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("unknown exercise kind: %s", req.Kind)
	}
	span.SetAttributes(attribute.String("exercise", req.ExerciseName))
	span.SetAttributes(attribute.String("kind", req.Kind.String()))

	perf, err := e.AnalyzePerformance(ctx, req.ExerciseName, e.performanceLookbackWeeks)
	if err != nil {
		return nil, err
	}

	suggestion := evaluateRules(perf, req)
	span.SetAttributes(attribute.String("suggestion.type", suggestion.Type.String()))
	span.SetAttributes(attribute.String("suggestion.confidence", suggestion.Confidence.String()))
	log.Debugf("progression suggestion for [%s]: %s %s -> %s (%s)",
		req.ExerciseName, suggestion.Type, suggestion.CurrentValue, suggestion.SuggestedValue, suggestion.Confidence)

	return suggestion, nil
}

func evaluateRules(perf *ExercisePerformance, req SuggestionRequest) *ProgressionSuggestion {
	repsLow, repsHigh, _ := parseRange(req.CurrentReps, defaultRepsLow, defaultRepsHigh)
	inc := weightIncrements[req.Kind]

	// Increments build on the last logged weight. Holds echo the caller's
	// weight as sent.
	baseWeight := workouts.LooseNumber(req.CurrentWeight).Float()
	if perf != nil && perf.LastWeight > 0 {
		baseWeight = perf.LastWeight
	}
	current := req.CurrentWeight
	if strings.TrimSpace(current) == "" {
		current = formatKg(baseWeight)
	}

	hold := func(reason string, confidence Confidence) *ProgressionSuggestion {
		return &ProgressionSuggestion{
			Type:           SuggestionWeight,
			CurrentValue:   current,
			SuggestedValue: current,
			Reason:         reason,
			Confidence:     confidence,
		}
	}
	increase := func(by float64, reason string) *ProgressionSuggestion {
		return &ProgressionSuggestion{
			Type:           SuggestionWeight,
			CurrentValue:   current,
			SuggestedValue: formatKg(baseWeight + by),
			Reason:         reason,
			Confidence:     ConfidenceHigh,
		}
	}

	if perf == nil || perf.CompletedSessions < 2 {
		return hold("Insufficient data: log at least 2 sessions to get a progression suggestion.", ConfidenceLow)
	}

	score := perf.ConsistencyScore
	switch {
	case score >= 80 && perf.CompletedSessions >= 3 && perf.LastReps >= repsHigh:
		return increase(inc.step, fmt.Sprintf(
			"%d%% of sessions fully completed and %d reps reached the top of the range. Add %s.",
			score, perf.LastReps, formatKg(inc.step)))

	case score >= 60 && score < 80 && perf.LastReps < repsHigh:
		return &ProgressionSuggestion{
			Type:           SuggestionReps,
			CurrentValue:   formatRange(repsLow, repsHigh, true),
			SuggestedValue: formatRange(repsLow, repsHigh+repRangeWidening, true),
			Reason:         "Keep the weight and push for more reps before adding load.",
			Confidence:     ConfidenceMedium,
		}

	case score < 60:
		return hold(fmt.Sprintf(
			"Only %d%% of sessions fully completed. Keep the load and focus on form and completing every set.",
			score), ConfidenceLow)

	case perf.LastReps > repsHigh+overshootMargin && score >= 70:
		return increase(inc.jump, fmt.Sprintf(
			"%d reps is well above the %d rep target. Make a bigger jump of %s.",
			perf.LastReps, repsHigh, formatKg(inc.jump)))

	case score >= 75 && perf.CompletedSessions >= 4:
		setsLow, setsHigh, setsHasHigh := parseRange(req.CurrentSets, defaultSetsLow, defaultSetsLow)
		if setsLow < maxSetsForVolume {
			return &ProgressionSuggestion{
				Type:           SuggestionSets,
				CurrentValue:   formatRange(setsLow, setsHigh, setsHasHigh),
				SuggestedValue: formatRange(setsLow+1, setsHigh+1, setsHasHigh),
				Reason:         "Consistent training. Add one set to increase the weekly volume.",
				Confidence:     ConfidenceMedium,
			}
		}
	}

	return hold("Keep the current load and keep logging your sessions.", ConfidenceMedium)
}

// parseRange reads "low-high". Missing or unparseable bounds take the defaults.
// hasHigh reports whether the high bound was given.
func parseRange(rangeText string, defLow, defHigh int) (low, high int, hasHigh bool) {
	low, high = defLow, defHigh

	parts := strings.Split(rangeText, "-")
	if n := workouts.LooseNumber(parts[0]); n.Valid() {
		low = n.Int()
	}
	if len(parts) > 1 {
		if n := workouts.LooseNumber(parts[1]); n.Valid() {
			high = n.Int()
			hasHigh = true
		}
	}
	return low, high, hasHigh
}

func formatRange(low, high int, withHigh bool) string {
	if !withHigh {
		return strconv.Itoa(low)
	}
	return fmt.Sprintf("%d-%d", low, high)
}

func formatKg(weight float64) string {
	return strconv.FormatFloat(math.Round(weight*100)/100, 'f', -1, 64) + "kg"
}
