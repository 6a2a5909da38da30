package mcp

import (
	"context"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	"github.com/guiguit045/tailored-trainer-coach/internal/streak"
)

type progressionEngine interface {
	AnalyzePerformance(ctx context.Context, exerciseName string, lookbackWeeks int) (*progression.ExercisePerformance, error)
	SuggestProgression(ctx context.Context, req progression.SuggestionRequest) (*progression.ProgressionSuggestion, error)
	PlateauReport(ctx context.Context, exerciseName string, lookbackWeeks int) (*progression.PlateauState, error)
}

type streakService interface {
	Summary(ctx context.Context, target int) (*streak.Summary, error)
}

// coachService is what the tool handlers need. Used by Handler for testability.
type coachService interface {
	progressionEngine
	streakService
}

// CoachService joins the progression engine and the streak service behind one value.
type CoachService struct {
	progressionEngine
	streakService
}

func NewCoachService(engine progressionEngine, streaks streakService) *CoachService {
	return &CoachService{
		progressionEngine: engine,
		streakService:     streaks,
	}
}
