package progression

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=progression_test

type sessionsRepo interface {
	RecentSessions(ctx context.Context, exerciseName string, since time.Time, limit int) ([]workouts.ExerciseSession, error)
}

var ErrEmptyExerciseName = errors.New("exercise name is empty")

const (
	DefaultPerformanceLookbackWeeks = 2
	DefaultPlateauLookbackWeeks     = 4

	day = 24 * time.Hour
)

// Engine derives performance, suggestions and plateau state from the
// session history. It holds no state of its own.
type Engine struct {
	repo                     sessionsRepo
	now                      func() time.Time
	performanceLookbackWeeks int
	plateauLookbackWeeks     int
}

func NewEngine(repo sessionsRepo) *Engine {
	return &Engine{
		repo:                     repo,
		now:                      time.Now,
		performanceLookbackWeeks: DefaultPerformanceLookbackWeeks,
		plateauLookbackWeeks:     DefaultPlateauLookbackWeeks,
	}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithLookback sets the default windows used when a caller passes no
// positive lookback. Non-positive values keep the current defaults.
func (e *Engine) WithLookback(performanceWeeks, plateauWeeks int) *Engine {
	if performanceWeeks > 0 {
		e.performanceLookbackWeeks = performanceWeeks
	}
	if plateauWeeks > 0 {
		e.plateauLookbackWeeks = plateauWeeks
	}
	return e
}

func (e *Engine) cutoff(lookbackWeeks int) time.Time {
	return e.now().Add(-time.Duration(lookbackWeeks) * 7 * day)
}

// fetchSessions returns the completed sessions since the cutoff, newest first.
func (e *Engine) fetchSessions(ctx context.Context, exerciseName string, since time.Time, limit int) ([]workouts.ExerciseSession, error) {
	sessions, err := e.repo.RecentSessions(ctx, exerciseName, since, limit)
	if err != nil {
		return nil, err
	}

	completed := make([]workouts.ExerciseSession, 0, len(sessions))
	for _, s := range sessions {
		if s.CompletedAt.IsZero() {
			continue
		}
		completed = append(completed, s)
	}
	return completed, nil
}

func checkExerciseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyExerciseName
	}
	return nil
}
