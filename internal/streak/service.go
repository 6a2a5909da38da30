package streak

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=streak_mocks_test.go -package=streak_test

type datesRepo interface {
	CompletedWorkoutDates(ctx context.Context) ([]time.Time, error)
}

const DefaultWeeklyTarget = 3

type Summary struct {
	Streak        Streak         `json:"streak"`
	Cycle         *CycleProgress `json:"cycle"`
	TotalWorkouts int            `json:"totalWorkouts"`
	Achievements  []Achievement  `json:"achievements"`
}

type Service struct {
	repo         datesRepo
	weeklyTarget int
	now          func() time.Time
}

func NewService(repo datesRepo, weeklyTarget int) *Service {
	if weeklyTarget <= 0 {
		weeklyTarget = DefaultWeeklyTarget
	}
	return &Service{
		repo:         repo,
		weeklyTarget: weeklyTarget,
		now:          time.Now,
	}
}

// WithClock replaces the service's time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Summary computes streaks, the current cycle and achievements from all
// completed workouts. A non-positive target uses the configured weekly target.
func (s *Service) Summary(ctx context.Context, target int) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.streak.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if target <= 0 {
		target = s.weeklyTarget
	}

	dates, err := s.repo.CompletedWorkoutDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("completed workout dates: %w", err)
	}
	span.SetAttributes(attribute.Int("workouts", len(dates)))

	now := s.now()
	summary := &Summary{
		Streak:        ComputeStreak(dates, now),
		Cycle:         CurrentCycle(dates, now, target),
		TotalWorkouts: len(dates),
	}
	summary.Achievements = Achievements(summary)

	return summary, nil
}
