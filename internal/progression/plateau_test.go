package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

func TestDetectPlateau_FlatHistory(t *testing.T) {
	// per-session means oldest first: 50, 51, 49.5, 50.2
	engine := newTestEngine(t,
		session(1, done("50", "8"), done("50.4", "8")),
		session(5, done("49.5", "8"), skipped("60", "2")),
		session(9, done("52", "8"), done("50", "8")),
		session(13, done("50", "8")),
	)

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.True(t, plateau)

	state, err := engine.PlateauReport(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.True(t, state.Plateau)
	assert.Len(t, state.Strategies, 6)

	strategies, err := engine.PlateauStrategies(context.Background(), "Supino Reto")
	require.NoError(t, err)
	assert.Len(t, strategies, 6)
	assert.Equal(t, state.Strategies, strategies)
	assert.Contains(t, strategies[0], "Deload")
}

func TestDetectPlateau_RequiresFourSessions(t *testing.T) {
	engine := newTestEngine(t,
		session(1, done("50", "8")),
		session(5, done("50", "8")),
		session(9, done("50", "8")),
	)

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.False(t, plateau)

	state, err := engine.PlateauReport(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.False(t, state.Plateau)
	assert.NotNil(t, state.Strategies)
	assert.Empty(t, state.Strategies)
}

func TestDetectPlateau_Progressing(t *testing.T) {
	engine := newTestEngine(t,
		session(1, done("60", "8")),
		session(5, done("57.5", "8")),
		session(9, done("55", "8")),
		session(13, done("52.5", "8")),
	)

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.False(t, plateau)

	strategies, err := engine.PlateauStrategies(context.Background(), "Supino Reto")
	require.NoError(t, err)
	assert.Empty(t, strategies)
}

func TestDetectPlateau_ZeroWeightIsNotAPlateau(t *testing.T) {
	engine := newTestEngine(t,
		session(1, done("", "15")),
		session(5, done("0", "14")),
		session(9, done("bodyweight", "15")),
		session(13, done("", "12")),
	)

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.False(t, plateau)
}

func TestDetectPlateau_UsesLastFourOfSixRecent(t *testing.T) {
	// the two oldest of the six fetched sessions vary a lot,
	// the four most recent are flat
	engine := newTestEngine(t,
		session(1, done("80", "5")),
		session(3, done("80", "5")),
		session(5, done("81", "5")),
		session(7, done("80", "5")),
		session(9, done("60", "5")),
		session(11, done("40", "5")),
		session(13, done("20", "5")), // beyond the fetch limit of 6
	)

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 4)
	require.NoError(t, err)
	assert.True(t, plateau)
}

func TestDetectPlateau_FetchesSixNewestFirst(t *testing.T) {
	history := []workouts.ExerciseSession{
		session(1, done("80", "5")),
		session(3, done("80", "5")),
		session(5, done("80", "5")),
		session(7, done("80", "5")),
	}
	ctrl := gomock.NewController(t)
	repoMock := NewMocksessionsRepo(ctrl)
	since := fixedNow.Add(-4 * 7 * 24 * time.Hour)
	gomock.InOrder(
		repoMock.EXPECT().RecentSessions(gomock.Any(), "Supino Reto", since, 0).Return(history, nil),
		repoMock.EXPECT().RecentSessions(gomock.Any(), "Supino Reto", since, 6).Return(history, nil),
	)
	engine := progression.NewEngine(repoMock).WithClock(func() time.Time { return fixedNow })

	plateau, err := engine.DetectPlateau(context.Background(), "Supino Reto", 0)
	require.NoError(t, err)
	assert.True(t, plateau)
}
