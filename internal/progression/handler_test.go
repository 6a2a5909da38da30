package progression_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/guiguit045/tailored-trainer-coach/internal/cache"
	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/metrics"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

func newTestHandler(t *testing.T) (*progression.Handler, *MockprogressionEngine, *metrics.Manager, *mux.Router) {
	t.Helper()
	ctrl := gomock.NewController(t)
	engineMock := NewMockprogressionEngine(ctrl)
	metricsManager := metrics.NewTestManager()
	h := progression.NewHandler(engineMock, metricsManager).WithClock(func() time.Time { return fixedNow })
	r := mux.NewRouter()
	h.SetupRoutes(r)
	return h, engineMock, metricsManager, r
}

func TestHandler_HandlePerformance(t *testing.T) {
	_, engineMock, _, r := newTestHandler(t)

	perf := &progression.ExercisePerformance{
		ExerciseName:      "Supino Reto",
		LookbackWeeks:     3,
		CompletedSessions: 4,
		AverageWeight:     41.25,
		AverageReps:       10,
		LastWeight:        42.5,
		LastReps:          9,
		ConsistencyScore:  75,
	}
	engineMock.EXPECT().AnalyzePerformance(gomock.Any(), "Supino Reto", 3).Return(perf, nil)

	req, err := http.NewRequest("GET", "/progression/exercise/Supino%20Reto/performance?weeks=3", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got progression.ExercisePerformance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, *perf, got)
}

func TestHandler_HandlePerformance_InsufficientData(t *testing.T) {
	_, engineMock, _, r := newTestHandler(t)

	engineMock.EXPECT().AnalyzePerformance(gomock.Any(), "Remada", 0).Return(nil, nil)

	req, err := http.NewRequest("GET", "/progression/exercise/Remada/performance", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"exerciseName":"Remada","insufficientData":true}`, rr.Body.String())
}

func TestHandler_HandlePerformance_Errors(t *testing.T) {
	_, engineMock, _, r := newTestHandler(t)

	req, err := http.NewRequest("GET", "/progression/exercise/Remada/performance?weeks=zero", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	engineMock.EXPECT().AnalyzePerformance(gomock.Any(), "Remada", 0).Return(nil, errors.New("db down"))
	req, err = http.NewRequest("GET", "/progression/exercise/Remada/performance", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	engineMock.EXPECT().AnalyzePerformance(gomock.Any(), " ", 0).Return(nil, progression.ErrEmptyExerciseName)
	req, err = http.NewRequest("GET", "/progression/exercise/%20/performance", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleSuggestion(t *testing.T) {
	_, engineMock, metricsManager, r := newTestHandler(t)

	engineMock.EXPECT().
		SuggestProgression(gomock.Any(), progression.SuggestionRequest{
			ExerciseName:  "Supino Reto",
			CurrentSets:   "3-4",
			CurrentReps:   "8-12",
			CurrentWeight: "40kg",
			Kind:          progression.KindIsolation,
		}).
		Return(&progression.ProgressionSuggestion{
			Type:           progression.SuggestionWeight,
			CurrentValue:   "40kg",
			SuggestedValue: "41.25kg",
			Reason:         "top of the range",
			Confidence:     progression.ConfidenceHigh,
		}, nil)

	req, err := http.NewRequest("GET", "/progression/exercise/Supino%20Reto/suggestion?sets=3-4&reps=8-12&weight=40kg&kind=isolation", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"type": "weight",
		"currentValue": "40kg",
		"suggestedValue": "41.25kg",
		"reason": "top of the range",
		"confidence": "high"
	}`, rr.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterSuggestions.WithLabelValues("weight", "high")))
}

func TestHandler_HandleSuggestion_BadKind(t *testing.T) {
	_, _, _, r := newTestHandler(t)

	req, err := http.NewRequest("GET", "/progression/exercise/Supino%20Reto/suggestion?kind=cardio", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleSuggestion_Cached(t *testing.T) {
	h, engineMock, metricsManager, r := newTestHandler(t)
	h.WithCache(cache.NewLocal(1), time.Minute)

	engineMock.EXPECT().
		SuggestProgression(gomock.Any(), gomock.Any()).
		Return(&progression.ProgressionSuggestion{
			Type:           progression.SuggestionSets,
			CurrentValue:   "3-4",
			SuggestedValue: "4-5",
			Confidence:     progression.ConfidenceMedium,
		}, nil).
		Times(1)

	var bodies []string
	for _, path := range []string{
		"/progression/exercise/Supino%20Reto/suggestion?sets=3-4",
		"/progression/exercise/supino%20reto/suggestion?sets=3-4",
	} {
		req, err := http.NewRequest("GET", path, nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		bodies = append(bodies, rr.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterCacheMisses))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterCacheHits))
}

func TestHandler_HandleSuggestion_CacheInvalidatedByNewHistory(t *testing.T) {
	history := []workouts.ExerciseSession{
		session(3, done("40", "12")),
		session(5, done("40", "12")),
	}
	ctrl := gomock.NewController(t)
	repoMock := NewMocksessionsRepo(ctrl)
	repoMock.EXPECT().
		RecentSessions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, time.Time, int) ([]workouts.ExerciseSession, error) {
			return history, nil
		}).
		AnyTimes()

	engine := progression.NewEngine(repoMock).WithClock(func() time.Time { return fixedNow })
	h := progression.NewHandler(engine, metrics.NewTestManager()).
		WithClock(func() time.Time { return fixedNow }).
		WithCache(cache.NewLocal(1), time.Minute)
	r := mux.NewRouter()
	h.SetupRoutes(r)

	getSuggestion := func() progression.ProgressionSuggestion {
		req, err := http.NewRequest("GET", "/progression/exercise/Supino%20Reto/suggestion?reps=8-12", nil)
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var got progression.ProgressionSuggestion
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		return got
	}

	first := getSuggestion()
	assert.Equal(t, "40kg", first.SuggestedValue)
	assert.Equal(t, progression.ConfidenceMedium, first.Confidence)

	// a third session lands but the cache was not told yet
	history = append([]workouts.ExerciseSession{session(1, done("40", "12"))}, history...)
	assert.Equal(t, first, getSuggestion())

	h.InvalidateSuggestions(context.Background(), []string{"supino  reto"})
	second := getSuggestion()
	assert.Equal(t, "42.5kg", second.SuggestedValue)
	assert.Equal(t, progression.ConfidenceHigh, second.Confidence)

	// other exercises are left alone
	h.InvalidateSuggestions(context.Background(), []string{"Agachamento", " "})
	assert.Equal(t, second, getSuggestion())
}

func TestHandler_HandlePlateau(t *testing.T) {
	_, engineMock, metricsManager, r := newTestHandler(t)

	engineMock.EXPECT().
		PlateauReport(gomock.Any(), "Agachamento", 6).
		Return(&progression.PlateauState{
			ExerciseName:  "Agachamento",
			LookbackWeeks: 6,
			Plateau:       true,
			Strategies:    []string{"Deload", "Pause reps"},
		}, nil)

	req, err := http.NewRequest("GET", "/progression/exercise/Agachamento/plateau?weeks=6", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"exerciseName": "Agachamento",
		"lookbackWeeks": 6,
		"plateau": true,
		"strategies": ["Deload", "Pause reps"]
	}`, rr.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterPlateausDetected))
}
