//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	"github.com/guiguit045/tailored-trainer-coach/internal/streak"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) logWorkout(ctx context.Context, exercise string, daysAgo int, weight, reps string, completed ...bool) workouts.Workout {
	at := time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour)
	sets := make([]workouts.ExerciseSet, 0, 3)
	for i := 0; i < 3; i++ {
		done := true
		if i < len(completed) {
			done = completed[i]
		}
		sets = append(sets, workouts.ExerciseSet{
			Weight:    workouts.LooseNumber(weight),
			Reps:      workouts.LooseNumber(reps),
			Completed: done,
		})
	}

	status, body := s.doRequest(ctx, "POST", "/workouts", workouts.Workout{
		Name:        fmt.Sprintf("%s %d days ago", exercise, daysAgo),
		Status:      workouts.StatusCompleted,
		CreatedAt:   at,
		CompletedAt: &at,
		Exercises: []workouts.ExerciseLog{
			{ExerciseName: exercise, Sets: sets},
		},
	})
	require.Equal(s.T(), http.StatusCreated, status, string(body))

	var added workouts.Workout
	require.NoError(s.T(), json.Unmarshal(body, &added))
	return added
}

func (s *IntegrationTestSuite) TestVersion() {
	status, body := s.doRequest(context.Background(), "GET", "/version", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("test-version-info", string(body))
}

func (s *IntegrationTestSuite) TestWorkoutLifecycle() {
	ctx := context.Background()

	status, body := s.doRequest(ctx, "POST", "/workouts", workouts.Workout{
		Name: "Push",
		Exercises: []workouts.ExerciseLog{
			{ExerciseName: "Bench Press", Sets: []workouts.ExerciseSet{{Weight: "60", Reps: "8", Completed: true}}},
		},
	})
	require.Equal(s.T(), http.StatusCreated, status, string(body))
	var added workouts.Workout
	require.NoError(s.T(), json.Unmarshal(body, &added))
	s.Equal(workouts.StatusInProgress, added.Status)
	s.Nil(added.CompletedAt)

	status, _ = s.doRequest(ctx, "PUT", fmt.Sprintf("/workouts/%d/complete", added.ID), nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.doRequest(ctx, "PUT", fmt.Sprintf("/workouts/%d/complete", added.ID), nil)
	s.Equal(http.StatusConflict, status)

	status, body = s.doRequest(ctx, "GET", fmt.Sprintf("/workouts/%d", added.ID), nil)
	require.Equal(s.T(), http.StatusOK, status)
	var got workouts.Workout
	require.NoError(s.T(), json.Unmarshal(body, &got))
	s.Equal(workouts.StatusCompleted, got.Status)
	s.NotNil(got.CompletedAt)
	require.Len(s.T(), got.Exercises, 1)
	s.Equal("Bench Press", got.Exercises[0].ExerciseName)

	status, _ = s.doRequest(ctx, "GET", "/workouts/999", nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestSuggestion_WeightIncrease() {
	ctx := context.Background()
	s.logWorkout(ctx, "Bench Press", 9, "100", "8")
	s.logWorkout(ctx, "Bench Press", 5, "100", "8")
	s.logWorkout(ctx, "Bench Press", 1, "100", "8")

	path := "/progression/exercise/bench%20press/suggestion?sets=3&reps=6-8&weight=100kg&kind=compound"
	status, body := s.doRequest(ctx, "GET", path, nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))

	var suggestion progression.ProgressionSuggestion
	require.NoError(s.T(), json.Unmarshal(body, &suggestion))
	s.Equal(progression.SuggestionWeight, suggestion.Type)
	s.Equal("100kg", suggestion.CurrentValue)
	s.Equal("102.5kg", suggestion.SuggestedValue)
	s.Equal(progression.ConfidenceHigh, suggestion.Confidence)

	// second call is served from the redis cache
	status, cached := s.doRequest(ctx, "GET", path, nil)
	require.Equal(s.T(), http.StatusOK, status)
	s.JSONEq(string(body), string(cached))
}

func (s *IntegrationTestSuite) TestSuggestion_CacheRefreshedByNewWorkout() {
	ctx := context.Background()
	s.logWorkout(ctx, "Incline Press", 6, "40", "12")
	s.logWorkout(ctx, "Incline Press", 3, "40", "12")

	path := "/progression/exercise/incline%20press/suggestion?reps=8-12&weight=40kg"
	var suggestion progression.ProgressionSuggestion
	status, body := s.doRequest(ctx, "GET", path, nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
	require.NoError(s.T(), json.Unmarshal(body, &suggestion))
	s.Equal("40kg", suggestion.SuggestedValue)
	s.Equal(progression.ConfidenceMedium, suggestion.Confidence)

	s.logWorkout(ctx, "Incline Press", 1, "40", "12")

	status, body = s.doRequest(ctx, "GET", path, nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
	require.NoError(s.T(), json.Unmarshal(body, &suggestion))
	s.Equal("42.5kg", suggestion.SuggestedValue)
	s.Equal(progression.ConfidenceHigh, suggestion.Confidence)
}

func (s *IntegrationTestSuite) TestPerformance() {
	ctx := context.Background()
	s.logWorkout(ctx, "Squat", 6, "120", "5", true, true, false)
	s.logWorkout(ctx, "Squat", 2, "120", "5")
	s.logWorkout(ctx, "Squat", 30, "100", "5")

	status, body := s.doRequest(ctx, "GET", "/progression/exercise/Squat/performance", nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))

	var perf progression.ExercisePerformance
	require.NoError(s.T(), json.Unmarshal(body, &perf))
	s.Equal(2, perf.CompletedSessions)
	s.Equal(50, perf.ConsistencyScore)
	s.Equal(120.0, perf.LastWeight)
	s.Equal(5, perf.LastReps)

	status, body = s.doRequest(ctx, "GET", "/progression/exercise/Squat/performance?weeks=6", nil)
	require.Equal(s.T(), http.StatusOK, status)
	require.NoError(s.T(), json.Unmarshal(body, &perf))
	s.Equal(3, perf.CompletedSessions)

	status, body = s.doRequest(ctx, "GET", "/progression/exercise/Deadlift/performance", nil)
	s.Equal(http.StatusNotFound, status)
	var missing progression.InsufficientDataResponse
	require.NoError(s.T(), json.Unmarshal(body, &missing))
	s.True(missing.InsufficientData)

	status, _ = s.doRequest(ctx, "GET", "/progression/exercise/Squat/performance?weeks=zero", nil)
	s.Equal(http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestPlateau() {
	ctx := context.Background()
	for _, daysAgo := range []int{20, 15, 10, 5, 1} {
		s.logWorkout(ctx, "Overhead Press", daysAgo, "50", "6")
	}
	s.logWorkout(ctx, "Row", 3, "70", "10")

	status, body := s.doRequest(ctx, "GET", "/progression/exercise/Overhead%20Press/plateau", nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
	var state progression.PlateauState
	require.NoError(s.T(), json.Unmarshal(body, &state))
	s.True(state.Plateau)
	s.Len(state.Strategies, 6)

	status, body = s.doRequest(ctx, "GET", "/progression/exercise/Row/plateau", nil)
	require.Equal(s.T(), http.StatusOK, status)
	require.NoError(s.T(), json.Unmarshal(body, &state))
	s.False(state.Plateau)
	s.Empty(state.Strategies)
}

func (s *IntegrationTestSuite) TestStreak() {
	ctx := context.Background()
	s.logWorkout(ctx, "Bench Press", 2, "60", "8")
	s.logWorkout(ctx, "Squat", 1, "80", "8")
	s.logWorkout(ctx, "Row", 0, "50", "8")

	status, body := s.doRequest(ctx, "GET", "/streak", nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))

	var summary streak.Summary
	require.NoError(s.T(), json.Unmarshal(body, &summary))
	s.Equal(3, summary.TotalWorkouts)
	s.GreaterOrEqual(summary.Streak.CurrentStreak, 2)
	s.Equal(summary.Streak.CurrentStreak, summary.Streak.MaxStreak)
	require.NotNil(s.T(), summary.Cycle)
	s.Equal(3, summary.Cycle.CompletedWorkouts)

	status, _ = s.doRequest(ctx, "GET", "/streak?target=nope", nil)
	s.Equal(http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestMCP_StreamableHTTP() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logWorkout(ctx, "Bench Press", 1, "60", "8")

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: serverEndpoint + "/mcp"}, nil)
	require.NoError(s.T(), err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(s.T(), err)
	s.Len(tools.Tools, 4)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_streak",
		Arguments: map[string]any{"target": 1},
	})
	require.NoError(s.T(), err)
	s.False(res.IsError)
	require.NotEmpty(s.T(), res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(s.T(), ok)
	var summary streak.Summary
	require.NoError(s.T(), json.Unmarshal([]byte(text.Text), &summary))
	s.Equal(1, summary.TotalWorkouts)
	assert.True(s.T(), summary.Cycle.Completed)
}
