package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
	"github.com/guiguit045/tailored-trainer-coach/internal/streak"
)

const (
	serverName    = "trainer-progression"
	serverVersion = "1.0.0"
)

// NewServer builds an MCP server exposing the progression engine and the
// streak summary. Served over stdio by cmd/progression_mcp and mounted at /mcp
// by the HTTP service.
func NewServer(engine *progression.Engine, streaks *streak.Service) *mcp.Server {
	return newServer(NewHandler(NewCoachService(engine, streaks)))
}

func newServer(h *Handler) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_performance",
		Description: "Aggregates the completed sessions of one exercise in a lookback window (default 2 weeks): completed sessions, average weight and reps over completed sets, last completed set, and consistency score (0-100, share of sessions with every set completed). Reports insufficient data when there is no session.",
	}, h.AnalyzePerformanceTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "suggest_progression",
		Description: "Suggests the next adjustment for an exercise: more weight, a wider rep range, one more set, or holding the load. Args: exercise_name; optional current_sets (e.g. 3-4), current_reps (e.g. 8-12), current_weight (e.g. 20kg), kind (compound or isolation, default compound).",
	}, h.SuggestProgressionTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "detect_plateau",
		Description: "Detects a training plateau for an exercise (last 4 sessions with mean weight within 5% of their average, at least 4 sessions in the window, default 4 weeks) and lists the plateau-break strategies when one is found.",
	}, h.DetectPlateauTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_streak",
		Description: "Returns the current and longest streak of consecutive workout days, progress in the current 7-day cycle (anchored at the first workout) and unlocked achievements. Optional arg: target (workouts per cycle).",
	}, h.GetStreakTool())

	return s
}
