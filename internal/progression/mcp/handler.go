package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/guiguit045/tailored-trainer-coach/internal/progression"
)

// Handler parses tool input, calls the service and formats the MCP result.
type Handler struct {
	service coachService
}

func NewHandler(service coachService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

// AnalyzePerformanceInput is the input for analyze_performance.
type AnalyzePerformanceInput struct {
	ExerciseName  string `json:"exercise_name" jsonschema:"Exercise name as logged (e.g. Supino Reto); case and accents are ignored"`
	LookbackWeeks int    `json:"lookback_weeks,omitempty" jsonschema:"Lookback window in weeks (default 2)"`
}

func (h *Handler) AnalyzePerformanceTool() func(context.Context, *mcp.CallToolRequest, AnalyzePerformanceInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzePerformanceInput) (*mcp.CallToolResult, any, error) {
		if in.LookbackWeeks < 0 {
			return errorResult("Invalid lookback_weeks: must be positive"), nil, nil
		}
		perf, err := h.service.AnalyzePerformance(ctx, in.ExerciseName, in.LookbackWeeks)
		if err != nil {
			return errorResult("Error analyzing performance: " + err.Error()), nil, nil
		}
		if perf == nil {
			return textResult(fmt.Sprintf("Insufficient data: no completed sessions of %q in the lookback window.", in.ExerciseName)), nil, nil
		}
		return jsonResult(perf), nil, nil
	}
}

// SuggestProgressionInput is the input for suggest_progression.
type SuggestProgressionInput struct {
	ExerciseName  string `json:"exercise_name" jsonschema:"Exercise name as logged (e.g. Supino Reto)"`
	CurrentSets   string `json:"current_sets,omitempty" jsonschema:"Current set range (e.g. 3-4)"`
	CurrentReps   string `json:"current_reps,omitempty" jsonschema:"Current rep range (e.g. 8-12)"`
	CurrentWeight string `json:"current_weight,omitempty" jsonschema:"Current working weight (e.g. 20kg)"`
	Kind          string `json:"kind,omitempty" jsonschema:"compound or isolation (default compound)"`
}

func (h *Handler) SuggestProgressionTool() func(context.Context, *mcp.CallToolRequest, SuggestProgressionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SuggestProgressionInput) (*mcp.CallToolResult, any, error) {
		kind, err := progression.ParseKind(in.Kind)
		if err != nil {
			return errorResult("Invalid kind: use compound or isolation"), nil, nil
		}
		suggestion, err := h.service.SuggestProgression(ctx, progression.SuggestionRequest{
			ExerciseName:  in.ExerciseName,
			CurrentSets:   in.CurrentSets,
			CurrentReps:   in.CurrentReps,
			CurrentWeight: in.CurrentWeight,
			Kind:          kind,
		})
		if err != nil {
			return errorResult("Error suggesting progression: " + err.Error()), nil, nil
		}
		return jsonResult(suggestion), nil, nil
	}
}

// DetectPlateauInput is the input for detect_plateau.
type DetectPlateauInput struct {
	ExerciseName  string `json:"exercise_name" jsonschema:"Exercise name as logged (e.g. Supino Reto)"`
	LookbackWeeks int    `json:"lookback_weeks,omitempty" jsonschema:"Lookback window in weeks (default 4)"`
}

func (h *Handler) DetectPlateauTool() func(context.Context, *mcp.CallToolRequest, DetectPlateauInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DetectPlateauInput) (*mcp.CallToolResult, any, error) {
		if in.LookbackWeeks < 0 {
			return errorResult("Invalid lookback_weeks: must be positive"), nil, nil
		}
		state, err := h.service.PlateauReport(ctx, in.ExerciseName, in.LookbackWeeks)
		if err != nil {
			return errorResult("Error detecting plateau: " + err.Error()), nil, nil
		}
		return jsonResult(state), nil, nil
	}
}

// StreakInput is the input for get_streak.
type StreakInput struct {
	Target int `json:"target,omitempty" jsonschema:"Workouts per 7-day cycle (default from the service config)"`
}

func (h *Handler) GetStreakTool() func(context.Context, *mcp.CallToolRequest, StreakInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StreakInput) (*mcp.CallToolResult, any, error) {
		if in.Target < 0 {
			return errorResult("Invalid target: must be positive"), nil, nil
		}
		summary, err := h.service.Summary(ctx, in.Target)
		if err != nil {
			return errorResult("Error computing streak: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}
