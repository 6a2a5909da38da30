package progression

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/guiguit045/tailored-trainer-coach/internal/cache"
	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/metrics"
	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/internal/workouts"
	"github.com/guiguit045/tailored-trainer-coach/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progression_test

type progressionEngine interface {
	AnalyzePerformance(ctx context.Context, exerciseName string, lookbackWeeks int) (*ExercisePerformance, error)
	SuggestProgression(ctx context.Context, req SuggestionRequest) (*ProgressionSuggestion, error)
	PlateauReport(ctx context.Context, exerciseName string, lookbackWeeks int) (*PlateauState, error)
}

type InsufficientDataResponse struct {
	ExerciseName     string `json:"exerciseName"`
	InsufficientData bool   `json:"insufficientData"`
}

type Handler struct {
	engine         progressionEngine
	metricsManager *metrics.Manager
	cache          cache.Cache
	cacheTTL       time.Duration
	now            func() time.Time
}

func NewHandler(engine progressionEngine, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		engine:         engine,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// WithCache enables caching of suggestion responses per exercise and day.
func (handler *Handler) WithCache(c cache.Cache, ttl time.Duration) *Handler {
	handler.cache = c
	handler.cacheTTL = ttl
	return handler
}

// InvalidateSuggestions drops the cached suggestions of the given exercises.
// Cached entries carry a per-exercise generation. Bumping it leaves the older
// entries unreachable until they expire.
func (handler *Handler) InvalidateSuggestions(ctx context.Context, exerciseNames []string) {
	if handler.cache == nil {
		return
	}
	for _, name := range exerciseNames {
		key := workouts.ExerciseKey(name)
		if key == "" {
			continue
		}
		if err := handler.cache.Set(ctx, suggestionGenerationKey(key), []byte(uuid.NewString()), 0); err != nil {
			log.Errorf("failed to invalidate cached suggestions for [%s]: %s", name, err)
			continue
		}
		log.Debugf("cached suggestions invalidated for [%s]", key)
	}
}

// WithClock replaces the handler's time source.
func (handler *Handler) WithClock(now func() time.Time) *Handler {
	handler.now = now
	return handler
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/progression/exercise/{name}/performance", handler.HandlePerformance).Methods("GET", "OPTIONS").Name("exercise-performance")
	r.HandleFunc("/progression/exercise/{name}/suggestion", handler.HandleSuggestion).Methods("GET", "OPTIONS").Name("exercise-suggestion")
	r.HandleFunc("/progression/exercise/{name}/plateau", handler.HandlePlateau).Methods("GET", "OPTIONS").Name("exercise-plateau")
}

func (handler *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.performance")
	defer span.End()

	name := mux.Vars(r)["name"]
	weeks, err := weeksParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	perf, err := handler.engine.AnalyzePerformance(ctx, name, weeks)
	if err != nil {
		handler.engineError(w, name, "analyze performance", err)
		return
	}

	var respJson []byte
	status := http.StatusOK
	if perf == nil {
		status = http.StatusNotFound
		respJson, err = json.Marshal(InsufficientDataResponse{
			ExerciseName:     name,
			InsufficientData: true,
		})
	} else {
		respJson, err = json.Marshal(perf)
	}
	if err != nil {
		log.Errorf("failed to marshal performance: %s", err)
		http.Error(w, "failed to analyze performance", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, status)
}

func (handler *Handler) HandleSuggestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.suggestion")
	defer span.End()

	query := r.URL.Query()
	kind, err := ParseKind(query.Get("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := SuggestionRequest{
		ExerciseName:  mux.Vars(r)["name"],
		CurrentSets:   query.Get("sets"),
		CurrentReps:   query.Get("reps"),
		CurrentWeight: query.Get("weight"),
		Kind:          kind,
	}

	var cacheKey string
	if handler.cache != nil {
		cacheKey = handler.suggestionCacheKey(ctx, req)
		if cached, ok := handler.cache.Get(ctx, cacheKey); ok {
			handler.countCache(true)
			pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cached, http.StatusOK)
			return
		}
		handler.countCache(false)
	}

	suggestion, err := handler.engine.SuggestProgression(ctx, req)
	if err != nil {
		handler.engineError(w, req.ExerciseName, "suggest progression", err)
		return
	}
	if handler.metricsManager != nil {
		handler.metricsManager.CounterSuggestions.WithLabelValues(suggestion.Type.String(), suggestion.Confidence.String()).Inc()
	}

	respJson, err := json.Marshal(suggestion)
	if err != nil {
		log.Errorf("failed to marshal suggestion: %s", err)
		http.Error(w, "failed to suggest progression", http.StatusInternalServerError)
		return
	}

	if handler.cache != nil {
		if err := handler.cache.Set(ctx, cacheKey, respJson, handler.cacheTTL); err != nil {
			log.Errorf("failed to cache suggestion [%s]: %s", cacheKey, err)
		}
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandlePlateau(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.plateau")
	defer span.End()

	name := mux.Vars(r)["name"]
	weeks, err := weeksParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := handler.engine.PlateauReport(ctx, name, weeks)
	if err != nil {
		handler.engineError(w, name, "detect plateau", err)
		return
	}
	if state.Plateau && handler.metricsManager != nil {
		handler.metricsManager.CounterPlateausDetected.Inc()
	}

	respJson, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal plateau state: %s", err)
		http.Error(w, "failed to detect plateau", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) engineError(w http.ResponseWriter, exerciseName, op string, err error) {
	if errors.Is(err, ErrEmptyExerciseName) {
		http.Error(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}
	log.Errorf("failed to %s for [%s]: %s", op, exerciseName, err)
	http.Error(w, "failed to "+op, http.StatusInternalServerError)
}

func (handler *Handler) countCache(hit bool) {
	if handler.metricsManager == nil {
		return
	}
	if hit {
		handler.metricsManager.CounterCacheHits.Inc()
	} else {
		handler.metricsManager.CounterCacheMisses.Inc()
	}
}

func suggestionGenerationKey(exerciseKey string) string {
	return "suggestion::gen::" + exerciseKey
}

// suggestionGeneration returns the current generation of an exercise,
// starting a new one when none is stored.
func (handler *Handler) suggestionGeneration(ctx context.Context, exerciseKey string) string {
	genKey := suggestionGenerationKey(exerciseKey)
	if gen, ok := handler.cache.Get(ctx, genKey); ok {
		return string(gen)
	}
	gen := uuid.NewString()
	if err := handler.cache.Set(ctx, genKey, []byte(gen), 0); err != nil {
		log.Errorf("failed to store suggestion generation [%s]: %s", genKey, err)
	}
	return gen
}

func (handler *Handler) suggestionCacheKey(ctx context.Context, req SuggestionRequest) string {
	exerciseKey := workouts.ExerciseKey(req.ExerciseName)
	return strings.Join([]string{
		"suggestion",
		exerciseKey,
		handler.suggestionGeneration(ctx, exerciseKey),
		handler.now().Format(time.DateOnly),
		req.CurrentSets,
		req.CurrentReps,
		req.CurrentWeight,
		req.Kind.String(),
	}, "::")
}

func weeksParam(r *http.Request) (int, error) {
	weeksStr := r.URL.Query().Get("weeks")
	if weeksStr == "" {
		return 0, nil
	}
	weeks, err := strconv.Atoi(weeksStr)
	if err != nil || weeks < 1 {
		return 0, errors.New("error, weeks must be a positive number")
	}
	return weeks, nil
}
