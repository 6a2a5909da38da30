package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/metrics"
	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"
	"github.com/guiguit045/tailored-trainer-coach/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	Complete(ctx context.Context, id int, at time.Time) error
	List(ctx context.Context, page, size int) (_ []Workout, total int, err error)
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type CompleteResponse struct {
	CompletedID int       `json:"completedId"`
	CompletedAt time.Time `json:"completedAt"`
}

// ChangeFunc is told which exercises got new history.
type ChangeFunc func(ctx context.Context, exerciseNames []string)

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
	onChange       ChangeFunc
	now            func() time.Time
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// WithOnChange registers fn to run after a workout is added or completed.
func (handler *Handler) WithOnChange(fn ChangeFunc) *Handler {
	handler.onChange = fn
	return handler
}

// WithClock replaces the handler's time source.
func (handler *Handler) WithClock(now func() time.Time) *Handler {
	handler.now = now
	return handler
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}/complete", handler.HandleComplete).Methods("PUT", "OPTIONS").Name("complete-workout")
	r.HandleFunc("/workouts/list/page/{page}/size/{size}", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if workout.Status == "" {
		workout.Status = StatusInProgress
	}
	if err := workout.Validate(); err != nil {
		http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		return
	}

	now := handler.now()
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = now
	}
	if workout.Status == StatusCompleted && workout.CompletedAt == nil {
		workout.CompletedAt = &now
	}
	if workout.Status == StatusInProgress {
		workout.CompletedAt = nil
	}

	for _, e := range workout.Exercises {
		for i, s := range e.Sets {
			if (s.Weight != "" && !s.Weight.Valid()) || (s.Reps != "" && !s.Reps.Valid()) {
				log.Debugf("new workout, exercise [%s] set %d: non numeric weight/reps [%s]/[%s]", e.ExerciseName, i, s.Weight, s.Reps)
			}
		}
	}

	added, err := handler.repo.Add(ctx, workout)
	if err != nil {
		log.Errorf("failed to add new workout [%s]: %s", workout.Name, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsLogged.Inc()
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	handler.notifyChange(ctx, added)

	log.Debugf("new workout added: %d", added.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.complete")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	completedAt := handler.now()
	if err := handler.repo.Complete(ctx, id, completedAt); err != nil {
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		case errors.Is(err, ErrWorkoutAlreadyCompleted):
			http.Error(w, "workout already completed", http.StatusConflict)
		default:
			log.Errorf("failed to complete workout %d: %s", id, err)
			http.Error(w, "failed to complete workout", http.StatusInternalServerError)
		}
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsLogged.Inc()
	}

	if handler.onChange != nil {
		completed, err := handler.repo.Get(ctx, id)
		if err != nil {
			log.Errorf("failed to get completed workout %d: %s", id, err)
		} else {
			handler.notifyChange(ctx, completed)
		}
	}

	respJson, err := json.Marshal(CompleteResponse{
		CompletedID: id,
		CompletedAt: completedAt,
	})
	if err != nil {
		log.Errorf("failed to marshal complete response: %s", err)
		http.Error(w, "failed to complete workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		http.Error(w, "error, page NaN", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		http.Error(w, "error, size NaN", http.StatusBadRequest)
		return
	}
	if page < 1 || size < 1 {
		http.Error(w, "error, page and size must be greater than 0", http.StatusBadRequest)
		return
	}

	workouts, total, err := handler.repo.List(ctx, page, size)
	if err != nil {
		log.Errorf("failed to list workouts, page %d size %d: %s", page, size, err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}

	listJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    total,
	})
	if err != nil {
		log.Errorf("failed to marshal workouts list: %s", err)
		http.Error(w, "failed to list workouts", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listJson, http.StatusOK)
}

func (handler *Handler) notifyChange(ctx context.Context, workout *Workout) {
	if handler.onChange == nil || workout == nil || workout.Status != StatusCompleted {
		return
	}
	names := make([]string, 0, len(workout.Exercises))
	for _, e := range workout.Exercises {
		names = append(names, e.ExerciseName)
	}
	handler.onChange(ctx, names)
}
