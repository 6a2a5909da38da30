package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/guiguit045/tailored-trainer-coach/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("add workout, rollback: %s", rbErr)
		}
	}()

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workout (name, status, created_at, completed_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		workout.Name, workout.Status, workout.CreatedAt, workout.CompletedAt,
	).Scan(&workout.ID); err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for i, e := range workout.Exercises {
		setsJson, err := json.Marshal(nonNilSets(e.Sets))
		if err != nil {
			return nil, fmt.Errorf("marshal sets: %w", err)
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO exercise_log (workout_id, exercise_name, exercise_key, position, sets)
				VALUES ($1, $2, $3, $4, $5);`,
			workout.ID, e.ExerciseName, ExerciseKey(e.ExerciseName), i, setsJson,
		); err != nil {
			return nil, fmt.Errorf("insert exercise log %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	span.SetAttributes(attribute.Int("workout.exercises", len(workout.Exercises)))

	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, status, created_at, completed_at FROM workout WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	if err := r.attachExercises(ctx, workouts); err != nil {
		return nil, err
	}

	return &workouts[0], nil
}

// Complete moves an in-progress workout to completed. Completed workouts are immutable.
func (r *Repo) Complete(ctx context.Context, id int, at time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4;`,
		StatusCompleted, at, id, StatusInProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status Status
	if err := r.db.QueryRow(ctx, `SELECT status FROM workout WHERE id = $1;`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return ErrWorkoutAlreadyCompleted
}

func (r *Repo) List(ctx context.Context, page, size int) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", page))
	span.SetAttributes(attribute.Int("size", size))

	if page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM workout;`).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("count: %w", err)
	}
	span.SetAttributes(attribute.Int("count_all", total))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, status, created_at, completed_at FROM workout
			ORDER BY created_at DESC, id DESC
			LIMIT $1
			OFFSET $2;`,
		size, (page-1)*size,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	workouts, err := r.rows2workouts(rows)
	if err != nil {
		return nil, -1, err
	}
	if err := r.attachExercises(ctx, workouts); err != nil {
		return nil, -1, err
	}

	return workouts, total, nil
}

// RecentSessions returns the sessions of one exercise from completed workouts
// finished at or after since, newest first. A zero limit returns all of them.
func (r *Repo) RecentSessions(ctx context.Context, exerciseName string, since time.Time, limit int) (_ []ExerciseSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.recentSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	key := ExerciseKey(exerciseName)
	span.SetAttributes(attribute.String("exercise.key", key))
	span.SetAttributes(attribute.String("since", since.String()))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT w.id, el.exercise_name, el.sets, w.completed_at
			FROM exercise_log el
			JOIN workout w ON w.id = el.workout_id
			WHERE el.exercise_key = $1
				AND w.status = $2
				AND w.completed_at IS NOT NULL
				AND w.completed_at >= $3
			ORDER BY w.completed_at DESC, el.position DESC
			LIMIT NULLIF($4::int, 0);`,
		key, StatusCompleted, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sessions := make([]ExerciseSession, 0)
	for rows.Next() {
		var s ExerciseSession
		var setsBytes []byte
		if err := rows.Scan(&s.WorkoutID, &s.ExerciseName, &setsBytes, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if s.Sets, err = unmarshalSets(setsBytes); err != nil {
			return nil, fmt.Errorf("workout %d: %w", s.WorkoutID, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("sessions", len(sessions)))

	return sessions, nil
}

// CompletedWorkoutDates returns completion timestamps of all completed workouts, newest first.
func (r *Repo) CompletedWorkoutDates(ctx context.Context) (_ []time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.completedDates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT completed_at FROM workout
			WHERE status = $1 AND completed_at IS NOT NULL
			ORDER BY completed_at DESC;`,
		StatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		dates = append(dates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *Repo) rows2workouts(rows pgx.Rows) ([]Workout, error) {
	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Status, &w.CreatedAt, &w.CompletedAt); err != nil {
			return nil, err
		}
		w.Exercises = make([]ExerciseLog, 0)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *Repo) attachExercises(ctx context.Context, workouts []Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	ids := make([]int, len(workouts))
	byID := make(map[int]*Workout, len(workouts))
	for i := range workouts {
		ids[i] = workouts[i].ID
		byID[workouts[i].ID] = &workouts[i]
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT workout_id, exercise_name, sets FROM exercise_log
			WHERE workout_id = ANY($1)
			ORDER BY workout_id, position;`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query exercise logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workoutID int
		var e ExerciseLog
		var setsBytes []byte
		if err := rows.Scan(&workoutID, &e.ExerciseName, &setsBytes); err != nil {
			return fmt.Errorf("rows scan: %w", err)
		}
		if e.Sets, err = unmarshalSets(setsBytes); err != nil {
			return fmt.Errorf("workout %d: %w", workoutID, err)
		}
		if w, ok := byID[workoutID]; ok {
			w.Exercises = append(w.Exercises, e)
		}
	}

	return rows.Err()
}

func unmarshalSets(b []byte) ([]ExerciseSet, error) {
	sets := make([]ExerciseSet, 0)
	if len(b) == 0 {
		return sets, nil
	}
	if err := json.Unmarshal(b, &sets); err != nil {
		return nil, fmt.Errorf("unmarshal sets: %w", err)
	}
	return sets, nil
}

func nonNilSets(sets []ExerciseSet) []ExerciseSet {
	if sets == nil {
		return make([]ExerciseSet, 0)
	}
	return sets
}
