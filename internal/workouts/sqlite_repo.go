package workouts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	// pure Go SQLite driver, no cgo
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workout (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL DEFAULT '',
	status       TEXT    NOT NULL DEFAULT 'in_progress',
	created_at   INTEGER NOT NULL,
	completed_at INTEGER NULL
);
CREATE INDEX IF NOT EXISTS idx_workout_completed_at ON workout (completed_at);
CREATE TABLE IF NOT EXISTS exercise_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	workout_id    INTEGER NOT NULL REFERENCES workout (id) ON DELETE CASCADE,
	exercise_name TEXT    NOT NULL,
	exercise_key  TEXT    NOT NULL,
	position      INTEGER NOT NULL DEFAULT 0,
	sets          TEXT    NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_exercise_log_key ON exercise_log (exercise_key);
`

// SQLiteRepo is the embedded log store used offline by the CLI and the stdio MCP server.
// Timestamps are stored as unix milliseconds.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and makes sure the schema exists.
// Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dsn == ":memory:" {
		// every connection would get its own empty in-memory db
		db.SetMaxOpenConns(1)
	}

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("add workout, rollback: %s", rbErr)
		}
	}()

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO workout (name, status, created_at, completed_at) VALUES (?, ?, ?, ?);`,
		workout.Name, string(workout.Status), workout.CreatedAt.UnixMilli(), toMillis(workout.CompletedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	workout.ID = int(id)

	for i, e := range workout.Exercises {
		setsJson, err := json.Marshal(nonNilSets(e.Sets))
		if err != nil {
			return nil, fmt.Errorf("marshal sets: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO exercise_log (workout_id, exercise_name, exercise_key, position, sets) VALUES (?, ?, ?, ?, ?);`,
			workout.ID, e.ExerciseName, ExerciseKey(e.ExerciseName), i, string(setsJson),
		); err != nil {
			return nil, fmt.Errorf("insert exercise log %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	workout.CreatedAt = time.UnixMilli(workout.CreatedAt.UnixMilli())
	return &workout, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id int) (*Workout, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, status, created_at, completed_at FROM workout WHERE id = ?;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts, err := sqliteRows2workouts(rows)
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

func (r *SQLiteRepo) Complete(ctx context.Context, id int, at time.Time) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE workout SET status = ?, completed_at = ? WHERE id = ? AND status = ?;`,
		string(StatusCompleted), at.UnixMilli(), id, string(StatusInProgress),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var status string
	if err := r.db.QueryRowContext(ctx, `SELECT status FROM workout WHERE id = ?;`, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return ErrWorkoutAlreadyCompleted
}

func (r *SQLiteRepo) List(ctx context.Context, page, size int) ([]Workout, int, error) {
	if page < 1 {
		return nil, -1, errors.New("page must be greater than 0")
	}
	if size < 1 {
		return nil, -1, errors.New("size must be greater than 0")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workout;`).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("count: %w", err)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, status, created_at, completed_at FROM workout
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?;`,
		size, (page-1)*size,
	)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	workouts, err := sqliteRows2workouts(rows)
	if err != nil {
		return nil, -1, err
	}
	if err := r.attachExercises(ctx, workouts); err != nil {
		return nil, -1, err
	}

	return workouts, total, nil
}

func (r *SQLiteRepo) RecentSessions(ctx context.Context, exerciseName string, since time.Time, limit int) ([]ExerciseSession, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := r.db.QueryContext(
		ctx,
		`
			SELECT w.id, el.exercise_name, el.sets, w.completed_at
			FROM exercise_log el
			JOIN workout w ON w.id = el.workout_id
			WHERE el.exercise_key = ?
				AND w.status = ?
				AND w.completed_at IS NOT NULL
				AND w.completed_at >= ?
			ORDER BY w.completed_at DESC, el.position DESC
			LIMIT ?;`,
		ExerciseKey(exerciseName), string(StatusCompleted), since.UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sessions := make([]ExerciseSession, 0)
	for rows.Next() {
		var s ExerciseSession
		var setsJson string
		var completedAt int64
		if err := rows.Scan(&s.WorkoutID, &s.ExerciseName, &setsJson, &completedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		s.CompletedAt = time.UnixMilli(completedAt)
		if s.Sets, err = unmarshalSets([]byte(setsJson)); err != nil {
			return nil, fmt.Errorf("workout %d: %w", s.WorkoutID, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return sessions, nil
}

func (r *SQLiteRepo) CompletedWorkoutDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT completed_at FROM workout
			WHERE status = ? AND completed_at IS NOT NULL
			ORDER BY completed_at DESC;`,
		string(StatusCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		dates = append(dates, time.UnixMilli(ms))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *SQLiteRepo) attachExercises(ctx context.Context, workouts []Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	placeholders := make([]string, len(workouts))
	args := make([]any, len(workouts))
	byID := make(map[int]*Workout, len(workouts))
	for i := range workouts {
		placeholders[i] = "?"
		args[i] = workouts[i].ID
		byID[workouts[i].ID] = &workouts[i]
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT workout_id, exercise_name, sets FROM exercise_log
			WHERE workout_id IN (`+strings.Join(placeholders, ",")+`)
			ORDER BY workout_id, position;`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("query exercise logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workoutID int
		var e ExerciseLog
		var setsJson string
		if err := rows.Scan(&workoutID, &e.ExerciseName, &setsJson); err != nil {
			return fmt.Errorf("rows scan: %w", err)
		}
		if e.Sets, err = unmarshalSets([]byte(setsJson)); err != nil {
			return fmt.Errorf("workout %d: %w", workoutID, err)
		}
		if w, ok := byID[workoutID]; ok {
			w.Exercises = append(w.Exercises, e)
		}
	}

	return rows.Err()
}

func sqliteRows2workouts(rows *sql.Rows) ([]Workout, error) {
	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		var status string
		var createdAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(&w.ID, &w.Name, &status, &createdAt, &completedAt); err != nil {
			return nil, err
		}
		w.Status = Status(status)
		w.CreatedAt = time.UnixMilli(createdAt)
		if completedAt.Valid {
			t := time.UnixMilli(completedAt.Int64)
			w.CompletedAt = &t
		}
		w.Exercises = make([]ExerciseLog, 0)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func toMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
