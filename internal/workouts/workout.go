package workouts

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrWorkoutAlreadyCompleted = errors.New("workout already completed")
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ExerciseSet is one attempted set. Weight and reps keep whatever the user typed.
type ExerciseSet struct {
	Weight    LooseNumber `json:"weight"`
	Reps      LooseNumber `json:"reps"`
	Completed bool        `json:"completed"`
}

// ExerciseLog is one exercise inside a workout, sets in entry order.
type ExerciseLog struct {
	ExerciseName string        `json:"exerciseName"`
	Sets         []ExerciseSet `json:"sets"`
}

type Workout struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Exercises   []ExerciseLog `json:"exercises"`
}

func (w *Workout) Validate() error {
	if !w.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", w.Status)
	}
	for i, e := range w.Exercises {
		if ExerciseKey(e.ExerciseName) == "" {
			return fmt.Errorf("exercise %d: empty name", i)
		}
	}
	return nil
}

// ExerciseSession is one exercise's sets within one completed workout.
// CompletedAt is the zero time when the parent workout has no completion timestamp.
type ExerciseSession struct {
	WorkoutID    int           `json:"workoutId"`
	ExerciseName string        `json:"exerciseName"`
	Sets         []ExerciseSet `json:"sets"`
	CompletedAt  time.Time     `json:"completedAt"`
}
