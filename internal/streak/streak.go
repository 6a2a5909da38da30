package streak

import (
	"math"
	"slices"
	"time"
)

const cycleDays = 7

type Streak struct {
	CurrentStreak int `json:"currentStreak"`
	MaxStreak     int `json:"maxStreak"`
}

// calendarDay truncates t to midnight in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b, both already at midnight.
// Rounding absorbs DST shifts.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// uniqueDays returns the distinct calendar days of dates, newest first.
func uniqueDays(dates []time.Time, loc *time.Location) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, calendarDay(d, loc))
	}
	slices.SortFunc(days, func(a, b time.Time) int {
		return b.Compare(a)
	})
	return slices.CompactFunc(days, func(a, b time.Time) bool {
		return a.Equal(b)
	})
}

// ComputeStreak derives the current and the longest run of consecutive
// workout days. Days are calendar days in now's location.
func ComputeStreak(dates []time.Time, now time.Time) Streak {
	days := uniqueDays(dates, now.Location())
	if len(days) == 0 {
		return Streak{}
	}

	var s Streak
	today := calendarDay(now, now.Location())
	if gap := daysBetween(days[0], today); gap == 0 || gap == 1 {
		s.CurrentStreak = 1
		for i := 1; i < len(days) && daysBetween(days[i], days[i-1]) == 1; i++ {
			s.CurrentStreak++
		}
	}

	run := 1
	s.MaxStreak = 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		s.MaxStreak = max(s.MaxStreak, run)
	}

	return s
}

// CycleIndex is the number of whole 7-day cycles between the first
// workout and t. Cycles are anchored at the first workout, not at calendar weeks.
func CycleIndex(firstWorkout, t time.Time) int {
	loc := t.Location()
	days := daysBetween(calendarDay(firstWorkout, loc), calendarDay(t, loc))
	if days < 0 {
		return 0
	}
	return days / cycleDays
}

type CycleProgress struct {
	Index             int       `json:"index"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	CompletedWorkouts int       `json:"completedWorkouts"`
	Target            int       `json:"target"`
	Completed         bool      `json:"completed"`
}

// CurrentCycle reports the workouts done in the cycle containing now.
// It returns nil when there is no workout yet.
func CurrentCycle(dates []time.Time, now time.Time, target int) *CycleProgress {
	if len(dates) == 0 {
		return nil
	}
	loc := now.Location()

	first := slices.MinFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})
	firstDay := calendarDay(first, loc)
	index := CycleIndex(first, now)
	start := firstDay.AddDate(0, 0, index*cycleDays)

	progress := &CycleProgress{
		Index:  index,
		Start:  start,
		End:    start.AddDate(0, 0, cycleDays),
		Target: target,
	}
	for _, d := range dates {
		if CycleIndex(first, d.In(loc)) == index {
			progress.CompletedWorkouts++
		}
	}
	progress.Completed = target > 0 && progress.CompletedWorkouts >= target

	return progress
}
