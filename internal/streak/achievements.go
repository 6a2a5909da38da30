package streak

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type achievementRule struct {
	Achievement
	unlocked func(s *Summary) bool
}

func totalAtLeast(n int) func(s *Summary) bool {
	return func(s *Summary) bool { return s.TotalWorkouts >= n }
}

func streakAtLeast(n int) func(s *Summary) bool {
	return func(s *Summary) bool { return s.Streak.MaxStreak >= n }
}

var achievementRules = []achievementRule{
	{Achievement{"first-workout", "First step", "Complete your first workout"}, totalAtLeast(1)},
	{Achievement{"workouts-10", "Getting started", "Complete 10 workouts"}, totalAtLeast(10)},
	{Achievement{"workouts-25", "Regular", "Complete 25 workouts"}, totalAtLeast(25)},
	{Achievement{"workouts-50", "Committed", "Complete 50 workouts"}, totalAtLeast(50)},
	{Achievement{"workouts-100", "Centurion", "Complete 100 workouts"}, totalAtLeast(100)},
	{Achievement{"streak-3", "On a roll", "Train 3 days in a row"}, streakAtLeast(3)},
	{Achievement{"streak-7", "Full week", "Train 7 days in a row"}, streakAtLeast(7)},
	{Achievement{"streak-14", "Two weeks strong", "Train 14 days in a row"}, streakAtLeast(14)},
	{Achievement{"streak-30", "Unstoppable", "Train 30 days in a row"}, streakAtLeast(30)},
	{Achievement{"cycle-complete", "Cycle closed", "Reach the workout target of the current cycle"}, func(s *Summary) bool {
		return s.Cycle != nil && s.Cycle.Completed
	}},
}

// Achievements lists the badges unlocked by the summary, in catalog order.
func Achievements(s *Summary) []Achievement {
	unlocked := []Achievement{}
	if s == nil {
		return unlocked
	}
	for _, rule := range achievementRules {
		if rule.unlocked(s) {
			unlocked = append(unlocked, rule.Achievement)
		}
	}
	return unlocked
}
