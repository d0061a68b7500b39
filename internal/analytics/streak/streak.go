// Package streak counts consecutive calendar days with at least one workout.
package streak

import (
	"sort"
	"time"
)

// LookbackDays bounds how far back callers need to load workout dates.
// Streaks longer than this are undercounted.
const LookbackDays = 430

// Result is the streak summary for one user.
type Result struct {
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastWorkoutDate *time.Time `json:"last_workout_date"`
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Compute derives the current and longest streak from workout dates.
//
// Dates are collapsed to calendar days. The current streak only counts when
// the most recent day is today or yesterday. Dates after today still count
// as the most recent day.
func Compute(dates []time.Time, today time.Time) Result {
	days := distinctDays(dates)
	if len(days) == 0 {
		return Result{}
	}

	last := days[0]
	res := Result{LastWorkoutDate: &last, LongestStreak: 1}

	today = Day(today)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Before(yesterday) {
		res.CurrentStreak = 1
		for i := 1; i < len(days); i++ {
			if !consecutive(days[i], days[i-1]) {
				break
			}
			res.CurrentStreak++
		}
	}

	run := 1
	for i := 1; i < len(days); i++ {
		if consecutive(days[i], days[i-1]) {
			run++
			res.LongestStreak = max(res.LongestStreak, run)
		} else {
			run = 1
		}
	}
	return res
}

// distinctDays returns unique calendar days, newest first.
func distinctDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, t := range dates {
		d := Day(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// consecutive reports whether earlier is the calendar day before later.
func consecutive(earlier, later time.Time) bool {
	y, m, d := later.Date()
	return earlier.Equal(time.Date(y, m, d-1, 0, 0, 0, 0, later.Location()))
}
