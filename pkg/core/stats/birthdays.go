package stats

import (
	"sort"
	"time"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// MaxUpcomingBirthdays is the number of birthdays shown on the dashboard
const MaxUpcomingBirthdays = 3

// Birthday is a member's next birthday relative to a given day
type Birthday struct {
	Member       model.Member `json:"member"`
	NextBirthday time.Time    `json:"nextBirthday"`
	DaysLeft     int          `json:"daysLeft"`
}

// IsToday reports whether the birthday falls on the reference day
func (b Birthday) IsToday() bool {
	return b.DaysLeft == 0
}

// UpcomingBirthdays returns up to three members with the nearest birthdays, soonest first.
// Each birth date is projected onto today's year and rolled forward one year if it has
// already passed. Members without a parseable birth date are skipped.
func UpcomingBirthdays(members []model.Member, today time.Time) []Birthday {
	// Calendar arithmetic is done on UTC midnights so DST shifts never change a day count
	y, m, d := today.Date()
	ref := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var out []Birthday
	for _, member := range members {
		if member.BirthDate == "" {
			continue
		}
		born, err := time.Parse(model.DateLayout, member.BirthDate)
		if err != nil {
			continue
		}

		// 29 Feb in a non-leap year normalises to 1 Mar
		next := time.Date(ref.Year(), born.Month(), born.Day(), 0, 0, 0, 0, time.UTC)
		if next.Before(ref) {
			next = time.Date(ref.Year()+1, born.Month(), born.Day(), 0, 0, 0, 0, time.UTC)
		}

		out = append(out, Birthday{
			Member:       member,
			NextBirthday: time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, today.Location()),
			DaysLeft:     int(next.Sub(ref).Hours() / 24),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].Member.LastName < out[j].Member.LastName
	})

	if len(out) > MaxUpcomingBirthdays {
		out = out[:MaxUpcomingBirthdays]
	}
	return out
}
