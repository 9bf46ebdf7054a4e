package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folkbase/folkbase/pkg/core/model"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func event(id string, start time.Time, attendees ...string) model.Event {
	return model.Event{ID: id, StartDate: start, EndDate: start.Add(2 * time.Hour), Attendees: attendees}
}

func TestAttendanceRate_NoPastEvents(t *testing.T) {
	events := []model.Event{
		event("future", now.Add(24*time.Hour), "m1"),
	}
	assert.Equal(t, 0, AttendanceRate("m1", events, now))
	assert.Equal(t, 0, AttendanceRate("m1", nil, now))
}

func TestAttendanceRate_EventStartingNowIsNotPast(t *testing.T) {
	events := []model.Event{
		event("e1", now.Add(-48*time.Hour), "m1"),
		event("e2", now, "m1"),
	}
	// Only e1 counts, and it was attended
	assert.Equal(t, 100, AttendanceRate("m1", events, now))
}

func TestAttendanceRate_Rounds(t *testing.T) {
	events := []model.Event{
		event("e1", now.Add(-72*time.Hour), "m1"),
		event("e2", now.Add(-48*time.Hour)),
		event("e3", now.Add(-24*time.Hour), "m1"),
	}
	// 2/3 = 66.67
	assert.Equal(t, 67, AttendanceRate("m1", events, now))
	// 0/3
	assert.Equal(t, 0, AttendanceRate("m2", events, now))
}

func TestAttendanceRate_Bounds(t *testing.T) {
	var events []model.Event
	for i := 1; i <= 7; i++ {
		attendees := []string{}
		if i%2 == 0 {
			attendees = append(attendees, "m1")
		}
		events = append(events, event("e", now.Add(-time.Duration(i)*time.Hour), attendees...))
	}
	rate := AttendanceRate("m1", events, now)
	assert.GreaterOrEqual(t, rate, 0)
	assert.LessOrEqual(t, rate, 100)
	assert.Equal(t, 43, rate) // 3/7
}

func TestAttendanceReport(t *testing.T) {
	members := []model.Member{
		{ID: "m1", FirstName: "Anna", LastName: "Nowak"},
		{ID: "m2", FirstName: "Jan", LastName: "Kowalski"},
	}
	events := []model.Event{
		event("e1", now.Add(-48*time.Hour), "m1", "m2"),
		event("e2", now.Add(-24*time.Hour), "m1"),
		event("e3", now.Add(24*time.Hour), "m2"),
	}

	report := AttendanceReport(members, events, now)
	require.Len(t, report, 2)
	assert.Equal(t, MemberAttendance{MemberID: "m1", Name: "Anna Nowak", Attended: 2, Past: 2, Rate: 100}, report[0])
	assert.Equal(t, MemberAttendance{MemberID: "m2", Name: "Jan Kowalski", Attended: 1, Past: 2, Rate: 50}, report[1])
}

func TestUpcomingBirthdays_SortedAndCapped(t *testing.T) {
	today := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	members := []model.Member{
		{ID: "a", LastName: "A", BirthDate: "1990-03-20"}, // 10 days
		{ID: "b", LastName: "B", BirthDate: "1985-03-10"}, // today
		{ID: "c", LastName: "C", BirthDate: "2000-03-09"}, // passed yesterday -> next year
		{ID: "d", LastName: "D", BirthDate: "1995-04-01"}, // 22 days
		{ID: "e", LastName: "E"},                          // no birth date
		{ID: "f", LastName: "F", BirthDate: "not-a-date"},
	}

	birthdays := UpcomingBirthdays(members, today)
	require.Len(t, birthdays, 3)
	assert.Equal(t, "b", birthdays[0].Member.ID)
	assert.Equal(t, 0, birthdays[0].DaysLeft)
	assert.True(t, birthdays[0].IsToday())
	assert.Equal(t, "a", birthdays[1].Member.ID)
	assert.Equal(t, 10, birthdays[1].DaysLeft)
	assert.Equal(t, "d", birthdays[2].Member.ID)
	assert.Equal(t, 22, birthdays[2].DaysLeft)

	for i := 1; i < len(birthdays); i++ {
		assert.LessOrEqual(t, birthdays[i-1].DaysLeft, birthdays[i].DaysLeft)
	}
}

func TestUpcomingBirthdays_RollsOverYear(t *testing.T) {
	today := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)
	members := []model.Member{
		{ID: "a", BirthDate: "1990-01-02"},
		{ID: "b", BirthDate: "1990-12-29"},
	}

	birthdays := UpcomingBirthdays(members, today)
	require.Len(t, birthdays, 2)
	assert.Equal(t, "a", birthdays[0].Member.ID)
	assert.Equal(t, 3, birthdays[0].DaysLeft)
	assert.Equal(t, 2026, birthdays[0].NextBirthday.Year())
	assert.Equal(t, "b", birthdays[1].Member.ID)
	assert.Equal(t, 364, birthdays[1].DaysLeft)
}

func TestUpcomingBirthdays_LeapDay(t *testing.T) {
	today := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	members := []model.Member{{ID: "leap", BirthDate: "2000-02-29"}}

	birthdays := UpcomingBirthdays(members, today)
	require.Len(t, birthdays, 1)
	assert.Equal(t, time.March, birthdays[0].NextBirthday.Month())
	assert.Equal(t, 1, birthdays[0].NextBirthday.Day())
	assert.Equal(t, 9, birthdays[0].DaysLeft)
}

func TestUpcomingBirthdays_Empty(t *testing.T) {
	assert.Empty(t, UpcomingBirthdays(nil, now))
}

func TestRankResults(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	results := []model.QuizResult{
		{ID: "r1", Score: 5, Timestamp: base.Add(2 * time.Hour)},
		{ID: "r2", Score: 8, Timestamp: base},
		{ID: "r3", Score: 5, Timestamp: base.Add(time.Hour)},
	}

	ranked := RankResults(results)
	require.Len(t, ranked, 3)
	assert.Equal(t, "r2", ranked[0].ID)
	assert.Equal(t, "r3", ranked[1].ID)
	assert.Equal(t, "r1", ranked[2].ID)
	// Input is not reordered
	assert.Equal(t, "r1", results[0].ID)
}
