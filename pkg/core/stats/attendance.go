package stats

import (
	"math"
	"time"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// AttendanceRate returns the percentage (0-100) of past events the member attended.
// An event is past when its start is strictly before now. With no past events the rate is 0.
func AttendanceRate(memberID string, events []model.Event, now time.Time) int {
	past, attended := 0, 0
	for _, event := range events {
		if !event.StartDate.Before(now) {
			continue
		}
		past++
		if event.HasAttendee(memberID) {
			attended++
		}
	}
	if past == 0 {
		return 0
	}
	return int(math.Round(float64(attended) * 100 / float64(past)))
}

// MemberAttendance is one row of an attendance report
type MemberAttendance struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Attended int    `json:"attended"`
	Past     int    `json:"past"`
	Rate     int    `json:"rate"`
}

// AttendanceReport computes the attendance rate for each member, in member order
func AttendanceReport(members []model.Member, events []model.Event, now time.Time) []MemberAttendance {
	past := make([]model.Event, 0, len(events))
	for _, event := range events {
		if event.StartDate.Before(now) {
			past = append(past, event)
		}
	}

	rows := make([]MemberAttendance, 0, len(members))
	for _, member := range members {
		attended := 0
		for _, event := range past {
			if event.HasAttendee(member.ID) {
				attended++
			}
		}
		rows = append(rows, MemberAttendance{
			MemberID: member.ID,
			Name:     member.FullName(),
			Attended: attended,
			Past:     len(past),
			Rate:     AttendanceRate(member.ID, past, now),
		})
	}
	return rows
}
