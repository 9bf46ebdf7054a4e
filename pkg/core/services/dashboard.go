package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/stats"
)

const followingEventsShown = 3

// DashboardStore defines the store reads behind the dashboard
type DashboardStore interface {
	CountMembers(ctx context.Context) (int, error)
	CountCostumes(ctx context.Context) (int, error)
	CountRepertoire(ctx context.Context) (int, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// DashboardSummary is the start page overview
type DashboardSummary struct {
	Members         int              `json:"members"`
	Costumes        int              `json:"costumes"`
	Repertoire      int              `json:"repertoire"`
	NextEvent       *model.Event     `json:"nextEvent,omitempty"`
	FollowingEvents []model.Event    `json:"followingEvents"`
	Birthdays       []stats.Birthday `json:"birthdays"`
}

// Dashboard collects the counts, the next events from the start of today and upcoming birthdays
func Dashboard(ctx context.Context, store DashboardStore, now time.Time) (*DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	if summary.Members, err = store.CountMembers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if summary.Costumes, err = store.CountCostumes(ctx); err != nil {
		return nil, fmt.Errorf("failed to count costumes: %w", err)
	}
	if summary.Repertoire, err = store.CountRepertoire(ctx); err != nil {
		return nil, fmt.Errorf("failed to count repertoire: %w", err)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	upcoming := UpcomingEvents(events, now)
	summary.FollowingEvents = []model.Event{}
	if len(upcoming) > 0 {
		summary.NextEvent = &upcoming[0]
		rest := upcoming[1:]
		if len(rest) > followingEventsShown {
			rest = rest[:followingEventsShown]
		}
		summary.FollowingEvents = rest
	}

	members, err := store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	summary.Birthdays = stats.UpcomingBirthdays(members, now)
	if summary.Birthdays == nil {
		summary.Birthdays = []stats.Birthday{}
	}

	return &summary, nil
}

// UpcomingEvents returns events starting at or after the start of now's day, soonest first
func UpcomingEvents(events []model.Event, now time.Time) []model.Event {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	upcoming := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !e.StartDate.Before(startOfDay) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})
	return upcoming
}

// UpcomingBirthdays returns the next birthdays among all members
func UpcomingBirthdays(ctx context.Context, store DashboardStore, today time.Time) ([]stats.Birthday, error) {
	members, err := store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return stats.UpcomingBirthdays(members, today), nil
}
