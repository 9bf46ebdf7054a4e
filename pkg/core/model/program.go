package model

import (
	"time"

	"github.com/google/uuid"
)

type ProgramItemType string

const (
	ProgramRepertoire   ProgramItemType = "repertoire"
	ProgramBreak        ProgramItemType = "break"
	ProgramAnnouncement ProgramItemType = "announcement"
)

func (t ProgramItemType) IsValid() bool {
	return t == ProgramRepertoire || t == ProgramBreak || t == ProgramAnnouncement
}

// CustomEntryKind selects the defaults for a program entry not backed by repertoire
type CustomEntryKind string

const (
	CustomBreak        CustomEntryKind = "break"
	CustomAnnouncement CustomEntryKind = "announcement"
	CustomManual       CustomEntryKind = "manual"
)

// ProgramItem is one entry in a concert's running order
type ProgramItem struct {
	ID           string          `json:"id"`
	Type         ProgramItemType `json:"type" validate:"enum"`
	Title        string          `json:"title" validate:"required"`
	Duration     int             `json:"duration" validate:"min=0"` // minutes
	Costume      string          `json:"costume,omitempty"`
	Description  string          `json:"description,omitempty"`
	RepertoireID string          `json:"repertoireId,omitempty"`
}

// ScheduledItem is a program item with its computed start time
type ScheduledItem struct {
	ProgramItem
	Start time.Time `json:"start"`
}

// Program is the ordered running sequence of a concert.
// Order is significant and only changes through the methods below.
type Program []ProgramItem

// NewRepertoireEntry creates a program entry from a repertoire item
func NewRepertoireEntry(item RepertoireItem) ProgramItem {
	return ProgramItem{
		ID:           uuid.New().String(),
		Type:         ProgramRepertoire,
		Title:        item.Title,
		Duration:     5,
		RepertoireID: item.ID,
	}
}

// NewCustomEntry creates a break, announcement or manual entry with default title and duration
func NewCustomEntry(kind CustomEntryKind) ProgramItem {
	item := ProgramItem{
		ID:       uuid.New().String(),
		Type:     ProgramRepertoire,
		Title:    "Nowy element",
		Duration: 5,
	}
	switch kind {
	case CustomBreak:
		item.Type = ProgramBreak
		item.Title = "Przerwa techniczna"
		item.Duration = 10
	case CustomAnnouncement:
		item.Type = ProgramAnnouncement
		item.Title = "Zapowiedź"
		item.Duration = 2
	case CustomManual:
		item.Title = "Element artystyczny"
	}
	return item
}

// Add appends an item to the end of the program
func (p Program) Add(item ProgramItem) Program {
	return append(p, item)
}

// Remove drops the item with the given id
func (p Program) Remove(id string) Program {
	out := make(Program, 0, len(p))
	for _, item := range p {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Update applies fn to the item with the given id
func (p Program) Update(id string, fn func(*ProgramItem)) Program {
	out := make(Program, len(p))
	copy(out, p)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
		}
	}
	return out
}

// Move swaps the item at index with its neighbour in direction (-1 up, +1 down).
// Out-of-bounds moves leave the program unchanged.
func (p Program) Move(index, direction int) Program {
	out := make(Program, len(p))
	copy(out, p)
	target := index + direction
	if index < 0 || index >= len(out) || target < 0 || target >= len(out) {
		return out
	}
	out[index], out[target] = out[target], out[index]
	return out
}

// TotalDuration returns the sum of item durations in minutes
func (p Program) TotalDuration() int {
	total := 0
	for _, item := range p {
		total += item.Duration
	}
	return total
}

// Schedule computes each item's start time from the concert start
func (p Program) Schedule(start time.Time) []ScheduledItem {
	out := make([]ScheduledItem, len(p))
	current := start
	for i, item := range p {
		out[i] = ScheduledItem{ProgramItem: item, Start: current}
		current = current.Add(time.Duration(item.Duration) * time.Minute)
	}
	return out
}
