package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(p Program) []string {
	out := make([]string, len(p))
	for i, item := range p {
		out[i] = item.Title
	}
	return out
}

func TestNewCustomEntry_Defaults(t *testing.T) {
	brk := NewCustomEntry(CustomBreak)
	assert.Equal(t, ProgramBreak, brk.Type)
	assert.Equal(t, 10, brk.Duration)

	ann := NewCustomEntry(CustomAnnouncement)
	assert.Equal(t, ProgramAnnouncement, ann.Type)
	assert.Equal(t, 2, ann.Duration)

	manual := NewCustomEntry(CustomManual)
	assert.Equal(t, ProgramRepertoire, manual.Type)
	assert.Equal(t, 5, manual.Duration)

	assert.NotEqual(t, brk.ID, ann.ID)
}

func TestNewRepertoireEntry(t *testing.T) {
	entry := NewRepertoireEntry(RepertoireItem{ID: "rep-1", Title: "Krakowiak"})
	assert.Equal(t, "rep-1", entry.RepertoireID)
	assert.Equal(t, "Krakowiak", entry.Title)
	assert.Equal(t, 5, entry.Duration)
}

func TestProgram_Move(t *testing.T) {
	p := Program{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}, {ID: "3", Title: "C"}}

	assert.Equal(t, []string{"B", "A", "C"}, titles(p.Move(0, 1)))
	assert.Equal(t, []string{"A", "C", "B"}, titles(p.Move(2, -1)))

	// Out of bounds moves are no-ops
	assert.Equal(t, []string{"A", "B", "C"}, titles(p.Move(0, -1)))
	assert.Equal(t, []string{"A", "B", "C"}, titles(p.Move(2, 1)))

	// Original is untouched
	assert.Equal(t, []string{"A", "B", "C"}, titles(p))
}

func TestProgram_AddRemoveUpdate(t *testing.T) {
	var p Program
	p = p.Add(ProgramItem{ID: "1", Title: "Polonez", Duration: 4})
	p = p.Add(ProgramItem{ID: "2", Title: "Mazur", Duration: 6})
	p = p.Update("2", func(item *ProgramItem) { item.Costume = "Krakowski" })
	require.Len(t, p, 2)
	assert.Equal(t, "Krakowski", p[1].Costume)

	p = p.Remove("1")
	assert.Equal(t, []string{"Mazur"}, titles(p))
	assert.Equal(t, 6, p.TotalDuration())
}

func TestProgram_Schedule(t *testing.T) {
	start := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	p := Program{
		{ID: "1", Title: "Zapowiedź", Duration: 2},
		{ID: "2", Title: "Krakowiak", Duration: 5},
		{ID: "3", Title: "Przerwa", Duration: 10},
	}

	scheduled := p.Schedule(start)
	require.Len(t, scheduled, 3)
	assert.Equal(t, start, scheduled[0].Start)
	assert.Equal(t, start.Add(2*time.Minute), scheduled[1].Start)
	assert.Equal(t, start.Add(7*time.Minute), scheduled[2].Start)
	assert.Equal(t, 17, p.TotalDuration())
}
