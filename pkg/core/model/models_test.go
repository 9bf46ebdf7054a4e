package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_CanManage(t *testing.T) {
	assert.True(t, RoleAdmin.CanManage())
	assert.True(t, RoleInstructor.CanManage())
	assert.False(t, RoleMember.CanManage())
	assert.False(t, RoleChoreographer.CanManage())
	assert.False(t, Role("kierownik").IsValid())
}

func TestFileTypeFromName(t *testing.T) {
	assert.Equal(t, FileDocument, FileTypeFromName("nuty.PDF"))
	assert.Equal(t, FileDocument, FileTypeFromName("opis.docx"))
	assert.Equal(t, FileVideo, FileTypeFromName("krakowiak.mov"))
	assert.Equal(t, FileAudio, FileTypeFromName("przyspiewka.mp3"))
	assert.Equal(t, FileOther, FileTypeFromName("zdjecie.jpg"))
	assert.Equal(t, FileOther, FileTypeFromName("README"))
}

func TestPoll_Tally(t *testing.T) {
	poll := Poll{
		Options: []string{"Tak", "Nie", "Nie wiem"},
		Votes:   map[string]int{"m1": 0, "m2": 0, "m3": 2, "m4": 7},
	}

	assert.Equal(t, []int{2, 0, 1}, poll.Tally())
}

func TestEvent_HasAttendee(t *testing.T) {
	event := Event{Attendees: []string{"a", "b"}}
	assert.True(t, event.HasAttendee("b"))
	assert.False(t, event.HasAttendee("c"))
}

func TestValidate_Member(t *testing.T) {
	valid := Member{FirstName: "Anna", LastName: "Nowak", Email: "anna@example.com", Role: RoleMember, Status: StatusActive, BirthDate: "1999-04-12"}
	require.NoError(t, Validate(valid))

	badRole := valid
	badRole.Role = "tancerz"
	assert.Error(t, Validate(badRole))

	badDate := valid
	badDate.BirthDate = "12.04.1999"
	assert.Error(t, Validate(badDate))

	badPesel := valid
	badPesel.PESEL = "123"
	assert.Error(t, Validate(badPesel))
}

func TestValidate_Question(t *testing.T) {
	q := Question{Text: "Skąd pochodzi krakowiak?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 3}
	require.NoError(t, Validate(q))

	q.Options = []string{"a", "b", "c"}
	assert.Error(t, Validate(q))

	q.Options = []string{"a", "b", "c", "d"}
	q.CorrectOptionIndex = 4
	assert.Error(t, Validate(q))
}

func TestValidate_EventEndBeforeStart(t *testing.T) {
	start := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	event := Event{Title: "Próba", Type: EventRehearsal, StartDate: start, EndDate: start.Add(-time.Hour)}
	assert.Error(t, Validate(event))

	event.EndDate = start.Add(2 * time.Hour)
	assert.NoError(t, Validate(event))
}

func TestYouTubeThumbnail(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":            "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://youtu.be/dQw4w9WgXcQ":                           "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://www.youtube.com/embed/dQw4w9WgXcQ?start=3":      "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://www.youtube.com/watch?list=abc&v=dQw4w9WgXcQ":   "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		"https://www.youtube.com/watch?v=short":                  "",
		"https://drive.google.com/file/d/1abc/view":              "",
		"":                                                       "",
	}
	for link, want := range cases {
		item := RepertoireItem{YoutubeLink: link}
		assert.Equal(t, want, item.YouTubeThumbnail(), link)
	}
}
