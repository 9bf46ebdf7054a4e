package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout used for calendar dates without a time component
const DateLayout = "2006-01-02"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleInstructor    Role = "instructor"
	RoleMember        Role = "member"
	RoleChoreographer Role = "choreographer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleMember, RoleChoreographer:
		return true
	}
	return false
}

// CanManage reports whether the role sees management controls.
// This gates UI features only; it is not an access-control decision.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleInstructor
}

type MemberStatus string

const (
	StatusActive   MemberStatus = "active"
	StatusPending  MemberStatus = "pending"
	StatusDisabled MemberStatus = "disabled"
)

func (s MemberStatus) IsValid() bool {
	return s == StatusActive || s == StatusPending || s == StatusDisabled
}

// Member represents an ensemble member
type Member struct {
	ID           string       `json:"id"`
	UID          string       `json:"uid,omitempty"` // Empty when the member has no login yet
	FirstName    string       `json:"firstName" validate:"required"`
	LastName     string       `json:"lastName" validate:"required"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Phone        string       `json:"phone,omitempty"`
	Role         Role         `json:"role" validate:"enum"`
	Status       MemberStatus `json:"status" validate:"enum"`
	PhotoURL     string       `json:"photoUrl,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth string       `json:"placeOfBirth,omitempty"`
	PESEL        string       `json:"pesel,omitempty" validate:"omitempty,len=11,numeric"`
	IDNumber     string       `json:"idNumber,omitempty"`
	Address      string       `json:"address,omitempty"`
	Height       int          `json:"height,omitempty" validate:"omitempty,min=50,max=250"`
	JoinDate     string       `json:"joinDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// FullName returns "First Last"
func (m Member) FullName() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", m.FirstName, m.LastName))
}

type EventType string

const (
	EventRehearsal EventType = "rehearsal"
	EventConcert   EventType = "concert"
	EventWorkshop  EventType = "workshop"
	EventMeeting   EventType = "meeting"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventRehearsal, EventConcert, EventWorkshop, EventMeeting:
		return true
	}
	return false
}

// Event represents a scheduled rehearsal, concert, workshop or meeting
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title" validate:"required"`
	Type        EventType     `json:"type" validate:"enum"`
	StartDate   time.Time     `json:"startDate" validate:"required"`
	EndDate     time.Time     `json:"endDate" validate:"required,gtefield=StartDate"`
	Location    string        `json:"location"`
	Description string        `json:"description,omitempty"`
	Attendees   []string      `json:"attendees"`
	Program     []ProgramItem `json:"program,omitempty" validate:"dive"`
	CreatedBy   string        `json:"createdBy,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// HasAttendee reports whether the member id is in the attendee set
func (e Event) HasAttendee(memberID string) bool {
	for _, id := range e.Attendees {
		if id == memberID {
			return true
		}
	}
	return false
}

type CostumeType string

const (
	CostumeSet       CostumeType = "set"
	CostumeElement   CostumeType = "element"
	CostumeAccessory CostumeType = "accessory"
)

func (t CostumeType) IsValid() bool {
	return t == CostumeSet || t == CostumeElement || t == CostumeAccessory
}

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderUnisex Gender = "unisex"
)

func (g Gender) IsValid() bool {
	return g == GenderFemale || g == GenderMale || g == GenderUnisex
}

// Costume is an inventory entry. Quantity is the live available-stock counter.
type Costume struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" validate:"required"`
	Type        CostumeType `json:"type" validate:"enum"`
	Gender      Gender      `json:"gender" validate:"enum"`
	SizeRange   string      `json:"sizeRange"`
	Quantity    int         `json:"quantity" validate:"min=0"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Available reports whether at least one unit can be assigned
func (c Costume) Available() bool {
	return c.Quantity > 0
}

// CostumeAssignment records one unit of a costume checked out by a member
type CostumeAssignment struct {
	ID           string `json:"id"`
	MemberID     string `json:"memberId"`
	CostumeID    string `json:"costumeId"`
	CostumeName  string `json:"costumeName"`
	AssignedDate string `json:"assignedDate"`
	Notes        string `json:"notes,omitempty"`
}

type RepertoireType string

const (
	RepertoireDance RepertoireType = "dance"
	RepertoireSong  RepertoireType = "song"
	RepertoireMusic RepertoireType = "music"
)

func (t RepertoireType) IsValid() bool {
	return t == RepertoireDance || t == RepertoireSong || t == RepertoireMusic
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// RepertoireItem is a dance, song or piece of music in the ensemble's repertoire
type RepertoireItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title" validate:"required"`
	Type        RepertoireType `json:"type" validate:"enum"`
	Difficulty  Difficulty     `json:"difficulty" validate:"enum"`
	YoutubeLink string         `json:"youtubeLink,omitempty" validate:"omitempty,url"`
	DriveLink   string         `json:"driveLink,omitempty" validate:"omitempty,url"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type FileType string

const (
	FileDocument FileType = "document"
	FileVideo    FileType = "video"
	FileAudio    FileType = "audio"
	FileOther    FileType = "other"
)

func (t FileType) IsValid() bool {
	switch t {
	case FileDocument, FileVideo, FileAudio, FileOther:
		return true
	}
	return false
}

// FileTypeFromName classifies an uploaded file by its extension
func FileTypeFromName(name string) FileType {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return FileOther
	}
	switch strings.ToLower(name[idx+1:]) {
	case "pdf", "doc", "docx", "txt":
		return FileDocument
	case "mp4", "mov", "avi", "wmv":
		return FileVideo
	case "mp3", "wav", "aac":
		return FileAudio
	}
	return FileOther
}

// MediaAsset is a file attached to a repertoire item
type MediaAsset struct {
	ID           string    `json:"id"`
	RepertoireID string    `json:"repertoireId"`
	FileName     string    `json:"fileName"`
	FileType     FileType  `json:"fileType"`
	StoragePath  string    `json:"storagePath"`
	DownloadURL  string    `json:"downloadUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Question is a single quiz question with four options
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"questionText" validate:"required"`
	Options            []string `json:"options" validate:"len=4,dive,required"`
	CorrectOptionIndex int      `json:"correctOptionIndex" validate:"min=0,max=3"`
	Category           string   `json:"category,omitempty"`
}

// QuizResult is an append-only record of a finished quiz
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Timestamp      time.Time `json:"timestamp"`
}

// Poll is a single-choice poll. Votes is keyed by voter id, so each member
// holds at most one vote.
type Poll struct {
	ID        string         `json:"id"`
	Question  string         `json:"question" validate:"required"`
	Options   []string       `json:"options" validate:"min=2,dive,required"`
	Votes     map[string]int `json:"votes"`
	IsActive  bool           `json:"isActive"`
	CreatedBy string         `json:"createdBy,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Tally returns the number of votes for each option
func (p Poll) Tally() []int {
	counts := make([]int, len(p.Options))
	for _, option := range p.Votes {
		if option >= 0 && option < len(counts) {
			counts[option]++
		}
	}
	return counts
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) IsValid() bool {
	return s == AttendancePresent || s == AttendanceAbsent || s == AttendanceExcused
}

// AttendanceRecord is one member's journal entry for one event
type AttendanceRecord struct {
	ID         string           `json:"id"`
	EventID    string           `json:"eventId"`
	MemberID   string           `json:"memberId"`
	MemberName string           `json:"memberName"`
	Status     AttendanceStatus `json:"status"`
	EventDate  time.Time        `json:"eventDate"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Album groups gallery photos
type Album struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Photo is a single gallery image
type Photo struct {
	ID          string    `json:"id"`
	AlbumID     string    `json:"albumId"`
	URL         string    `json:"url"`
	StoragePath string    `json:"storagePath"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Team is the single tenant all data is scoped under
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"adminId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
