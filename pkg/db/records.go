package db

import "time"

// Collection names. They double as table names and live feed topics.
const (
	CollectionTeams       = "teams"
	CollectionMembers     = "members"
	CollectionEvents      = "events"
	CollectionCostumes    = "costumes"
	CollectionAssignments = "assignments"
	CollectionRepertoire  = "repertoire"
	CollectionMedia       = "media"
	CollectionQuestions   = "questions"
	CollectionQuizResults = "quiz_results"
	CollectionPolls       = "polls"
	CollectionAttendance  = "attendance_records"
	CollectionAlbums      = "albums"
	CollectionPhotos      = "photos"
)

// Account is a sign-in identity. Anonymous accounts have no email or password.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
	Anonymous    bool
	CreatedAt    time.Time
}

// PasswordReset is a pending password reset. Only the token hash is stored.
type PasswordReset struct {
	TokenHash string
	UID       string
	ExpiresAt time.Time
}

// BlobTombstone records a blob whose delete failed after its document was removed
type BlobTombstone struct {
	ID        string
	Path      string
	Attempts  int
	LastError string
	CreatedAt time.Time
}
