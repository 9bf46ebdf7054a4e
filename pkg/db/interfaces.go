package db

import (
	"context"
	"time"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// TeamStore defines the team document operations
type TeamStore interface {
	GetTeam(ctx context.Context, id string) (*model.Team, error)
	InsertTeam(ctx context.Context, team *model.Team) error
	// LockRoster blocks other transactions that also lock the roster until
	// the current transaction ends. Only meaningful inside InTx.
	LockRoster(ctx context.Context) error
}

// MemberStore defines the member roster operations.
// Lists are ordered by last name.
type MemberStore interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListMembersByStatus(ctx context.Context, status model.MemberStatus) ([]model.Member, error)
	CountMembers(ctx context.Context) (int, error)
	GetMember(ctx context.Context, id string) (*model.Member, error)
	GetMemberByUID(ctx context.Context, uid string) (*model.Member, error)
	InsertMember(ctx context.Context, member *model.Member) error
	UpdateMember(ctx context.Context, member *model.Member) error
	DeleteMember(ctx context.Context, id string) error
}

// EventStore defines the calendar operations.
// ListEvents is ordered by start date, newest first.
type EventStore interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	// AddAttendee is an idempotent set-union of one member id
	AddAttendee(ctx context.Context, eventID, memberID string) error
	RemoveAttendee(ctx context.Context, eventID, memberID string) error
	SetAttendees(ctx context.Context, eventID string, memberIDs []string) error
	SetProgram(ctx context.Context, eventID string, program []model.ProgramItem) error
}

// CostumeStore defines the costume inventory operations.
// ListCostumes is ordered by name.
type CostumeStore interface {
	ListCostumes(ctx context.Context) ([]model.Costume, error)
	CountCostumes(ctx context.Context) (int, error)
	GetCostume(ctx context.Context, id string) (*model.Costume, error)
	InsertCostume(ctx context.Context, costume *model.Costume) error
	UpdateCostume(ctx context.Context, costume *model.Costume) error
	DeleteCostume(ctx context.Context, id string) error
	// AdjustCostumeQuantity adds delta to the stock counter. It returns
	// ErrOutOfStock instead of letting the counter go below zero.
	AdjustCostumeQuantity(ctx context.Context, id string, delta int) error
}

// AssignmentStore defines the costume assignment operations.
// Lists are ordered by assigned date, newest first.
type AssignmentStore interface {
	ListAssignments(ctx context.Context) ([]model.CostumeAssignment, error)
	ListAssignmentsForMember(ctx context.Context, memberID string) ([]model.CostumeAssignment, error)
	GetAssignment(ctx context.Context, id string) (*model.CostumeAssignment, error)
	InsertAssignment(ctx context.Context, assignment *model.CostumeAssignment) error
	DeleteAssignment(ctx context.Context, id string) error
}

// RepertoireStore defines the repertoire operations.
// ListRepertoire is ordered by creation time, newest first.
type RepertoireStore interface {
	ListRepertoire(ctx context.Context) ([]model.RepertoireItem, error)
	CountRepertoire(ctx context.Context) (int, error)
	GetRepertoireItem(ctx context.Context, id string) (*model.RepertoireItem, error)
	InsertRepertoireItem(ctx context.Context, item *model.RepertoireItem) error
	UpdateRepertoireItem(ctx context.Context, item *model.RepertoireItem) error
	DeleteRepertoireItem(ctx context.Context, id string) error
}

// MediaStore defines the media asset operations
type MediaStore interface {
	ListMedia(ctx context.Context, repertoireID string) ([]model.MediaAsset, error)
	GetMedia(ctx context.Context, id string) (*model.MediaAsset, error)
	InsertMedia(ctx context.Context, asset *model.MediaAsset) error
	DeleteMedia(ctx context.Context, id string) error
	// DeleteMediaForRepertoire removes every asset of an item and returns the removed rows
	DeleteMediaForRepertoire(ctx context.Context, repertoireID string) ([]model.MediaAsset, error)
}

// QuizStore defines the question bank and result operations.
// Results are append-only and listed newest first.
type QuizStore interface {
	ListQuestions(ctx context.Context) ([]model.Question, error)
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	InsertQuestion(ctx context.Context, question *model.Question) error
	UpdateQuestion(ctx context.Context, question *model.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ListQuizResults(ctx context.Context) ([]model.QuizResult, error)
	InsertQuizResult(ctx context.Context, result *model.QuizResult) error
}

// PollStore defines the poll operations.
// ListPolls is ordered by creation time, newest first.
type PollStore interface {
	ListPolls(ctx context.Context) ([]model.Poll, error)
	GetPoll(ctx context.Context, id string) (*model.Poll, error)
	InsertPoll(ctx context.Context, poll *model.Poll) error
	DeletePoll(ctx context.Context, id string) error
	SetPollActive(ctx context.Context, id string, active bool) error
	// SetVote writes a single voter's choice; a later vote replaces an earlier one
	SetVote(ctx context.Context, pollID, voterID string, option int) error
}

// AttendanceStore defines the attendance journal operations
type AttendanceStore interface {
	ListAttendanceRecords(ctx context.Context, eventID string) ([]model.AttendanceRecord, error)
	// UpsertAttendanceRecord keeps exactly one record per (event, member)
	UpsertAttendanceRecord(ctx context.Context, record *model.AttendanceRecord) error
}

// GalleryStore defines the album and photo operations
type GalleryStore interface {
	ListAlbums(ctx context.Context) ([]model.Album, error)
	GetAlbum(ctx context.Context, id string) (*model.Album, error)
	InsertAlbum(ctx context.Context, album *model.Album) error
	DeleteAlbum(ctx context.Context, id string) error
	ListPhotos(ctx context.Context, albumID string) ([]model.Photo, error)
	GetPhoto(ctx context.Context, id string) (*model.Photo, error)
	InsertPhoto(ctx context.Context, photo *model.Photo) error
	DeletePhoto(ctx context.Context, id string) error
	DeletePhotosForAlbum(ctx context.Context, albumID string) ([]model.Photo, error)
}

// TombstoneStore defines the failed blob delete bookkeeping
type TombstoneStore interface {
	ListBlobTombstones(ctx context.Context) ([]BlobTombstone, error)
	InsertBlobTombstone(ctx context.Context, tombstone *BlobTombstone) error
	DeleteBlobTombstone(ctx context.Context, id string) error
}

// AccountStore defines the identity provider's persistence
type AccountStore interface {
	GetAccount(ctx context.Context, uid string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	InsertAccount(ctx context.Context, account *Account) error
	UpdateAccountPassword(ctx context.Context, uid, passwordHash string) error
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	InsertPasswordReset(ctx context.Context, reset *PasswordReset) error
	// ConsumePasswordReset deletes and returns the reset, or ErrNotFound
	ConsumePasswordReset(ctx context.Context, tokenHash string) (*PasswordReset, error)
}

// Transactor runs fn atomically. The Database passed to fn is bound to the
// transaction; if fn returns an error nothing it wrote is kept.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Database) error) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and memdb.DB implement this interface.
type Database interface {
	TeamStore
	MemberStore
	EventStore
	CostumeStore
	AssignmentStore
	RepertoireStore
	MediaStore
	QuizStore
	PollStore
	AttendanceStore
	GalleryStore
	TombstoneStore
	AccountStore
	Transactor
}
