package httpapi

import (
	"context"
	"net/http"

	"github.com/folkbase/folkbase/pkg/core/services"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

// handleLive streams a collection. Child collections take their parent id
// from ?parent=; assignments are scoped to the caller unless they manage.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	collection := r.PathValue("collection")
	parent := r.URL.Query().Get("parent")
	topic := collection

	var snapshot live.Snapshot
	switch collection {
	case db.CollectionMembers:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListMembers(ctx) }
	case db.CollectionEvents:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListEvents(ctx) }
	case db.CollectionCostumes:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListCostumes(ctx) }
	case db.CollectionAssignments:
		memberID := r.URL.Query().Get("memberId")
		if !p.CanManage() {
			memberID = p.MemberID
		}
		topic = live.Topic(collection, memberID)
		snapshot = func(ctx context.Context) (any, error) {
			if memberID == "" {
				return s.db.ListAssignments(ctx)
			}
			return s.db.ListAssignmentsForMember(ctx, memberID)
		}
	case db.CollectionRepertoire:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListRepertoire(ctx) }
	case db.CollectionMedia:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListMedia(ctx, parent) }
	case db.CollectionPolls:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListPolls(ctx) }
	case db.CollectionQuizResults:
		snapshot = func(ctx context.Context) (any, error) { return services.QuizRanking(ctx, s.db, 0) }
	case db.CollectionAlbums:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListAlbums(ctx) }
	case db.CollectionPhotos:
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListPhotos(ctx, parent) }
	case db.CollectionAttendance:
		if !p.CanManage() {
			s.fail(w, r, services.ErrForbidden)
			return
		}
		snapshot = func(ctx context.Context) (any, error) { return s.db.ListAttendanceRecords(ctx, parent) }
	default:
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	live.ServeSSE(w, r, s.bus, topic, snapshot, s.logger)
}
