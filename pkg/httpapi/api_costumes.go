package httpapi

import (
	"net/http"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

func (s *Server) handleListCostumes(w http.ResponseWriter, r *http.Request) {
	var (
		costumes []model.Costume
		err      error
	)
	if r.URL.Query().Get("available") == "true" {
		costumes, err = services.AvailableCostumes(r.Context(), s.db)
	} else {
		costumes, err = s.db.ListCostumes(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costumes)
}

func (s *Server) handleCreateCostume(w http.ResponseWriter, r *http.Request) {
	var req model.Costume
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	costume, err := services.CreateCostume(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, costume)
}

func (s *Server) handleUpdateCostume(w http.ResponseWriter, r *http.Request) {
	var req model.Costume
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	req.ID = r.PathValue("id")
	costume, err := services.UpdateCostume(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costume)
}

func (s *Server) handleDeleteCostume(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteCostume(r.Context(), s.db, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUploadCostumeImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	defer file.Close()

	costume, err := services.UploadCostumeImage(r.Context(), s.db, s.blobs, s.team.ID, s.logger,
		r.PathValue("id"), header.Filename, header.Header.Get("Content-Type"), file, header.Size, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costume)
}

// handleListAssignments returns the caller's own assignments. Managers may
// pass ?memberId= or omit it to see every assignment.
func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	memberID := r.URL.Query().Get("memberId")
	if !p.CanManage() {
		memberID = p.MemberID
	}

	var (
		assignments []model.CostumeAssignment
		err         error
	)
	if memberID == "" {
		assignments, err = s.db.ListAssignments(r.Context())
	} else {
		assignments, err = s.db.ListAssignmentsForMember(r.Context(), memberID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (s *Server) handleAssignCostume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  string `json:"memberId"`
		CostumeID string `json:"costumeId"`
		Notes     string `json:"notes"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	p := principal(r)
	if req.MemberID == "" {
		req.MemberID = p.MemberID
	}
	if req.MemberID != p.MemberID && !p.CanManage() {
		s.fail(w, r, services.ErrForbidden)
		return
	}

	assignment, err := services.AssignCostume(r.Context(), s.db, s.logger, req.MemberID, req.CostumeID, req.Notes, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (s *Server) handleReturnCostume(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	owner := p.MemberID
	if p.CanManage() {
		owner = ""
	}
	if err := services.ReturnCostume(r.Context(), s.db, s.logger, owner, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
