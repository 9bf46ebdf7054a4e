package httpapi

import (
	"mime/multipart"
	"net/http"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

const maxUploadBytes = 64 << 20

// formFile reads the "file" part of a multipart upload
func formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, err
	}
	return r.FormFile("file")
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	var (
		members []model.Member
		err     error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		members, err = s.db.ListMembersByStatus(r.Context(), model.MemberStatus(status))
	} else {
		members, err = s.db.ListMembers(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.db.GetMember(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req model.Member
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	member, err := services.AddMember(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req model.Member
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	req.ID = r.PathValue("id")
	member, err := services.UpdateMember(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	result, err := services.DeleteMember(r.Context(), s.db, s.logger, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"returnedAssignments": len(result.ReturnedAssignments)})
}

func (s *Server) handleLinkMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := readJSON(w, r, &req); err != nil || req.UID == "" {
		s.badRequest(w, err)
		return
	}
	member, err := services.LinkMember(r.Context(), s.db, s.logger, r.PathValue("id"), req.UID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	defer file.Close()

	member, err := services.UploadAvatar(r.Context(), s.db, s.blobs, s.team.ID, s.logger,
		r.PathValue("id"), header.Header.Get("Content-Type"), file, header.Size, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}
