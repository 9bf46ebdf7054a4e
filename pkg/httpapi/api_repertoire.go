package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

func (s *Server) handleListRepertoire(w http.ResponseWriter, r *http.Request) {
	order := services.RepertoireNewest
	if r.URL.Query().Get("order") == string(services.RepertoireByTitle) {
		order = services.RepertoireByTitle
	}
	items, err := services.ListRepertoire(r.Context(), s.db, order)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateRepertoireItem(w http.ResponseWriter, r *http.Request) {
	var req model.RepertoireItem
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	item, err := services.CreateRepertoireItem(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateRepertoireItem(w http.ResponseWriter, r *http.Request) {
	var req model.RepertoireItem
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	req.ID = r.PathValue("id")
	item, err := services.UpdateRepertoireItem(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteRepertoireItem(w http.ResponseWriter, r *http.Request) {
	result, err := services.DeleteRepertoireItem(r.Context(), s.db, s.blobs, s.logger, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deletedMedia": len(result.DeletedMedia),
		"pendingBlobs": len(result.Tombstoned),
	})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := s.db.ListMedia(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	defer file.Close()

	repertoireID := r.PathValue("id")
	progress := func(sent, total int64) {
		s.logger.Debug("Upload progress",
			zap.String("repertoire_id", repertoireID),
			zap.Int64("sent", sent),
			zap.Int64("total", total))
	}
	asset, err := services.UploadMedia(r.Context(), s.db, s.blobs, s.team.ID, s.logger,
		repertoireID, header.Filename, file, header.Size, progress, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteMedia(r.Context(), s.db, s.blobs, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.db.ListAlbums(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	album, err := services.CreateAlbum(r.Context(), s.db, s.logger, req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	result, err := services.DeleteAlbum(r.Context(), s.db, s.blobs, s.logger, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deletedPhotos": len(result.DeletedPhotos),
		"pendingBlobs":  len(result.Tombstoned),
	})
}

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.db.ListPhotos(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(w, r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	defer file.Close()

	photo, err := services.AddPhoto(r.Context(), s.db, s.blobs, s.team.ID, s.logger,
		r.PathValue("id"), header.Filename, header.Header.Get("Content-Type"), file, header.Size, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := services.DeletePhoto(r.Context(), s.db, s.blobs, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
