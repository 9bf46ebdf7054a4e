package httpapi

import (
	"net/http"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.db.ListEvents(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("upcoming") == "true" {
		events = services.UpcomingEvents(events, s.now())
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.db.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.Event
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	event, err := services.CreateEvent(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.Event
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	req.ID = r.PathValue("id")
	event, err := services.UpdateEvent(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteEvent(r.Context(), s.db, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleEventQR(w http.ResponseWriter, r *http.Request) {
	payload, err := services.EventQRPayload(r.Context(), s.db, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": payload})
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	var req model.Program
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	program, err := services.SaveProgram(r.Context(), s.db, s.logger, r.PathValue("id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"program": program, "totalMinutes": program.TotalDuration()})
}

func (s *Server) handleProgramSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := services.ProgramSchedule(r.Context(), s.db, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleTogglePresence(w http.ResponseWriter, r *http.Request) {
	result, err := services.TogglePresence(r.Context(), s.db, s.logger, r.PathValue("id"), r.PathValue("memberId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetAllPresent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberIDs []string `json:"memberIds"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	result, err := services.SetAllPresent(r.Context(), s.db, s.logger, r.PathValue("id"), req.MemberIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEventAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := services.EventAttendance(r.Context(), s.db, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Statuses map[string]model.AttendanceStatus `json:"statuses"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	records, err := services.SaveAttendance(r.Context(), s.db, s.logger, r.PathValue("id"), req.Statuses)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := services.AttendanceReport(r.Context(), s.db, s.logger, s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	result, err := services.CheckIn(r.Context(), s.db, s.scanners, s.logger, principal(r).MemberID, req.Payload)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResetCheckIn(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.ResetCheckIn(s.scanners, principal(r).MemberID))
}
