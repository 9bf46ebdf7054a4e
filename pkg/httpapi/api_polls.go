package httpapi

import (
	"net/http"
	"strconv"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/quiz"
	"github.com/folkbase/folkbase/pkg/core/services"
)

func (s *Server) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := s.db.ListPolls(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (s *Server) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	poll, err := services.CreatePoll(r.Context(), s.db, s.logger, req.Question, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, poll)
}

func (s *Server) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := services.DeletePoll(r.Context(), s.db, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option int `json:"option"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if err := services.CastVote(r.Context(), s.db, s.logger, r.PathValue("id"), principal(r).UID, req.Option); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTogglePoll(w http.ResponseWriter, r *http.Request) {
	active, err := services.TogglePoll(r.Context(), s.db, s.logger, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"isActive": active})
}

func (s *Server) handlePollReport(w http.ResponseWriter, r *http.Request) {
	report, err := services.BuildPollReport(r.Context(), s.db, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.db.ListQuestions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.Question
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	question, err := services.CreateQuestion(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req model.Question
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	req.ID = r.PathValue("id")
	question, err := services.UpdateQuestion(r.Context(), s.db, s.logger, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteQuestion(r.Context(), s.db, s.logger, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := services.StartQuiz(r.Context(), s.db, s.quizzes, principal(r).UID, s.cfg.QuizSampleSize, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// playQuiz applies step to the caller's session and writes the new view
func (s *Server) playQuiz(w http.ResponseWriter, r *http.Request, step func(*quiz.Session) error) {
	view, err := services.PlayQuiz(s.quizzes, principal(r).UID, step)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleViewQuiz(w http.ResponseWriter, r *http.Request) {
	s.playQuiz(w, r, func(*quiz.Session) error { return nil })
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer int `json:"answer"`
	}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.playQuiz(w, r, func(q *quiz.Session) error { return q.Select(req.Answer) })
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	s.playQuiz(w, r, func(q *quiz.Session) error { return q.Next() })
}

func (s *Server) handleQuizPrevious(w http.ResponseWriter, r *http.Request) {
	s.playQuiz(w, r, func(q *quiz.Session) error { return q.Previous() })
}

func (s *Server) handleQuizReset(w http.ResponseWriter, r *http.Request) {
	s.playQuiz(w, r, func(q *quiz.Session) error { q.Reset(); return nil })
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := services.FinishQuiz(r.Context(), s.db, s.quizzes, s.logger, principal(r).UID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuizRanking(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	ranked, err := services.QuizRanking(r.Context(), s.db, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}
