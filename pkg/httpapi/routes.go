package httpapi

import "net/http"

func (s *Server) routes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/anonymous", s.handleSignInAnonymously)
	mux.HandleFunc("POST /api/auth/custom-token", s.handleSignInWithCustomToken)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)
	mux.HandleFunc("POST /api/auth/password-reset", s.handleSendPasswordReset)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", s.handleResetPassword)
	mux.HandleFunc("GET /api/me", s.authed(s.handleMe))

	mux.HandleFunc("GET /api/dashboard", s.authed(s.handleDashboard))
	mux.HandleFunc("POST /api/notifications", s.authed(s.handleNotify))

	// Members
	mux.HandleFunc("GET /api/members", s.authed(s.handleListMembers))
	mux.HandleFunc("POST /api/members", s.authed(s.handleAddMember))
	mux.HandleFunc("GET /api/members/{id}", s.authed(s.handleGetMember))
	mux.HandleFunc("PUT /api/members/{id}", s.authed(s.handleUpdateMember))
	mux.HandleFunc("DELETE /api/members/{id}", s.authed(s.handleDeleteMember))
	mux.HandleFunc("POST /api/members/{id}/link", s.managed(s.handleLinkMember))
	mux.HandleFunc("POST /api/members/{id}/avatar", s.authed(s.handleUploadAvatar))

	// Calendar, attendance and check-in
	mux.HandleFunc("GET /api/events", s.authed(s.handleListEvents))
	mux.HandleFunc("POST /api/events", s.authed(s.handleCreateEvent))
	mux.HandleFunc("GET /api/events/{id}", s.authed(s.handleGetEvent))
	mux.HandleFunc("PUT /api/events/{id}", s.authed(s.handleUpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", s.authed(s.handleDeleteEvent))
	mux.HandleFunc("GET /api/events/{id}/qr", s.managed(s.handleEventQR))
	mux.HandleFunc("PUT /api/events/{id}/program", s.authed(s.handleSaveProgram))
	mux.HandleFunc("GET /api/events/{id}/schedule", s.authed(s.handleProgramSchedule))
	mux.HandleFunc("POST /api/events/{id}/presence/{memberId}", s.managed(s.handleTogglePresence))
	mux.HandleFunc("PUT /api/events/{id}/presence", s.managed(s.handleSetAllPresent))
	mux.HandleFunc("GET /api/events/{id}/attendance", s.managed(s.handleEventAttendance))
	mux.HandleFunc("PUT /api/events/{id}/attendance", s.authed(s.handleSaveAttendance))
	mux.HandleFunc("GET /api/attendance/report", s.managed(s.handleAttendanceReport))
	mux.HandleFunc("POST /api/checkin", s.authed(s.handleCheckIn))
	mux.HandleFunc("POST /api/checkin/reset", s.authed(s.handleResetCheckIn))

	// Costumes
	mux.HandleFunc("GET /api/costumes", s.authed(s.handleListCostumes))
	mux.HandleFunc("POST /api/costumes", s.authed(s.handleCreateCostume))
	mux.HandleFunc("PUT /api/costumes/{id}", s.authed(s.handleUpdateCostume))
	mux.HandleFunc("DELETE /api/costumes/{id}", s.authed(s.handleDeleteCostume))
	mux.HandleFunc("POST /api/costumes/{id}/image", s.authed(s.handleUploadCostumeImage))
	mux.HandleFunc("GET /api/assignments", s.authed(s.handleListAssignments))
	mux.HandleFunc("POST /api/assignments", s.authed(s.handleAssignCostume))
	mux.HandleFunc("DELETE /api/assignments/{id}", s.authed(s.handleReturnCostume))

	// Repertoire
	mux.HandleFunc("GET /api/repertoire", s.authed(s.handleListRepertoire))
	mux.HandleFunc("POST /api/repertoire", s.authed(s.handleCreateRepertoireItem))
	mux.HandleFunc("PUT /api/repertoire/{id}", s.authed(s.handleUpdateRepertoireItem))
	mux.HandleFunc("DELETE /api/repertoire/{id}", s.authed(s.handleDeleteRepertoireItem))
	mux.HandleFunc("GET /api/repertoire/{id}/media", s.authed(s.handleListMedia))
	mux.HandleFunc("POST /api/repertoire/{id}/media", s.authed(s.handleUploadMedia))
	mux.HandleFunc("DELETE /api/media/{id}", s.authed(s.handleDeleteMedia))

	// Gallery
	mux.HandleFunc("GET /api/albums", s.authed(s.handleListAlbums))
	mux.HandleFunc("POST /api/albums", s.authed(s.handleCreateAlbum))
	mux.HandleFunc("DELETE /api/albums/{id}", s.authed(s.handleDeleteAlbum))
	mux.HandleFunc("GET /api/albums/{id}/photos", s.authed(s.handleListPhotos))
	mux.HandleFunc("POST /api/albums/{id}/photos", s.authed(s.handleAddPhoto))
	mux.HandleFunc("DELETE /api/photos/{id}", s.authed(s.handleDeletePhoto))

	// Polls
	mux.HandleFunc("GET /api/polls", s.authed(s.handleListPolls))
	mux.HandleFunc("POST /api/polls", s.authed(s.handleCreatePoll))
	mux.HandleFunc("DELETE /api/polls/{id}", s.authed(s.handleDeletePoll))
	mux.HandleFunc("POST /api/polls/{id}/vote", s.authed(s.handleCastVote))
	mux.HandleFunc("POST /api/polls/{id}/toggle", s.authed(s.handleTogglePoll))
	mux.HandleFunc("GET /api/polls/{id}/report", s.managed(s.handlePollReport))

	// Quiz
	mux.HandleFunc("GET /api/questions", s.managed(s.handleListQuestions))
	mux.HandleFunc("POST /api/questions", s.authed(s.handleCreateQuestion))
	mux.HandleFunc("PUT /api/questions/{id}", s.authed(s.handleUpdateQuestion))
	mux.HandleFunc("DELETE /api/questions/{id}", s.authed(s.handleDeleteQuestion))
	mux.HandleFunc("POST /api/quiz/session", s.authed(s.handleStartQuiz))
	mux.HandleFunc("GET /api/quiz/session", s.authed(s.handleViewQuiz))
	mux.HandleFunc("POST /api/quiz/session/answer", s.authed(s.handleQuizAnswer))
	mux.HandleFunc("POST /api/quiz/session/next", s.authed(s.handleQuizNext))
	mux.HandleFunc("POST /api/quiz/session/previous", s.authed(s.handleQuizPrevious))
	mux.HandleFunc("POST /api/quiz/session/submit", s.authed(s.handleQuizSubmit))
	mux.HandleFunc("POST /api/quiz/session/reset", s.authed(s.handleQuizReset))
	mux.HandleFunc("GET /api/quiz/ranking", s.authed(s.handleQuizRanking))

	mux.HandleFunc("GET /api/live/{collection}", s.authed(s.handleLive))
}
