package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"contest-round-service/internal/app"
	"contest-round-service/internal/infra/memory"
)

// AdminHandler exposes the round lifecycle to the (trusted) admin layer.
type AdminHandler struct {
	service          *app.RoundService
	leaderboards     *memory.LeaderboardCache
	defaultTimeLimit time.Duration
	defaultBuffer    time.Duration
}

func NewAdminHandler(service *app.RoundService, leaderboards *memory.LeaderboardCache, defaultTimeLimit, defaultBuffer time.Duration) *AdminHandler {
	return &AdminHandler{
		service:          service,
		leaderboards:     leaderboards,
		defaultTimeLimit: defaultTimeLimit,
		defaultBuffer:    defaultBuffer,
	}
}

// Register wires the admin routes onto the mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/questions/start", h.handleStart)
	mux.HandleFunc("/admin/questions/stop", h.handleStop)
	mux.HandleFunc("/admin/questions/reset", h.handleReset)
	mux.HandleFunc("/admin/questions/status", h.handleStatus)
	mux.HandleFunc("/admin/questions/current", h.handleCurrent)
	mux.HandleFunc("/admin/questions/leaderboard", h.handleLeaderboard)
}

type startRequest struct {
	QuestionID       int `json:"questionId"`
	TimeLimitSeconds int `json:"timeLimitSeconds"`
	BufferSeconds    int `json:"bufferSeconds"`
}

func (h *AdminHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	timeLimit := h.defaultTimeLimit
	if req.TimeLimitSeconds > 0 {
		timeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}
	buffer := h.defaultBuffer
	if req.BufferSeconds > 0 {
		buffer = time.Duration(req.BufferSeconds) * time.Second
	}

	session := h.service.StartQuestion(req.QuestionID, timeLimit, buffer)
	writeJSON(w, http.StatusOK, session.Status())
}

type stopRequest struct {
	QuestionID int `json:"questionId"`
}

func (h *AdminHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.service.StopQuestion(req.QuestionID)
	writeJSON(w, http.StatusOK, map[string]any{"questionId": req.QuestionID, "stopped": true})
}

func (h *AdminHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cleared := h.service.ResetAllQuestions()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}

func (h *AdminHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetAllSessionsStatus())
}

func (h *AdminHandler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if id, ok := h.service.GetCurrentActiveQuestionID(); ok {
		writeJSON(w, http.StatusOK, map[string]any{"questionId": id})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questionId": nil})
}

func (h *AdminHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	questionID, err := strconv.Atoi(r.URL.Query().Get("questionId"))
	if err != nil {
		http.Error(w, "missing or invalid questionId", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.leaderboards.Get(questionID))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
