package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// APIHandler exposes the quiz use cases over REST.
type APIHandler struct {
	service  *app.QuizService
	defaults domain.QuestionRequest
	logger   *slog.Logger
}

// NewAPIHandler returns a handler; defaults fill fields a start request leaves empty.
func NewAPIHandler(service *app.QuizService, defaults domain.QuestionRequest, logger *slog.Logger) *APIHandler {
	return &APIHandler{service: service, defaults: defaults, logger: logger}
}

// NewRouter wires the REST routes, the websocket endpoint and the health check.
func NewRouter(api *APIHandler, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/sessions", api.StartSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}", api.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", api.EndSession).Methods(http.MethodDelete)
	r.HandleFunc("/api/sessions/{id}/answer", api.SubmitAnswer).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/skip", api.action(api.service.Skip)).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/next", api.action(api.service.Next)).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/previous", api.action(api.service.Previous)).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/finish", api.action(api.service.Finish)).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/summary", api.GetSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/scores", api.GetHighScores).Methods(http.MethodGet)

	if ws != nil {
		r.HandleFunc("/ws", ws.ServeWS)
	}
	r.Use(api.logRequests)
	return r
}

type answerRequest struct {
	Selected *int `json:"selected"`
}

type scoresResponse struct {
	Entries []domain.HighScoreEntry `json:"entries"`
}

func (h *APIHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req domain.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, errInvalidPayload)
		return
	}
	state, err := h.service.Start(r.Context(), h.withDefaults(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.End(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Selected == nil {
		writeError(w, errInvalidPayload)
		return
	}
	state, err := h.service.Submit(r.Context(), mux.Vars(r)["id"], *req.Selected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) GetHighScores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoresResponse{Entries: h.service.HighScores(r.Context())})
}

type sessionAction func(ctx context.Context, sessionID string) (domain.SessionState, error)

func (h *APIHandler) action(fn sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := fn(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func (h *APIHandler) withDefaults(req domain.QuestionRequest) domain.QuestionRequest {
	if req.Source == "" {
		req.Source = h.defaults.Source
	}
	if req.Count == 0 {
		req.Count = h.defaults.Count
	}
	if req.Difficulty == "" {
		req.Difficulty = h.defaults.Difficulty
	}
	if req.Category == "" {
		req.Category = h.defaults.Category
	}
	return req
}

func (h *APIHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if rec.status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		h.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over connections wrapped by logRequests.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
