package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/memorymatch-web/internal/auth"
	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/models"
	"github.com/tahcohcat/memorymatch-web/internal/progression"
	"github.com/tahcohcat/memorymatch-web/internal/response"
	"github.com/tahcohcat/memorymatch-web/internal/services"
)

type Handler struct {
	users        *services.UserService
	games        *services.GameService
	achievements *services.AchievementService
	leaderboard  *services.LeaderboardService
}

func NewHandler(users *services.UserService, games *services.GameService, achievements *services.AchievementService, leaderboard *services.LeaderboardService) *Handler {
	return &Handler{
		users:        users,
		games:        games,
		achievements: achievements,
		leaderboard:  leaderboard,
	}
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSessionFinished), errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrUsernameTaken):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		logger.New().WithError(err).Error(fallback)
		response.Error(w, http.StatusInternalServerError, fallback)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryInt returns the integer query parameter, or 0 when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}

// GET /api/v1/leaderboard?difficulty=&limit=
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.GetLeaderboard(r.Context(), r.URL.Query().Get("difficulty"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err, "Failed to load leaderboard")
		return
	}
	response.Success(w, entries)
}

// GET /api/v1/users/suggest?q=
func (h *Handler) SuggestUsernames(w http.ResponseWriter, r *http.Request) {
	names, err := h.users.SuggestUsernames(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err, "Failed to suggest usernames")
		return
	}
	response.Success(w, names)
}

// GET /api/v1/rating?score=&difficulty=
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "score must be an integer")
		return
	}
	response.Success(w, progression.RatePerformance(score, r.URL.Query().Get("difficulty")))
}

// GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), auth.GetUserIDFromSession(r))
	if err != nil {
		writeError(w, err, "Failed to load profile")
		return
	}
	response.Success(w, user)
}

// PUT /api/v1/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), auth.GetUserIDFromSession(r), &req)
	if err != nil {
		writeError(w, err, "Failed to update profile")
		return
	}
	response.Success(w, user)
}

// PUT /api/v1/profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChangeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), auth.GetUserIDFromSession(r), &req); err != nil {
		writeError(w, err, "Failed to change password")
		return
	}
	response.Message(w, "Password updated")
}

// GET /api/v1/profile/stats
func (h *Handler) GetProfileStats(w http.ResponseWriter, r *http.Request) {
	progress, err := h.achievements.GetProfileProgress(r.Context(), auth.GetUserIDFromSession(r))
	if err != nil {
		writeError(w, err, "Failed to load statistics")
		return
	}
	response.Success(w, progress)
}

// GET /api/v1/profile/achievements
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievements.GetAchievements(r.Context(), auth.GetUserIDFromSession(r))
	if err != nil {
		writeError(w, err, "Failed to load achievements")
		return
	}
	response.Success(w, achievements)
}

// GET /api/v1/profile/activities?limit=
func (h *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.achievements.GetRecentActivities(r.Context(), auth.GetUserIDFromSession(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err, "Failed to load activities")
		return
	}
	response.Success(w, activities)
}

// GET /api/v1/profile/games?limit=
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGames(r.Context(), auth.GetUserIDFromSession(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err, "Failed to load games")
		return
	}
	response.Success(w, games)
}

// GET /api/v1/profile/rank
func (h *Handler) GetRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.leaderboard.GetUserRank(r.Context(), auth.GetUserIDFromSession(r))
	if err != nil {
		writeError(w, err, "Failed to load rank")
		return
	}
	response.Success(w, map[string]*int{"rank": rank})
}

// POST /api/v1/games
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req models.StartGameRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.games.StartGame(r.Context(), auth.GetUserIDFromSession(r), req.Difficulty, req.GridSize)
	if err != nil {
		writeError(w, err, "Failed to start game")
		return
	}
	response.Created(w, session)
}

// GET /api/v1/games/{session}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	session, err := h.games.GetGame(r.Context(), auth.GetUserIDFromSession(r), mux.Vars(r)["session"])
	if err != nil {
		writeError(w, err, "Failed to load game")
		return
	}
	response.Success(w, session)
}

// POST /api/v1/games/{session}/moves
func (h *Handler) RecordMove(w http.ResponseWriter, r *http.Request) {
	var req models.MoveRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.games.RecordMove(r.Context(), auth.GetUserIDFromSession(r), mux.Vars(r)["session"], req.Matched)
	if err != nil {
		writeError(w, err, "Failed to record move")
		return
	}
	response.Success(w, session)
}

// POST /api/v1/games/{session}/complete
func (h *Handler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteGameRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.games.CompleteGame(r.Context(), auth.GetUserIDFromSession(r), mux.Vars(r)["session"], req.Score, req.TimeMs)
	if err != nil {
		writeError(w, err, "Failed to complete game")
		return
	}
	response.Success(w, result)
}

// RegisterPublicRoutes mounts the endpoints that need no login.
func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")
	r.HandleFunc("/users/suggest", h.SuggestUsernames).Methods("GET")
	r.HandleFunc("/rating", h.GetRating).Methods("GET")
}

// RegisterRoutes mounts the endpoints that expect an authenticated user in
// the request context.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/profile/password", h.ChangePassword).Methods("PUT")
	r.HandleFunc("/profile/stats", h.GetProfileStats).Methods("GET")
	r.HandleFunc("/profile/achievements", h.GetAchievements).Methods("GET")
	r.HandleFunc("/profile/activities", h.GetActivities).Methods("GET")
	r.HandleFunc("/profile/games", h.ListGames).Methods("GET")
	r.HandleFunc("/profile/rank", h.GetRank).Methods("GET")

	r.HandleFunc("/games", h.StartGame).Methods("POST")
	r.HandleFunc("/games/{session}", h.GetGame).Methods("GET")
	r.HandleFunc("/games/{session}/moves", h.RecordMove).Methods("POST")
	r.HandleFunc("/games/{session}/complete", h.CompleteGame).Methods("POST")
}
