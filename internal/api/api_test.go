package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/memorymatch-web/internal/auth"
	"github.com/tahcohcat/memorymatch-web/internal/cache"
	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/models"
	"github.com/tahcohcat/memorymatch-web/internal/services"
	"github.com/tahcohcat/memorymatch-web/internal/websocket"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *mux.Router
}

func newTestRouter(t *testing.T) *apiClient {
	t.Helper()
	db, err := database.NewDB(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := websocket.NewHub(nil)
	users := services.NewUserService(db)
	achievements := services.NewAchievementService(db, hub)
	leaderboard := services.NewLeaderboardService(db, cache.NewLeaderboardCache(time.Minute), 10, 100)
	games := services.NewGameService(db, achievements, leaderboard, hub)

	h := NewHandler(users, games, achievements, leaderboard)
	m := auth.NewManager("session-secret-for-tests", "jwt-secret-for-tests", time.Hour, users)
	return &apiClient{t: t, router: NewRouter(h, m, hub)}
}

// do sends a request and decodes the envelope; data is decoded into out when non-nil.
func (c *apiClient) do(method, path, token string, body interface{}, out interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		c.t.Fatalf("%s %s: undecodable body: %v", method, path, err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return rec.Code, env
}

func (c *apiClient) register(username string) string {
	c.t.Helper()
	var data struct {
		Token string `json:"token"`
	}
	code, env := c.do(http.MethodPost, "/auth/register", "", models.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	}, &data)
	if code != http.StatusCreated || data.Token == "" {
		c.t.Fatalf("register %s: status %d, error %q", username, code, env.Error)
	}
	return data.Token
}

func TestPublicEndpoints(t *testing.T) {
	c := newTestRouter(t)

	if code, _ := c.do(http.MethodGet, "/api/v1/health", "", nil, nil); code != http.StatusOK {
		t.Errorf("health status = %d", code)
	}

	var rating models.PerformanceRating
	code, _ := c.do(http.MethodGet, "/api/v1/rating?score=100&difficulty=easy", "", nil, &rating)
	if code != http.StatusOK || rating.Rating != "Average" {
		t.Errorf("rating = %d %+v", code, rating)
	}
	if code, _ := c.do(http.MethodGet, "/api/v1/rating?score=abc", "", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad score status = %d, want 400", code)
	}

	var board []models.LeaderboardEntry
	code, _ = c.do(http.MethodGet, "/api/v1/leaderboard", "", nil, &board)
	if code != http.StatusOK || len(board) != 0 {
		t.Errorf("empty leaderboard = %d %+v", code, board)
	}

	c.register("alice")
	for _, limit := range []string{"9223372036854775807", "2000000000", "-3"} {
		var names []string
		code, _ = c.do(http.MethodGet, "/api/v1/users/suggest?q=ali&limit="+limit, "", nil, &names)
		if code != http.StatusOK || len(names) != 1 || names[0] != "alice" {
			t.Errorf("suggest limit=%s = %d %v", limit, code, names)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	c := newTestRouter(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/profile/stats", "/api/v1/profile/rank"} {
		code, env := c.do(http.MethodGet, path, "", nil, nil)
		if code != http.StatusUnauthorized || env.Success {
			t.Errorf("%s: status = %d, want 401", path, code)
		}
	}
	if code, _ := c.do(http.MethodPost, "/api/v1/games", "", models.StartGameRequest{}, nil); code != http.StatusUnauthorized {
		t.Errorf("start game status = %d, want 401", code)
	}
}

func TestProfileEndpoints(t *testing.T) {
	c := newTestRouter(t)
	token := c.register("alice")

	var user models.User
	code, _ := c.do(http.MethodGet, "/api/v1/profile", token, nil, &user)
	if code != http.StatusOK || user.Username != "alice" || user.DisplayName != "alice" {
		t.Fatalf("profile = %d %+v", code, user)
	}

	code, _ = c.do(http.MethodPut, "/api/v1/profile", token, models.ProfileUpdateRequest{
		DisplayName: "Alice A.",
		Email:       "ALICE@example.org",
	}, &user)
	if code != http.StatusOK || user.DisplayName != "Alice A." || user.Email != "alice@example.org" {
		t.Errorf("update profile = %d %+v", code, user)
	}

	code, _ = c.do(http.MethodPut, "/api/v1/profile/password", token, models.PasswordChangeRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "another123",
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("wrong current password status = %d, want 400", code)
	}

	code, _ = c.do(http.MethodPut, "/api/v1/profile/password", token, models.PasswordChangeRequest{
		CurrentPassword: "secret123",
		NewPassword:     "another123",
	}, nil)
	if code != http.StatusOK {
		t.Errorf("change password status = %d", code)
	}

	code, _ = c.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Login: "alice", Password: "another123"}, nil)
	if code != http.StatusOK {
		t.Errorf("login with new password status = %d", code)
	}

	var stats models.ProfileProgress
	code, _ = c.do(http.MethodGet, "/api/v1/profile/stats", token, nil, &stats)
	if code != http.StatusOK || stats.Statistics.TotalGames != 0 || stats.Message == "" {
		t.Errorf("stats = %d %+v", code, stats)
	}
	if stats.Progress.NextLevel != 100 {
		t.Errorf("fresh player next level = %d, want 100", stats.Progress.NextLevel)
	}

	var rank map[string]*int
	code, _ = c.do(http.MethodGet, "/api/v1/profile/rank", token, nil, &rank)
	if code != http.StatusOK || rank["rank"] != nil {
		t.Errorf("unranked player rank = %d %v", code, rank)
	}
}

func TestGameFlow(t *testing.T) {
	c := newTestRouter(t)
	alice := c.register("alice")
	bob := c.register("bob")

	var session models.GameSession
	code, env := c.do(http.MethodPost, "/api/v1/games", alice, models.StartGameRequest{Difficulty: "medium"}, &session)
	if code != http.StatusCreated {
		t.Fatalf("start game status = %d, error %q", code, env.Error)
	}
	if session.GridSize != 6 || session.SessionID == "" {
		t.Fatalf("session = %+v", session)
	}
	gamePath := "/api/v1/games/" + session.SessionID

	code, _ = c.do(http.MethodPost, "/api/v1/games", alice, models.StartGameRequest{GridSize: 5}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("odd grid status = %d, want 400", code)
	}

	code, _ = c.do(http.MethodPost, gamePath+"/moves", alice, models.MoveRequest{Matched: true}, &session)
	if code != http.StatusOK || session.Moves != 1 || session.Matches != 1 {
		t.Errorf("move = %d %+v", code, session)
	}

	if code, _ := c.do(http.MethodPost, gamePath+"/moves", bob, models.MoveRequest{}, nil); code != http.StatusForbidden {
		t.Errorf("foreign move status = %d, want 403", code)
	}
	if code, _ := c.do(http.MethodPost, "/api/v1/games/no-such-game/moves", alice, models.MoveRequest{}, nil); code != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", code)
	}

	var result models.GameResult
	code, env = c.do(http.MethodPost, gamePath+"/complete", alice, models.CompleteGameRequest{Score: 230, TimeMs: 45000}, &result)
	if code != http.StatusOK {
		t.Fatalf("complete status = %d, error %q", code, env.Error)
	}
	if result.Rating.Rating != "Excellent" {
		t.Errorf("rating = %+v, want Excellent for 230 on medium", result.Rating)
	}
	if !result.Session.Completed || result.Session.Score != 230 {
		t.Errorf("session = %+v", result.Session)
	}
	unlocked := map[string]bool{}
	for _, a := range result.NewAchievements {
		unlocked[a.ID] = true
	}
	for _, id := range []string{"score_100", "score_200", "speed_demon"} {
		if !unlocked[id] {
			t.Errorf("missing new achievement %s in %v", id, unlocked)
		}
	}

	if code, _ := c.do(http.MethodPost, gamePath+"/complete", alice, models.CompleteGameRequest{Score: 10, TimeMs: 1000}, nil); code != http.StatusConflict {
		t.Errorf("second completion status = %d, want 409", code)
	}

	var board []models.LeaderboardEntry
	c.do(http.MethodGet, "/api/v1/leaderboard?difficulty=medium", "", nil, &board)
	if len(board) != 1 || board[0].Username != "alice" || board[0].BestScore != 230 || board[0].Rank != 1 {
		t.Errorf("leaderboard = %+v", board)
	}

	var games []models.GameSession
	c.do(http.MethodGet, "/api/v1/profile/games", alice, nil, &games)
	if len(games) != 1 {
		t.Errorf("games = %d, want 1", len(games))
	}

	var achievements []models.Achievement
	c.do(http.MethodGet, "/api/v1/profile/achievements", alice, nil, &achievements)
	earned := 0
	for _, a := range achievements {
		if a.UnlockedAt != nil {
			earned++
			if !unlocked[a.ID] {
				t.Errorf("%s shown as earned but was not reported", a.ID)
			}
		}
	}
	if len(achievements) != 11 || earned != len(result.NewAchievements) {
		t.Errorf("achievements = %d (earned %d), want 11 with %d earned", len(achievements), earned, len(result.NewAchievements))
	}

	var activities []models.GameActivity
	c.do(http.MethodGet, "/api/v1/profile/activities?limit=50", alice, nil, &activities)
	if len(activities) != 1+len(result.NewAchievements) {
		t.Errorf("activities = %d, want game plus one per badge", len(activities))
	}
}
