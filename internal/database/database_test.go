package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		Username:    name,
		Email:       name + "@example.com",
		Password:    "hash",
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return user
}

// playGame starts and completes a game for user.
func playGame(t *testing.T, db *DB, userID int, difficulty models.Difficulty, score int, timeMs int64) *models.GameSession {
	t.Helper()
	ctx := context.Background()
	session := &models.GameSession{
		SessionID:  fmt.Sprintf("s-%d-%d", userID, time.Now().UnixNano()),
		UserID:     userID,
		Difficulty: difficulty,
		GridSize:   difficulty.GridSize(),
		StartedAt:  time.Now().UTC(),
	}
	if err := db.CreateGameSession(ctx, session); err != nil {
		t.Fatalf("CreateGameSession: %v", err)
	}
	if err := db.CompleteGameSession(ctx, session.SessionID, score, timeMs, time.Now().UTC()); err != nil {
		t.Fatalf("CompleteGameSession: %v", err)
	}
	return session
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDB("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := NewDB(DriverPostgres, ""); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	if alice.ID == 0 {
		t.Fatal("expected user id to be set")
	}

	dup := &models.User{Username: "alice", Email: "other@example.com", Password: "x", DisplayName: "A",
		CreatedAt: time.Now(), UpdatedAt: time.Now(), IsActive: true}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username error = %v, want ErrConflict", err)
	}

	got, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != alice.ID || got.Email != "alice@example.com" || !got.IsActive {
		t.Errorf("unexpected user %+v", got)
	}

	if _, err := db.GetUserByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID(999) error = %v, want ErrNotFound", err)
	}

	exists, err := db.EmailExists(ctx, "alice@example.com")
	if err != nil || !exists {
		t.Errorf("EmailExists = %v, %v", exists, err)
	}

	createUser(t, db, "bob")
	if err := db.UpdateProfile(ctx, alice.ID, "Alice", "bob@example.com"); !errors.Is(err, ErrConflict) {
		t.Errorf("UpdateProfile with taken email error = %v, want ErrConflict", err)
	}
	if err := db.UpdateProfile(ctx, alice.ID, "Alice", "alice@new.example.com"); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ = db.GetUserByEmail(ctx, "alice@new.example.com")
	if got == nil || got.DisplayName != "Alice" {
		t.Errorf("profile not updated: %+v", got)
	}

	login := time.Now().UTC()
	if err := db.UpdateLastLogin(ctx, alice.ID, login); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
	got, _ = db.GetUserByID(ctx, alice.ID)
	if got.LastLoginAt == nil {
		t.Error("last login not stored")
	}

	names, err := db.ListUsernames(ctx)
	if err != nil {
		t.Fatalf("ListUsernames: %v", err)
	}
	if len(names) != 2 || names[0] != "alice" || names[1] != "bob" {
		t.Errorf("ListUsernames = %v", names)
	}
}

func TestGameSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "carol")

	session := &models.GameSession{
		SessionID: "game-1", UserID: user.ID, Difficulty: models.DifficultyMedium,
		GridSize: 6, StartedAt: time.Now().UTC(),
	}
	if err := db.CreateGameSession(ctx, session); err != nil {
		t.Fatalf("CreateGameSession: %v", err)
	}

	for _, matched := range []bool{false, true, true} {
		if err := db.RecordMove(ctx, "game-1", matched); err != nil {
			t.Fatalf("RecordMove: %v", err)
		}
	}

	if err := db.CompleteGameSession(ctx, "game-1", 150, 42000, time.Now().UTC()); err != nil {
		t.Fatalf("CompleteGameSession: %v", err)
	}
	if err := db.CompleteGameSession(ctx, "game-1", 999, 1, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second completion error = %v, want ErrNotFound", err)
	}
	if err := db.RecordMove(ctx, "game-1", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("move on finished game error = %v, want ErrNotFound", err)
	}

	got, err := db.GetGameSession(ctx, "game-1")
	if err != nil {
		t.Fatalf("GetGameSession: %v", err)
	}
	if !got.Completed || got.Score != 150 || got.Moves != 3 || got.Matches != 2 {
		t.Errorf("unexpected session %+v", got)
	}
	if got.TimeMs == nil || *got.TimeMs != 42000 || got.FinishedAt == nil {
		t.Errorf("completion fields not stored: %+v", got)
	}
	if got.Difficulty != models.DifficultyMedium {
		t.Errorf("difficulty = %q", got.Difficulty)
	}

	games, err := db.ListUserGames(ctx, user.ID, 0)
	if err != nil || len(games) != 1 {
		t.Fatalf("ListUserGames = %v, %v", games, err)
	}
}

func TestUserStatistics(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "dave")

	stats, err := db.GetUserStatistics(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if stats.TotalGames != 0 || stats.BestTime != nil || stats.Rank != nil || stats.LastPlayed != nil {
		t.Errorf("fresh user stats = %+v", stats)
	}

	playGame(t, db, user.ID, models.DifficultyEasy, 120, 50000)
	playGame(t, db, user.ID, models.DifficultyHard, 210, 70000)

	// unfinished games do not count
	open := &models.GameSession{SessionID: "open", UserID: user.ID, Difficulty: models.DifficultyEasy,
		GridSize: 4, StartedAt: time.Now().UTC()}
	if err := db.CreateGameSession(ctx, open); err != nil {
		t.Fatal(err)
	}

	stats, err = db.GetUserStatistics(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if stats.TotalGames != 2 || stats.BestScore != 210 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.BestTime == nil || *stats.BestTime != 50000 {
		t.Errorf("best time = %v, want 50000", stats.BestTime)
	}
	if stats.Rank == nil || *stats.Rank != 1 {
		t.Errorf("rank = %v, want 1", stats.Rank)
	}
	if stats.LastPlayed == nil {
		t.Error("last played missing")
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	erin := createUser(t, db, "erin")
	frank := createUser(t, db, "frank")
	gina := createUser(t, db, "gina")

	playGame(t, db, erin.ID, models.DifficultyEasy, 200, 60000)
	playGame(t, db, frank.ID, models.DifficultyEasy, 200, 40000)
	playGame(t, db, gina.ID, models.DifficultyExpert, 300, 90000)

	board, err := db.GetLeaderboard(ctx, "", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	want := []string{"gina", "frank", "erin"}
	if len(board) != len(want) {
		t.Fatalf("leaderboard has %d entries, want %d", len(board), len(want))
	}
	for i, name := range want {
		if board[i].Username != name || board[i].Rank != i+1 {
			t.Errorf("position %d = %s (rank %d), want %s", i, board[i].Username, board[i].Rank, name)
		}
	}

	easy, err := db.GetLeaderboard(ctx, "easy", 1)
	if err != nil {
		t.Fatalf("GetLeaderboard(easy): %v", err)
	}
	if len(easy) != 1 || easy[0].Username != "frank" {
		t.Errorf("easy leaderboard = %+v", easy)
	}

	rank, err := db.GetUserRank(ctx, erin.ID)
	if err != nil || rank == nil || *rank != 3 {
		t.Errorf("GetUserRank(erin) = %v, %v", rank, err)
	}

	nobody := createUser(t, db, "henry")
	rank, err = db.GetUserRank(ctx, nobody.ID)
	if err != nil || rank != nil {
		t.Errorf("GetUserRank(unranked) = %v, %v", rank, err)
	}
}

func TestInactivePlayersHoldNoRank(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	banned := &models.User{
		Username:    "kurt",
		Email:       "kurt@example.com",
		Password:    "hash",
		DisplayName: "kurt",
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    false,
	}
	if err := db.CreateUser(ctx, banned); err != nil {
		t.Fatal(err)
	}
	lena := createUser(t, db, "lena")

	playGame(t, db, banned.ID, models.DifficultyHard, 400, 30000)
	playGame(t, db, lena.ID, models.DifficultyHard, 150, 80000)

	board, err := db.GetLeaderboard(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 1 || board[0].Username != "lena" || board[0].Rank != 1 {
		t.Errorf("leaderboard = %+v, want lena at rank 1", board)
	}

	rank, err := db.GetUserRank(ctx, lena.ID)
	if err != nil || rank == nil || *rank != 1 {
		t.Errorf("GetUserRank(lena) = %v, %v", rank, err)
	}
	rank, err = db.GetUserRank(ctx, banned.ID)
	if err != nil || rank != nil {
		t.Errorf("GetUserRank(disabled) = %v, %v, want unranked", rank, err)
	}
}

func TestUnlockAchievements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "iris")

	first := []models.Achievement{{ID: "ten_games"}, {ID: "score_100"}}
	unlocked, err := db.UnlockAchievements(ctx, user.ID, first, time.Now().UTC())
	if err != nil {
		t.Fatalf("UnlockAchievements: %v", err)
	}
	if len(unlocked) != 2 {
		t.Errorf("first unlock = %v", unlocked)
	}

	second := []models.Achievement{{ID: "ten_games"}, {ID: "score_100"}, {ID: "score_200"}}
	unlocked, err = db.UnlockAchievements(ctx, user.ID, second, time.Now().UTC())
	if err != nil {
		t.Fatalf("UnlockAchievements: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != "score_200" {
		t.Errorf("second unlock = %v, want [score_200]", unlocked)
	}

	all, err := db.ListUnlockedAchievements(ctx, user.ID)
	if err != nil || len(all) != 3 {
		t.Errorf("ListUnlockedAchievements = %v, %v", all, err)
	}
}

func TestActivities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "jack")

	for i := 0; i < 12; i++ {
		activity := &models.GameActivity{UserID: user.ID, Type: "game_completed", Title: fmt.Sprintf("game %d", i)}
		if err := db.RecordActivity(ctx, activity); err != nil {
			t.Fatalf("RecordActivity: %v", err)
		}
		if activity.ID == 0 {
			t.Fatal("activity id not set")
		}
	}

	activities, err := db.GetRecentActivities(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("GetRecentActivities: %v", err)
	}
	if len(activities) != 10 {
		t.Fatalf("got %d activities, want default limit 10", len(activities))
	}
	if activities[0].Title != "game 11" {
		t.Errorf("newest activity = %q, want game 11", activities[0].Title)
	}
}
