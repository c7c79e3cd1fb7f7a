package services

import (
	"errors"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("game session not found")
	ErrSessionFinished    = errors.New("game session already finished")
	ErrForbidden          = errors.New("access denied")
)

// Event names published to the Notifier.
const (
	EventLeaderboardUpdated  = "leaderboard_updated"
	EventAchievementUnlocked = "achievement_unlocked"
)

// Notifier receives live events for connected clients.
type Notifier interface {
	Publish(event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}
