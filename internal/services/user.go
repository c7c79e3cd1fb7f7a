// internal/services/user.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/schollz/closestmatch"

	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/models"
)

type UserService struct {
	store database.Store
}

func NewUserService(store database.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	// Check if username or email already exists
	if exists, err := s.store.UsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameTaken
	}

	if exists, err := s.store.EmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailTaken
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, s.conflictError(ctx, req)
		}
		return nil, err
	}

	logger.New().Info(fmt.Sprintf("New player registered: %s (ID: %d)", user.Username, user.ID))
	return user, nil
}

func validateRegistration(req *models.CreateUserRequest) error {
	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 20 {
		return fmt.Errorf("%w: username must be 3 to 20 characters", ErrValidation)
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if n := utf8.RuneCountInString(req.DisplayName); n < 1 || n > 50 {
		return fmt.Errorf("%w: display name must be 1 to 50 characters", ErrValidation)
	}
	return nil
}

// Authenticate validates login credentials and returns the user. The login
// may be a username or an email address.
func (s *UserService) Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	login := strings.TrimSpace(req.Login)

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.GetUserByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.store.GetUserByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// Non-fatal error, just log it
	if err := s.store.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		logger.New().WithError(err).Warn(fmt.Sprintf("failed to update last login for user %d", user.ID))
	}

	return user, nil
}

// conflictError works out which unique field lost a registration race.
func (s *UserService) conflictError(ctx context.Context, req *models.CreateUserRequest) error {
	if exists, err := s.store.EmailExists(ctx, req.Email); err == nil && exists {
		if taken, err := s.store.UsernameExists(ctx, req.Username); err != nil || !taken {
			return ErrEmailTaken
		}
	}
	return ErrUsernameTaken
}

// GetUser retrieves a user by their ID
func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile allows users to update their display name and email
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req *models.ProfileUpdateRequest) (*models.User, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if n := utf8.RuneCountInString(displayName); n < 1 || n > 50 {
		return nil, fmt.Errorf("%w: display name must be 1 to 50 characters", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is invalid", ErrValidation)
	}

	if err := s.store.UpdateProfile(ctx, userID, displayName, email); err != nil {
		switch {
		case errors.Is(err, database.ErrConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, userID)
}

// ChangePassword allows users to change their password
func (s *UserService) ChangePassword(ctx context.Context, userID int, req *models.PasswordChangeRequest) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(req.CurrentPassword) {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
	}
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	return s.store.UpdatePassword(ctx, userID, user.Password)
}

const (
	defaultSuggestions = 5
	maxSuggestions     = 20
)

// SuggestUsernames returns up to n registered usernames closest to query.
func (s *UserService) SuggestUsernames(ctx context.Context, query string, n int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	if n <= 0 {
		n = defaultSuggestions
	}
	if n > maxSuggestions {
		n = maxSuggestions
	}

	names, err := s.store.ListUsernames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []string{}, nil
	}
	if n > len(names) {
		n = len(names)
	}

	cm := closestmatch.New(names, []int{2, 3})
	suggestions := []string{}
	for _, name := range cm.ClosestN(query, n) {
		if name != "" {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions, nil
}
