package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"

	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/models"
	"github.com/tahcohcat/memorymatch-web/internal/response"
	"github.com/tahcohcat/memorymatch-web/internal/services"
)

const sessionName = "memorymatch-session"

type contextKey string

const userIDKey = contextKey("user_id")

type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager authenticates requests with either a session cookie (browser) or a
// bearer token (API clients).
type Manager struct {
	store     *sessions.CookieStore
	jwtSecret []byte
	tokenTTL  time.Duration
	users     *services.UserService
}

func NewManager(sessionSecret, jwtSecret string, tokenTTL time.Duration, users *services.UserService) *Manager {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		users:     users,
	}
}

// IssueToken signs a bearer token for the user.
func (m *Manager) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.jwtSecret)
}

// ParseToken validates a bearer token and returns the user ID it was issued for.
func (m *Manager) ParseToken(tokenString string) (int, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return claims.UserID, nil
}

// authenticate resolves the user ID from a session cookie or bearer token.
func (m *Manager) authenticate(r *http.Request) int {
	if session, err := m.store.Get(r, sessionName); err == nil {
		if id, ok := session.Values["user_id"].(int); ok && id > 0 {
			return id
		}
	}

	authHeader := r.Header.Get("Authorization")
	tokenParts := strings.SplitN(authHeader, " ", 2)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return 0
	}

	id, err := m.ParseToken(strings.TrimSpace(tokenParts[1]))
	if err != nil {
		logger.New().WithError(err).Debug("rejected bearer token")
		return 0
	}
	return id
}

// Middleware rejects unauthenticated requests and stores the user ID in the
// request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.authenticate(r)
		if userID == 0 {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID, or 0.
func UserIDFromContext(ctx context.Context) int {
	id, _ := ctx.Value(userIDKey).(int)
	return id
}

// GetUserIDFromSession returns the user ID of an authenticated request, or 0.
func GetUserIDFromSession(r *http.Request) int {
	return UserIDFromContext(r.Context())
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterHandler creates an account and logs it in.
func (m *Manager) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := m.users.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			response.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			response.Error(w, http.StatusConflict, err.Error())
		default:
			logger.New().WithError(err).Error("registration failed")
			response.Error(w, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	m.startSession(w, r, user, http.StatusCreated)
}

// LoginHandler checks credentials, sets the session cookie and returns a bearer token.
func (m *Manager) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := m.users.Authenticate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, services.ErrAccountDisabled):
			response.Error(w, http.StatusForbidden, err.Error())
		default:
			logger.New().WithError(err).Error("login failed")
			response.Error(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	m.startSession(w, r, user, http.StatusOK)
}

func (m *Manager) startSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	session, _ := m.store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	if err := session.Save(r, w); err != nil {
		logger.New().WithError(err).Warn("failed to save session cookie")
	}

	token, err := m.IssueToken(user)
	if err != nil {
		logger.New().WithError(err).Error("failed to sign token")
		response.Error(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	response.JSON(w, status, response.APIResponse{
		Success: true,
		Data:    authResponse{User: user, Token: token},
	})
}

// LogoutHandler clears the session cookie. Bearer tokens simply expire.
func (m *Manager) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := m.store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		logger.New().WithError(err).Warn("failed to clear session cookie")
	}
	response.Message(w, "Logged out")
}
