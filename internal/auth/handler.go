package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, name, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions *SessionStore
	logger   *zap.SugaredLogger
}

func NewHandler(users UserStore, sessions *SessionStore, logger *zap.SugaredLogger) *Handler {
	return &Handler{users: users, sessions: sessions, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// userSummary is the trimmed user shape returned with tokens.
func userSummary(u *models.User) map[string]string {
	return map[string]string{
		"id":       u.ID,
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
	}
}

func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, userID string) (string, error) {
	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
	return token, nil
}

// Register creates a new user. Email and username uniqueness get
// distinct error messages; registration is the one place existence is
// allowed to leak.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Please provide all required fields: username, email, and password",
		})
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please provide a valid email address"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Password must be at least 6 characters long"})
		return
	}
	if len(req.Username) < 3 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username must be at least 3 characters long"})
		return
	}
	if req.Name == "" {
		req.Name = req.Username
	}

	if existing, err := h.users.GetUserByEmail(r.Context(), req.Email); err == nil && existing != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email is already registered"})
		return
	}
	if existing, err := h.users.GetUserByUsername(r.Context(), req.Username); err == nil && existing != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Username is already taken"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Name, req.Email, string(hashed))
	if err != nil {
		h.logger.Errorw("create user failed", "email", req.Email, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Server error during registration. Please try again.",
		})
		return
	}

	token, err := h.issueSession(w, r, user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "session creation failed"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":   token,
		"user":    userSummary(user),
		"message": "Registration successful",
	})
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Please provide both email and password"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		return
	}

	token, err := h.issueSession(w, r, user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "session creation failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userSummary(user),
	})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.sessions.Delete(r.Context(), cookie.Value)
	} else if token := BearerToken(r); token != "" {
		h.sessions.Delete(r.Context(), token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUser) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error while fetching user data"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Verify confirms the session token and returns the trimmed user shape.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userSummary(user)})
}

// BearerToken extracts a session token from the Authorization header,
// or "" when absent.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
