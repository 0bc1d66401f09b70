package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

const maxAvatarBytes = 5 << 20 // 5MB

// UserStore defines the persistence interface for profile operations.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfileUpdate) (*models.User, error)
	SetAvatarKey(ctx context.Context, id, key string) (*models.User, error)
}

// FileStore defines the interface for avatar object storage.
type FileStore interface {
	UploadAvatar(ctx context.Context, userID, filename string, data []byte) (string, error)
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds profile HTTP handlers.
type Handler struct {
	users  UserStore
	files  FileStore
	logger *zap.SugaredLogger
}

func NewHandler(users UserStore, files FileStore, logger *zap.SugaredLogger) *Handler {
	return &Handler{users: users, files: files, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Profile handles GET /api/users/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUser) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching profile"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var patch models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		h.logger.Warnw("profile update failed", "user", userID, "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Error updating profile"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadImage handles POST /api/users/profile/image. The image lands in
// object storage; the user record keeps only the key.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "image too large or malformed form"})
		return
	}

	file, header, err := r.FormFile("profileImage")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No image file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "failed to read image"})
		return
	}

	key, err := h.files.UploadAvatar(r.Context(), userID, header.Filename, data)
	if err != nil {
		if errors.Is(err, store.ErrUnsupportedImage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Only image files are allowed!"})
			return
		}
		h.logger.Errorw("avatar upload failed", "user", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error uploading image"})
		return
	}

	// Drop the previous avatar, best-effort.
	if prev, err := h.users.GetUserByID(r.Context(), userID); err == nil && prev.Profile.AvatarKey != "" {
		h.files.Remove(r.Context(), prev.Profile.AvatarKey)
	}

	user, err := h.users.SetAvatarKey(r.Context(), userID, key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error uploading image"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Image handles GET /api/users/profile/image, streaming the caller's
// avatar from object storage.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil || user.Profile.AvatarKey == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no profile image"})
		return
	}

	data, contentType, err := h.files.Download(r.Context(), user.Profile.AvatarKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "download failed"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
