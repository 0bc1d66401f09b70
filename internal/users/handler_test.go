package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNoUser
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id string, patch models.ProfileUpdate) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNoUser
	}
	patch.Apply(u)
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SetAvatarKey(_ context.Context, id, key string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNoUser
	}
	u.Profile.AvatarKey = key
	cp := *u
	return &cp, nil
}

type fakeFileStore struct {
	objects map[string][]byte
	removed []string
	seq     int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: map[string][]byte{}}
}

func (s *fakeFileStore) UploadAvatar(_ context.Context, userID, filename string, data []byte) (string, error) {
	if _, ok := store.AvatarContentType(filename); !ok {
		return "", store.ErrUnsupportedImage
	}
	s.seq++
	key := fmt.Sprintf("avatars/%s/%d-%s", userID, s.seq, filename)
	s.objects[key] = data
	return key, nil
}

func (s *fakeFileStore) Download(_ context.Context, key string) ([]byte, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("no such object: %s", key)
	}
	return data, "image/png", nil
}

func (s *fakeFileStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func testUser() *models.User {
	return &models.User{
		ID:          "u1",
		Username:    "alice",
		Name:        "Alice",
		Email:       "alice@example.com",
		Role:        "user",
		Profile:     models.Profile{Bio: "hello", Location: "Berlin"},
		Preferences: models.DefaultPreferences(),
	}
}

func newTestHandler(users UserStore, files FileStore) *Handler {
	return NewHandler(users, files, zap.NewNop().Sugar())
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "user_id", userID))
}

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProfileUnknownUser(t *testing.T) {
	h := newTestHandler(newFakeUserStore(), newFakeFileStore())

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), "ghost")
	rec := httptest.NewRecorder()
	h.Profile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	us := newFakeUserStore(testUser())
	h := newTestHandler(us, newFakeFileStore())

	body := `{"bio":"new bio","phone":"555-0100"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/users/profile", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new bio", got.Profile.Bio)
	assert.Equal(t, "555-0100", got.Profile.Phone)

	// Fields absent from the body keep their stored values.
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Berlin", got.Profile.Location)
	assert.Equal(t, models.DefaultPreferences(), got.Preferences)
}

func TestUpdateProfileClearsField(t *testing.T) {
	us := newFakeUserStore(testUser())
	h := newTestHandler(us, newFakeFileStore())

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/users/profile", strings.NewReader(`{"bio":""}`)), "u1")
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Profile.Bio)
	assert.Equal(t, "Berlin", got.Profile.Location)
}

func TestUploadImage(t *testing.T) {
	us := newFakeUserStore(testUser())
	fs := newFakeFileStore()
	h := newTestHandler(us, fs)

	buf, contentType := multipartImage(t, "profileImage", "me.png", []byte("png bytes"))
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/users/profile/image", buf), "u1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, strings.HasPrefix(got.Profile.AvatarKey, "avatars/u1/"), got.Profile.AvatarKey)
	assert.Contains(t, fs.objects, got.Profile.AvatarKey)
	assert.Empty(t, fs.removed)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	u := testUser()
	u.Profile.AvatarKey = "avatars/u1/0-old.png"
	us := newFakeUserStore(u)
	fs := newFakeFileStore()
	fs.objects[u.Profile.AvatarKey] = []byte("old")
	h := newTestHandler(us, fs)

	buf, contentType := multipartImage(t, "profileImage", "new.jpg", []byte("jpg bytes"))
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/users/profile/image", buf), "u1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"avatars/u1/0-old.png"}, fs.removed)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEqual(t, "avatars/u1/0-old.png", got.Profile.AvatarKey)
	assert.Contains(t, fs.objects, got.Profile.AvatarKey)
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	us := newFakeUserStore(testUser())
	fs := newFakeFileStore()
	h := newTestHandler(us, fs)

	buf, contentType := multipartImage(t, "profileImage", "resume.pdf", []byte("%PDF"))
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/users/profile/image", buf), "u1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only image files are allowed!")
	assert.Empty(t, fs.objects)
}

func TestUploadImageRejectsOversizedBody(t *testing.T) {
	us := newFakeUserStore(testUser())
	fs := newFakeFileStore()
	h := newTestHandler(us, fs)

	big := bytes.Repeat([]byte("x"), maxAvatarBytes+1024)
	buf, contentType := multipartImage(t, "profileImage", "huge.png", big)
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/users/profile/image", buf), "u1")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fs.objects)
}

func TestUploadImageRequiresFile(t *testing.T) {
	us := newFakeUserStore(testUser())
	h := newTestHandler(us, newFakeFileStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "not a file"))
	require.NoError(t, mw.Close())

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/users/profile/image", &buf), "u1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No image file provided")
}

func TestImageStreamsAvatar(t *testing.T) {
	u := testUser()
	u.Profile.AvatarKey = "avatars/u1/1-me.png"
	us := newFakeUserStore(u)
	fs := newFakeFileStore()
	fs.objects[u.Profile.AvatarKey] = []byte("png bytes")
	h := newTestHandler(us, fs)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile/image", nil), "u1")
	rec := httptest.NewRecorder()
	h.Image(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png bytes", rec.Body.String())
}

func TestImageMissingAvatar(t *testing.T) {
	h := newTestHandler(newFakeUserStore(testUser()), newFakeFileStore())

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile/image", nil), "u1")
	rec := httptest.NewRecorder()
	h.Image(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
