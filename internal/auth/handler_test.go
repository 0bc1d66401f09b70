package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

type fakeUserStore struct {
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail:    make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (f *fakeUserStore) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byUsername[u.Username] = u
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, name, email, hashedPw string) (*models.User, error) {
	u := &models.User{ID: "new-id", Username: username, Name: name, Email: email, Password: hashedPw}
	f.add(u)
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNoUser
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, store.ErrNoUser
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNoUser
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func newTestHandler(users UserStore) *Handler {
	return NewHandler(users, nil, zap.NewNop().Sugar())
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHandler(newFakeUserStore())

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{"username":"bob"}`, "required fields"},
		{"bad email", `{"username":"bob","email":"not-an-email","password":"secret1"}`, "valid email"},
		{"short password", `{"username":"bob","email":"bob@example.com","password":"abc"}`, "at least 6 characters"},
		{"short username", `{"username":"ab","email":"bob@example.com","password":"secret1"}`, "at least 3 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(h.Register, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{ID: "u1", Username: "bob", Email: "bob@example.com"})
	h := newTestHandler(users)

	rec := postJSON(h.Register, `{"username":"bobby","email":"bob@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is already registered")

	rec = postJSON(h.Register, `{"username":"bob","email":"bob2@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username is already taken")
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := newFakeUserStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	users.add(&models.User{ID: "u1", Username: "bob", Email: "bob@example.com", Password: string(hash)})
	h := newTestHandler(users)

	rec := postJSON(h.Login, `{"email":"nobody@example.com","password":"whatever"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = postJSON(h.Login, `{"email":"bob@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = postJSON(h.Login, `{"email":"bob@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "both email and password")
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Equal(t, "", BearerToken(req))
}
