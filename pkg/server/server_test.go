package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hopebridge/shiftcover/internal/config"
	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/subrequest"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

// stubStores overrides only the methods each test exercises; calls to
// anything else panic through the nil embedded interface.
type stubStores struct {
	Stores
	users map[string]model.User
	prefs []model.AvailabilityPreference
}

func (s *stubStores) GetUser(ctx context.Context, id string) (model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return model.User{}, db.ErrNotFound
	}
	return user, nil
}

func (s *stubStores) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, db.ErrNotFound
}

func (s *stubStores) UpsertPreference(ctx context.Context, pref model.AvailabilityPreference) error {
	s.prefs = append(s.prefs, pref)
	return nil
}

func newTestServer(t *testing.T, stores Stores) *Server {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{CentreName: "Hope Bridge", DefaultShiftSize: 2}
	srv, err := New(cfg, stores, notify.NewHub(logger), logger, "test-session-key")
	require.NoError(t, err)
	return srv
}

func activeUser(password string) model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return model.User{
		ID:           "user-1",
		FirstName:    "Rae",
		LastName:     "Quinn",
		Email:        "rae@example.org",
		Role:         model.RoleWorker,
		Status:       "active",
		PasswordHash: string(hash),
	}
}

func TestLoginAndMe(t *testing.T) {
	user := activeUser("correct horse")
	srv := newTestServer(t, &stubStores{users: map[string]model.User{user.ID: user}})
	router := srv.Router()

	// Wrong password
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("POST", "/login",
		strings.NewReader(`{"email":"rae@example.org","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Correct password sets a session cookie
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("POST", "/login",
		strings.NewReader(`{"email":"rae@example.org","password":"correct horse"}`)))
	require.Equal(t, http.StatusOK, resp.Code)
	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The cookie authenticates /api/me
	req := httptest.NewRequest("GET", "/api/me", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Rae Quinn")
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	srv := newTestServer(t, &stubStores{users: map[string]model.User{}})

	resp := httptest.NewRecorder()
	srv.Router().ServeHTTP(resp, httptest.NewRequest("GET", "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSetAvailability(t *testing.T) {
	user := activeUser("correct horse")
	stores := &stubStores{users: map[string]model.User{user.ID: user}}
	srv := newTestServer(t, stores)
	router := srv.Router()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("POST", "/login",
		strings.NewReader(`{"email":"rae@example.org","password":"correct horse"}`)))
	require.Equal(t, http.StatusOK, resp.Code)
	cookies := resp.Result().Cookies()

	authedPost := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/availability", strings.NewReader(body))
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	// An unknown level is rejected before the store is touched
	resp = authedPost(`{"shiftRecurrenceID":"rec-tue","level":"never"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, stores.prefs)

	// A generic preference lands against the session user
	resp = authedPost(`{"shiftRecurrenceID":"rec-tue","level":"usually"}`)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Len(t, stores.prefs, 1)
	assert.Equal(t, user.ID, stores.prefs[0].UserID)
	assert.Equal(t, model.AvailabilityUsually, stores.prefs[0].Level)
	assert.Nil(t, stores.prefs[0].Date)

	// A dated preference keeps its date
	resp = authedPost(`{"shiftRecurrenceID":"rec-tue","date":"2025-06-03","level":"maybe"}`)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Len(t, stores.prefs, 2)
	require.NotNil(t, stores.prefs[1].Date)
	assert.Equal(t, "2025-06-03", *stores.prefs[1].Date)
}

func TestWriteServiceError_StatusMapping(t *testing.T) {
	srv := newTestServer(t, &stubStores{})

	tests := []struct {
		err    error
		status int
	}{
		{subrequest.ErrForbidden, http.StatusForbidden},
		{db.ErrNotFound, http.StatusNotFound},
		{subrequest.ErrRequestNotOpen, http.StatusConflict},
		{subrequest.ErrNotAwaitingNomination, http.StatusConflict},
		{subrequest.ErrNotReopenable, http.StatusConflict},
		{subrequest.ErrNoOfferedVolunteer, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", subrequest.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		resp := httptest.NewRecorder()
		srv.writeServiceError(resp, tt.err)
		assert.Equal(t, tt.status, resp.Code, "error %v", tt.err)
	}
}
