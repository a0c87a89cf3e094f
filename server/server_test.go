package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/store"
)

func newMemoryStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s, err := store.NewMemoryStore()
	require.NoError(t, err)
	return s
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewWithStore(context.Background(), newMemoryStore(t), Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, srv *Server, username string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/register", "", map[string]string{
		"username": username,
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, username, resp.Username)
	assert.Len(t, resp.Token, 64)
	return resp.Token
}

func createProject(t *testing.T, srv *Server, token string, body map[string]any) model.Project {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/register", "", map[string]string{
		"username": "alice", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_exists")

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/register", "", map[string]string{
		"username": "bob", "password": "a", "confirm": "b",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestRegisterLongPassword(t *testing.T) {
	srv := newTestServer(t)
	long := strings.Repeat("p", 100)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/register", "", map[string]string{
		"username": "carol", "password": long,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": "carol", "password": long,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects", "nope", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	p := createProject(t, srv, token, map[string]any{
		"title":       "Thesis",
		"description": "Write it",
		"category":    "education",
		"date":        "2025-03-01",
		"progress":    10,
	})
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "alice", p.CreatedBy)
	assert.True(t, p.IsEditable)
	assert.Equal(t, 2025, p.Date.Year())

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/projects/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/v1/projects/"+p.ID, token, map[string]any{
		"title":    "Thesis v2",
		"progress": 55,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Thesis v2", updated.Title)
	assert.Equal(t, "Write it", updated.Description)
	assert.Equal(t, 55.0, updated.Progress)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list projectListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Thesis v2", list.Projects[0].Title)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/projects/"+p.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects/"+p.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProjectValidation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"title": " "}},
		{"progress too high", map[string]any{"title": "x", "progress": 101}},
		{"negative progress", map[string]any{"title": "x", "progress": -1}},
		{"bad date", map[string]any{"title": "x", "date": "March"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/projects", token, nil)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestOnlyCreatorModifies(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice")
	bob := register(t, srv, "bob")

	p := createProject(t, srv, alice, map[string]any{"title": "Garden"})

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/projects/"+p.ID, bob, map[string]any{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/projects/"+p.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// bob still sees it in the shared list but not under ?mine
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects", bob, nil)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects?mine=true", bob, nil)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestLockedProject(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice")

	p := createProject(t, srv, token, map[string]any{"title": "Frozen", "is_editable": false})
	assert.False(t, p.IsEditable)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/projects/"+p.ID, token, map[string]any{"progress": 20})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/projects/"+p.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshPicksUpStoreChanges(t *testing.T) {
	s := newMemoryStore(t)
	srv, err := NewWithStore(context.Background(), s, Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	token := register(t, srv, "alice")

	p, err := model.NewProject("Outside", "", "carol", true, "travel", time.Now(), 0)
	require.NoError(t, err)
	require.NoError(t, store.WithTx(context.Background(), s, func(tx store.Tx) error {
		return tx.InsertProject(context.Background(), p)
	}))

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/projects", token, nil)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/projects/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Outside")
}

func TestMemorySessionsExpire(t *testing.T) {
	m := NewMemorySessions()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	s, err := m.Create(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	got, err := m.Get(context.Background(), s.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	now = now.Add(2 * time.Hour)
	_, err = m.Get(context.Background(), s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionsSweepOnCreate(t *testing.T) {
	m := NewMemorySessions()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Create(ctx, "alice", time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, m.Len())

	now = now.Add(time.Hour)
	fresh, err := m.Create(ctx, "bob", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ctx, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
}

func TestRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := NewRedisSessions(client)
	t.Cleanup(func() { _ = sessions.Close() })
	ctx := context.Background()

	s, err := sessions.Create(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(sessionKeyPrefix+s.Token))

	got, err := sessions.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	mr.FastForward(2 * time.Minute)
	_, err = sessions.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s, err = sessions.Create(ctx, "alice", time.Minute)
	require.NoError(t, err)
	require.NoError(t, sessions.Delete(ctx, s.Token))
	_, err = sessions.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpenRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)

	sessions, err := OpenRedisSessions(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, sessions.Close())

	_, err = OpenRedisSessions(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestServerWithRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	sessions := NewRedisSessions(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	srv, err := NewWithStore(context.Background(), newMemoryStore(t), Options{
		Sessions:   sessions,
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	token := register(t, srv, "alice")
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.FastForward(2 * time.Hour)
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
