package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securehealth/record-exchange/internal/config"
	"github.com/securehealth/record-exchange/internal/model"
	"github.com/securehealth/record-exchange/internal/repository"
	"github.com/securehealth/record-exchange/internal/session"
)

type mockDirectory struct {
	GetByUsernameFunc func(ctx context.Context, username string) (*model.Hospital, error)
	GetByIDFunc       func(ctx context.Context, id string) (*model.Hospital, error)
}

func (m *mockDirectory) GetByUsername(ctx context.Context, username string) (*model.Hospital, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *mockDirectory) GetByID(ctx context.Context, id string) (*model.Hospital, error) {
	return m.GetByIDFunc(ctx, id)
}

func sessionRequest(t *testing.T, store session.Store, identity session.Identity) (echo.Context, *httptest.ResponseRecorder, string) {
	t.Helper()
	raw, err := store.Create(context.Background(), identity)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/hospital/session", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, raw
}

func TestSessionReportsHospitalDetails(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	dir := &mockDirectory{
		GetByIDFunc: func(_ context.Context, id string) (*model.Hospital, error) {
			assert.Equal(t, "h-1", id)
			return &model.Hospital{ID: "h-1", Name: "Hospital1", Username: "hospital1"}, nil
		},
	}
	h := NewHospitalHandler(config.Config{}, dir, store, nil)

	c, rec, _ := sessionRequest(t, store, session.Identity{HospitalID: "h-1", HospitalName: "Hospital1"})
	require.NoError(t, h.Session(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"authenticated":true`)
	assert.Contains(t, body, `"username":"hospital1"`)
}

func TestSessionDestroyedWhenHospitalGone(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	dir := &mockDirectory{
		GetByIDFunc: func(context.Context, string) (*model.Hospital, error) {
			return nil, repository.ErrNotFound
		},
	}
	h := NewHospitalHandler(config.Config{}, dir, store, nil)

	c, rec, raw := sessionRequest(t, store, session.Identity{HospitalID: "h-gone", HospitalName: "Closed"})
	require.NoError(t, h.Session(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	_, err := store.Get(context.Background(), raw)
	assert.ErrorIs(t, err, session.ErrNoSession, "orphaned session must be destroyed")
}

func TestSessionWithoutCookie(t *testing.T) {
	h := NewHospitalHandler(config.Config{}, &mockDirectory{}, session.NewMemoryStore(time.Hour), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/hospital/session", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Session(e.NewContext(req, rec)))

	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}
