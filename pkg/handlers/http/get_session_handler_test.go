package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/beamdrop/beamdrop/pkg/infra/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGetSessionApp(repo session.Repository) *fiber.App {
	logger := testLogger()
	handler := NewGetSessionHandler(logger, appSession.NewFinder(repo, logger))

	app := fiber.New()
	app.Get("/api/v1/sessions/:session_id", handler.Handle)
	return app
}

func TestGetSessionHandler(t *testing.T) {
	repo := repository.NewMemorySessionRepository(10)
	app := newGetSessionApp(repo)

	id, err := session.GenerateID()
	require.NoError(t, err)
	s := session.NewSession(id, 30*time.Minute)
	require.NoError(t, repo.Save(context.Background(), s))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/"+id, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result struct {
		SessionID string `json:"session_id"`
		State     string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, id, result.SessionID)
	assert.Equal(t, "active", result.State)
}

func TestGetSessionHandlerNotFound(t *testing.T) {
	app := newGetSessionApp(repository.NewMemorySessionRepository(10))

	id, err := session.GenerateID()
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/"+id, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetSessionHandlerMalformedID(t *testing.T) {
	app := newGetSessionApp(repository.NewMemorySessionRepository(10))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/garbage", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetSessionHandlerExpired(t *testing.T) {
	repo := repository.NewMemorySessionRepository(10)
	app := newGetSessionApp(repo)

	id, err := session.GenerateID()
	require.NoError(t, err)
	s := session.NewSession(id, 5*time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), s))

	time.Sleep(10 * time.Millisecond)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sessions/"+id, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)
}
