package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appSession "github.com/beamdrop/beamdrop/pkg/app/session"
	"github.com/beamdrop/beamdrop/pkg/domain/session"
	"github.com/beamdrop/beamdrop/pkg/infra/repository"
	"github.com/beamdrop/beamdrop/pkg/relay"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitFixture struct {
	app  *fiber.App
	repo session.Repository
	hub  *relay.Hub
}

func newSubmitFixture(queueDepth int) *submitFixture {
	logger := testLogger()
	repo := repository.NewMemorySessionRepository(10)
	hub := relay.NewHub(logger, queueDepth)
	handler := NewSubmitContentHandler(logger, appSession.NewFinder(repo, logger), hub)

	app := fiber.New()
	app.Post("/api/v1/sessions/:session_id/items", handler.Handle)
	return &submitFixture{app: app, repo: repo, hub: hub}
}

func (f *submitFixture) createSession(t *testing.T) string {
	t.Helper()
	id, err := session.GenerateID()
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), session.NewSession(id, 30*time.Minute)))
	return id
}

func TestSubmitContentHandlerJSON(t *testing.T) {
	f := newSubmitFixture(16)
	id := f.createSession(t)

	body, err := json.Marshal(map[string]string{"payload": "https://a.co"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result struct {
		ItemID string `json:"item_id"`
		Kind   string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.NotEmpty(t, result.ItemID)
	assert.Equal(t, "link", result.Kind)

	// The item is queued for the next subscriber.
	sub := f.hub.Attach(id)
	ev := <-sub.Events()
	assert.Equal(t, "https://a.co", ev.Content)
}

func TestSubmitContentHandlerRawText(t *testing.T) {
	f := newSubmitFixture(16)
	id := f.createSession(t)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("meeting notes"))
	req.Header.Set("Content-Type", "text/plain")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(respBody, &result))
	assert.Equal(t, "text", result.Kind)
}

func TestSubmitContentHandlerEmptyPayload(t *testing.T) {
	f := newSubmitFixture(16)
	id := f.createSession(t)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("   "))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitContentHandlerUnknownSession(t *testing.T) {
	f := newSubmitFixture(16)

	id, err := session.GenerateID()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("hello"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitContentHandlerExpiredSession(t *testing.T) {
	f := newSubmitFixture(16)

	id, err := session.GenerateID()
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), session.NewSession(id, 5*time.Millisecond)))
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("late"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)

	// No delivery occurs for an expired session.
	assert.Empty(t, f.hub.Sessions())
}

func TestSubmitContentHandlerBufferSurvivesLaterRequests(t *testing.T) {
	f := newSubmitFixture(16)
	idA := f.createSession(t)
	idB := f.createSession(t)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+idA+"/items", strings.NewReader("for-a"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// A second request recycles the pooled ctx whose buffers served the
	// first submission. The buffered item for A must stay reachable.
	req = httptest.NewRequest("POST", "/api/v1/sessions/"+idB+"/items", strings.NewReader("for-b"))
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	sub := f.hub.Attach(strings.Clone(idA))
	select {
	case ev := <-sub.Events():
		assert.Equal(t, "for-a", ev.Content)
	case <-time.After(time.Second):
		t.Fatal("buffered item lost after a later request reused the ctx")
	}
}

func TestSubmitContentHandlerQueueFull(t *testing.T) {
	f := newSubmitFixture(1)
	id := f.createSession(t)

	req := httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("one"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/v1/sessions/"+id+"/items", strings.NewReader("two"))
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
