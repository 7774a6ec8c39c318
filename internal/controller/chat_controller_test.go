package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-chat-be/internal/dto"
	"paper-chat-be/internal/pkg/serverutils"
)

type stubChatService struct {
	events      []dto.ChatStreamEvent
	err         error
	clearResult bool

	gotSession string
	gotPaper   string
	gotMessage string
	gotIP      string
}

func (s *stubChatService) StreamChat(_ context.Context, sessionID, paperID, message, clientIP string) (<-chan dto.ChatStreamEvent, error) {
	s.gotSession = sessionID
	s.gotPaper = paperID
	s.gotMessage = message
	s.gotIP = clientIP
	if s.err != nil {
		return nil, s.err
	}

	ch := make(chan dto.ChatStreamEvent, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (s *stubChatService) ClearConversation(_ context.Context, sessionID, paperID string) bool {
	s.gotSession = sessionID
	s.gotPaper = paperID
	return s.clearResult
}

func newChatTestApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func postChat(t *testing.T, app *fiber.App, paperID, body string, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/papers/"+paperID+"/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: serverutils.SessionCookieName, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSendMessageStreamsEvents(t *testing.T) {
	remaining, count := 19, 2
	svc := &stubChatService{events: []dto.ChatStreamEvent{
		dto.NewChunkEvent("Hello"),
		dto.NewChunkEvent(" world"),
		{Type: dto.StreamEventComplete, RemainingMessages: &remaining, MessageCount: &count},
	}}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{"message": "What is this about?"}`, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	frames := strings.Split(strings.TrimSpace(string(body)), "\n\n")
	require.Len(t, frames, 3)
	assert.Equal(t, `data: {"type":"chat_chunk","content":"Hello"}`, frames[0])
	assert.Equal(t, `data: {"type":"chat_chunk","content":" world"}`, frames[1])
	assert.Contains(t, frames[2], `"type":"chat_complete"`)
	assert.Contains(t, frames[2], `"remaining_messages":19`)
	assert.Contains(t, frames[2], `"message_count":2`)

	assert.Equal(t, "smith2023", svc.gotPaper)
	assert.Equal(t, "What is this about?", svc.gotMessage)
}

func TestSendMessageMintsSessionCookie(t *testing.T) {
	svc := &stubChatService{events: []dto.ChatStreamEvent{dto.NewChunkEvent("hi")}}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{"message": "hi"}`, "")
	defer resp.Body.Close()

	var minted *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == serverutils.SessionCookieName {
			minted = c
		}
	}
	require.NotNil(t, minted, "first request must set the session cookie")
	assert.True(t, minted.HttpOnly)
	assert.NotEmpty(t, minted.Value)
	assert.Equal(t, minted.Value, svc.gotSession)
}

func TestSendMessageReusesSessionCookie(t *testing.T) {
	svc := &stubChatService{events: []dto.ChatStreamEvent{dto.NewChunkEvent("hi")}}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{"message": "hi"}`, "existing-session-token")
	defer resp.Body.Close()

	assert.Equal(t, "existing-session-token", svc.gotSession)
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, serverutils.SessionCookieName, c.Name, "no new cookie when one is presented")
	}
}

func TestSendMessageInvalidJSON(t *testing.T) {
	svc := &stubChatService{}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{not json`, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, serverutils.ErrKindBadRequest, body["kind"])
}

func TestSendMessageMissingField(t *testing.T) {
	svc := &stubChatService{}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{}`, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.gotPaper, "service must not be called for an invalid body")
}

func TestSendMessageRejectionRendersAsJSON(t *testing.T) {
	svc := &stubChatService{err: serverutils.NewAppError(
		fiber.StatusTooManyRequests,
		serverutils.ErrKindRateLimited,
		"Rate limit reached. Please try again later.",
	).WithDetails(map[string]interface{}{"reset_at": "2026-08-31T12:00:00Z"})}
	app := newChatTestApp(svc)

	resp := postChat(t, app, "smith2023", `{"message": "hi"}`, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, serverutils.ErrKindRateLimited, body["kind"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-08-31T12:00:00Z", details["reset_at"])
}

func TestClearConversationResponses(t *testing.T) {
	svc := &stubChatService{clearResult: true}
	app := newChatTestApp(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/papers/smith2023/chat", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Conversation cleared", body["message"])
	assert.Equal(t, "smith2023", svc.gotPaper)

	svc.clearResult = false
	req = httptest.NewRequest(http.MethodDelete, "/api/papers/smith2023/chat", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Nothing to clear", body["message"])
}
