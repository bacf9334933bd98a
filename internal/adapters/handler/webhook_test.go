package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NinetySlide/BotForge/internal/adapters/repository"
	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/services"
)

const (
	testWebhookURL  = "http://bots.example.com/webhook/shop"
	testAppSecret   = "app-secret-1"
	testVerifyToken = "verify-token-1"
)

func setupHandler(t *testing.T, validate bool, handlers services.Handlers) *WebhookHandler {
	t.Helper()
	bc, err := domain.NewBotContext("page-1", "token-1", testAppSecret,
		testVerifyToken, testWebhookURL, validate)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	require.NoError(t, store.Add(context.Background(), bc))

	return NewWebhookHandler(services.NewDispatcher(store, handlers))
}

func sign(body []byte) string {
	mac := hmac.New(sha1.New, []byte(testAppSecret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestHandleVerify_Success(t *testing.T) {
	h := setupHandler(t, true, services.Handlers{})

	query := url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {testVerifyToken},
		"hub.challenge":    {"1158201444"},
	}
	req := httptest.NewRequest(http.MethodGet, testWebhookURL+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1158201444", rec.Body.String())
}

func TestHandleVerify_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"wrong token", url.Values{
			"hub.mode":         {"subscribe"},
			"hub.verify_token": {"wrong"},
			"hub.challenge":    {"123"},
		}},
		{"wrong mode", url.Values{
			"hub.mode":         {"unsubscribe"},
			"hub.verify_token": {testVerifyToken},
			"hub.challenge":    {"123"},
		}},
		{"missing challenge", url.Values{
			"hub.mode":         {"subscribe"},
			"hub.verify_token": {testVerifyToken},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupHandler(t, true, services.Handlers{})
			req := httptest.NewRequest(http.MethodGet, testWebhookURL+"?"+tt.query.Encode(), nil)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestHandleVerify_UnknownURL(t *testing.T) {
	h := setupHandler(t, true, services.Handlers{})

	req := httptest.NewRequest(http.MethodGet, "http://bots.example.com/webhook/other", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEvent_Success(t *testing.T) {
	var received []string
	h := setupHandler(t, true, services.Handlers{
		OnMessage: func(_ *domain.BotContext, msg domain.ReceivedMessage) {
			received = append(received, msg.Sender())
		},
	})

	body := []byte(`{"object":"page","entry":[{"id":"page-1","messaging":[{"sender":{"id":"user-1"},"recipient":{"id":"page-1"},"message":{"mid":"mid.1","text":"hi"}}]}]}`)
	req := httptest.NewRequest(http.MethodPost, testWebhookURL, bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature", sign(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	respBody, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "EVENT_RECEIVED", string(respBody))
	assert.Equal(t, []string{"user-1"}, received)
}

func TestHandleEvent_BadSignature(t *testing.T) {
	delivered := false
	h := setupHandler(t, true, services.Handlers{
		OnMessage: func(_ *domain.BotContext, _ domain.ReceivedMessage) {
			delivered = true
		},
	})

	body := []byte(`{"object":"page","entry":[{"id":"page-1","messaging":[{"sender":{"id":"user-1"},"recipient":{"id":"page-1"},"message":{"mid":"mid.1","text":"hi"}}]}]}`)
	req := httptest.NewRequest(http.MethodPost, testWebhookURL, bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature", "sha1=deadbeef")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, delivered)
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	h := setupHandler(t, false, services.Handlers{})

	body := []byte(`{"object":"page",`)
	req := httptest.NewRequest(http.MethodPost, testWebhookURL, bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEvent_UnknownURL(t *testing.T) {
	h := setupHandler(t, false, services.Handlers{})

	body := []byte(`{"object":"page","entry":[]}`)
	req := httptest.NewRequest(http.MethodPost, "http://bots.example.com/webhook/other", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEvent_ValidationDisabledSkipsSignature(t *testing.T) {
	delivered := false
	h := setupHandler(t, false, services.Handlers{
		OnMessage: func(_ *domain.BotContext, _ domain.ReceivedMessage) {
			delivered = true
		},
	})

	body := []byte(`{"object":"page","entry":[{"id":"page-1","messaging":[{"sender":{"id":"user-1"},"recipient":{"id":"page-1"},"message":{"mid":"mid.1","text":"hi"}}]}]}`)
	req := httptest.NewRequest(http.MethodPost, testWebhookURL, bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, delivered)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	h := setupHandler(t, false, services.Handlers{})

	req := httptest.NewRequest(http.MethodDelete, testWebhookURL, nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
