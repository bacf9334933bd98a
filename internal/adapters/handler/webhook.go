// Package handler implements the inbound HTTP adapters: the webhook
// endpoint Facebook calls and a status endpoint for operators.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/NinetySlide/BotForge/internal/core/ports"
	"github.com/NinetySlide/BotForge/internal/core/services"
)

// signatureHeader carries the HMAC of the request body, in the form
// "sha1=<hex>".
const signatureHeader = "X-Hub-Signature"

// WebhookHandler terminates the webhook HTTP exchange: it resolves the bot
// context for the request, runs the verification handshake on GET and hands
// event batches to the dispatcher on POST. One handler instance serves every
// registered bot.
type WebhookHandler struct {
	dispatcher *services.Dispatcher
}

// NewWebhookHandler creates a webhook handler backed by the dispatcher.
func NewWebhookHandler(dispatcher *services.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// ServeHTTP routes by method: GET runs the verification handshake, POST
// processes an event batch. Anything else is rejected.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.HandleVerify(w, r)
	case http.MethodPost:
		h.HandleEvent(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// HandleVerify answers the verification handshake Facebook performs when the
// webhook is registered: echo hub.challenge when hub.mode is "subscribe" and
// hub.verify_token matches the bot's token, 403 otherwise.
// Ref: https://developers.facebook.com/docs/messenger-platform/webhooks#verification
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	bc, err := h.dispatcher.ResolveContext(r.Context(), "", requestURL(r))
	if err != nil {
		h.writeResolveError(w, r, err)
		return
	}

	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode == "subscribe" && token == bc.VerifyToken() && challenge != "" {
		slog.Info("webhook verification successful", "page_id", bc.PageID())
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	slog.Warn("webhook verification failed",
		"page_id", bc.PageID(),
		"mode", mode,
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleEvent processes one event batch. The batch is dispatched
// synchronously so that the response code reflects the outcome: 200 after
// every event is delivered, 400 for a bad signature or malformed payload,
// 404 when no bot context matches the request.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read webhook body", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	bc, err := h.dispatcher.ResolveContext(r.Context(), "", requestURL(r))
	if err != nil {
		h.writeResolveError(w, r, err)
		return
	}

	signature := r.Header.Get(signatureHeader)
	if err := h.dispatcher.Dispatch(r.Context(), bc, signature, body); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature),
			errors.Is(err, services.ErrMalformedPayload):
			http.Error(w, "Bad Request", http.StatusBadRequest)
		default:
			slog.Error("webhook dispatch failed",
				"page_id", bc.PageID(),
				"error", err,
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}

func (h *WebhookHandler) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrContextNotFound) {
		slog.Warn("no bot context for webhook request", "url", requestURL(r))
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	slog.Error("bot context lookup failed", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// requestURL reconstructs the externally visible URL of the request, which
// is the lookup key bots register their webhook under. The query string is
// excluded: the handshake parameters are not part of the registered URL.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
