// Package gateway implements the outbound adapter for the Messenger Send API
// and the user profile endpoint of the Graph API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

// Misuse errors. These report a broken call, never a failed delivery;
// delivery outcomes are carried in the SendResult.
var (
	ErrNilContext   = errors.New("gateway: bot context is nil")
	ErrNilMessage   = errors.New("gateway: outgoing message is nil")
	ErrNilRecipient = errors.New("gateway: recipient is nil")
)

const defaultBaseURL = "https://graph.facebook.com/v2.6"

// Option customizes a SendGateway.
type Option func(*SendGateway)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(t ports.HTTPTransport) Option {
	return func(g *SendGateway) { g.transport = t }
}

// WithBaseURL replaces the Graph API base URL, without a trailing slash.
func WithBaseURL(base string) Option {
	return func(g *SendGateway) { g.baseURL = base }
}

// SendGateway delivers outgoing messages to the Send API. It is stateless
// apart from its transport and safe for concurrent use; the page access
// token comes from the bot context passed to each call, so one gateway
// serves any number of pages.
type SendGateway struct {
	transport ports.HTTPTransport
	baseURL   string
}

// NewSendGateway creates a gateway with a 10 second request timeout unless
// overridden through WithTransport.
func NewSendGateway(opts ...Option) *SendGateway {
	g := &SendGateway{
		transport: &http.Client{Timeout: 10 * time.Second},
		baseURL:   defaultBaseURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// graphResponse is the union of the success and error bodies the Send API
// returns. Exactly one side is populated.
type graphResponse struct {
	RecipientID string                `json:"recipient_id"`
	MessageID   string                `json:"message_id"`
	Error       *domain.PlatformError `json:"error"`
}

// Send delivers one message to one recipient and classifies the outcome.
// The returned error reports misuse only (nil arguments, a message that
// cannot be serialized); delivery failures, platform rejections included,
// come back as a SendResult with a non-nil Error. The recipient is assigned
// to the message for the duration of the call, so the same built message can
// be reused across recipients.
func (g *SendGateway) Send(ctx context.Context, bc *domain.BotContext, msg *domain.OutgoingMessage, recipient *domain.Recipient) (domain.SendResult, error) {
	switch {
	case bc == nil:
		return domain.SendResult{}, ErrNilContext
	case msg == nil:
		return domain.SendResult{}, ErrNilMessage
	case recipient == nil:
		return domain.SendResult{}, ErrNilRecipient
	}

	msg.SetRecipient(recipient)
	body, err := json.Marshal(msg)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("gateway: marshal message: %w", err)
	}

	endpoint := g.baseURL + "/me/messages?" + url.Values{
		"access_token": {bc.PageAccessToken()},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.transport.Do(req)
	if err != nil {
		slog.Error("send request failed",
			"page_id", bc.PageID(),
			"message_type", msg.Type(),
			"error", err,
		)
		return domain.NetworkFailure(), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NetworkFailure(), nil
	}

	var graph graphResponse
	if err := json.Unmarshal(respBody, &graph); err != nil {
		slog.Error("unparseable send response",
			"page_id", bc.PageID(),
			"status_code", resp.StatusCode,
		)
		return domain.NetworkFailure(), nil
	}

	if graph.Error != nil {
		slog.Warn("send rejected by platform",
			"page_id", bc.PageID(),
			"error_code", graph.Error.Code,
			"error_type", graph.Error.Type,
			"fbtrace_id", graph.Error.TraceID,
		)
		return domain.SendResult{
			Status: domain.SendPlatformError,
			Error:  graph.Error,
		}, nil
	}

	slog.Debug("message sent",
		"page_id", bc.PageID(),
		"message_type", msg.Type(),
		"message_id", graph.MessageID,
	)

	return domain.SendResult{
		Status:      domain.SendSuccess,
		RecipientID: graph.RecipientID,
		MessageID:   graph.MessageID,
	}, nil
}

// SendAll delivers one message to each recipient, strictly in order and one
// at a time. The result slice is positional: results[i] is the outcome for
// recipients[i]. A failed send does not stop the remaining ones.
func (g *SendGateway) SendAll(ctx context.Context, bc *domain.BotContext, msg *domain.OutgoingMessage, recipients []*domain.Recipient) ([]domain.SendResult, error) {
	results := make([]domain.SendResult, 0, len(recipients))
	for _, r := range recipients {
		res, err := g.Send(ctx, bc, msg, r)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SendText builds and sends a plain text message in one call. The text is
// subject to the usual length limit.
func (g *SendGateway) SendText(ctx context.Context, bc *domain.BotContext, recipientID, text string) (domain.SendResult, error) {
	b := domain.NewMessageBuilder(domain.OutgoingText)
	if err := b.SetText(text, false); err != nil {
		return domain.SendResult{}, err
	}
	return g.buildAndSend(ctx, bc, recipientID, b)
}

// SendImage builds and sends an image message in one call.
func (g *SendGateway) SendImage(ctx context.Context, bc *domain.BotContext, recipientID, imageURL string) (domain.SendResult, error) {
	return g.sendMedia(ctx, bc, recipientID, domain.OutgoingImage, imageURL)
}

// SendAudio builds and sends an audio message in one call.
func (g *SendGateway) SendAudio(ctx context.Context, bc *domain.BotContext, recipientID, audioURL string) (domain.SendResult, error) {
	return g.sendMedia(ctx, bc, recipientID, domain.OutgoingAudio, audioURL)
}

// SendVideo builds and sends a video message in one call.
func (g *SendGateway) SendVideo(ctx context.Context, bc *domain.BotContext, recipientID, videoURL string) (domain.SendResult, error) {
	return g.sendMedia(ctx, bc, recipientID, domain.OutgoingVideo, videoURL)
}

// SendFile builds and sends a file message in one call.
func (g *SendGateway) SendFile(ctx context.Context, bc *domain.BotContext, recipientID, fileURL string) (domain.SendResult, error) {
	return g.sendMedia(ctx, bc, recipientID, domain.OutgoingFile, fileURL)
}

// SendAction sends a sender action such as a typing indicator or read
// marker.
func (g *SendGateway) SendAction(ctx context.Context, bc *domain.BotContext, recipientID string, action domain.SenderAction) (domain.SendResult, error) {
	b := domain.NewMessageBuilder(domain.OutgoingSenderAction)
	if err := b.SetSenderAction(action); err != nil {
		return domain.SendResult{}, err
	}
	return g.buildAndSend(ctx, bc, recipientID, b)
}

// SendTextAll sends the same text message to each recipient ID, in order.
func (g *SendGateway) SendTextAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, text string) ([]domain.SendResult, error) {
	b := domain.NewMessageBuilder(domain.OutgoingText)
	if err := b.SetText(text, false); err != nil {
		return nil, err
	}
	return g.buildAndSendAll(ctx, bc, recipientIDs, b)
}

// SendImageAll sends the same image message to each recipient ID, in order.
func (g *SendGateway) SendImageAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, imageURL string) ([]domain.SendResult, error) {
	return g.sendMediaAll(ctx, bc, recipientIDs, domain.OutgoingImage, imageURL)
}

// SendAudioAll sends the same audio message to each recipient ID, in order.
func (g *SendGateway) SendAudioAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, audioURL string) ([]domain.SendResult, error) {
	return g.sendMediaAll(ctx, bc, recipientIDs, domain.OutgoingAudio, audioURL)
}

// SendVideoAll sends the same video message to each recipient ID, in order.
func (g *SendGateway) SendVideoAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, videoURL string) ([]domain.SendResult, error) {
	return g.sendMediaAll(ctx, bc, recipientIDs, domain.OutgoingVideo, videoURL)
}

// SendFileAll sends the same file message to each recipient ID, in order.
func (g *SendGateway) SendFileAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, fileURL string) ([]domain.SendResult, error) {
	return g.sendMediaAll(ctx, bc, recipientIDs, domain.OutgoingFile, fileURL)
}

// SendActionAll sends a sender action to each recipient ID, in order.
func (g *SendGateway) SendActionAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, action domain.SenderAction) ([]domain.SendResult, error) {
	b := domain.NewMessageBuilder(domain.OutgoingSenderAction)
	if err := b.SetSenderAction(action); err != nil {
		return nil, err
	}
	return g.buildAndSendAll(ctx, bc, recipientIDs, b)
}

func (g *SendGateway) mediaBuilder(t domain.OutgoingType, mediaURL string) (*domain.MessageBuilder, error) {
	b := domain.NewMessageBuilder(t)
	if err := b.SetMediaURL(mediaURL); err != nil {
		return nil, err
	}
	return b, nil
}

func (g *SendGateway) sendMedia(ctx context.Context, bc *domain.BotContext, recipientID string, t domain.OutgoingType, mediaURL string) (domain.SendResult, error) {
	b, err := g.mediaBuilder(t, mediaURL)
	if err != nil {
		return domain.SendResult{}, err
	}
	return g.buildAndSend(ctx, bc, recipientID, b)
}

func (g *SendGateway) sendMediaAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, t domain.OutgoingType, mediaURL string) ([]domain.SendResult, error) {
	b, err := g.mediaBuilder(t, mediaURL)
	if err != nil {
		return nil, err
	}
	return g.buildAndSendAll(ctx, bc, recipientIDs, b)
}

func (g *SendGateway) buildAndSend(ctx context.Context, bc *domain.BotContext, recipientID string, b *domain.MessageBuilder) (domain.SendResult, error) {
	msg, err := b.Build()
	if err != nil {
		return domain.SendResult{}, err
	}
	recipient, err := domain.IDRecipient(recipientID)
	if err != nil {
		return domain.SendResult{}, err
	}
	return g.Send(ctx, bc, msg, recipient)
}

func (g *SendGateway) buildAndSendAll(ctx context.Context, bc *domain.BotContext, recipientIDs []string, b *domain.MessageBuilder) ([]domain.SendResult, error) {
	msg, err := b.Build()
	if err != nil {
		return nil, err
	}
	recipients := make([]*domain.Recipient, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		r, err := domain.IDRecipient(id)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return g.SendAll(ctx, bc, msg, recipients)
}
