// Package services contains the core processing logic: webhook signature
// verification and the dispatch pipeline that turns a raw event batch into
// typed incoming events delivered to the host's handlers.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NinetySlide/BotForge/internal/adapters/dto"
	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

// Failures reported to the HTTP layer. The handler maps ErrInvalidSignature
// and ErrMalformedPayload to 400 and ports.ErrContextNotFound to 404.
var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedPayload = errors.New("webhook payload is malformed")
)

// Handlers holds the host-supplied callbacks, one per incoming event kind.
// A nil callback means the event is ignored. Echoed messages (sent by the
// bot itself and delivered back for observability) are routed to OnMessageEcho
// instead of OnMessage. Handlers run synchronously and in batch order, so a
// slow handler slows down the whole request.
type Handlers struct {
	OnMessage        func(*domain.BotContext, domain.ReceivedMessage)
	OnMessageEcho    func(*domain.BotContext, domain.ReceivedMessage)
	OnPostback       func(*domain.BotContext, *domain.Postback)
	OnOptin          func(*domain.BotContext, *domain.Optin)
	OnAccountLinking func(*domain.BotContext, *domain.AccountLinking)
	OnDelivery       func(*domain.BotContext, *domain.DeliveryReceipt)
	OnRead           func(*domain.BotContext, *domain.ReadReceipt)
}

// Dispatcher processes one inbound webhook batch per call: it authenticates
// the request against the resolved bot context, decodes the batch and routes
// each event to its handler, strictly in delivery order. No state is retained
// between requests.
type Dispatcher struct {
	store    ports.ContextStore
	handlers Handlers
}

// NewDispatcher creates a dispatcher backed by the given context store,
// delivering events to the given handlers.
func NewDispatcher(store ports.ContextStore, handlers Handlers) *Dispatcher {
	return &Dispatcher{store: store, handlers: handlers}
}

// ResolveContext looks up the bot context for a request, keyed first by page
// ID and falling back to the webhook URL. Either key may be empty. Returns
// ports.ErrContextNotFound when neither key resolves.
func (d *Dispatcher) ResolveContext(ctx context.Context, pageID, webhookURL string) (*domain.BotContext, error) {
	if pageID != "" {
		if bc, err := d.store.Get(ctx, pageID); err == nil {
			return bc, nil
		} else if !errors.Is(err, ports.ErrContextNotFound) {
			return nil, err
		}
	}
	if webhookURL != "" {
		return d.store.Get(ctx, webhookURL)
	}
	return nil, ports.ErrContextNotFound
}

// Dispatch authenticates and processes one webhook batch. If the context has
// callback validation enabled and the signature does not match, processing
// aborts with ErrInvalidSignature before any event is delivered. A message
// sub-object with neither text nor attachments aborts the whole batch with
// ErrMalformedPayload; events already delivered stay delivered, the platform
// redelivers the batch. Unrecognized messaging objects are skipped silently.
func (d *Dispatcher) Dispatch(ctx context.Context, bc *domain.BotContext, signature string, body []byte) error {
	if bc.ValidatesCallbacks() && !VerifySignature(body, signature, bc.AppSecretKey()) {
		slog.Warn("webhook signature verification failed",
			"page_id", bc.PageID(),
		)
		return ErrInvalidSignature
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Error("failed to parse webhook payload",
			"page_id", bc.PageID(),
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	dispatched := 0
	skipped := 0

	for _, entry := range payload.Entry {
		for i := range entry.Messaging {
			ok, err := d.dispatchOne(bc, &entry.Messaging[i])
			if err != nil {
				return err
			}
			if ok {
				dispatched++
			} else {
				skipped++
			}
		}
	}

	slog.Debug("webhook batch processed",
		"page_id", bc.PageID(),
		"dispatched", dispatched,
		"skipped", skipped,
	)

	return nil
}

// dispatchOne classifies a single messaging object and delivers it. It
// reports whether an event was dispatched; the only error is a malformed
// message sub-object, which the caller treats as fatal to the batch.
func (d *Dispatcher) dispatchOne(bc *domain.BotContext, m *dto.Messaging) (bool, error) {
	env := domain.Envelope{
		SenderID:    m.Sender.ID,
		RecipientID: m.Recipient.ID,
		Timestamp:   m.Timestamp,
	}

	switch {
	case m.Message != nil:
		received, err := decodeReceivedMessage(env, m.Message)
		if err != nil {
			slog.Warn("malformed message sub-object, aborting batch",
				"page_id", bc.PageID(),
				"mid", m.Message.MID,
			)
			return false, err
		}
		if m.Message.IsEcho {
			if d.handlers.OnMessageEcho != nil {
				d.handlers.OnMessageEcho(bc, received)
			}
		} else {
			if d.handlers.OnMessage != nil {
				d.handlers.OnMessage(bc, received)
			}
		}

	case m.Postback != nil:
		if d.handlers.OnPostback != nil {
			d.handlers.OnPostback(bc, &domain.Postback{
				Envelope: env,
				Payload:  m.Postback.Payload,
			})
		}

	case m.Optin != nil:
		if d.handlers.OnOptin != nil {
			d.handlers.OnOptin(bc, &domain.Optin{
				Envelope: env,
				Ref:      m.Optin.Ref,
			})
		}

	case m.AccountLinking != nil:
		if d.handlers.OnAccountLinking != nil {
			d.handlers.OnAccountLinking(bc, &domain.AccountLinking{
				Envelope:          env,
				Status:            domain.LinkingStatusOf(m.AccountLinking.Status),
				AuthorizationCode: m.AccountLinking.AuthorizationCode,
			})
		}

	case m.Delivery != nil:
		if d.handlers.OnDelivery != nil {
			d.handlers.OnDelivery(bc, &domain.DeliveryReceipt{
				Envelope:   env,
				MessageIDs: m.Delivery.MIDs,
				Watermark:  m.Delivery.Watermark,
				Seq:        m.Delivery.Seq,
			})
		}

	case m.Read != nil:
		if d.handlers.OnRead != nil {
			d.handlers.OnRead(bc, &domain.ReadReceipt{
				Envelope:  env,
				Watermark: m.Read.Watermark,
				Seq:       m.Read.Seq,
			})
		}

	default:
		// Event kinds this library does not model are not an error.
		return false, nil
	}

	return true, nil
}

// decodeReceivedMessage classifies a message sub-object by its shape: a text
// field makes it a text message, an attachments list an attachment message.
// Neither is a malformed payload.
func decodeReceivedMessage(env domain.Envelope, m *dto.Message) (domain.ReceivedMessage, error) {
	info := domain.MessageInfo{
		MessageID: m.MID,
		Seq:       m.Seq,
		IsEcho:    m.IsEcho,
		AppID:     m.AppID,
		Metadata:  m.Metadata,
		StickerID: m.StickerID,
	}

	switch {
	case m.Text != nil:
		msg := &domain.TextMessage{
			Envelope:    env,
			MessageInfo: info,
			Text:        *m.Text,
		}
		if m.QuickReply != nil {
			msg.QuickReplyPayload = m.QuickReply.Payload
		}
		return msg, nil

	case m.Attachments != nil:
		attachments := make([]domain.Attachment, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			att := domain.Attachment{
				Kind: domain.AttachmentKindOf(a.Type),
				URL:  a.Payload.URL,
			}
			if a.Payload.Coordinates != nil {
				att.Coordinates = &domain.Coordinates{
					Lat:  a.Payload.Coordinates.Lat,
					Long: a.Payload.Coordinates.Long,
				}
			}
			attachments = append(attachments, att)
		}
		return &domain.AttachmentMessage{
			Envelope:    env,
			MessageInfo: info,
			Attachments: attachments,
		}, nil
	}

	return nil, fmt.Errorf("%w: message with neither text nor attachments", ErrMalformedPayload)
}
