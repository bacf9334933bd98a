package domain

import "encoding/json"

// OutgoingType tags the variants of the outgoing message union.
type OutgoingType string

const (
	OutgoingSenderAction    OutgoingType = "sender_action"
	OutgoingText            OutgoingType = "text"
	OutgoingImage           OutgoingType = "image"
	OutgoingAudio           OutgoingType = "audio"
	OutgoingVideo           OutgoingType = "video"
	OutgoingFile            OutgoingType = "file"
	OutgoingTemplateGeneric OutgoingType = "template_generic"
	OutgoingTemplateButton  OutgoingType = "template_button"
)

// NotificationType is the delivery priority hint attached to an outgoing
// message.
type NotificationType string

const (
	NotificationRegular NotificationType = "REGULAR"
	NotificationSilent  NotificationType = "SILENT_PUSH"
	NotificationNoPush  NotificationType = "NO_PUSH"
)

// SenderAction is a typing indicator or read marker sent instead of content.
type SenderAction string

const (
	ActionMarkSeen  SenderAction = "mark_seen"
	ActionTypingOn  SenderAction = "typing_on"
	ActionTypingOff SenderAction = "typing_off"
)

// Recipient addresses an outgoing message by exactly one of page-scoped ID or
// phone number.
type Recipient struct {
	id          string
	phoneNumber string
}

// NewRecipient builds a recipient. Exactly one of phoneNumber and id must be
// non-empty; anything else fails with ErrInvalidRecipient.
func NewRecipient(phoneNumber, id string) (*Recipient, error) {
	if (phoneNumber == "") == (id == "") {
		return nil, ErrInvalidRecipient
	}
	return &Recipient{id: id, phoneNumber: phoneNumber}, nil
}

// IDRecipient builds a recipient addressed by page-scoped ID.
func IDRecipient(id string) (*Recipient, error) {
	return NewRecipient("", id)
}

// ID returns the page-scoped ID, empty for phone recipients.
func (r *Recipient) ID() string { return r.id }

// PhoneNumber returns the phone number, empty for ID recipients.
func (r *Recipient) PhoneNumber() string { return r.phoneNumber }

// MarshalJSON emits the wire recipient object.
func (r *Recipient) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID          string `json:"id,omitempty"`
		PhoneNumber string `json:"phone_number,omitempty"`
	}
	return json.Marshal(wire{ID: r.id, PhoneNumber: r.phoneNumber})
}

// OutgoingMessage is one variant of the outgoing message union, accumulated
// through MessageBuilder and serialized to the Send API wire format. The
// recipient is assigned by the send gateway just before the request goes out.
type OutgoingMessage struct {
	messageType      OutgoingType
	recipient        *Recipient
	notificationType NotificationType

	senderAction SenderAction
	text         string
	textSet      bool
	mediaURL     string
	quickReplies []QuickReply
	buttons      []*Button
	bubbles      []*Bubble
}

// Type returns the message variant.
func (m *OutgoingMessage) Type() OutgoingType { return m.messageType }

// Recipient returns the recipient assigned to the message, nil before a send.
func (m *OutgoingMessage) Recipient() *Recipient { return m.recipient }

// SetRecipient assigns the recipient. Called by the send gateway, once per
// outbound request.
func (m *OutgoingMessage) SetRecipient(r *Recipient) { m.recipient = r }

// NotificationType returns the delivery priority hint.
func (m *OutgoingMessage) NotificationType() NotificationType { return m.notificationType }

// Text returns the message text, empty unless set on a text or button
// template message.
func (m *OutgoingMessage) Text() string { return m.text }

// MediaURL returns the attached media URL of a multimedia message.
func (m *OutgoingMessage) MediaURL() string { return m.mediaURL }

// QuickReplies returns the attached quick replies in insertion order.
func (m *OutgoingMessage) QuickReplies() []QuickReply { return m.quickReplies }

// Buttons returns a button template's buttons in insertion order.
func (m *OutgoingMessage) Buttons() []*Button { return m.buttons }

// Bubbles returns a generic template's bubbles in insertion order.
func (m *OutgoingMessage) Bubbles() []*Bubble { return m.bubbles }

// IsValid is the pure structural validity predicate over the message tree. It
// has no side effects and may be called repeatedly. Recipient assignment is
// checked by the send gateway, not here, so that a message can be built once
// and fanned out to many recipients.
func (m *OutgoingMessage) IsValid() bool {
	for _, qr := range m.quickReplies {
		if !qr.Valid() {
			return false
		}
	}

	switch m.messageType {
	case OutgoingSenderAction:
		return m.senderAction != ""
	case OutgoingText:
		return m.textSet
	case OutgoingImage, OutgoingAudio, OutgoingVideo, OutgoingFile:
		return m.mediaURL != ""
	case OutgoingTemplateGeneric:
		if len(m.bubbles) < 1 {
			return false
		}
		for _, b := range m.bubbles {
			if !b.Valid() {
				return false
			}
		}
		return true
	case OutgoingTemplateButton:
		if !m.textSet || len(m.buttons) < 1 {
			return false
		}
		for _, b := range m.buttons {
			if !b.Valid() {
				return false
			}
		}
		return true
	}
	return false
}

// Wire structures for the Send API request body.

type wireQuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type wireButton struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Payload string `json:"payload,omitempty"`
}

type wireBubble struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	ItemURL  string       `json:"item_url,omitempty"`
	Buttons  []wireButton `json:"buttons,omitempty"`
}

type wireAttachmentPayload struct {
	URL          string       `json:"url,omitempty"`
	TemplateType string       `json:"template_type,omitempty"`
	Text         string       `json:"text,omitempty"`
	Elements     []wireBubble `json:"elements,omitempty"`
	Buttons      []wireButton `json:"buttons,omitempty"`
}

type wireAttachment struct {
	Type    string                `json:"type"`
	Payload wireAttachmentPayload `json:"payload"`
}

type wireMessage struct {
	Text         string           `json:"text,omitempty"`
	Attachment   *wireAttachment  `json:"attachment,omitempty"`
	QuickReplies []wireQuickReply `json:"quick_replies,omitempty"`
}

type wireBody struct {
	Recipient        *Recipient       `json:"recipient,omitempty"`
	NotificationType NotificationType `json:"notification_type,omitempty"`
	Message          *wireMessage     `json:"message,omitempty"`
	SenderAction     SenderAction     `json:"sender_action,omitempty"`
}

func wireButtons(buttons []*Button) []wireButton {
	out := make([]wireButton, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, wireButton{
			Type:    string(b.buttonType),
			Title:   b.title,
			URL:     b.url,
			Payload: b.payload,
		})
	}
	return out
}

// MarshalJSON emits the full Send API request body for this message.
func (m *OutgoingMessage) MarshalJSON() ([]byte, error) {
	body := wireBody{
		Recipient:        m.recipient,
		NotificationType: m.notificationType,
	}

	if m.messageType == OutgoingSenderAction {
		body.SenderAction = m.senderAction
		return json.Marshal(body)
	}

	msg := &wireMessage{}
	for _, qr := range m.quickReplies {
		msg.QuickReplies = append(msg.QuickReplies, wireQuickReply{
			ContentType: "text",
			Title:       qr.Title,
			Payload:     qr.Payload,
		})
	}

	switch m.messageType {
	case OutgoingText:
		msg.Text = m.text
	case OutgoingImage, OutgoingAudio, OutgoingVideo, OutgoingFile:
		msg.Attachment = &wireAttachment{
			Type:    string(m.messageType),
			Payload: wireAttachmentPayload{URL: m.mediaURL},
		}
	case OutgoingTemplateGeneric:
		elements := make([]wireBubble, 0, len(m.bubbles))
		for _, b := range m.bubbles {
			elements = append(elements, wireBubble{
				Title:    b.title,
				Subtitle: b.subtitle,
				ImageURL: b.imageURL,
				ItemURL:  b.itemURL,
				Buttons:  wireButtons(b.buttons),
			})
		}
		msg.Attachment = &wireAttachment{
			Type:    "template",
			Payload: wireAttachmentPayload{TemplateType: "generic", Elements: elements},
		}
	case OutgoingTemplateButton:
		msg.Attachment = &wireAttachment{
			Type:    "template",
			Payload: wireAttachmentPayload{TemplateType: "button", Text: m.text, Buttons: wireButtons(m.buttons)},
		}
	}

	body.Message = msg
	return json.Marshal(body)
}
