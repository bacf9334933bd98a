// Package domain contains the core message model of the library: bot
// contexts, the incoming event taxonomy, outgoing message variants with their
// widgets and limits, and the send result classification. These types are
// infrastructure-agnostic; decoding from and encoding to the wire format is
// the job of the adapters.
package domain

// IncomingType tags the variants of the incoming event union.
type IncomingType string

const (
	IncomingText           IncomingType = "text"
	IncomingAttachment     IncomingType = "attachment"
	IncomingPostback       IncomingType = "postback"
	IncomingOptin          IncomingType = "optin"
	IncomingAccountLinking IncomingType = "account_linking"
	IncomingDelivery       IncomingType = "delivery"
	IncomingRead           IncomingType = "read"
)

// IncomingEvent is the closed union of events delivered through the webhook.
// Exhaustive handling is done by switching on IncomingType.
type IncomingEvent interface {
	IncomingType() IncomingType
}

// Envelope carries the fields common to every incoming event. The dispatcher
// copies them from the enclosing messaging object, not from the per-event
// payload.
type Envelope struct {
	SenderID    string
	RecipientID string
	Timestamp   int64 // unix milliseconds
}

// Sender returns the page-scoped ID of the user the event came from.
func (e *Envelope) Sender() string { return e.SenderID }

// MessageInfo carries the extra metadata present only on message-type events
// (text and attachment messages).
type MessageInfo struct {
	MessageID string
	Seq       int
	IsEcho    bool
	AppID     int64
	Metadata  string
	StickerID int64
}

// ReceivedMessage is implemented by the message-type variants, which share
// the MessageInfo metadata and the echo routing rule.
type ReceivedMessage interface {
	IncomingEvent
	Sender() string
	Message() *MessageInfo
}

// TextMessage is a plain text message, optionally carrying the payload of the
// quick reply the user tapped.
type TextMessage struct {
	Envelope
	MessageInfo
	Text              string
	QuickReplyPayload string
}

func (m *TextMessage) IncomingType() IncomingType { return IncomingText }
func (m *TextMessage) Message() *MessageInfo      { return &m.MessageInfo }

// AttachmentKind classifies a received attachment.
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentFile     AttachmentKind = "file"
	AttachmentLocation AttachmentKind = "location"
	AttachmentUnknown  AttachmentKind = "unknown"
)

// AttachmentKindOf maps a wire attachment type to its kind, defaulting to
// AttachmentUnknown for types this library does not know about.
func AttachmentKindOf(wireType string) AttachmentKind {
	switch wireType {
	case "image":
		return AttachmentImage
	case "audio":
		return AttachmentAudio
	case "video":
		return AttachmentVideo
	case "file":
		return AttachmentFile
	case "location":
		return AttachmentLocation
	default:
		return AttachmentUnknown
	}
}

// Coordinates is the location payload of a location attachment.
type Coordinates struct {
	Lat  float64
	Long float64
}

// Attachment is one received media or location attachment.
type Attachment struct {
	Kind        AttachmentKind
	URL         string
	Coordinates *Coordinates
}

// AttachmentMessage is a message carrying one or more attachments.
type AttachmentMessage struct {
	Envelope
	MessageInfo
	Attachments []Attachment
}

func (m *AttachmentMessage) IncomingType() IncomingType { return IncomingAttachment }
func (m *AttachmentMessage) Message() *MessageInfo      { return &m.MessageInfo }

// Postback is delivered when the user taps a postback button.
type Postback struct {
	Envelope
	Payload string
}

func (m *Postback) IncomingType() IncomingType { return IncomingPostback }

// Optin is delivered when the user authenticates through a Send-to-Messenger
// plugin; Ref is the data-ref the plugin was configured with.
type Optin struct {
	Envelope
	Ref string
}

func (m *Optin) IncomingType() IncomingType { return IncomingOptin }

// LinkingStatus is the account linking state reported by the platform.
type LinkingStatus string

const (
	LinkingLinked   LinkingStatus = "linked"
	LinkingUnlinked LinkingStatus = "unlinked"
	LinkingUnknown  LinkingStatus = "unknown"
)

// LinkingStatusOf maps a wire status to its LinkingStatus.
func LinkingStatusOf(wireStatus string) LinkingStatus {
	switch wireStatus {
	case "linked":
		return LinkingLinked
	case "unlinked":
		return LinkingUnlinked
	default:
		return LinkingUnknown
	}
}

// AccountLinking is delivered when the user links or unlinks their account.
type AccountLinking struct {
	Envelope
	Status            LinkingStatus
	AuthorizationCode string
}

func (m *AccountLinking) IncomingType() IncomingType { return IncomingAccountLinking }

// DeliveryReceipt confirms that all messages up to Watermark were delivered.
type DeliveryReceipt struct {
	Envelope
	MessageIDs []string
	Watermark  int64
	Seq        int
}

func (m *DeliveryReceipt) IncomingType() IncomingType { return IncomingDelivery }

// ReadReceipt confirms that all messages up to Watermark were read.
type ReadReceipt struct {
	Envelope
	Watermark int64
	Seq       int
}

func (m *ReadReceipt) IncomingType() IncomingType { return IncomingRead }
