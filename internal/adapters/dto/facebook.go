// Package dto contains the wire structures of the Messenger webhook payload.
// Keeping them out of the core prevents the domain model from leaking JSON
// tags, and keeping them out of the handlers prevents import cycles.
// Ref: https://developers.facebook.com/docs/messenger-platform/webhooks
package dto

// WebhookPayload is the top-level batch delivered in one POST call.
type WebhookPayload struct {
	Object string  `json:"object"` // always "page" for Messenger
	Entry  []Entry `json:"entry"`
}

// Entry groups the messaging events of one page, in delivery order.
type Entry struct {
	ID        string      `json:"id"` // page ID
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging"`
}

// Messaging is a single event. Exactly one of the event sub-objects is set;
// an object with none of them is silently skipped by the dispatcher.
type Messaging struct {
	Sender    User  `json:"sender"`
	Recipient User  `json:"recipient"`
	Timestamp int64 `json:"timestamp"`

	Message        *Message        `json:"message,omitempty"`
	Postback       *Postback       `json:"postback,omitempty"`
	Optin          *Optin          `json:"optin,omitempty"`
	AccountLinking *AccountLinking `json:"account_linking,omitempty"`
	Delivery       *Delivery       `json:"delivery,omitempty"`
	Read           *Read           `json:"read,omitempty"`
}

// User is a sender or recipient reference (PSID, or page ID for the page
// side of the conversation).
type User struct {
	ID string `json:"id"`
}

// Message is a received message sub-object. Text is a pointer so that a
// present-but-empty text field can be told apart from an absent one: the
// dispatcher classifies on field presence, not value.
type Message struct {
	MID         string       `json:"mid"`
	Seq         int          `json:"seq"`
	Text        *string      `json:"text,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	AppID       int64        `json:"app_id,omitempty"`
	Metadata    string       `json:"metadata,omitempty"`
	StickerID   int64        `json:"sticker_id,omitempty"`
}

// QuickReply carries the payload of the quick reply the user tapped.
type QuickReply struct {
	Payload string `json:"payload"`
}

// Attachment is one received media or location attachment.
type Attachment struct {
	Type    string            `json:"type"` // image, audio, video, file, location
	Payload AttachmentPayload `json:"payload"`
}

// AttachmentPayload carries the download URL, or coordinates for locations.
type AttachmentPayload struct {
	URL         string       `json:"url,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is the location of a location attachment. The platform names
// the longitude field "long".
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Postback is delivered when a postback button is tapped.
type Postback struct {
	Payload string `json:"payload"`
}

// Optin is the Send-to-Messenger plugin authentication event.
type Optin struct {
	Ref string `json:"ref"`
}

// AccountLinking reports a link or unlink of the user's account.
type AccountLinking struct {
	Status            string `json:"status"` // linked or unlinked
	AuthorizationCode string `json:"authorization_code,omitempty"`
}

// Delivery is a delivery receipt.
type Delivery struct {
	MIDs      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
	Seq       int      `json:"seq"`
}

// Read is a read receipt.
type Read struct {
	Watermark int64 `json:"watermark"`
	Seq       int   `json:"seq"`
}
