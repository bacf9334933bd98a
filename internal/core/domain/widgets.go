package domain

// QuickReply is a short tappable suggestion attached to an outgoing message.
// Both fields are required; the title is capped at LimitTitleLength and the
// payload at LimitPayloadLength.
type QuickReply struct {
	Title   string
	Payload string
}

// NewQuickReply builds a quick reply. Unlike buttons and bubbles there is no
// force escape hatch here: limits are part of quick reply validity itself.
func NewQuickReply(title, payload string) QuickReply {
	return QuickReply{Title: title, Payload: payload}
}

// Valid reports whether the quick reply can be sent as-is.
func (q QuickReply) Valid() bool {
	return q.Title != "" && len(q.Title) <= LimitTitleLength &&
		q.Payload != "" && len(q.Payload) <= LimitPayloadLength
}

// ButtonType tags the variants of a template button.
type ButtonType string

const (
	ButtonWebURL      ButtonType = "web_url"
	ButtonPostback    ButtonType = "postback"
	ButtonPhoneNumber ButtonType = "phone_number"
)

// Button is one tappable button in a button template or bubble. The type
// decides which of URL and payload must be set: web_url buttons carry a URL
// and no payload, postback and phone_number buttons carry a payload and no
// URL.
type Button struct {
	buttonType ButtonType
	title      string
	url        string
	payload    string
}

// NewButton creates an empty button of the given type.
func NewButton(t ButtonType) *Button {
	return &Button{buttonType: t}
}

// Type returns the button variant.
func (b *Button) Type() ButtonType { return b.buttonType }

// SetTitle sets the button label, enforcing LimitTitleLength unless force.
func (b *Button) SetTitle(title string, force bool) error {
	if !force && len(title) > LimitTitleLength {
		return &LimitError{Field: FieldTitle, Limit: LimitTitleLength}
	}
	b.title = title
	return nil
}

// SetURL sets the target URL. Only web_url buttons support it.
func (b *Button) SetURL(url string) error {
	if b.buttonType != ButtonWebURL {
		return &UnsupportedOperationError{Op: "SetURL", Variant: string(b.buttonType)}
	}
	b.url = url
	return nil
}

// SetPayload sets the postback payload, enforcing LimitPayloadLength unless
// force. Only postback and phone_number buttons support it.
func (b *Button) SetPayload(payload string, force bool) error {
	if b.buttonType != ButtonPostback && b.buttonType != ButtonPhoneNumber {
		return &UnsupportedOperationError{Op: "SetPayload", Variant: string(b.buttonType)}
	}
	if !force && len(payload) > LimitPayloadLength {
		return &LimitError{Field: FieldPayload, Limit: LimitPayloadLength}
	}
	b.payload = payload
	return nil
}

// Valid reports whether the button satisfies its variant's structure: a title
// always, a URL and no payload for web_url, a payload and no URL otherwise.
func (b *Button) Valid() bool {
	if b.buttonType == "" || b.title == "" {
		return false
	}
	switch b.buttonType {
	case ButtonWebURL:
		return b.url != "" && b.payload == ""
	case ButtonPostback, ButtonPhoneNumber:
		return b.payload != "" && b.url == ""
	}
	return false
}

// Bubble is one card in a generic (carousel) template.
type Bubble struct {
	title    string
	subtitle string
	imageURL string
	itemURL  string
	buttons  []*Button
}

// NewBubble creates an empty bubble. The title is required for validity; all
// other fields are optional.
func NewBubble() *Bubble {
	return &Bubble{}
}

// SetTitle sets the card title, enforcing LimitBubbleTitle unless force.
func (b *Bubble) SetTitle(title string, force bool) error {
	if !force && len(title) > LimitBubbleTitle {
		return &LimitError{Field: FieldTitle, Limit: LimitBubbleTitle}
	}
	b.title = title
	return nil
}

// SetSubtitle sets the card subtitle, enforcing LimitBubbleSubtitle unless
// force.
func (b *Bubble) SetSubtitle(subtitle string, force bool) error {
	if !force && len(subtitle) > LimitBubbleSubtitle {
		return &LimitError{Field: FieldSubtitle, Limit: LimitBubbleSubtitle}
	}
	b.subtitle = subtitle
	return nil
}

// SetImageURL sets the card image.
func (b *Bubble) SetImageURL(url string) { b.imageURL = url }

// SetItemURL sets the URL opened when the card is tapped.
func (b *Bubble) SetItemURL(url string) { b.itemURL = url }

// AddButton appends a button to the card, enforcing LimitButtons unless
// force. Buttons are kept in insertion order.
func (b *Bubble) AddButton(btn *Button, force bool) error {
	if btn == nil {
		return nil
	}
	if !force && len(b.buttons) >= LimitButtons {
		return &LimitError{Field: FieldButtons, Limit: LimitButtons}
	}
	b.buttons = append(b.buttons, btn)
	return nil
}

// Buttons returns the card's buttons in insertion order.
func (b *Bubble) Buttons() []*Button { return b.buttons }

// Valid reports whether the bubble can be sent: the title must be set and
// every attached button must itself be valid.
func (b *Bubble) Valid() bool {
	if b.title == "" {
		return false
	}
	for _, btn := range b.buttons {
		if !btn.Valid() {
			return false
		}
	}
	return true
}
