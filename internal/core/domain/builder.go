package domain

// MessageBuilder accumulates one outgoing message of the variant declared at
// construction time. Every mutator first checks that the declared variant
// supports the operation and fails with UnsupportedOperationError otherwise;
// size limits fail with LimitError unless force is passed. Build validates
// the accumulated tree and hands out the finished message.
type MessageBuilder struct {
	messageType OutgoingType
	msg         *OutgoingMessage
}

// NewMessageBuilder starts a builder for the given variant. Messages default
// to regular notifications.
func NewMessageBuilder(t OutgoingType) *MessageBuilder {
	return &MessageBuilder{
		messageType: t,
		msg: &OutgoingMessage{
			messageType:      t,
			notificationType: NotificationRegular,
		},
	}
}

func (b *MessageBuilder) checkOp(op string, supported ...OutgoingType) error {
	for _, t := range supported {
		if b.messageType == t {
			return nil
		}
	}
	return &UnsupportedOperationError{Op: op, Variant: string(b.messageType)}
}

// SetNotificationType sets the delivery priority hint. Valid for every
// variant.
func (b *MessageBuilder) SetNotificationType(nt NotificationType) error {
	switch nt {
	case NotificationRegular, NotificationSilent, NotificationNoPush:
		b.msg.notificationType = nt
		return nil
	}
	return ErrInvalidNotificationType
}

// SetSenderAction sets the action of a sender action message.
func (b *MessageBuilder) SetSenderAction(action SenderAction) error {
	if err := b.checkOp("SetSenderAction", OutgoingSenderAction); err != nil {
		return err
	}
	b.msg.senderAction = action
	return nil
}

// SetText sets the body of a text message or the text above a button
// template, enforcing LimitTextLength unless force.
func (b *MessageBuilder) SetText(text string, force bool) error {
	if err := b.checkOp("SetText", OutgoingText, OutgoingTemplateButton); err != nil {
		return err
	}
	if !force && len(text) > LimitTextLength {
		return &LimitError{Field: FieldText, Limit: LimitTextLength}
	}
	b.msg.text = text
	b.msg.textSet = true
	return nil
}

// SetMediaURL sets the attachment URL of a multimedia message.
func (b *MessageBuilder) SetMediaURL(url string) error {
	if err := b.checkOp("SetMediaURL", OutgoingImage, OutgoingAudio, OutgoingVideo, OutgoingFile); err != nil {
		return err
	}
	b.msg.mediaURL = url
	return nil
}

// AddButton appends a button to a button template, enforcing LimitButtons
// unless force. Buttons are kept in insertion order.
func (b *MessageBuilder) AddButton(btn *Button, force bool) error {
	if err := b.checkOp("AddButton", OutgoingTemplateButton); err != nil {
		return err
	}
	if btn == nil {
		return nil
	}
	if !force && len(b.msg.buttons) >= LimitButtons {
		return &LimitError{Field: FieldButtons, Limit: LimitButtons}
	}
	b.msg.buttons = append(b.msg.buttons, btn)
	return nil
}

// AddBubble appends a card to a generic template, enforcing LimitBubbles
// unless force. Bubbles are kept in insertion order.
func (b *MessageBuilder) AddBubble(bubble *Bubble, force bool) error {
	if err := b.checkOp("AddBubble", OutgoingTemplateGeneric); err != nil {
		return err
	}
	if bubble == nil {
		return nil
	}
	if !force && len(b.msg.bubbles) >= LimitBubbles {
		return &LimitError{Field: FieldBubbles, Limit: LimitBubbles}
	}
	b.msg.bubbles = append(b.msg.bubbles, bubble)
	return nil
}

// AddQuickReply attaches a quick reply, enforcing LimitQuickReplies unless
// force. Valid for every variant except sender actions.
func (b *MessageBuilder) AddQuickReply(qr QuickReply, force bool) error {
	if err := b.checkOp("AddQuickReply",
		OutgoingText, OutgoingImage, OutgoingAudio, OutgoingVideo, OutgoingFile,
		OutgoingTemplateGeneric, OutgoingTemplateButton); err != nil {
		return err
	}
	if !force && len(b.msg.quickReplies) >= LimitQuickReplies {
		return &LimitError{Field: FieldQuickReplies, Limit: LimitQuickReplies}
	}
	b.msg.quickReplies = append(b.msg.quickReplies, qr)
	return nil
}

// Build returns the accumulated message if it satisfies its variant's
// structural rules, ErrInvalidMessage otherwise. The builder can keep being
// used after a failed Build: fix the message and call Build again.
func (b *MessageBuilder) Build() (*OutgoingMessage, error) {
	if !b.msg.IsValid() {
		return nil, ErrInvalidMessage
	}
	return b.msg, nil
}
