package domain

// Platform-imposed limits on outgoing message fields and collections.
// Ref: https://developers.facebook.com/docs/messenger-platform/send-api-reference
const (
	LimitTextLength     = 320
	LimitQuickReplies   = 10
	LimitButtons        = 3
	LimitBubbles        = 10
	LimitPayloadLength  = 1000
	LimitTitleLength    = 20
	LimitBubbleTitle    = 80
	LimitBubbleSubtitle = 80
)

// LimitField identifies which field or collection violated its limit.
type LimitField string

// Violation identifiers carried by LimitError.
const (
	FieldText         LimitField = "text"
	FieldTitle        LimitField = "title"
	FieldSubtitle     LimitField = "subtitle"
	FieldPayload      LimitField = "payload"
	FieldQuickReplies LimitField = "quick_replies"
	FieldButtons      LimitField = "buttons"
	FieldBubbles      LimitField = "bubbles"
)
