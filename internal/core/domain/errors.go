package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned by Build when the accumulated message does not
// satisfy the structural rules of its variant (e.g. a generic template with no
// bubbles, or a button template without text).
var ErrInvalidMessage = errors.New("outgoing message is not structurally valid")

// ErrInvalidRecipient is returned when a recipient is constructed with both or
// neither of phone number and ID set.
var ErrInvalidRecipient = errors.New("exactly one of phone number or ID must be set as a recipient")

// ErrInvalidNotificationType is returned when an unknown notification type is
// set on an outgoing message.
var ErrInvalidNotificationType = errors.New("notification type must be one of regular, silent push or no push")

// ConfigurationError reports a missing required bot context parameter. It is
// raised at construction time and never recovered from.
type ConfigurationError struct {
	Param string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("bot context parameter %q is missing", e.Param)
}

// LimitError reports a field or collection exceeding its platform limit. The
// caller can recover by shortening the input or passing force.
type LimitError struct {
	Field LimitField
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s exceeds the platform limit of %d", e.Field, e.Limit)
}

// UnsupportedOperationError reports a builder or widget operation invoked on a
// variant that does not support it.
type UnsupportedOperationError struct {
	Op      string
	Variant string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s is not supported by message type %s", e.Op, e.Variant)
}
