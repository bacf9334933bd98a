package domain

// Graph API error codes the platform is known to return on sends.
// Ref: https://developers.facebook.com/docs/messenger-platform/send-api-reference#errors
const (
	ErrCodeInternal       = 2
	ErrCodeRateLimited    = 4
	ErrCodeBadParameter   = 100
	ErrCodeAccessToken    = 190
	ErrCodePermission     = 200
	ErrCodeUserBlocked    = 551
	ErrCodeAccountLink    = 10303
	ErrCodeNetworkFailure = -1 // synthesized locally, never sent by the platform
)

// SendStatus classifies the outcome of one send call.
type SendStatus string

const (
	SendSuccess       SendStatus = "success"
	SendPlatformError SendStatus = "platform_error"
	SendNetworkError  SendStatus = "network_error"
)

// PlatformError is the error object reported by the Send API.
type PlatformError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	TraceID string `json:"fbtrace_id"`
}

// SendResult is the classified outcome of sending one message to one
// recipient: exactly one of the three statuses per call. RecipientID and
// MessageID are populated on success; Error is populated for platform errors
// and carries the fixed network sentinel for transport failures.
type SendResult struct {
	Status      SendStatus
	RecipientID string
	MessageID   string
	Error       *PlatformError
}

// OK reports whether the send succeeded.
func (r SendResult) OK() bool { return r.Status == SendSuccess }

// NetworkFailure is the fixed sentinel result for a transport failure where
// no response was obtained from the platform.
func NetworkFailure() SendResult {
	return SendResult{
		Status: SendNetworkError,
		Error: &PlatformError{
			Message: "an error has occurred during the network request",
			Type:    "Network Error",
			Code:    ErrCodeNetworkFailure,
			TraceID: "0",
		},
	}
}
