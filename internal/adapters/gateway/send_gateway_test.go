package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NinetySlide/BotForge/internal/core/domain"
)

// fakeTransport answers each request from a scripted queue of responses, in
// order, and records the requests it saw.
type fakeTransport struct {
	responses []fakeResponse
	requests  []capturedRequest
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

type capturedRequest struct {
	method string
	url    string
	body   []byte
}

func (t *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	t.requests = append(t.requests, capturedRequest{
		method: req.Method,
		url:    req.URL.String(),
		body:   body,
	})

	if len(t.responses) == 0 {
		return nil, errors.New("fakeTransport: no scripted response left")
	}
	next := t.responses[0]
	t.responses = t.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(next.body))),
	}, nil
}

func testContext(t *testing.T) *domain.BotContext {
	t.Helper()
	bc, err := domain.NewBotContext("page-1", "token-1", "secret-1", "verify-1",
		"https://bots.example.com/webhook/shop", true)
	require.NoError(t, err)
	return bc
}

func textMessage(t *testing.T, text string) *domain.OutgoingMessage {
	t.Helper()
	b := domain.NewMessageBuilder(domain.OutgoingText)
	require.NoError(t, b.SetText(text, false))
	msg, err := b.Build()
	require.NoError(t, err)
	return msg
}

func recipient(t *testing.T, id string) *domain.Recipient {
	t.Helper()
	r, err := domain.IDRecipient(id)
	require.NoError(t, err)
	return r
}

func TestSend_Success(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1","message_id":"mid.1456"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.Send(context.Background(), testContext(t), textMessage(t, "hi"), recipient(t, "user-1"))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, domain.SendSuccess, res.Status)
	assert.Equal(t, "user-1", res.RecipientID)
	assert.Equal(t, "mid.1456", res.MessageID)
	assert.Nil(t, res.Error)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Contains(t, req.url, "/me/messages")
	assert.Contains(t, req.url, "access_token=token-1")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(req.body, &body))
	assert.Equal(t, "user-1", body["recipient"].(map[string]interface{})["id"])
	assert.Equal(t, "hi", body["message"].(map[string]interface{})["text"])
}

func TestSend_PlatformError(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 400, body: `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"fbtrace_id":"BLBz/WZt8dN"}}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.Send(context.Background(), testContext(t), textMessage(t, "hi"), recipient(t, "user-1"))
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, domain.SendPlatformError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, domain.ErrCodeAccessToken, res.Error.Code)
	assert.Equal(t, "OAuthException", res.Error.Type)
	assert.Equal(t, "BLBz/WZt8dN", res.Error.TraceID)
}

func TestSend_NetworkFailure(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{err: errors.New("dial tcp: connection refused")},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.Send(context.Background(), testContext(t), textMessage(t, "hi"), recipient(t, "user-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.SendNetworkError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, domain.ErrCodeNetworkFailure, res.Error.Code)
	assert.Equal(t, "Network Error", res.Error.Type)
	assert.Equal(t, "0", res.Error.TraceID)
}

func TestSend_UnparseableResponse(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 502, body: `<html>Bad Gateway</html>`},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.Send(context.Background(), testContext(t), textMessage(t, "hi"), recipient(t, "user-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.SendNetworkError, res.Status)
}

func TestSend_NilArguments(t *testing.T) {
	g := NewSendGateway(WithTransport(&fakeTransport{}))
	ctx := context.Background()
	bc := testContext(t)
	msg := textMessage(t, "hi")

	_, err := g.Send(ctx, nil, msg, recipient(t, "u"))
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = g.Send(ctx, bc, nil, recipient(t, "u"))
	assert.ErrorIs(t, err, ErrNilMessage)

	_, err = g.Send(ctx, bc, msg, nil)
	assert.ErrorIs(t, err, ErrNilRecipient)
}

func TestSendAll_OrderedResults(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1","message_id":"mid.1"}`},
		{err: errors.New("dial tcp: i/o timeout")},
		{status: 200, body: `{"recipient_id":"user-3","message_id":"mid.3"}`},
	}}
	g := NewSendGateway(WithTransport(transport))
	msg := textMessage(t, "broadcast")

	recipients := []*domain.Recipient{
		recipient(t, "user-1"),
		recipient(t, "user-2"),
		recipient(t, "user-3"),
	}

	results, err := g.SendAll(context.Background(), testContext(t), msg, recipients)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// The failure in the middle does not block the following sends, and
	// results stay positional.
	assert.Equal(t, domain.SendSuccess, results[0].Status)
	assert.Equal(t, "mid.1", results[0].MessageID)
	assert.Equal(t, domain.SendNetworkError, results[1].Status)
	assert.Equal(t, domain.SendSuccess, results[2].Status)
	assert.Equal(t, "mid.3", results[2].MessageID)

	// One request per recipient, in order.
	require.Len(t, transport.requests, 3)
	for i, id := range []string{"user-1", "user-2", "user-3"} {
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(transport.requests[i].body, &body))
		assert.Equal(t, id, body["recipient"].(map[string]interface{})["id"])
	}
}

func TestSendText_Convenience(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1","message_id":"mid.1"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.SendText(context.Background(), testContext(t), "user-1", "hello")
	require.NoError(t, err)
	assert.True(t, res.OK())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(transport.requests[0].body, &body))
	assert.Equal(t, "hello", body["message"].(map[string]interface{})["text"])
}

func TestSendText_LimitEnforced(t *testing.T) {
	g := NewSendGateway(WithTransport(&fakeTransport{}))

	long := make([]byte, domain.LimitTextLength+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := g.SendText(context.Background(), testContext(t), "user-1", string(long))
	var limitErr *domain.LimitError
	assert.ErrorAs(t, err, &limitErr)
}

func TestSendAction(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	res, err := g.SendAction(context.Background(), testContext(t), "user-1", domain.ActionTypingOn)
	require.NoError(t, err)
	assert.True(t, res.OK())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(transport.requests[0].body, &body))
	assert.Equal(t, "typing_on", body["sender_action"])
	assert.NotContains(t, body, "message")
}

func TestSendImage(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1","message_id":"mid.1"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	_, err := g.SendImage(context.Background(), testContext(t), "user-1", "https://example.com/a.png")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(transport.requests[0].body, &body))
	attachment := body["message"].(map[string]interface{})["attachment"].(map[string]interface{})
	assert.Equal(t, "image", attachment["type"])
}

func TestUserProfile(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"first_name":"Ada","last_name":"Lovelace","profile_pic":"https://cdn.example.com/pic.jpg","locale":"en_GB","timezone":1,"gender":"female"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	profile, err := g.UserProfile(context.Background(), testContext(t), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", profile.ProfilePicURL)
	assert.Equal(t, "en_GB", profile.Locale)
	assert.InDelta(t, 1.0, profile.Timezone, 0.0001)
	assert.Equal(t, "female", profile.Gender)

	req := transport.requests[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Contains(t, req.url, "/user-1?")
	assert.Contains(t, req.url, "access_token=token-1")
}

func TestUserProfile_PlatformError(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 400, body: `{"error":{"message":"Unsupported get request.","type":"GraphMethodException","code":100}}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	profile, err := g.UserProfile(context.Background(), testContext(t), "user-1")
	assert.Error(t, err)
	assert.Nil(t, profile)
}

func TestSendTextAll(t *testing.T) {
	transport := &fakeTransport{responses: []fakeResponse{
		{status: 200, body: `{"recipient_id":"user-1","message_id":"mid.1"}`},
		{status: 200, body: `{"recipient_id":"user-2","message_id":"mid.2"}`},
	}}
	g := NewSendGateway(WithTransport(transport))

	results, err := g.SendTextAll(context.Background(), testContext(t),
		[]string{"user-1", "user-2"}, "hello everyone")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "mid.1", results[0].MessageID)
	assert.Equal(t, "mid.2", results[1].MessageID)
	require.Len(t, transport.requests, 2)
}
