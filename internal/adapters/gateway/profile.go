package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/NinetySlide/BotForge/internal/core/domain"
)

// profileFields is the fixed field list requested from the Graph API.
const profileFields = "first_name,last_name,profile_pic,locale,timezone,gender"

// UserProfile is the public profile of a Messenger user. Timezone is the
// UTC offset in hours.
type UserProfile struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	ProfilePicURL string  `json:"profile_pic"`
	Locale        string  `json:"locale"`
	Timezone      float64 `json:"timezone"`
	Gender        string  `json:"gender"`
}

// UserProfile fetches the public profile of the given page-scoped user ID.
// Unlike sends, profile lookups report every failure as an error: there is
// no partial outcome to classify.
func (g *SendGateway) UserProfile(ctx context.Context, bc *domain.BotContext, userID string) (*UserProfile, error) {
	if bc == nil {
		return nil, ErrNilContext
	}
	if userID == "" {
		return nil, fmt.Errorf("gateway: user ID is empty")
	}

	endpoint := g.baseURL + "/" + url.PathEscape(userID) + "?" + url.Values{
		"fields":       {profileFields},
		"access_token": {bc.PageAccessToken()},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}

	resp, err := g.transport.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read profile response: %w", err)
	}

	var wrapped struct {
		UserProfile
		Error *domain.PlatformError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("gateway: parse profile response: %w", err)
	}
	if wrapped.Error != nil {
		return nil, fmt.Errorf("gateway: profile lookup rejected (code %d): %s", wrapped.Error.Code, wrapped.Error.Message)
	}

	profile := wrapped.UserProfile
	return &profile, nil
}
