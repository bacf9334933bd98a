package domain

// BotContext identifies one bot configuration: the Facebook page it serves,
// its credentials and its webhook endpoint. A context is immutable once
// constructed; to change a value, build a new context and update the store.
type BotContext struct {
	pageID            string
	pageAccessToken   string
	appSecretKey      string
	verifyToken       string
	webhookURL        string
	validateCallbacks bool
}

// NewBotContext validates the parameters and builds an immutable context.
// Every string parameter is required; a missing one yields a
// ConfigurationError naming the offending parameter. validateCallbacks
// controls whether inbound webhook signatures are checked for this bot.
func NewBotContext(pageID, pageAccessToken, appSecretKey, verifyToken, webhookURL string, validateCallbacks bool) (*BotContext, error) {
	switch {
	case pageID == "":
		return nil, &ConfigurationError{Param: "page_id"}
	case pageAccessToken == "":
		return nil, &ConfigurationError{Param: "page_access_token"}
	case appSecretKey == "":
		return nil, &ConfigurationError{Param: "app_secret_key"}
	case verifyToken == "":
		return nil, &ConfigurationError{Param: "verify_token"}
	case webhookURL == "":
		return nil, &ConfigurationError{Param: "webhook_url"}
	}

	return &BotContext{
		pageID:            pageID,
		pageAccessToken:   pageAccessToken,
		appSecretKey:      appSecretKey,
		verifyToken:       verifyToken,
		webhookURL:        webhookURL,
		validateCallbacks: validateCallbacks,
	}, nil
}

// PageID returns the Facebook page ID this context serves.
func (c *BotContext) PageID() string { return c.pageID }

// PageAccessToken returns the Graph API access token for the page.
func (c *BotContext) PageAccessToken() string { return c.pageAccessToken }

// AppSecretKey returns the secret used to verify webhook signatures.
func (c *BotContext) AppSecretKey() string { return c.appSecretKey }

// VerifyToken returns the token used in the webhook verification handshake.
func (c *BotContext) VerifyToken() string { return c.verifyToken }

// WebhookURL returns the webhook endpoint registered for this bot.
func (c *BotContext) WebhookURL() string { return c.webhookURL }

// ValidatesCallbacks reports whether inbound signatures are verified.
func (c *BotContext) ValidatesCallbacks() bool { return c.validateCallbacks }
