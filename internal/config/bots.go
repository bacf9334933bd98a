package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NinetySlide/BotForge/internal/core/domain"
)

// botEntry is one bot in the YAML roster file.
type botEntry struct {
	PageID            string `yaml:"page_id"`
	PageAccessToken   string `yaml:"page_access_token"`
	AppSecretKey      string `yaml:"app_secret_key"`
	VerifyToken       string `yaml:"verify_token"`
	WebhookURL        string `yaml:"webhook_url"`
	DisableValidation bool   `yaml:"disable_validation"`
}

// botsFile is the top-level document of the roster file:
//
//	bots:
//	  - page_id: "1234567890"
//	    page_access_token: "EAAG..."
//	    app_secret_key: "0123abcd..."
//	    verify_token: "my-verify-token"
//	    webhook_url: "https://bots.example.com/webhook/shop"
type botsFile struct {
	Bots []botEntry `yaml:"bots"`
}

// LoadBots reads the roster file and builds a validated bot context per
// entry. An invalid entry fails the whole load; partially registered rosters
// are worse than a startup error.
func LoadBots(path string) ([]*domain.BotContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot roster: %w", err)
	}

	var file botsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bot roster: %w", err)
	}
	if len(file.Bots) == 0 {
		return nil, fmt.Errorf("bot roster %s contains no bots", path)
	}

	contexts := make([]*domain.BotContext, 0, len(file.Bots))
	for i, entry := range file.Bots {
		bc, err := domain.NewBotContext(
			entry.PageID,
			entry.PageAccessToken,
			entry.AppSecretKey,
			entry.VerifyToken,
			entry.WebhookURL,
			!entry.DisableValidation,
		)
		if err != nil {
			return nil, fmt.Errorf("bot roster entry %d: %w", i, err)
		}
		contexts = append(contexts, bc)
	}
	return contexts, nil
}
