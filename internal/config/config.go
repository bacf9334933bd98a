// Package config loads the server configuration from environment variables
// and the bot roster from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

// DBConfig holds MySQL connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr string // host:port
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Port         int
	StoreBackend string // memory, redis or mysql
	BotsFile     string // path to the YAML bot roster
}

// Config aggregates all configuration sections.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
}

// LoadConfig reads configuration from environment variables. Backend
// specific settings are validated only when that backend is selected.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.App.Port = getEnvAsInt("APP_PORT", 8080)
	cfg.App.StoreBackend = getEnv("STORE_BACKEND", StoreMemory)
	cfg.App.BotsFile = getEnv("BOTS_FILE", "bots.yaml")

	switch cfg.App.StoreBackend {
	case StoreMemory:
		// No external store.
	case StoreRedis:
		cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	case StoreMySQL:
		cfg.DB.Host = getEnv("DB_HOST", "localhost")
		cfg.DB.Port = getEnvAsInt("DB_PORT", 3306)
		cfg.DB.User = getEnv("DB_USER", "root")
		cfg.DB.Password = getEnv("DB_PASS", "")
		cfg.DB.Database = getEnv("DB_NAME", "botforge")
		if cfg.DB.Password == "" {
			return nil, fmt.Errorf("DB_PASS environment variable is required for the mysql backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.App.StoreBackend)
	}

	return cfg, nil
}

// GetDSN returns the MySQL connection string.
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer with a fallback
// default.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
