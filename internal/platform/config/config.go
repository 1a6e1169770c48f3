// Package config loads process configuration from an optional config file
// and the environment, keeping main lean. Credential validation happens
// here so a misconfigured process fails before the engine is constructed.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Volition VolitionConfig `mapstructure:"volition"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SlackConfig carries the chat-platform credentials and tenancy settings.
type SlackConfig struct {
	BotToken            string   `mapstructure:"bot_token"`
	SigningSecret       string   `mapstructure:"signing_secret"`
	TrustedWorkspaceIDs []string `mapstructure:"-"`
	HomeChannel         string   `mapstructure:"home_channel"`
	APIBaseURL          string   `mapstructure:"api_base_url"`
}

// AdminConfig guards the operator surface. An empty signing key disables
// the admin endpoints entirely.
type AdminConfig struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
}

// VolitionConfig tunes the admission engine.
type VolitionConfig struct {
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	Capacity        int           `mapstructure:"capacity"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// Load builds the configuration by merging defaults, an optional yaml file,
// and environment variables. Environment keys follow the section structure
// (SLACK_BOT_TOKEN overrides slack.bot_token); the trusted-workspace list
// additionally honors the bare TRUSTED_WORKSPACE_IDS variable.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("slack.trusted_workspace_ids", "TRUSTED_WORKSPACE_IDS", "SLACK_TRUSTED_WORKSPACE_IDS"); err != nil {
		return nil, fmt.Errorf("bind trusted workspace env: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No file is fine; env and defaults carry the configuration.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Slack.TrustedWorkspaceIDs = parseWorkspaceIDs(v.GetString("slack.trusted_workspace_ids"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("slack.api_base_url", "https://slack.com/api")
	// Credentials default to empty so Unmarshal sees the keys and env
	// overrides apply; validate() enforces presence afterwards.
	v.SetDefault("slack.bot_token", "")
	v.SetDefault("slack.signing_secret", "")
	v.SetDefault("slack.home_channel", "")
	v.SetDefault("admin.jwt_signing_key", "")
	v.SetDefault("volition.duplicate_window", 3*time.Minute)
	v.SetDefault("volition.cooldown", 20*time.Second)
	v.SetDefault("volition.capacity", 200)
	v.SetDefault("logger.level", "info")
}

// validate reports every missing mandatory credential at once so operators
// fix the environment in a single pass.
func (c *Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.Slack.BotToken) == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if strings.TrimSpace(c.Slack.SigningSecret) == "" {
		missing = append(missing, "SLACK_SIGNING_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing mandatory configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseWorkspaceIDs splits a comma separated allow list, dropping blanks.
func parseWorkspaceIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
