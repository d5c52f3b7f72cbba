package config

import "time"

// ResendConfig represents the configuration for the Resend API client
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// MailerConfig represents the interception and sender identity settings
type MailerConfig struct {
	OverrideEnabled bool
	ForceFrom       bool
	FromEmail       string
	FromName        string
}

// CacheConfig represents the email cache settings
type CacheConfig struct {
	Type          string
	SQLitePath    string
	MySQLDSN      string
	RetentionDays int
}

// GetResend returns the Resend client configuration
func (c *Config) GetResend() ResendConfig {
	timeout, err := c.GetDuration("resend.timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return ResendConfig{
		APIKey:  c.GetString("resend.api_key"),
		BaseURL: c.GetString("resend.base_url"),
		Timeout: timeout,
	}
}

// GetMailer returns the mailer configuration
func (c *Config) GetMailer() MailerConfig {
	return MailerConfig{
		OverrideEnabled: c.GetBool("mailer.override_enabled"),
		ForceFrom:       c.GetBool("mailer.force_from"),
		FromEmail:       c.GetString("mailer.from_email"),
		FromName:        c.GetString("mailer.from_name"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:          c.GetString("cache.type"),
		SQLitePath:    c.GetString("cache.sqlite_path"),
		MySQLDSN:      c.GetString("cache.mysql_dsn"),
		RetentionDays: c.GetInt("cache.retention_days"),
	}
}
