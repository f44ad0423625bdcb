package config

import (
	"os"
	"time"
)

// parseEnv overlays configuration values from environment variables.
// Only variables that are set and non-empty take effect, so the overlay
// never clobbers defaults or JSON-provided values with blanks.
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setDuration(&config.SessionValidityDuration, "SESSION_VALIDITY_DURATION")
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		config.SecureCookies = v == "true" || v == "1"
	}
	setDuration(&config.ConvertTimeout, "CONVERT_TIMEOUT")
	setString(&config.ConvertCommand, "CONVERT_COMMAND")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.SMTPAddr, "SMTP_ADDR")
	setString(&config.SMTPUser, "SMTP_USER")
	setString(&config.SMTPPassword, "SMTP_PASSWORD")
	setString(&config.MailFrom, "MAIL_FROM")
	setString(&config.BaseURL, "BASE_URL")
	setString(&config.SiteName, "SITE_NAME")
	setString(&config.SiteTitle, "SITE_TITLE")
	setString(&config.ContactEmail, "CONTACT_EMAIL")
	setString(&config.ContactPhone, "CONTACT_PHONE")
	setString(&config.ContactAddress, "CONTACT_ADDRESS")
}
