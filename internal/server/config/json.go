package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/saireecmpo/portal/internal/flagx"
	"github.com/saireecmpo/portal/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "24h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	DatabaseDSN  string `json:"database_dsn"`
	SecretKey    string `json:"secret_key"`

	SessionValidityDuration      timex.Duration `json:"session_validity_duration"`
	MFAChallengeValidityDuration timex.Duration `json:"mfa_challenge_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	SecureCookies                bool           `json:"secure_cookies"`

	ConvertCommand string         `json:"convert_command"`
	ConvertTimeout timex.Duration `json:"convert_timeout"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	SMTPAddr     string `json:"smtp_addr"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	MailFrom     string `json:"mail_from"`

	BaseURL        string `json:"base_url"`
	SiteName       string `json:"site_name"`
	SiteTitle      string `json:"site_title"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	ContactAddress string `json:"contact_address"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionValidityDuration = time.Duration(c.SessionValidityDuration.Duration)
	config.MFAChallengeValidityDuration = time.Duration(c.MFAChallengeValidityDuration.Duration)
	config.ResetTokenValidityDuration = time.Duration(c.ResetTokenValidityDuration.Duration)
	config.SecureCookies = c.SecureCookies
	config.ConvertCommand = c.ConvertCommand
	config.ConvertTimeout = time.Duration(c.ConvertTimeout.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
	config.BaseURL = c.BaseURL
	config.SiteName = c.SiteName
	config.SiteTitle = c.SiteTitle
	config.ContactEmail = c.ContactEmail
	config.ContactPhone = c.ContactPhone
	config.ContactAddress = c.ContactAddress
}
