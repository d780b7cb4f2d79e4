package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/carmodpicker/internal/flagx"
	"github.com/dmitrijs2005/carmodpicker/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Pointer fields
// distinguish "absent" from zero values so a partial file only overrides
// what it names. Durations accept "1h" or integer nanoseconds.
type FileConfig struct {
	HTTPAddr       *string         `json:"http_addr" yaml:"http_addr"`
	GRPCHealthAddr *string         `json:"grpc_health_addr" yaml:"grpc_health_addr"`
	DatabaseDSN    *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey      *string         `json:"secret_key" yaml:"secret_key"`
	Algorithm      *string         `json:"algorithm" yaml:"algorithm"`
	AccessTokenTTL *timex.Duration `json:"access_token_ttl" yaml:"access_token_ttl"`
	EmailTokenTTL  *timex.Duration `json:"email_token_ttl" yaml:"email_token_ttl"`
	CookieSecure   *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	AllowedOrigins []string        `json:"allowed_origins" yaml:"allowed_origins"`
	FrontendURL    *string         `json:"frontend_url" yaml:"frontend_url"`
	SMTPHost       *string         `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort       *int            `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser       *string         `json:"smtp_user" yaml:"smtp_user"`
	SMTPPassword   *string         `json:"smtp_password" yaml:"smtp_password"`
	EmailFrom      *string         `json:"email_from" yaml:"email_from"`
	S3AccessKey    *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicURL    *string         `json:"s3_public_url" yaml:"s3_public_url"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	LogFormat      *string         `json:"log_format" yaml:"log_format"`
}

// parseFile loads configuration values from the file named by the -c or
// -config flag. Files ending in .yaml or .yml are decoded as YAML, anything
// else as JSON. If no flag is given nothing is loaded. Unreadable or invalid
// files cause a panic, as the server cannot start with a broken config.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags()

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.GRPCHealthAddr, fc.GRPCHealthAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.Algorithm, fc.Algorithm)
	if fc.AccessTokenTTL != nil {
		c.AccessTokenTTL = fc.AccessTokenTTL.Duration
	}
	if fc.EmailTokenTTL != nil {
		c.EmailTokenTTL = fc.EmailTokenTTL.Duration
	}
	if fc.CookieSecure != nil {
		c.CookieSecure = *fc.CookieSecure
	}
	if fc.AllowedOrigins != nil {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	setString(&c.FrontendURL, fc.FrontendURL)
	setString(&c.SMTPHost, fc.SMTPHost)
	if fc.SMTPPort != nil {
		c.SMTPPort = *fc.SMTPPort
	}
	setString(&c.SMTPUser, fc.SMTPUser)
	setString(&c.SMTPPassword, fc.SMTPPassword)
	setString(&c.EmailFrom, fc.EmailFrom)
	setString(&c.S3AccessKey, fc.S3AccessKey)
	setString(&c.S3SecretKey, fc.S3SecretKey)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicURL, fc.S3PublicURL)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
