package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFiles are loaded, if present, before reading the environment.
// Variables already set in the process environment win.
var dotenvFiles = []string{".env"}

// parseEnv overlays Config with environment variables.
//
// Supported variables:
//
//	HTTP_ADDR, GRPC_HEALTH_ADDR, DATABASE_URL, SECRET_KEY, JWT_ALGORITHM,
//	ACCESS_TOKEN_EXPIRE_MINUTES, EMAIL_TOKEN_EXPIRE_MINUTES, COOKIE_SECURE,
//	ALLOWED_ORIGINS (comma separated), FRONTEND_URL, SMTP_HOST, SMTP_PORT,
//	SMTP_USER, SMTP_PASSWORD, EMAIL_FROM, S3_ACCESS_KEY, S3_SECRET_KEY,
//	S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PUBLIC_URL, LOG_LEVEL, LOG_FORMAT
//
// Malformed numeric or boolean values cause a panic.
func parseEnv(config *Config) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.Algorithm, "JWT_ALGORITHM")
	envMinutes(&config.AccessTokenTTL, "ACCESS_TOKEN_EXPIRE_MINUTES")
	envMinutes(&config.EmailTokenTTL, "EMAIL_TOKEN_EXPIRE_MINUTES")

	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.CookieSecure = b
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}

	envString(&config.FrontendURL, "FRONTEND_URL")
	envString(&config.SMTPHost, "SMTP_HOST")
	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.SMTPPort = port
	}
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")
	envString(&config.EmailFrom, "EMAIL_FROM")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envString(&config.S3PublicURL, "S3_PUBLIC_URL")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFormat, "LOG_FORMAT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envMinutes(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = time.Duration(n) * time.Minute
}
