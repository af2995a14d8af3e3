package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-level setting the functions use. The
// variable names are part of the deployment contract, so they are bound
// explicitly instead of derived from the field names. Each function only
// receives the variables it needs, so validation is per concern (see the
// Require* methods) rather than tag-level.
type Config struct {
	// TodosTable is the DynamoDB table holding the items, keyed by
	// (userId, todoId).
	TodosTable string `envconfig:"TODOS_TABLE"`

	// TodosIndexName is the (userId, createdAt) GSI used for listing.
	TodosIndexName string `envconfig:"TODOS_INDEX_NAME"`

	// AttachmentsBucket is the S3 bucket receiving attachment uploads.
	AttachmentsBucket string `envconfig:"ATTACHMENTS_BUCKET"`

	// SignedURLExpiration is the upload URL lifetime in seconds.
	SignedURLExpiration int `envconfig:"SIGNED_URL_EXPIRATION" default:"300"`

	// WebOrigin is the exact origin allowed by CORS, e.g. the SPA's URL.
	WebOrigin string `envconfig:"WEB_ORIGIN"`

	// Auth0JWKSURL points at the identity provider's public key set.
	Auth0JWKSURL string `envconfig:"AUTH0_JWKS_URL"`

	// Auth0Audience is the audience claim expected on every token.
	Auth0Audience string `envconfig:"AUTH0_AUDIENCE"`

	// Auth0Issuer is the issuer claim expected on every token.
	Auth0Issuer string `envconfig:"AUTH0_ISSUER"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MetricsEnabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsAddr      string `envconfig:"METRICS_ADDR" default:"127.0.0.1:8125"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"todoapi."`

	// Port is only used by the local development server.
	Port string `envconfig:"PORT" default:":8080"`
}

// New loads the configuration from the environment.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// RequireStorage fails when the table settings a storage-backed handler
// needs are absent.
func (c *Config) RequireStorage() error {
	return requireAll(map[string]string{
		"TODOS_TABLE":      c.TodosTable,
		"TODOS_INDEX_NAME": c.TodosIndexName,
		"WEB_ORIGIN":       c.WebOrigin,
	})
}

// RequireAttachments fails when the upload-url handler settings are absent.
func (c *Config) RequireAttachments() error {
	return requireAll(map[string]string{
		"ATTACHMENTS_BUCKET": c.AttachmentsBucket,
	})
}

// RequireAuth fails when the token verifier settings are absent.
func (c *Config) RequireAuth() error {
	return requireAll(map[string]string{
		"AUTH0_JWKS_URL": c.Auth0JWKSURL,
		"AUTH0_AUDIENCE": c.Auth0Audience,
		"AUTH0_ISSUER":   c.Auth0Issuer,
	})
}

// UploadURLTTL returns the signed URL expiration as a duration.
func (c *Config) UploadURLTTL() time.Duration {
	return time.Duration(c.SignedURLExpiration) * time.Second
}

func requireAll(vars map[string]string) error {
	for name, value := range vars {
		if value == "" {
			return errors.New("config: missing required environment variable " + name)
		}
	}
	return nil
}
