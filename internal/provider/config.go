package provider

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ProbePath is the lightweight endpoint used to confirm reachability and auth.
const ProbePath = "/instance/fetchInstances"

// Config holds the credentials of an Evolution API instance.
type Config struct {
	BaseURL      string `json:"baseUrl"`
	APIKey       string `json:"apiKey"`
	InstanceName string `json:"instanceName"`
}

// Complete reports whether every field is set.
func (c Config) Complete() bool {
	return c.BaseURL != "" && c.APIKey != "" && c.InstanceName != ""
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (c Config) Normalized() Config {
	return Config{
		BaseURL:      strings.TrimSpace(c.BaseURL),
		APIKey:       strings.TrimSpace(c.APIKey),
		InstanceName: strings.TrimSpace(c.InstanceName),
	}
}

// Endpoint returns the probe URL. Exactly one trailing slash is stripped from
// the base URL so "http://h/" and "http://h" produce the same request.
func (c Config) Endpoint() string {
	return strings.TrimSuffix(c.BaseURL, "/") + ProbePath
}

// MaskedAPIKey returns the API key with all but its first quarter hidden,
// capped at four visible characters. Keys shorter than four characters show
// nothing.
func (c Config) MaskedAPIKey() string {
	n := min(len(c.APIKey)/4, 4)
	return c.APIKey[:n] + "***"
}

// MarshalLogObject lets the config be logged with zap.Object without leaking the key.
func (c Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("base_url", c.BaseURL)
	enc.AddString("instance", c.InstanceName)
	enc.AddString("api_key", c.MaskedAPIKey())
	return nil
}
