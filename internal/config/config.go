package config

import "time"

// Identity provider kinds.
const (
	ProviderMemory  = "memory"
	ProviderToolkit = "toolkit"
)

// S3 configures the s3 role store.
type S3 struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the rolekeeper CLI.
type Config struct {
	IdentityProvider   string
	APIKey             string
	ToolkitBaseURL     string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackPort int
	// SessionDB is the sqlite file that caches the toolkit session; empty
	// disables the cache.
	SessionDB string

	RoleStore            string
	RoleStoreDSN         string
	FirestoreProject     string
	FirestoreCredentials string
	FirestoreCollection  string
	S3                   S3

	LogLevel         string
	LogFormat        string
	ReadyTimeout     time.Duration
	ReconcileTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.IdentityProvider = ProviderMemory
	c.ToolkitBaseURL = "https://identitytoolkit.googleapis.com"
	c.RoleStore = "memory"
	c.FirestoreCollection = "users"
	c.S3.Region = "us-east-1"
	c.S3.Prefix = "users/"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ReadyTimeout = 10 * time.Second
	c.ReconcileTimeout = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
