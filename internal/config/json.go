package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/rolekeeper/internal/flagx"
	"github.com/dmitrijs2005/rolekeeper/internal/timex"
)

type jsonS3 struct {
	Bucket    *string `json:"bucket" yaml:"bucket"`
	Prefix    *string `json:"prefix" yaml:"prefix"`
	Region    *string `json:"region" yaml:"region"`
	Endpoint  *string `json:"endpoint" yaml:"endpoint"`
	AccessKey *string `json:"access_key" yaml:"access_key"`
	SecretKey *string `json:"secret_key" yaml:"secret_key"`
}

// JsonConfig is a DTO used exclusively for config file unmarshalling, JSON
// or YAML. Pointer fields tell an absent key apart from an empty value.
type JsonConfig struct {
	IdentityProvider   *string `json:"identity_provider" yaml:"identity_provider"`
	APIKey             *string `json:"api_key" yaml:"api_key"`
	ToolkitBaseURL     *string `json:"toolkit_base_url" yaml:"toolkit_base_url"`
	GoogleClientID     *string `json:"google_client_id" yaml:"google_client_id"`
	GoogleClientSecret *string `json:"google_client_secret" yaml:"google_client_secret"`
	GoogleCallbackPort *int    `json:"google_callback_port" yaml:"google_callback_port"`
	SessionDB          *string `json:"session_db" yaml:"session_db"`

	RoleStore            *string `json:"role_store" yaml:"role_store"`
	RoleStoreDSN         *string `json:"role_store_dsn" yaml:"role_store_dsn"`
	FirestoreProject     *string `json:"firestore_project" yaml:"firestore_project"`
	FirestoreCredentials *string `json:"firestore_credentials" yaml:"firestore_credentials"`
	FirestoreCollection  *string `json:"firestore_collection" yaml:"firestore_collection"`
	S3                   *jsonS3 `json:"s3" yaml:"s3"`

	LogLevel         *string         `json:"log_level" yaml:"log_level"`
	LogFormat        *string         `json:"log_format" yaml:"log_format"`
	ReadyTimeout     *timex.Duration `json:"ready_timeout" yaml:"ready_timeout"`
	ReconcileTimeout *timex.Duration `json:"reconcile_timeout" yaml:"reconcile_timeout"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Files ending in .yaml or .yml are read as YAML, anything else as
// JSON. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	switch strings.ToLower(filepath.Ext(jsonConfigFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jc)
	default:
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		panic(err)
	}

	set(&cfg.IdentityProvider, jc.IdentityProvider)
	set(&cfg.APIKey, jc.APIKey)
	set(&cfg.ToolkitBaseURL, jc.ToolkitBaseURL)
	set(&cfg.GoogleClientID, jc.GoogleClientID)
	set(&cfg.GoogleClientSecret, jc.GoogleClientSecret)
	set(&cfg.GoogleCallbackPort, jc.GoogleCallbackPort)
	set(&cfg.SessionDB, jc.SessionDB)

	set(&cfg.RoleStore, jc.RoleStore)
	set(&cfg.RoleStoreDSN, jc.RoleStoreDSN)
	set(&cfg.FirestoreProject, jc.FirestoreProject)
	set(&cfg.FirestoreCredentials, jc.FirestoreCredentials)
	set(&cfg.FirestoreCollection, jc.FirestoreCollection)
	if s := jc.S3; s != nil {
		set(&cfg.S3.Bucket, s.Bucket)
		set(&cfg.S3.Prefix, s.Prefix)
		set(&cfg.S3.Region, s.Region)
		set(&cfg.S3.Endpoint, s.Endpoint)
		set(&cfg.S3.AccessKey, s.AccessKey)
		set(&cfg.S3.SecretKey, s.SecretKey)
	}

	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	if jc.ReadyTimeout != nil {
		cfg.ReadyTimeout = jc.ReadyTimeout.Duration
	}
	if jc.ReconcileTimeout != nil {
		cfg.ReconcileTimeout = jc.ReconcileTimeout.Duration
	}
}
