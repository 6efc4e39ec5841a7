// Package config loads runtime configuration for the rolekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseJson) selected via flags: -c or
//     -config. A .yaml or .yml extension selects YAML.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-p string   identity provider: memory or toolkit
//	-k string   identity toolkit API key
//	-s string   role store: memory, sqlite, postgres, firestore or s3
//	-d string   role store DSN (sqlite file or postgres connection string)
//	-l string   log level: debug, info, warn, error
//	-t int      readiness timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds. Only keys present in the file override earlier values. YAML
// files use the same keys.
//
//	{
//	  "identity_provider": "toolkit",
//	  "api_key": "AIza...",
//	  "toolkit_base_url": "http://localhost:9099/identitytoolkit.googleapis.com",
//	  "google_client_id": "...apps.googleusercontent.com",
//	  "google_client_secret": "...",
//	  "google_callback_port": 0,
//	  "session_db": "rolekeeper.db",
//	  "role_store": "firestore",
//	  "role_store_dsn": "",
//	  "firestore_project": "my-project",
//	  "firestore_credentials": "service-account.json",
//	  "firestore_collection": "users",
//	  "s3": {"bucket": "roles", "prefix": "users/", "region": "us-east-1",
//	         "endpoint": "http://127.0.0.1:9000", "access_key": "...", "secret_key": "..."},
//	  "log_level": "info",
//	  "log_format": "text",
//	  "ready_timeout": "10s",
//	  "reconcile_timeout": "5s"
//	}
package config
