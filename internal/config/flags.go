package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rolekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p string   identity provider (memory, toolkit)
//	-k string   identity toolkit API key
//	-s string   role store kind
//	-d string   role store DSN
//	-l string   log level
//	-t int      readiness timeout in seconds
//
// Only these flags are read from os.Args, via flagx.FilterArgs, so other
// components can define their own.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-k", "-s", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.IdentityProvider, "p", cfg.IdentityProvider, "identity provider (memory, toolkit)")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "identity toolkit API key")
	fs.StringVar(&cfg.RoleStore, "s", cfg.RoleStore, "role store (memory, sqlite, postgres, firestore, s3)")
	fs.StringVar(&cfg.RoleStoreDSN, "d", cfg.RoleStoreDSN, "role store DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	readyTimeout := fs.Int("t", int(cfg.ReadyTimeout.Seconds()), "readiness timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.ReadyTimeout = time.Duration(*readyTimeout) * time.Second
		}
	})
}
