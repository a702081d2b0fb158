package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret key
//	-k string   identity-provider integration key
//	-t int      session token validity, minutes
//	-r int      reset token validity, minutes
//	-i int      cleanup interval, minutes
//	-f string   frontend base URL
//	-l string   log level
//
// Arguments outside this set are filtered out with flagx.FilterArgs so the
// -c/-config flag can coexist.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-k", "-t", "-r", "-i", "-f", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.IntegrationKey, "k", config.IntegrationKey, "integration key")

	sessionTTL := fs.Int("t", int(config.SessionTokenTTL.Minutes()), "session token validity (in minutes)")
	resetTTL := fs.Int("r", int(config.ResetTokenTTL.Minutes()), "reset token validity (in minutes)")
	interval := fs.Int("i", int(config.CleanupInterval.Minutes()), "cleanup interval (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenTTL = time.Duration(*sessionTTL) * time.Minute
		case "r":
			config.ResetTokenTTL = time.Duration(*resetTTL) * time.Minute
		case "i":
			config.CleanupInterval = time.Duration(*interval) * time.Minute
		}
	})
	return nil
}
