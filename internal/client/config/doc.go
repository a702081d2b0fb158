// Package config loads runtime configuration for the notesctl admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (NOTES_AUTH_SERVER_ADDR, NOTES_AUTH_TIMEOUT,
//     NOTES_AUTH_TOKEN).
//  3. Command-line flags of the cobra root command, which override both.
package config
