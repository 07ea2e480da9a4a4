// Package utils provides shared infrastructure for the ironclad CLI:
// viper-backed configuration loading with embedded defaults, zap logger
// construction, command context accessors, and output helpers.
package utils
