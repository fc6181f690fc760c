// Package config loads environment-driven configuration structs.
//
// Components declare their settings as structs with `env` tags and load them
// once at startup:
//
//	type Config struct {
//		LiffID      string `env:"LIFF_ID"`
//		MockEnabled bool   `env:"LIFF_MOCK_ENABLED" envDefault:"false"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
//
// A .env file in the working directory is applied before parsing, and each
// config type is parsed only once per process; later calls return the cached
// value. This keeps mock-vs-real selection and similar flags from drifting
// mid-session: every component reading the same config type sees the same
// resolved values.
package config
