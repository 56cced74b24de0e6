// Package config loads, parses, and validates application configuration
// from the environment and an optional config file. It gives the rest of
// the application type-safe access to server, database, and auth settings
// without scattering os.Getenv calls through business logic.
package config