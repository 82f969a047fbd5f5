// Package config defines the orchestrator's service configuration and its
// loader. Configuration comes from a YAML file merged with environment
// variables (optionally via a .env file); environment variables win.
package config
