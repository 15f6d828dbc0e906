// Package config defines the application's configuration structure and
// loading logic. Settings come from defaults, an optional YAML file, and
// JOBSCOUT_-prefixed environment variables, in increasing precedence.
package config
