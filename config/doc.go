// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct tags.
// Values not present in the file keep their defaults, so a config file only
// needs the settings it changes.
package config
