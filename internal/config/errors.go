package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure of a loaded Config.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the .env file, the YAML file
	// named by WIKIDLE_CONFIG, or the WIKIDLE_ environment.
	ErrLoadConfig = errors.New("load config failed")
)
