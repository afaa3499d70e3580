// Package config loads application configuration from the environment.
//
// It combines github.com/joho/godotenv for optional .env files with
// github.com/caarlos0/env/v11 for parsing into tagged structs. A config type
// that implements Validator is checked after parsing.
//
//	cfg, err := config.Load[appconfig.Config]()
//	if err != nil {
//		return err
//	}
//
// Errors can be compared with errors.Is against ErrLoadingEnvFile,
// ErrParsingConfig and ErrInvalidConfig.
package config
