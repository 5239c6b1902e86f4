// Package config loads application configuration into typed structs.
//
// Values come from the process environment and are parsed with
// github.com/caarlos0/env/v11 according to `env` struct tags. Before
// parsing, the environment can be filled from .env files (LoadEnv, using
// github.com/joho/godotenv) and from YAML files (LoadYAML, using
// gopkg.in/yaml.v3). Real environment variables always take precedence over
// YAML files.
//
// Each configuration type is parsed once and cached; ResetCache and
// ForceReloadConfig exist for tests and reloads.
//
// # Usage
//
//	if err := config.LoadYAML("configs/fdfs.yml"); err != nil {
//		log.Fatal(err)
//	}
//
//	var cfg fdfs.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// # Errors
//
//   - ErrParsingConfig: env vars could not be parsed into the struct
//   - ErrNilPointer: nil pointer passed to Load
//   - ErrLoadingEnvFile, ErrLoadingYAMLFile: a source file is missing or malformed
package config
