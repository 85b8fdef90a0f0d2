/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/repoquery/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REPOQUERY_"

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty), the given .env files and REPOQUERY_* environment variables,
// in increasing priority, and validates the result. Missing .env files
// are skipped.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()
		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DRIVER":             &cfg.Driver,
		"CONNECTION_STRING":  &cfg.ConnectionString,
		"USERNAME":           &cfg.Username,
		"PASSWORD":           &cfg.Password,
		"REGION":             &cfg.Region,
		"BUCKET":             &cfg.Keyspace.Bucket,
		"SCOPE":              &cfg.Keyspace.Scope,
		"COLLECTION":         &cfg.Keyspace.Collection,
		"CONSISTENCY":        &cfg.Consistency,
		"NAMED_QUERIES_FILE": &cfg.NamedQueriesFile,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "PAGE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return errors.NewValidationError(EnvPrefix+"PAGE_SIZE", err.Error())
		}
		cfg.Stream.PageSize = int32(n)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(EnvPrefix+"MAX_RETRIES", err.Error())
		}
		cfg.Breaker.MaxRetries = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "BREAKER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.NewValidationError(EnvPrefix+"BREAKER_TIMEOUT", err.Error())
		}
		cfg.Breaker.Timeout = d
	}
	return nil
}
