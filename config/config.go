/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/storagemodels"
)

const (
	DriverDynamoDB = "dynamodb"
	DriverSQLite   = "sqlite"
)

// Config is the runtime configuration of a query dispatcher.
type Config struct {
	// Driver selects the document store: dynamodb or sqlite.
	Driver string `yaml:"driver" validate:"required,oneof=dynamodb sqlite"`
	// ConnectionString is the SQLite DSN or a DynamoDB endpoint override.
	ConnectionString string `yaml:"connectionString" validate:"required_if=Driver sqlite"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password" validate:"required_with=Username"`
	Region           string `yaml:"region" validate:"required_if=Driver dynamodb"`

	Keyspace    storagemodels.Keyspace `yaml:"keyspace"`
	Consistency string                 `yaml:"consistency"`

	NamedQueriesFile string            `yaml:"namedQueriesFile"`
	NamedQueries     map[string]string `yaml:"namedQueries"`

	Stream  StreamConfig  `yaml:"stream"`
	Log     LogConfig     `yaml:"log"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// StreamConfig tunes result streams.
type StreamConfig struct {
	BufferSize int   `yaml:"bufferSize" validate:"gte=0"`
	PageSize   int32 `yaml:"pageSize" validate:"gte=0"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
	// Queries dumps every SQLite statement through bundebug.
	Queries bool `yaml:"queries"`
}

// BreakerConfig configures DynamoDB retries and the circuit breaker.
type BreakerConfig struct {
	MaxRetries   int           `yaml:"maxRetries" validate:"gte=0"`
	RetryBackoff time.Duration `yaml:"retryBackoff" validate:"gte=0"`
	Failures     uint32        `yaml:"failures" validate:"gte=1"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Driver:      DriverSQLite,
		Consistency: string(storagemodels.NotBounded),
		Stream: StreamConfig{
			BufferSize: 100,
			PageSize:   25,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Breaker: BreakerConfig{
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			Failures:     5,
			Timeout:      60 * time.Second,
		},
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report fields by their YAML names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks field constraints and the scan consistency.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewValidationError(fe.Namespace(), fmt.Sprintf("failed on the %q rule", fe.Tag()))
		}
		return err
	}
	if _, err := storagemodels.ParseScanConsistency(c.Consistency); err != nil {
		return errors.NewValidationError("consistency", err.Error())
	}
	return nil
}

// ScanConsistency is the parsed default consistency.
func (c *Config) ScanConsistency() storagemodels.ScanConsistency {
	sc, err := storagemodels.ParseScanConsistency(c.Consistency)
	if err != nil {
		return storagemodels.NotBounded
	}
	return sc
}

// NamedQueryRegistry loads the named-queries file, if any, and overlays the
// inline entries.
func (c *Config) NamedQueryRegistry() (*namedquery.Registry, error) {
	fromFile, err := namedquery.New(nil)
	if err != nil {
		return nil, err
	}
	if c.NamedQueriesFile != "" {
		if fromFile, err = namedquery.LoadFile(c.NamedQueriesFile); err != nil {
			return nil, err
		}
	}
	inline, err := namedquery.New(c.NamedQueries)
	if err != nil {
		return nil, err
	}
	return fromFile.Merge(inline), nil
}
