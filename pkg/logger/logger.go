/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey struct{}

var loggerKey = contextKey{}

// Config controls the global logrus setup
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Init configures the standard logrus logger from config
func Init(config Config) error {
	level := logrus.InfoLevel
	if config.Level != "" {
		parsed, err := logrus.ParseLevel(config.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
		level = parsed
	}
	logrus.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "", "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unsupported log format: %s", config.Format)
	}

	return nil
}

// SetOutput redirects the standard logger, mostly useful in tests
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// Logger returns the entry stored in ctx, or a fresh entry of the standard logger
func Logger(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok && entry != nil {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// WithLogger stores entry in ctx so downstream calls log with its fields
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// WithFields returns a context whose logger carries the additional fields
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, Logger(ctx).WithFields(fields))
}

// WithRequestID tags the context logger with a new request id and returns it
func WithRequestID(ctx context.Context) (context.Context, string) {
	requestID := uuid.NewString()
	return WithFields(ctx, logrus.Fields{"request_id": requestID}), requestID
}
