// Package config loads node settings from POKERD_* environment variables,
// with command-line flags taking precedence.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	// Home is the app home directory; state is stored under <home>/app.
	Home string `envconfig:"HOME" default:".privacypoker"`

	// ListenAddr is the ABCI listen address.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:"tcp://127.0.0.1:26658"`

	// Transport is the ABCI transport, socket or grpc.
	Transport string `envconfig:"TRANSPORT" default:"socket"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("POKERD", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	return &cfg, nil
}
