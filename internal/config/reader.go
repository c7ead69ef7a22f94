package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrUnknownEnv       = errors.New("unknown env")
	ErrShortSigningKey  = errors.New("jwt signing key is too short")
	ErrInvalidSendQueue = errors.New("notify send buffer must be positive")
)

// Keys shorter than this are rejected for HS256.
const minSigningKeyLength = 32

type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads the configuration from the process environment only.
type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// FileReader reads a .env, .yaml or .toml file and lets the
// environment override whatever the file sets.
type FileReader struct {
	path string
}

func NewFileReader(path string) FileReader {
	return FileReader{path: path}
}

func (r FileReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadConfig(r.path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEnv, c.Env)
	}

	if len(c.JWT.SigningKey) < minSigningKeyLength {
		return ErrShortSigningKey
	}
	if c.Notify.SendBuffer <= 0 {
		return ErrInvalidSendQueue
	}
	return nil
}
