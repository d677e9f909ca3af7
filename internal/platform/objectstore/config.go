package objectstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskferry-labs/taskferry-go/internal/platform/env"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

func ConfigFromEnv() (Config, error) {
	useSSL, err := env.Bool("TASKFERRY_STORAGE_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Endpoint:  env.String("TASKFERRY_STORAGE_ENDPOINT", "localhost:9000"),
		AccessKey: env.String("TASKFERRY_STORAGE_ACCESS_KEY", ""),
		SecretKey: env.String("TASKFERRY_STORAGE_SECRET_KEY", ""),
		Region:    env.String("TASKFERRY_STORAGE_REGION", "us-east-1"),
		UseSSL:    useSSL,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
