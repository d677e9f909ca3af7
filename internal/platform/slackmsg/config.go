package slackmsg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskferry-labs/taskferry-go/internal/platform/env"
)

// MethodVersion selects which file-upload API generation is used. It is
// resolved once at sender construction, never per call.
type MethodVersion string

const (
	MethodV1 MethodVersion = "v1"
	MethodV2 MethodVersion = "v2"
)

func ParseMethodVersion(s string) (MethodVersion, error) {
	switch MethodVersion(strings.ToLower(strings.TrimSpace(s))) {
	case MethodV1:
		return MethodV1, nil
	case MethodV2, "":
		return MethodV2, nil
	default:
		return "", fmt.Errorf("invalid upload method version %q, expected v1 or v2", s)
	}
}

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Method  MethodVersion
}

func ConfigFromEnv() (Config, error) {
	timeout, err := env.Duration("TASKFERRY_SLACK_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	method, err := ParseMethodVersion(env.String("TASKFERRY_SLACK_METHOD_VERSION", "v2"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Token:   env.String("TASKFERRY_SLACK_TOKEN", ""),
		BaseURL: env.String("TASKFERRY_SLACK_BASE_URL", ""),
		Timeout: timeout,
		Method:  method,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return errors.New("slack token is required")
	}
	if c.Timeout <= 0 {
		return errors.New("slack timeout must be positive")
	}
	if c.Method != MethodV1 && c.Method != MethodV2 {
		return fmt.Errorf("invalid upload method version %q", c.Method)
	}
	return nil
}
