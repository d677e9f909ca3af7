package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/taskferry-labs/taskferry-go/internal/platform/env"
)

type Config struct {
	CatalogPath string
	Timeout     time.Duration
	Auth        AuthConfig
}

// AuthConfig configures client-credentials token acquisition. When Issuer is
// set the token endpoint is found through OIDC provider discovery; otherwise
// TokenURL is used directly. Leaving ClientID empty disables auth entirely.
type AuthConfig struct {
	Issuer       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func ConfigFromEnv() (Config, error) {
	timeout, err := env.Duration("TASKFERRY_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		CatalogPath: env.String("TASKFERRY_API_CATALOG", ""),
		Timeout:     timeout,
		Auth: AuthConfig{
			Issuer:       env.String("TASKFERRY_API_ISSUER", ""),
			TokenURL:     env.String("TASKFERRY_API_TOKEN_URL", ""),
			ClientID:     env.String("TASKFERRY_API_CLIENT_ID", ""),
			ClientSecret: env.String("TASKFERRY_API_CLIENT_SECRET", ""),
			Scopes:       env.StringList("TASKFERRY_API_SCOPES", nil),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.CatalogPath) == "" {
		return errors.New("catalog path is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Auth.ClientID != "" {
		if c.Auth.ClientSecret == "" {
			return errors.New("client secret is required when client ID is set")
		}
		if c.Auth.Issuer == "" && c.Auth.TokenURL == "" {
			return errors.New("either issuer or token URL is required when client ID is set")
		}
	}
	return nil
}

// httpClient builds the HTTP client all queries go through. With auth
// configured, requests carry a client-credentials bearer token refreshed by
// the oauth2 transport.
func (c Config) httpClient(ctx context.Context) (*http.Client, error) {
	base := &http.Client{Timeout: c.Timeout}
	if c.Auth.ClientID == "" {
		return base, nil
	}

	tokenURL := c.Auth.TokenURL
	if c.Auth.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, c.Auth.Issuer)
		if err != nil {
			return nil, fmt.Errorf("discover issuer %s: %w", c.Auth.Issuer, err)
		}
		tokenURL = provider.Endpoint().TokenURL
	}

	cc := clientcredentials.Config{
		ClientID:     c.Auth.ClientID,
		ClientSecret: c.Auth.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       c.Auth.Scopes,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return cc.Client(ctx), nil
}
