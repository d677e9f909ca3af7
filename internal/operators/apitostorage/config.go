package apitostorage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskferry-labs/taskferry-go/internal/platform/objectstore"
)

// Config describes one API-to-storage transfer. All options are validated
// before any collaborator is touched.
type Config struct {
	// Endpoint identity within the discovery catalog.
	Service  string
	Version  string
	Endpoint string

	// Params is the static parameter mapping sent with the query.
	Params map[string]string

	// Destination is the object URL (s3://bucket/key) the response lands in.
	Destination string
	ContentType string
	Overwrite   bool

	Paginate bool
	Retries  int

	// PublishResponse exposes the fetched document on the exchange under
	// ResponseKey (or the exchange default when empty).
	PublishResponse bool
	ResponseKey     string

	// ParamsKey, when set, pulls a parameter override from the exchange
	// written by one of ParamsTaskIDs and shallow-merges it over Params.
	ParamsKey     string
	ParamsTaskIDs []string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return errors.New("service is required")
	}
	if strings.TrimSpace(c.Version) == "" {
		return errors.New("version is required")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if _, _, err := objectstore.ParseURL(c.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if c.Retries < 0 {
		return errors.New("retries must be >= 0")
	}
	if c.ParamsKey != "" && len(c.ParamsTaskIDs) == 0 {
		return errors.New("params_task_ids is required when params_key is set")
	}
	return nil
}
