package runner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskferry-labs/taskferry-go/internal/operators/apitostorage"
	"github.com/taskferry-labs/taskferry-go/internal/operators/sqltoslack"
)

const (
	TypeAPIToStorage = "api_to_storage"
	TypeSQLToSlack   = "sql_to_slack"
)

// Definition is a YAML run file: an ordered list of tasks.
type Definition struct {
	Tasks []TaskDef `yaml:"tasks"`
}

type TaskDef struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	APIToStorage *APIToStorageDef `yaml:"api_to_storage,omitempty"`
	SQLToSlack   *SQLToSlackDef   `yaml:"sql_to_slack,omitempty"`
}

type APIToStorageDef struct {
	Service     string            `yaml:"service"`
	Version     string            `yaml:"version"`
	Endpoint    string            `yaml:"endpoint"`
	Params      map[string]string `yaml:"params"`
	Destination string            `yaml:"destination"`
	ContentType string            `yaml:"content_type"`
	Overwrite   bool              `yaml:"overwrite"`
	Paginate    bool              `yaml:"paginate"`
	Retries     int               `yaml:"retries"`

	PublishResponse bool   `yaml:"publish_response"`
	ResponseKey     string `yaml:"response_key"`

	ParamsKey     string   `yaml:"params_key"`
	ParamsTaskIDs []string `yaml:"params_task_ids"`
}

type SQLToSlackDef struct {
	SQL            string   `yaml:"sql"`
	Filename       string   `yaml:"filename"`
	Channels       []string `yaml:"channels"`
	InitialComment string   `yaml:"initial_comment"`
	Title          string   `yaml:"title"`
	OnEmpty        string   `yaml:"on_empty"`
}

func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read task file %s: %w", path, err)
	}
	return ParseDefinition(data)
}

func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse task file: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (d Definition) Validate() error {
	if len(d.Tasks) == 0 {
		return fmt.Errorf("task file defines no tasks")
	}
	seen := make(map[string]struct{}, len(d.Tasks))
	for i, t := range d.Tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("task %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate task id %q", id)
		}
		seen[id] = struct{}{}

		switch t.Type {
		case TypeAPIToStorage:
			if t.APIToStorage == nil {
				return fmt.Errorf("task %q: missing %s block", id, TypeAPIToStorage)
			}
			if err := t.APIToStorage.toConfig().Validate(); err != nil {
				return fmt.Errorf("task %q: %w", id, err)
			}
		case TypeSQLToSlack:
			if t.SQLToSlack == nil {
				return fmt.Errorf("task %q: missing %s block", id, TypeSQLToSlack)
			}
			cfg, err := t.SQLToSlack.toConfig()
			if err != nil {
				return fmt.Errorf("task %q: %w", id, err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("task %q: %w", id, err)
			}
		default:
			return fmt.Errorf("task %q has unknown type %q", id, t.Type)
		}
	}
	return nil
}

func (d APIToStorageDef) toConfig() apitostorage.Config {
	return apitostorage.Config{
		Service:         d.Service,
		Version:         d.Version,
		Endpoint:        d.Endpoint,
		Params:          d.Params,
		Destination:     d.Destination,
		ContentType:     d.ContentType,
		Overwrite:       d.Overwrite,
		Paginate:        d.Paginate,
		Retries:         d.Retries,
		PublishResponse: d.PublishResponse,
		ResponseKey:     d.ResponseKey,
		ParamsKey:       d.ParamsKey,
		ParamsTaskIDs:   d.ParamsTaskIDs,
	}
}

func (d SQLToSlackDef) toConfig() (sqltoslack.Config, error) {
	policy, err := sqltoslack.ParseEmptyPolicy(d.OnEmpty)
	if err != nil {
		return sqltoslack.Config{}, err
	}
	return sqltoslack.Config{
		SQL:            d.SQL,
		Filename:       d.Filename,
		Channels:       d.Channels,
		InitialComment: d.InitialComment,
		Title:          d.Title,
		OnEmpty:        policy,
	}, nil
}
