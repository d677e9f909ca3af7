// Package apitostorage transfers the JSON response of a discovery-resolved
// API endpoint into an object-storage bucket, optionally publishing the
// response on the cross-task exchange for downstream tasks.
package apitostorage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskferry-labs/taskferry-go/internal/discovery"
	"github.com/taskferry-labs/taskferry-go/internal/exchange"
	"github.com/taskferry-labs/taskferry-go/internal/platform/objectstore"
	"github.com/taskferry-labs/taskferry-go/internal/task"
)

// Querier is the source client contract.
type Querier interface {
	Query(ctx context.Context, req discovery.Request) (json.RawMessage, error)
}

// Putter is the storage sink contract.
type Putter interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error
}

type Operator struct {
	cfg    Config
	source Querier
	sink   Putter

	bucket string
	key    string
}

func New(cfg Config, source Querier, sink Putter) (*Operator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("api_to_storage config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("api_to_storage: source client is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("api_to_storage: storage sink is required")
	}
	bucket, key, err := objectstore.ParseURL(cfg.Destination)
	if err != nil {
		return nil, fmt.Errorf("api_to_storage config: %w", err)
	}
	return &Operator{cfg: cfg, source: source, sink: sink, bucket: bucket, key: key}, nil
}

func (o *Operator) Execute(ctx context.Context, rc *task.RunContext) error {
	rc.Log.Info("transferring api data to storage",
		"service", o.cfg.Service, "endpoint", o.cfg.Endpoint, "destination", o.cfg.Destination)

	rc.Transition(task.StateResolvingParams)
	params, err := o.resolveParams(ctx, rc)
	if err != nil {
		return err
	}

	rc.Transition(task.StateFetching)
	data, err := o.source.Query(ctx, discovery.Request{
		Service:  o.cfg.Service,
		Version:  o.cfg.Version,
		Endpoint: o.cfg.Endpoint,
		Params:   params,
		Paginate: o.cfg.Paginate,
		Retries:  o.cfg.Retries,
	})
	if err != nil {
		return fmt.Errorf("fetch %s/%s %s: %w", o.cfg.Service, o.cfg.Version, o.cfg.Endpoint, err)
	}

	rc.Transition(task.StateMaterializing)
	contentType := o.cfg.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	rc.Transition(task.StateDelivering)
	if err := o.sink.Put(ctx, o.bucket, o.key, data, contentType, o.cfg.Overwrite); err != nil {
		return fmt.Errorf("deliver to %s: %w", o.cfg.Destination, err)
	}

	if o.cfg.PublishResponse {
		rc.Transition(task.StatePublishing)
		if err := o.publish(ctx, rc, data); err != nil {
			return err
		}
	}
	return nil
}

// resolveParams shallow-merges an exchange-supplied override onto the static
// mapping; override keys win. The static mapping is never mutated.
func (o *Operator) resolveParams(ctx context.Context, rc *task.RunContext) (map[string]string, error) {
	params := make(map[string]string, len(o.cfg.Params))
	for k, v := range o.cfg.Params {
		params[k] = v
	}
	if o.cfg.ParamsKey == "" {
		return params, nil
	}

	raw, ok, err := rc.Exchange.Pull(ctx, o.cfg.ParamsTaskIDs, o.cfg.ParamsKey)
	if err != nil {
		return nil, fmt.Errorf("resolve params from exchange key %q: %w", o.cfg.ParamsKey, err)
	}
	if !ok {
		return nil, fmt.Errorf("no exchange value for key %q from tasks %v", o.cfg.ParamsKey, o.cfg.ParamsTaskIDs)
	}
	var override map[string]string
	if err := json.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("exchange value for key %q is not a parameter mapping: %w", o.cfg.ParamsKey, err)
	}
	for k, v := range override {
		params[k] = v
	}
	return params, nil
}

func (o *Operator) publish(ctx context.Context, rc *task.RunContext, data json.RawMessage) error {
	if len(data) >= exchange.MaxValueSize {
		return task.Permanent(fmt.Errorf(
			"fetched data is %d bytes, too large to publish to the exchange (ceiling %d)",
			len(data), exchange.MaxValueSize))
	}
	key := o.cfg.ResponseKey
	if key == "" {
		key = exchange.DefaultKey
	}
	if err := rc.Exchange.Push(ctx, rc.TaskID, key, data); err != nil {
		return fmt.Errorf("publish response under key %q: %w", key, err)
	}
	return nil
}
