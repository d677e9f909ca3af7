package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskferry-labs/taskferry-go/internal/discovery"
	"github.com/taskferry-labs/taskferry-go/internal/exchange"
	"github.com/taskferry-labs/taskferry-go/internal/platform/env"
	"github.com/taskferry-labs/taskferry-go/internal/platform/objectstore"
	"github.com/taskferry-labs/taskferry-go/internal/platform/postgres"
	"github.com/taskferry-labs/taskferry-go/internal/platform/slackmsg"
	"github.com/taskferry-labs/taskferry-go/internal/runner"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskFile := flag.String("f", "tasks.yaml", "task definition file")
	flag.Parse()

	def, err := runner.LoadDefinition(*taskFile)
	if err != nil {
		logger.Error("invalid task definition", "file", *taskFile, "error", err)
		os.Exit(2)
	}

	deps, cleanup, err := buildDeps(ctx, logger, def)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	defer cleanup()

	r, err := runner.New(deps)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	results, runErr := r.Run(ctx, def)
	for _, res := range results {
		logger.Info("task result", "task_id", res.TaskID, "state", string(res.State))
	}
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}

func buildDeps(ctx context.Context, logger *slog.Logger, def runner.Definition) (runner.Deps, func(), error) {
	deps := runner.Deps{Log: logger}
	cleanup := func() {}

	needsAPI, needsSQL := false, false
	for _, t := range def.Tasks {
		switch t.Type {
		case runner.TypeAPIToStorage:
			needsAPI = true
		case runner.TypeSQLToSlack:
			needsSQL = true
		}
	}

	var db *sql.DB
	openDB := func() (*sql.DB, error) {
		if db != nil {
			return db, nil
		}
		dbCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		db, err = postgres.Open(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("database unavailable: %w", err)
		}
		cleanup = func() { _ = db.Close() }
		return db, nil
	}

	switch backend := env.String("TASKFERRY_EXCHANGE", "memory"); backend {
	case "memory":
		deps.Exchange = exchange.NewMemory()
	case "postgres":
		conn, err := openDB()
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		ex, err := exchange.NewPostgres(conn)
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		if err := ex.EnsureSchema(ctx); err != nil {
			return runner.Deps{}, cleanup, err
		}
		deps.Exchange = ex
	default:
		return runner.Deps{}, cleanup, fmt.Errorf("unknown exchange backend %q", backend)
	}

	if needsAPI {
		apiCfg, err := discovery.ConfigFromEnv()
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		source, err := discovery.NewClient(ctx, apiCfg)
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		deps.Source = source

		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		client, err := objectstore.NewClient(storeCfg)
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		for _, bucket := range destinationBuckets(def) {
			if err := objectstore.EnsureBucket(ctx, client, bucket, storeCfg.Region); err != nil {
				return runner.Deps{}, cleanup, fmt.Errorf("ensure bucket %s: %w", bucket, err)
			}
		}
		store, err := objectstore.NewStoreWithClient(client)
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		deps.Store = store
	}

	if needsSQL {
		conn, err := openDB()
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		deps.DB = conn

		slackCfg, err := slackmsg.ConfigFromEnv()
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		sender, err := slackmsg.NewSender(slackCfg)
		if err != nil {
			return runner.Deps{}, cleanup, err
		}
		deps.Slack = sender
	}

	return deps, cleanup, nil
}

// destinationBuckets lists the distinct buckets the run delivers into,
// in first-use order. Destinations were validated with the definition.
func destinationBuckets(def runner.Definition) []string {
	var buckets []string
	seen := make(map[string]struct{})
	for _, t := range def.Tasks {
		if t.Type != runner.TypeAPIToStorage || t.APIToStorage == nil {
			continue
		}
		bucket, _, err := objectstore.ParseURL(t.APIToStorage.Destination)
		if err != nil {
			continue
		}
		if _, ok := seen[bucket]; ok {
			continue
		}
		seen[bucket] = struct{}{}
		buckets = append(buckets, bucket)
	}
	return buckets
}
