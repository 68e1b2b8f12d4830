// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// regiond is the region controller daemon. At start-up it installs
// the trigger bindings (idempotently replacing any previous
// definitions), then tails the notification channels.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
	"github.com/juju/pubsub/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dut3062796s/maas/core/notify"
	"github.com/dut3062796s/maas/internal/database"
	"github.com/dut3062796s/maas/internal/listener"
	"github.com/dut3062796s/maas/internal/schema"
	"github.com/dut3062796s/maas/internal/trigger"
)

var logger = loggo.GetLogger("regiond")

func main() {
	configPath := gnuflag.String("config", "/etc/maas/regiond.yaml", "path to the regiond configuration file")
	gnuflag.Parse(true)

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "regiond: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	config, err := ReadConfig(configPath)
	if err != nil {
		return errors.Trace(err)
	}
	if err := loggo.ConfigureLoggers(config.LoggingConfig); err != nil {
		return errors.Trace(err)
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return errors.Annotate(err, "opening region database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := schema.RegionDDL().Ensure(ctx, db); err != nil {
		return errors.Trace(err)
	}

	registry := trigger.NewRegistry()
	if err := trigger.RegisterAll(registry); err != nil {
		// Never serve with a partially-registered trigger table.
		return errors.Trace(err)
	}

	hub := pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
		Logger: loggo.GetLogger("regiond.hub"),
	})

	// The runner is the mutation path handed to the API workers; the
	// sanity check here makes a bad database path fail start-up
	// instead of the first request.
	runner := database.NewTxnRunner(db, registry, trigger.NewHubEmitter(hub))
	if err := runner.StdTxn(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var nodes int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM node").Scan(&nodes); err != nil {
			return errors.Trace(err)
		}
		logger.Infof("tracking %d nodes", nodes)
		return nil
	}); err != nil {
		return errors.Trace(err)
	}

	l, err := listener.New(listener.Config{
		Hub:   hub,
		Clock: clock.WallClock,
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		l.Kill()
		_ = l.Wait()
	}()
	logger.Infof("regiond started, watching %d channels", len(notify.Channels()))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-signals:
			logger.Infof("shutting down on %v", sig)
			return nil
		case n, ok := <-l.Changes():
			if !ok {
				return errors.New("listener stopped unexpectedly")
			}
			logger.Infof("notification %s(%s)", n.Channel, n.Payload)
		}
	}
}
