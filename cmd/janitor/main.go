package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jeomhps/formation-admin/internal/config"
	"github.com/Jeomhps/formation-admin/internal/db"
	"github.com/Jeomhps/formation-admin/internal/images"
	"github.com/Jeomhps/formation-admin/internal/janitor"
	"github.com/Jeomhps/formation-admin/internal/lock"
	"github.com/Jeomhps/formation-admin/internal/logger"
	"github.com/Jeomhps/formation-admin/internal/store"
)

func main() {
	cfg, err := config.LoadTool()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	once := flag.Bool("once", false, "Run one pass and exit")
	interval := flag.Duration("interval", cfg.JanitorInterval, "Loop interval")
	grace := flag.Duration("grace", cfg.JanitorGrace, "Minimum age of an image before it can be removed")
	flag.Parse()

	if cfg.MongoURI == "" {
		log.Error("MONGO_URI is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := db.Open(cfg.DBDriver, cfg.DSN(), db.Options{PingAttempts: 120})
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer d.Close()

	cctx, ccancel := context.WithTimeout(ctx, 15*time.Second)
	client, gfs, err := images.Connect(cctx, cfg.MongoURI, cfg.MongoDB, cfg.ImageBucket)
	ccancel()
	if err != nil {
		log.Error("image store", "err", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	j := janitor.Janitor{
		Refs:   store.New(d),
		Images: gfs,
		Grace:  *grace,
		Logger: log,
	}

	run := func() {
		// SQLite deployments are single-node; only MySQL needs the lock.
		if d.Driver == db.DriverMySQL {
			l, err := lock.Acquire(ctx, d, cfg.LockName, cfg.LockWait)
			if errors.Is(err, lock.ErrHeld) {
				log.Info("skip run", "reason", "another replica holds the lock", "lock", cfg.LockName)
				return
			}
			if err != nil {
				log.Error("acquire lock", "err", err)
				return
			}
			defer func() {
				if err := l.Release(); err != nil {
					log.Warn("release lock", "err", err)
				}
			}()
		}
		pass(ctx, log, j)
	}

	if *once {
		run()
		return
	}

	log.Info("starting janitor loop", "interval", interval.String(), "grace", grace.String())
	t := time.NewTicker(*interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			log.Info("janitor exiting gracefully")
			return
		case <-t.C:
			run()
		}
	}
}

func pass(ctx context.Context, log *slog.Logger, j janitor.Janitor) {
	n, err := j.RunOnce(ctx)
	if err != nil && ctx.Err() == nil {
		log.Error("janitor pass", "err", err)
		return
	}
	if n > 0 {
		log.Info("removed orphan images", "count", n)
	} else {
		log.Debug("no orphan images")
	}
}
