// Package bootstrap wires configuration into the store, cache, AI and backup
// dependencies shared by every binary.
package bootstrap

import (
	"context"
	"fmt"

	"invoizo/internal/ai"
	"invoizo/internal/app"
	"invoizo/internal/config"
	"invoizo/internal/core"
	"invoizo/internal/db"
	"invoizo/internal/export"
	"invoizo/internal/store"

	"github.com/sirupsen/logrus"
)

// Runtime is the wired application plus what a binary needs to shut it down.
type Runtime struct {
	Store   store.Store
	Service app.ApplicationService
	// Locker is nil without Redis; the poller then runs unlocked.
	Locker core.Locker

	closers []func()
}

// Close releases connections in reverse order of opening.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// Open connects to Postgres (or keeps everything in memory when memory is
// true), puts the Redis cache in front when configured, and builds the
// application service.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger, memory bool) (*Runtime, error) {
	store.SetLogger(logger)
	rt := &Runtime{}

	var base store.Store
	if memory {
		logger.Warn("using in-memory store; data is lost on exit")
		base = store.NewMemoryStore()
	} else {
		pool, err := db.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		base = store.NewPGStore(pool, cfg.Store.Namespace)
	}
	rt.Store = base

	rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// The cache is optional; run against the base store.
		logger.WithError(err).Warn("redis unavailable, continuing without cache")
	}
	if rdb != nil {
		rt.closers = append(rt.closers, func() { _ = rdb.Close() })
		rt.Store = store.NewCachedStore(base, rdb, cfg.Store.Namespace, cfg.Redis.CacheTTL)
		rt.Locker = store.NewRedisLocker(rdb, cfg.Store.Namespace)
		logger.WithField("addr", cfg.Redis.Addr).Info("redis cache enabled")
	}

	cfo := ai.NewCFO(cfg.AI.APIKey, cfg.AI.Model)
	if !cfo.Configured() {
		logger.Warn("OPENAI_API_KEY is not set; the CFO assistant is disabled")
	}

	archiver := &export.Archiver{Store: rt.Store, Bucket: cfg.Backup.Bucket, Prefix: cfg.Backup.Prefix}
	if cfg.Backup.Bucket != "" {
		client, err := export.NewS3Client(ctx, export.S3Config{
			Region:    cfg.Backup.Region,
			Endpoint:  cfg.Backup.Endpoint,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		archiver.Client = client
		logger.WithField("bucket", cfg.Backup.Bucket).Info("backups go to object storage")
	}

	rt.Service = app.NewAppService(rt.Store, cfo, archiver)
	return rt, nil
}

// Poller builds the notification poller for rt using the config interval.
func (r *Runtime) Poller(cfg *config.Config, logger logrus.FieldLogger) *core.NotificationPoller {
	p := &core.NotificationPoller{
		Notifications: core.NewNotificationService(r.Store),
		Reports:       core.NewReportingService(r.Store),
		Interval:      cfg.Notifications.PollInterval,
		Logger:        logger,
		OnCheck:       app.RecordNotifications,
	}
	if r.Locker != nil {
		p.Locker = r.Locker
	}
	return p
}
