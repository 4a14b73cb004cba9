// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/service"
	"github.com/hostlog/hostlog/models"
)

// App is the concrete headless client runtime.
//
// It coordinates authentication, the server version check, initial
// synchronization, and the periodic background sync job, then blocks until
// the process receives a termination signal.
type App struct {
	services  *service.ClientServices
	adapter   adapter.ServerAdapter
	cfg       *config.ClientConfig
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

// NewApp constructs an [App] using the provided services, server adapter,
// configuration, and build metadata.
func NewApp(services *service.ClientServices, serverAdapter adapter.ServerAdapter, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	return &App{
		services:  services,
		adapter:   serverAdapter,
		cfg:       cfg,
		buildInfo: buildInfo,
		logger:    logger,
	}, nil
}

// Run executes the full client lifecycle.
//
// Flow:
//  1. Check the server version against the configured minimum.
//  2. Register or log in with the configured credentials; this installs
//     the derived KEK into the crypto service.
//  3. Perform an initial full sync (non-fatal warning on failure).
//  4. Start the periodic background sync job.
//  5. Block until SIGINT/SIGTERM, then stop the job and exit.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info().
		Str("version", a.buildInfo.BuildVersion()).
		Str("commit", a.buildInfo.BuildCommit()).
		Msg("starting client")

	if err := a.checkServerVersion(ctx); err != nil {
		return err
	}

	session, err := a.login(ctx)
	if err != nil {
		return err
	}
	a.logger.Info().Int64("user_id", session.UserID).Msg("authenticated")

	if summary, syncErr := a.services.SyncEngine.Sync(ctx); syncErr != nil {
		fmt.Fprintf(os.Stderr, "sync warning: %v\n", syncErr)
	} else if failErr := summary.Err(); failErr != nil {
		fmt.Fprintf(os.Stderr, "sync warning: %v\n", failErr)
	}

	a.services.SyncJob.Start(ctx, a.cfg.Sync.Interval)
	defer a.services.SyncJob.Stop()

	<-ctx.Done()
	a.logger.Info().Msg("shutting down client")

	return nil
}

// login authenticates with the configured credentials, registering a fresh
// account first when requested.
func (a *App) login(ctx context.Context) (service.Session, error) {
	if a.cfg.Auth.Register {
		return a.services.AuthService.Register(ctx, a.cfg.Auth.Login, a.cfg.Auth.MasterPassword)
	}
	return a.services.AuthService.Login(ctx, a.cfg.Auth.Login, a.cfg.Auth.MasterPassword)
}

// checkServerVersion refuses to run against a relay older than the
// configured minimum. An empty minimum disables the check.
func (a *App) checkServerVersion(ctx context.Context) error {
	min := a.cfg.App.MinServerVersion
	if min == "" {
		return nil
	}

	version, err := a.adapter.ServerVersion(ctx)
	if err != nil {
		return fmt.Errorf("fetch server version: %w", err)
	}

	if compareVersions(version, min) < 0 {
		return fmt.Errorf("%w: server %q, minimum %q", service.ErrServerTooOld, version, min)
	}

	a.logger.Debug().Str("server_version", version).Str("min_version", min).Msg("server version accepted")
	return nil
}

// compareVersions compares two dotted numeric version strings, returning
// -1, 0, or 1. Non-numeric segments compare as zero.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(strings.TrimSpace(as[i]))
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(strings.TrimSpace(bs[i]))
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
