// Package server wires the application together: configuration, storage,
// credential cache, token issuer, services and the HTTP endpoint, with
// graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/talkroom/talkroom/internal/logging"
	"github.com/talkroom/talkroom/internal/server/auth"
	"github.com/talkroom/talkroom/internal/server/config"
	ht "github.com/talkroom/talkroom/internal/server/http"
	"github.com/talkroom/talkroom/internal/server/members"
	"github.com/talkroom/talkroom/internal/server/rooms"
	"github.com/talkroom/talkroom/internal/server/shared/db"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	httpSrv *ht.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	manager, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	cache := members.NewLRUCache(cfg.CacheSize, cfg.CacheTTL)

	memberSvc := members.NewService(manager.Members(), cache, issuer, cfg, logger)
	roomSvc := rooms.NewService(manager.Rooms(), manager.Members(), cfg, logger)

	httpSrv := ht.NewServer(cfg.EndpointAddrHTTP, issuer, memberSvc, roomSvc, logger)

	return &App{config: cfg, logger: logger, manager: manager, httpSrv: httpSrv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
