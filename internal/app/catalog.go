package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/internal/adapter/httphandler"
	"github.com/niksmo/korzina/internal/adapter/kafka"
	"github.com/niksmo/korzina/internal/adapter/storage"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/niksmo/korzina/internal/core/service"
)

// A CatalogApp serves the product catalog over HTTP.
//
// With brokers configured it also folds shop events into per shop stats.
type CatalogApp struct {
	ctx context.Context
	cfg config.Config

	storage    storage.SQLStorage
	catalog    port.CatalogReader
	statsProc  port.ShopStatsProcessor
	statsView  *kafka.ShopStatsView
	httpServer httphandler.HTTPServer
	wg         sync.WaitGroup
}

func NewCatalog(ctx context.Context, cfg config.Config) *CatalogApp {
	app := &CatalogApp{ctx: ctx, cfg: cfg}

	initLogger(os.Stderr, cfg.LogLevel)
	app.initStorage()
	app.initStats()
	app.initHTTPServer()

	return app
}

func (app *CatalogApp) initStorage() {
	const op = "CatalogApp.initStorage"

	s, err := storage.NewSQLStorage(app.ctx, app.cfg.SQLDB)
	if err != nil {
		fallDown(op, err)
	}
	app.storage = s
	app.catalog = service.NewCatalogService(s.Catalog())
}

func (app *CatalogApp) initStats() {
	const op = "CatalogApp.initStats"

	if !app.cfg.Broker.Enabled() {
		slog.Info("brokers are not configured, shop stats are disabled", "op", op)
		return
	}

	tlsConfig := brokerTLS(app.cfg)
	kafka.ApplyTLS(tlsConfig)

	serde, err := newShopEventSerde(app.ctx, app.cfg, tlsConfig)
	if err != nil {
		fallDown(op, err)
	}

	seedBrokers := app.cfg.Broker.SeedBrokers
	group := app.cfg.Broker.Consumers.ShopStatsGroup

	proc, err := kafka.NewShopStatsProc(
		seedBrokers, app.cfg.Broker.Topics.ShopEvents, group, serde,
	)
	if err != nil {
		fallDown(op, err)
	}

	view, err := kafka.NewShopStatsView(seedBrokers, group)
	if err != nil {
		fallDown(op, err)
	}

	app.statsProc = proc
	app.statsView = view
}

func (app *CatalogApp) initHTTPServer() {
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, app.catalog)
	if app.statsView != nil {
		httphandler.RegisterShopStats(mux, app.statsView)
	}
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, mux)
}

func (app *CatalogApp) Run(stopFn context.CancelFunc) {
	if app.statsProc != nil {
		app.wg.Add(2)
		go app.statsProc.Run(app.ctx, stopFn, &app.wg)
		go app.statsView.Run(app.ctx, stopFn, &app.wg)
	}

	app.wg.Add(1)
	app.httpServer.Run(app.ctx, stopFn, &app.wg)
	app.wg.Wait()

	slog.Info("application is running")
}

func (app *CatalogApp) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.statsProc != nil {
		app.statsProc.Close()
	}
	app.storage.Close()

	slog.Info("application is closed")
}
