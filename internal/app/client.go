package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/internal/adapter/httpclient"
	"github.com/niksmo/korzina/internal/adapter/kafka"
	"github.com/niksmo/korzina/internal/adapter/tui"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/niksmo/korzina/internal/core/service"
)

var _ tui.SessionOpener = (*ClientApp)(nil)

// A ClientApp runs the terminal storefront against the remote catalog.
type ClientApp struct {
	ctx context.Context
	cfg config.Config

	logFile  *os.File
	querier  port.ProductQuerier
	observer port.ShopObserver
	events   *kafka.ShopEventsProducer
	sessions sync.WaitGroup
}

func NewClient(ctx context.Context, cfg config.Config) *ClientApp {
	app := &ClientApp{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initQuerier()
	app.initObserver()

	return app
}

// initLogger keeps logs off the terminal screen.
func (app *ClientApp) initLogger() {
	const op = "ClientApp.initLogger"

	if app.cfg.LogFile == "" {
		initLogger(io.Discard, app.cfg.LogLevel)
		return
	}

	f, err := os.OpenFile(app.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fallDown(op, err)
	}
	app.logFile = f
	initLogger(f, app.cfg.LogLevel)
}

func (app *ClientApp) initQuerier() {
	const op = "ClientApp.initQuerier"

	q, err := httpclient.NewProductQueryService(
		app.cfg.Catalog.BaseURL,
		httpclient.TimeoutOpt(app.cfg.Catalog.Timeout),
		httpclient.RetryAttemptsOpt(app.cfg.Catalog.RetryAttempts),
	)
	if err != nil {
		fallDown(op, err)
	}
	app.querier = q
}

func (app *ClientApp) initObserver() {
	const op = "ClientApp.initObserver"

	if !app.cfg.Broker.Enabled() {
		return
	}

	tlsConfig := brokerTLS(app.cfg)

	serde, err := newShopEventSerde(app.ctx, app.cfg, tlsConfig)
	if err != nil {
		fallDown(op, err)
	}

	p, err := kafka.NewShopEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.Topics.ShopEvents,
			tlsConfig,
		),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		fallDown(op, err)
	}
	app.events = &p
	app.observer = p
}

// Open starts a shop session bound to the application lifetime.
func (app *ClientApp) Open(
	shopID string, display port.ProductsDisplay,
) (port.ShopSession, error) {
	s, err := service.NewShopScreen(
		shopID, app.querier, display, service.WithShopObserver(app.observer),
	)
	if err != nil {
		return nil, err
	}

	app.sessions.Add(1)
	go func() {
		defer app.sessions.Done()
		s.Run(app.ctx)
	}()
	return s, nil
}

func (app *ClientApp) Run() error {
	slog.Info("client is running", "catalog", app.cfg.Catalog.BaseURL)
	return tui.Run(app.ctx, app)
}

func (app *ClientApp) Close() {
	app.sessions.Wait()

	if app.events != nil {
		app.events.Close()
	}

	slog.Info("client is closed")

	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}
