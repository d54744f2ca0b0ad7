package main

import (
	"context"
	"time"

	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/internal/app"
	"github.com/niksmo/korzina/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	catalog := app.NewCatalog(sigCtx, cfg)

	catalog.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	catalog.Close(ctx)
}
