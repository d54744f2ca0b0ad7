package main

import (
	"fmt"
	"os"

	"github.com/niksmo/korzina/config"
	"github.com/niksmo/korzina/internal/app"
	"github.com/niksmo/korzina/pkg/sigctx"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()

	client := app.NewClient(sigCtx, cfg)
	defer client.Close()

	if err := client.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "korzina: %v\n", err)
		closeApp()
		client.Close()
		os.Exit(1)
	}
}
