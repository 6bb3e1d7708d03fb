package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"hellorun/internal/metrics"
	"hellorun/internal/platform"

	"github.com/nats-io/nats.go/jetstream"
)

func main() {
	metrics.Init()
	platform.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	appCfg := platform.LoadAppConfig()

	nc, ns, err := platform.RunEmbeddedServer(*appCfg.NatsCfg)
	if err != nil {
		slog.Error("Failed to start embedded server", "err", err)
		os.Exit(1)
	}
	defer ns.Shutdown()
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.Error("JetStream context error", "err", err)
		os.Exit(1)
	}

	var httpErrCh <-chan error
	if !appCfg.Flags.Headless {
		httpErrCh = platform.RunHTTPServer(ctx, js, *appCfg.HTTPSrvCfg)
	} else {
		// Dummy channel that never sends.
		ch := make(chan error)
		httpErrCh = ch
	}

	go func() {
		if err := <-httpErrCh; err != nil && err != context.Canceled {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	platform.Run(ctx, js, appCfg.RunnerCfg)
}
