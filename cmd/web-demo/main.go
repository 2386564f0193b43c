// Command web-demo plays scripted matches on the demo catalog and streams
// their presentation feed to a browser.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/norsecards/ragnarok-engine/internal/presentation"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var indexHTML []byte

const demoGameID = "demo"

// demoDeck mixes vanilla minions, keyword minions, a mech, a spell and a
// weapon from the demo catalog.
var demoDeck = []int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	17, 22, 200, 300, 5, 1, 2, 3, 4, 6,
	7, 8, 9, 10, 17, 22, 200, 300, 5, 6,
}

func main() {
	addr := pflag.String("addr", ":8080", "listen address")
	pace := pflag.Duration("pace", 1500*time.Millisecond, "pause between scripted actions")
	step := pflag.Duration("step", 1200*time.Millisecond, "playback time of one combat step")
	rate := pflag.Float64("rate", 20, "max feed messages per second per client")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cat := catalog.New(nil, logger.Named("catalog"))
	if err := cat.Load(context.Background()); err != nil {
		logger.Fatal("failed to load demo catalog", zap.Error(err))
	}
	engine := game.NewEngine(logger.Named("engine"), cat, game.Config{
		StepDuration: *step,
		Autoplay:     true,
	})
	defer engine.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})
	mux.HandleFunc("GET /state", func(w http.ResponseWriter, _ *http.Request) {
		view, err := engine.View(demoGameID, state.SideSelf)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	})
	mux.Handle("GET "+presentation.FeedPath+"{id}", presentation.NewFeed(engine, *rate, logger.Named("feed")))
	httpServer := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d := &director{engine: engine, logger: logger.Named("director"), pace: *pace}
		return d.run(gctx)
	})
	g.Go(func() error {
		logger.Info("web demo listening",
			zap.String("address", *addr),
			zap.String("feed", presentation.FeedPath+demoGameID),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("web demo stopped", zap.Error(err))
	}
}
