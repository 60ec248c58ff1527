// playd replays the contract's event log into a materialized world,
// persisting per-block snapshots, and serves the read API over it.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apihttp "thistoken/indexer/api/http"
	"thistoken/indexer/api/http/controller/home"
	"thistoken/indexer/chain"
	"thistoken/indexer/config"
	"thistoken/indexer/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GetConfig()
	log.Setup(cfg.Log.File, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := chain.NewSession(ctx, cfg)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}
	home.SetSession(session)

	engine := gin.Default()
	engine.Use(cors.Default())
	apihttp.Routers(engine.Group("/api"))

	server := &http.Server{Addr: cfg.HTTP.Listen, Handler: engine}
	go func() {
		log.Infof("http listening on %s", cfg.HTTP.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server: %v", err)
		}
	}()

	err = session.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("replay session: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	log.Info("playd stopped")
}
