package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goaccelovate/ai-chat-backend/internal/config"
	"github.com/goaccelovate/ai-chat-backend/internal/db"
	"github.com/goaccelovate/ai-chat-backend/internal/httpapi"
	"github.com/goaccelovate/ai-chat-backend/internal/settings"
	"github.com/goaccelovate/ai-chat-backend/internal/store/rabbitmq"
	"github.com/goaccelovate/ai-chat-backend/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	st := settings.NewStore(gdb)
	if err := st.EnsureDefaults(context.Background()); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	var rds *redisstore.Store
	if cfg.RedisAddr != "" {
		rds = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
	}

	var events *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		events, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbit connect failed, events disabled: %v", err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	r := httpapi.NewRouter(gdb, cfg, rds, events)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
