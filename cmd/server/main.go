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

	"github.com/gin-gonic/gin"

	"github.com/vladimirvolkov/bucketshot/internal/api"
	"github.com/vladimirvolkov/bucketshot/internal/config"
	"github.com/vladimirvolkov/bucketshot/internal/game"
	"github.com/vladimirvolkov/bucketshot/internal/middleware"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

// GameManager starts a room for every accepted connection.
type GameManager struct {
	hub      *ws.Hub
	cfg      *config.Config
	store    stats.Store
	recorder *stats.Recorder
}

func (gm *GameManager) CreateRoom(c *ws.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	rec, err := stats.LoadOrZero(ctx, gm.store, c.Nickname)
	cancel()
	if err != nil {
		log.Printf("[ROOM] load stats for %s: %v", c.Nickname, err)
	}

	t := gm.cfg.Tuning
	room := game.NewRoom(c, c.Nickname, game.RoomConfig{
		Width:    t.Arena.Width,
		Height:   t.Arena.Height,
		Params:   t.Physics,
		Assist:   t.Assist,
		Record:   rec,
		Recorder: gm.recorder,
	})
	room.Start(context.Background())
	go func() {
		<-room.Done()
		c.Close()
		gm.hub.RoomEnded()
	}()
}

func main() {
	// Write logs to stdout so the host doesn't mark them as errors
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store stats.Store = stats.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := stats.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		store = stats.NewRedisStore(rdb)
		log.Println("[STATS] using Redis store")
	} else {
		log.Println("[STATS] REDIS_URL not set, stats live in memory")
	}

	var attempts *stats.AttemptLog
	var attemptWriter stats.AttemptWriter
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] running migrations on startup")
			if err := stats.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		db, err := stats.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		attempts = stats.NewAttemptLog(db)
		attemptWriter = attempts
	} else {
		log.Println("[STATS] DATABASE_URL not set, attempt history disabled")
	}

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorder := stats.NewRecorder(store, attemptWriter, 256)
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(recorderCtx)
		close(recorderDone)
	}()

	limiter := middleware.NewIPRateLimiter(cfg.MaxConnsPerIP, cfg.MsgRatePerSec, time.Second)
	defer limiter.Stop()

	manager := &GameManager{cfg: cfg, store: store, recorder: recorder}
	hub := ws.NewHub(manager, limiter, cfg.AllowedOrigins, cfg.MaxRooms)
	manager.hub = hub

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := api.Deps{
		Hub:            hub,
		Store:          store,
		Limiter:        limiter,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if attempts != nil {
		deps.Attempts = attempts
	}
	router := api.NewRouter(deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Hijacked websocket connections are not waited for; rooms die with the process.
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
		}
	}()

	log.Printf("bucketshot server starting on :%s (%s)", cfg.Port, cfg.Environment)
	log.Printf("serving static files from %s", cfg.StaticDir)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}

	stopRecorder()
	<-recorderDone
	log.Println("server stopped")
}
