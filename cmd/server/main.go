package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/playmatatu/chapas/internal/api"
	"github.com/playmatatu/chapas/internal/auth"
	"github.com/playmatatu/chapas/internal/config"
	"github.com/playmatatu/chapas/internal/database"
	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/migrations"
	"github.com/playmatatu/chapas/internal/redis"
	"github.com/playmatatu/chapas/internal/session"
	"github.com/playmatatu/chapas/internal/store"
	"github.com/playmatatu/chapas/internal/transport"
	"github.com/playmatatu/chapas/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	role, err := match.ParseRole(cfg.MatchRole)
	if err != nil {
		log.Fatalf("Invalid MATCH_ROLE: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres keeps match history; optional
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("[DB] DATABASE_URL not set, match history disabled")
	}

	// Redis keeps the latest frame and carries events; optional
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL not set, frame cache disabled")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	history := store.NewSQLStore(db)
	frames := store.NewRedisStore(rdb)
	matches := session.NewManager()

	var peers *transport.WSAcceptor
	if role == match.RoleAcceptor && cfg.PeerTransport == "websocket" {
		peers = transport.NewWSAcceptor()
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, api.Deps{
		Config:  cfg,
		Matches: matches,
		Hub:     hub,
		History: history,
		Frames:  frames,
		Peers:   peers,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("Starting chapas server on port %s (role=%s)", cfg.Port, role)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	go func() {
		if err := startMatch(ctx, cfg, role, peers, matches, []session.Sink{hub, frames, history}); err != nil {
			if ctx.Err() == nil {
				log.Printf("[MATCH] Failed to start match: %v", err)
			}
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	matches.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// startMatch opens the peer link for online roles and runs the match.
func startMatch(ctx context.Context, cfg *config.Config, role match.Role, peers *transport.WSAcceptor, matches *session.Manager, sinks []session.Sink) error {
	var policy match.NetworkPolicy
	if role != match.RoleLocal {
		link, err := openLink(ctx, cfg, role, peers)
		if err != nil {
			return err
		}
		policy = match.NewOnlinePolicy(role, link)
	}

	s, err := session.New(session.Options{
		Role:          role,
		Policy:        policy,
		Viewport:      match.Viewport{Width: float32(cfg.ViewportWidth), Height: float32(cfg.ViewportHeight)},
		SnapshotEvery: cfg.SnapshotEveryFrames,
		Sinks:         sinks,
	})
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return matches.Start(ctx, s)
}

func openLink(ctx context.Context, cfg *config.Config, role match.Role, peers *transport.WSAcceptor) (io.ReadWriteCloser, error) {
	switch {
	case role == match.RoleAcceptor && peers != nil:
		log.Printf("[PEER] Waiting for a connector on /api/v1/peer/ws")
		return peers.Accept(ctx)

	case role == match.RoleAcceptor:
		ln, err := transport.Listen(cfg.PeerAddr)
		if err != nil {
			return nil, err
		}
		defer ln.Close()
		log.Printf("[PEER] Waiting for a connector on %s", cfg.PeerAddr)
		return transport.AcceptOne(ctx, ln)

	case cfg.PeerTransport == "websocket":
		ttl := time.Duration(cfg.PeerTokenTTLMinutes) * time.Minute
		token, err := auth.IssuePeerToken(cfg.PeerSecret, "connector", ttl)
		if err != nil {
			return nil, err
		}
		return transport.DialWebSocket(ctx, cfg.PeerURL, token)

	default:
		return transport.Dial(ctx, cfg.PeerAddr)
	}
}
