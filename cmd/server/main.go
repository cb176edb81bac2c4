// Package main runs the launch accompaniment server: trade ledger, price
// history, wallet profiles, and per-token chat over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sames-backend/internal/auth"
	"sames-backend/internal/chat"
	"sames-backend/internal/ledger"
	"sames-backend/internal/pricehistory"
	"sames-backend/internal/server"
	"sames-backend/internal/storage"
	chstore "sames-backend/internal/storage/clickhouse"
	"sames-backend/internal/storage/memory"
	"sames-backend/internal/storage/migrations"
	pgstore "sames-backend/internal/storage/postgres"
	"sames-backend/internal/storage/rediscache"
)

// stores holds one implementation of each storage interface.
type stores struct {
	trades    storage.TradeStore
	snapshots storage.SnapshotStore
	profiles  storage.ProfileStore
	messages  storage.ChatStore
}

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	// Flags with env vars as defaults.
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for profile caching (optional)")
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	authEnabled := flag.Bool("auth-enabled", envBool("AUTH_ENABLED"), "Require wallet signatures on writes")
	debug := flag.Bool("debug", envBool("DEBUG"), "Enable debug logging")

	flag.Parse()

	setupLogging(*debug)

	if !*useMemory {
		if *postgresDSN == "" {
			log.Fatal().Msg("--postgres-dsn is required (or use --use-memory)")
		}
		if *clickhouseDSN == "" {
			log.Fatal().Msg("--clickhouse-dsn is required (or use --use-memory)")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *redisAddr, *useMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("storage initialization failed")
	}
	defer cleanup()

	hub := chat.NewHub()
	srv := server.New(
		ledger.NewService(st.trades, st.profiles),
		pricehistory.NewService(st.snapshots),
		chat.NewService(st.messages, st.profiles, hub),
		hub,
		st.profiles,
		auth.NewGate(*authEnabled),
	)

	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", *listenAddr).
			Bool("auth_enabled", *authEnabled).
			Bool("memory", *useMemory).
			Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// createStores builds the storage layer: in-memory for development, or
// PostgreSQL (trades, profiles, chat) plus ClickHouse (price snapshots)
// with an optional Redis profile cache. Migrations run on startup.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN, redisAddr string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		st := &stores{
			trades:    memory.NewTradeStore(),
			snapshots: memory.NewSnapshotStore(),
			profiles:  memory.NewProfileStore(),
			messages:  memory.NewChatStore(),
		}
		return st, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	var profiles storage.ProfileStore = pgstore.NewProfileStore(pool)

	closeRedis := func() {}
	if redisAddr != "" {
		rc, err := rediscache.New(ctx, rediscache.ClientConfig{Addr: redisAddr})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, profile caching disabled")
		} else {
			profiles = rediscache.NewProfileStore(rc, profiles)
			closeRedis = func() { _ = rc.Close() }
			log.Info().Str("addr", redisAddr).Msg("profile cache enabled")
		}
	}

	st := &stores{
		trades:    pgstore.NewTradeStore(pool),
		snapshots: chstore.NewSnapshotStore(chConn),
		profiles:  profiles,
		messages:  pgstore.NewChatStore(pool),
	}

	cleanup := func() {
		closeRedis()
		chConn.Close()
		pool.Close()
	}

	return st, cleanup, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
