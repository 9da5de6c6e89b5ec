package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hast-app/hastauth"
	"github.com/hast-app/hastauth/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// errFailedResult makes the process exit 1 after a failure Result was
// already printed.
var errFailedResult = errors.New("operation failed")

// app lazily builds the client on first use so that flag parsing and
// config errors surface before any store is opened.
type app struct {
	flags *globalFlags

	cfg     hastauth.Config
	logger  zerolog.Logger
	client  *hastauth.Client
	closers []func()
}

func (a *app) loadConfig() (fileConfig, error) {
	fc, err := loadFileConfig(a.flags.configPath)
	if err != nil {
		return fileConfig{}, err
	}
	if a.flags.env != "" {
		fc.Environment = a.flags.env
	}
	if a.flags.baseURL != "" {
		fc.BaseURL = a.flags.baseURL
	}
	if a.flags.debug {
		debug := true
		fc.Debug = &debug
	}
	if a.flags.store != "" {
		fc.Store.Kind = a.flags.store
	}
	if a.flags.storePath != "" {
		fc.Store.Path = a.flags.storePath
	}
	if a.flags.redisAddr != "" {
		fc.Store.RedisAddr = a.flags.redisAddr
	}
	return fc, nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (a *app) Client(ctx context.Context) (*hastauth.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	fc, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := fc.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Debug)

	store, err := a.openStore(ctx, fc.Store)
	if err != nil {
		return nil, err
	}

	b := hastauth.New().
		WithConfig(cfg).
		WithStore(store).
		WithLogger(a.logger)

	switch {
	case fc.AuditLog != "":
		f, err := os.OpenFile(fc.AuditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.closers = append(a.closers, func() { _ = f.Close() })
		b.WithAuditSink(hastauth.NewJSONWriterSink(f))
	case a.flags.audit:
		b.WithAuditSink(hastauth.NewZerologSink(a.logger.Level(zerolog.InfoLevel)))
	}

	client, err := b.Build()
	if err != nil {
		return nil, err
	}
	// The client flushes audit events before the store closes.
	a.closers = append([]func(){client.Close}, a.closers...)
	a.client = client

	for _, w := range cfg.Lint() {
		a.logger.Debug().Str("code", w.Code).Msg(w.Message)
	}
	return client, nil
}

func (a *app) openStore(ctx context.Context, sc storeConfig) (hastauth.Store, error) {
	switch strings.ToLower(sc.Kind) {
	case "", "sqlite":
		path := sc.Path
		if path == "" {
			p, err := session.DefaultSQLitePath()
			if err != nil {
				return nil, fmt.Errorf("resolve sqlite path: %w", err)
			}
			path = p
		}
		store, err := session.OpenSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.logger.Debug().Str("path", path).Msg("using sqlite credential store")
		return store, nil

	case "redis":
		if sc.RedisAddr == "" {
			return nil, errors.New("--redis-addr is required with --store redis")
		}
		rdb := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		store := session.NewRedisStore(rdb, sc.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.logger.Debug().Str("addr", sc.RedisAddr).Msg("using redis credential store")
		return store, nil

	case "memory":
		return session.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store %q", sc.Kind)
	}
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
	a.closers = nil
}

// printResult writes res as indented JSON and maps a failure to
// errFailedResult.
func printResult(cmd *cobra.Command, res hastauth.Result) error {
	if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Success {
		return errFailedResult
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// runWithClient is the RunE shape shared by every session command.
func runWithClient(a *app, fn func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := a.Client(ctx)
		if err != nil {
			return err
		}
		return printResult(cmd, fn(ctx, c, args))
	}
}
