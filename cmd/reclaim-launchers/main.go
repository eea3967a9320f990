package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reclaim/launchers/internal/config"
	"github.com/reclaim/launchers/internal/handlers"
	"github.com/reclaim/launchers/internal/launcher"
	"github.com/reclaim/launchers/internal/messaging"
	"github.com/reclaim/launchers/internal/platform"
	"github.com/reclaim/launchers/internal/telemetry"
)

const serviceName = "reclaim-launchers"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No log file yet, and stdout belongs to the browser.
		_, _ = io.WriteString(os.Stderr, "reclaim-launchers: "+err.Error()+"\n")
		os.Exit(1)
	}

	logger, closeLog := setupLogger(cfg.Log)
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	logger.Info("native host started", "lock_os_thread", cfg.Bridge.LockOSThread)

	plat := platform.New(platform.Options{
		Extensions: cfg.Catalog.Extensions,
		MimeTypes:  cfg.Catalog.MimeTypes,
	})
	opts := []launcher.Option{launcher.WithLogger(logger)}
	if cfg.Bridge.LockOSThread {
		opts = append(opts, launcher.WithLockedThread())
	}
	svc := launcher.New(plat, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("closing launcher service", "error", err)
		}
	}()

	if cfg.Catalog.Preload {
		if err := svc.Load(ctx); err != nil {
			logger.Error("preloading catalogs failed", "error", err)
		}
	}

	if err := run(ctx, os.Stdin, os.Stdout, svc); err != nil {
		logger.Error("native host stopped", "error", err)
		return
	}
	logger.Info("native host stopped")
}

// setupLogger opens the log file in the user's cache directory.
// Stdout carries native messages, so logs never go there.
func setupLogger(cfg config.LogConfig) (*slog.Logger, func()) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = io.Discard
	closeLog := func() {}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err == nil {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			out = f
			closeLog = func() { _ = f.Close() }
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeLog
}

// run answers messages from in until EOF or ctx is done.
func run(ctx context.Context, in io.Reader, out io.Writer, cat handlers.Catalog) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := messaging.ReadMessage(in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		response := handleMessage(ctx, msg, cat)
		err = messaging.WriteMessage(out, response)
		if errors.Is(err, messaging.ErrResponseTooLarge) {
			slog.Warn("response dropped", "action", msg.Action, "error", err)
			err = messaging.WriteMessage(out, messaging.Response{
				Success: false,
				Error:   "response_too_large",
				Message: err.Error(),
			})
		}
		if err != nil {
			return err
		}
	}
}

func handleMessage(ctx context.Context, msg *messaging.Message, cat handlers.Catalog) messaging.Response {
	slog.Debug("message received", "action", msg.Action)

	switch msg.Action {
	case "list":
		return handlers.HandleList(ctx, cat)
	case "lookup":
		return handlers.HandleLookup(ctx, msg, cat)
	case "extensions":
		return handlers.HandleExtensions(ctx, cat)
	case "iconSize":
		return handlers.HandleIconSize(ctx, cat)
	case "open":
		return handlers.HandleOpen(ctx, msg, cat)
	case "ping":
		return messaging.Response{Success: true, Message: "pong"}
	default:
		return messaging.Response{
			Success: false,
			Error:   "unknown",
			Message: "Unknown action: " + msg.Action,
		}
	}
}
