package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves HTTP and returns a channel closed once a termination signal arrives.
func (a *App) Start() <-chan struct{} {
	a.logPosture()

	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr, "app", a.config.GetString("app.name"))

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigint)

		sig := <-sigint
		slog.Info("termination signal received", "signal", sig.String())

		a.cancel()
		close(terminateChan)
	}()

	return terminateChan
}

// logPosture reports settings that weaken the OTP flow so they never go unnoticed.
func (a *App) logPosture() {
	if a.config.GetBool("modules.identity.demo_disclosure") {
		slog.Warn("demo disclosure enabled, OTP codes are returned in responses when mail is not configured")
	}
	if !a.config.GetBool("otp.hash_at_rest") {
		slog.Info("pending OTP codes are stored in plain text")
	}
	slog.Info("session ledger", "driver", a.ledgerDriver)
}

// Stop drains HTTP, waits for background jobs and consumers, then closes resources in reverse dependency order.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for consumers and background jobs to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
			continue
		}
		slog.DebugContext(ctx, "resource closed", "name", closer.name)
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
