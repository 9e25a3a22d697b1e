package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/secureauth/internal/pkg/stacktrace"
)

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message, co consumeOptions) {
	err := safeCall(ctx, driver, handler, msg)
	if !co.autoAck {
		return
	}

	if err == nil {
		if aerr := msg.Ack(ctx); aerr != nil {
			slog.WarnContext(ctx, "failed to ack message", "driver", driver, "source", msg.Source(), "error", aerr)
		}
		return
	}

	if co.maxAttempts > 0 && msg.Attempts() >= co.maxAttempts {
		slog.ErrorContext(ctx, "message dropped after max attempts",
			"driver", driver, "source", msg.Source(), "id", msg.ID(), "attempts", msg.Attempts(), "error", err)
		_ = msg.Ack(ctx)
		return
	}

	if nerr := msg.Nack(ctx, co.requeueDelay); nerr != nil {
		slog.WarnContext(ctx, "failed to nack message", "driver", driver, "source", msg.Source(), "error", nerr)
	}
}

func safeCall(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
		} else {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
	}()

	return handler(ctx, msg)
}
