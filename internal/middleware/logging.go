package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, terminal ID, duration, and any error codes/messages.
// Successful calls to a quiet procedure (typically a polled read) are logged
// at debug level.
func LoggingInterceptor(quiet ...string) connect.UnaryInterceptorFunc {
	quietSet := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		quietSet[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			terminalID := GetTerminalID(ctx) // empty when auth is off

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"terminal_id", terminalID,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"terminal_id", terminalID,
						"duration_ms", duration,
					)
				}
				return resp, err
			}

			level := slog.LevelInfo
			if quietSet[procedure] {
				level = slog.LevelDebug
			}
			slog.Log(ctx, level, "RPC ok",
				"procedure", procedure,
				"terminal_id", terminalID,
				"duration_ms", duration,
			)
			return resp, nil
		}
	}
}
