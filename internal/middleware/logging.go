package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/Sizimon/grippendor/internal/metrics"
)

// callInfo lets inner interceptors report the caller's identity back out.
type callInfo struct {
	guildID string
}

const callInfoKey contextKey = "call_info"

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// and counts it by result code. It logs the procedure name, guild, duration,
// and any error codes/messages. m may be nil.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			info := &callInfo{}

			resp, err := next(context.WithValue(ctx, callInfoKey, info), req)

			guildID := info.guildID
			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					m.RPC(procedure, connectErr.Code().String())
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"guild_id", guildID,
						"duration_ms", duration,
					)
				} else {
					m.RPC(procedure, connect.CodeUnknown.String())
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"guild_id", guildID,
						"duration_ms", duration,
					)
				}
			} else {
				m.RPC(procedure, "ok")
				slog.Info("RPC ok",
					"procedure", procedure,
					"guild_id", guildID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
