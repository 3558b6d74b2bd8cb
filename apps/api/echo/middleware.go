package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// latencyMiddleware holds every response for d, or until the client gives up.
func latencyMiddleware(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if d <= 0 {
			return next
		}
		return func(ctx echo.Context) error {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-timer.C:
				return next(ctx)
			case <-ctx.Request().Context().Done():
				return errRequestCanceled
			}
		}
	}
}

func requestLogger(zl zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}

			req, res := ctx.Request(), ctx.Response()
			evt := zl.Info()
			if res.Status >= 500 {
				evt = zl.Error()
			}
			evt.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Str("remote_ip", ctx.RealIP()).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
