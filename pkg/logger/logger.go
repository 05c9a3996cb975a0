package logger

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger with a structured format.
func Init(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	log.Info().Msg("Logger initialized")
}

// RequestLogger is an echo middleware that logs requests using zerolog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			var event *zerolog.Event
			latency := time.Since(start)
			statusCode := c.Response().Status

			if statusCode >= 500 {
				event = log.Error()
			} else if statusCode >= 400 {
				event = log.Warn()
			} else {
				event = log.Info()
			}

			event.Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status_code", statusCode).
				Str("client_ip", c.RealIP()).
				Str("latency", latency.String()).
				Msg("Request processed")

			return nil
		}
	}
}
