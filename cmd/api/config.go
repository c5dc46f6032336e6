package main

import (
	"log/slog"
	"time"

	"github.com/campuslink/points-engine/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	// CheckinEarlyEntry is how far before an event's start check-ins open.
	CheckinEarlyEntry time.Duration `env:"CHECKIN_EARLY_ENTRY" default:"15m"`

	// RedemptionValidity is how long issued coupon codes stay redeemable.
	RedemptionValidity time.Duration `env:"REDEMPTION_VALIDITY" default:"720h"`

	Postgres config.PostgresConfig
}
