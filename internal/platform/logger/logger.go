// Package logger builds the structured request logger used by the API.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/httplog/v2"
)

// New returns a service logger. Unknown levels fall back to info.
func New(service, level string, json bool) *httplog.Logger {
	return httplog.NewLogger(service, httplog.Options{
		JSON:             json,
		LogLevel:         ParseLevel(level),
		Concise:          true,
		MessageFieldName: "message",
		Tags:             map[string]string{"hostname": hostname()},
		QuietDownRoutes:  []string{"/healthz"},
		QuietDownPeriod:  10 * time.Second,
	})
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func hostname() string { h, _ := os.Hostname(); return h }
