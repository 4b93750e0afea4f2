// Package cmd holds the shared startup sequence of dnaforge commands:
// environment defaults, flag parsing and a telemetry-wrapped run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/dnaforge/internal/platform/config"
	"github.com/louisbranch/dnaforge/internal/platform/otel"
)

const telemetryShutdownTimeout = 5 * time.Second

// ServiceGenerate names the generator command in telemetry.
const ServiceGenerate = "dnaforge"

// ParseConfigFromArgs fills cfg from DNAFORGE_ environment variables and then
// from args. register binds flags to the env-populated cfg, so env values
// become the flag defaults and explicit flags win.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string, register func(*flag.FlagSet, *T)) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if err := config.ParseEnv(cfg); err != nil {
		return err
	}
	if register != nil {
		register(fs, cfg)
	}
	return fs.Parse(args)
}

// RunWithTelemetry starts tracing for service, executes run and flushes
// pending spans before returning run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
