package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/blaze-intelligence/livedata/internal/di"
)

const shutdownTimeout = 10 * time.Second

// app is a started container plus the services commands use directly.
type app struct {
	container *di.Container
	config    *di.ConfigService
	client    *di.ClientService
	logger    *zerolog.Logger
}

// startApp builds the container for the resolved config path and installs
// its logger as the global logger.
func startApp() (*app, error) {
	container, err := di.NewContainer(resolveConfigPath())
	if err != nil {
		return nil, err
	}

	loggerSvc, err := di.Invoke[*di.LoggerService](container)
	if err != nil {
		shutdownApp(container)
		return nil, err
	}
	log.Logger = *loggerSvc.Logger
	zerolog.DefaultContextLogger = loggerSvc.Logger

	clientSvc, err := di.Invoke[*di.ClientService](container)
	if err != nil {
		shutdownApp(container)
		return nil, err
	}

	return &app{
		container: container,
		config:    di.MustInvoke[*di.ConfigService](container),
		client:    clientSvc,
		logger:    loggerSvc.Logger,
	}, nil
}

func (a *app) close() {
	shutdownApp(a.container)
}

func shutdownApp(container *di.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := container.ShutdownWithContext(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
