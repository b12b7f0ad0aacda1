package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/kairos/adapter/api"
	"github.com/felixgeelhaar/kairos/adapter/cli"
	"github.com/felixgeelhaar/kairos/internal/app"
	"github.com/felixgeelhaar/kairos/pkg/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close(context.Background())

	if err := container.Start(); err != nil {
		container.Logger.Error("failed to start background workers", "error", err)
		os.Exit(1)
	}

	cli.SetLogger(container.Logger)
	cli.SetApp(&cli.App{
		AddEventHandler:         container.AddEvent,
		RemoveEventHandler:      container.RemoveEvent,
		ClearScheduleHandler:    container.ClearSchedule,
		OptimizeScheduleHandler: container.OptimizeSchedule,
		ListEventsHandler:       container.ListEvents,
		GetConflictsHandler:     container.GetConflicts,
		FindSlotsHandler:        container.FindSlots,
		GetSummaryHandler:       container.GetSummary,
		GetReportHandler:        container.GetReport,
		Sessions:                container.Sessions,
	})
	cli.SetServeFunc(func(ctx context.Context, addr string) error {
		return runServer(ctx, container, cfg, addr)
	})

	cli.ExecuteContext(ctx)
}

func runServer(ctx context.Context, container *app.Container, cfg *config.Config, addr string) error {
	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.HTTPAddr
	if addr != "" {
		serverCfg.Addr = addr
	}

	handler := api.NewCalendarHandler(api.CalendarHandlerConfig{
		AddEvent:      container.AddEvent,
		RemoveEvent:   container.RemoveEvent,
		ClearSchedule: container.ClearSchedule,
		Optimize:      container.OptimizeSchedule,
		ListEvents:    container.ListEvents,
		GetConflicts:  container.GetConflicts,
		FindSlots:     container.FindSlots,
		GetSummary:    container.GetSummary,
		GetReport:     container.GetReport,
		Sessions:      container.Sessions,
		Logger:        container.Logger,
	})
	server := api.NewServer(serverCfg, handler, container.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
