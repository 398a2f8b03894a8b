package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todoSync/internal/app"
	"todoSync/internal/config"
	"todoSync/internal/logger"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("TODO_CONFIG"), "путь к config.yml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := app.NewServer(cfg)
	if err := server.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("Main: Сервер остановился с ошибкой", err)
		}
	case <-ctx.Done():
		logger.Info("Main: Получен сигнал остановки")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Main: Ошибка при остановке", err)
		os.Exit(1)
	}
}
