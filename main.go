// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/sales_program/config"
	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/query"
	"github.com/LilVoxy/sales_program/routes"
)

func main() {
	// Параметры командной строки
	configPtr := flag.String("config", "", "Путь к YAML-файлу конфигурации")
	modePtr := flag.String("mode", "serve", "Режим работы: serve, once или api")
	addrPtr := flag.String("addr", "", "Адрес HTTP-сервера (по умолчанию из конфигурации)")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if *addrPtr != "" {
		cfg.HTTPAddr = *addrPtr
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать сервис: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.logger.Info("Запуск в режиме: %s", *modePtr)

	switch *modePtr {
	case "once":
		err = app.RunOnce(ctx)
	case "serve":
		err = app.Serve(ctx)
	case "api":
		err = app.ServeCached(ctx)
	default:
		app.logger.Error("Неизвестный режим работы: %s. Доступные режимы: serve, once, api", *modePtr)
		app.Close()
		os.Exit(2)
	}

	if err != nil {
		app.logger.Critical("Сервис остановлен с ошибкой: %v", err)
		app.Close()
		os.Exit(1)
	}
	app.logger.Info("Сервис остановлен")
}

// RunOnce выполняет стартовый цикл и одно обновление из 1С
func (a *App) RunOnce(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return err
	}
	return a.worker.Refresh(ctx, journal.TriggerManual)
}

// Serve запускает фоновое обновление и HTTP API над живым реестром моделей
func (a *App) Serve(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(ctx)

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- a.worker.Run(ctx)
	}()

	reader := query.NewService(a.worker, nil)
	router := mux.NewRouter()
	routes.SetupRoutes(router, routes.Deps{
		Reader:    reader,
		Planner:   query.NewPlanner(reader, a.erp, a.logger.Named("Program")),
		Status:    a.worker,
		Refresher: a.worker,
		Hub:       a.hub,
		Logger:    a.logger.Named("Routes"),
		Horizon:   a.config.ForecastHorizon,
	})

	serverErr := make(chan error, 1)
	server := a.startServer(router, serverErr)

	select {
	case <-ctx.Done():
		a.logger.Info("Получен сигнал завершения, закрываем соединения...")
	case err := <-workerErr:
		if err != nil {
			a.shutdown(server)
			return err
		}
	case err := <-serverErr:
		return err
	}

	a.shutdown(server)
	return nil
}

// ServeCached запускает HTTP API только над опубликованными артефактами, без фонового обновления
func (a *App) ServeCached(ctx context.Context) error {
	reader := query.NewCachedReader(a.artifacts, a.config.ForecastHorizon, nil, a.logger.Named("Cache"))

	router := mux.NewRouter()
	routes.SetupRoutes(router, routes.Deps{
		Reader:  reader,
		Planner: query.NewPlanner(reader, a.erp, a.logger.Named("Program")),
		Logger:  a.logger.Named("Routes"),
		Horizon: a.config.ForecastHorizon,
	})

	serverErr := make(chan error, 1)
	server := a.startServer(router, serverErr)

	select {
	case <-ctx.Done():
		a.logger.Info("Получен сигнал завершения, закрываем соединения...")
	case err := <-serverErr:
		return err
	}

	a.shutdown(server)
	return nil
}

// startServer запускает HTTP-сервер в отдельной горутине
func (a *App) startServer(router *mux.Router, serverErr chan<- error) *http.Server {
	server := &http.Server{
		Addr:         a.config.HTTPAddr,
		Handler:      routes.NewHandler(router, os.Stdout, a.logger.Named("Routes")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.logger.Info("Сервер запущен на http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	return server
}

func (a *App) shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Ошибка остановки HTTP-сервера: %v", err)
	}
}
