package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/sales_program/cache"
	"github.com/LilVoxy/sales_program/config"
	"github.com/LilVoxy/sales_program/erp"
	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/notify"
	"github.com/LilVoxy/sales_program/utils"
	"github.com/LilVoxy/sales_program/worker"
)

// App содержит все компоненты сервиса, создаваемые один раз при старте
type App struct {
	config    config.Config
	logger    *utils.Logger
	db        *sql.DB
	erp       *erp.Client
	artifacts cache.Store
	journal   journal.Repository
	hub       *notify.Hub
	worker    *worker.Worker
}

// NewApp создает компоненты сервиса по конфигурации
func NewApp(cfg config.Config) (*App, error) {
	logger, err := utils.NewLogger("", cfg.LogDir, cfg.Verbose)
	if err != nil {
		return nil, err
	}
	logger.Info("Инициализация сервиса планирования продаж")

	app := &App{config: cfg, logger: logger}

	// Подключаемся к базе данных; без DSN кеш и журнал живут в памяти
	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initStorage(); err != nil {
		app.Close()
		return nil, err
	}

	caps, err := forecast.DefaultCapabilities(cfg.PrimaryCapability)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("ошибка настройки алгоритмов прогнозирования: %w", err)
	}

	app.erp = erp.NewClient(cfg.ERP, logger.Named("ERP"))
	app.hub = notify.NewHub(logger.Named("Notify"))

	store := history.NewStore(
		app.erp,
		history.NewSnapshot(cfg.SnapshotPath, time.Local),
		logger.Named("History"),
		nil,
	)

	app.worker, err = worker.New(worker.Options{
		Store:        store,
		Capabilities: caps,
		Artifacts:    app.artifacts,
		Journal:      app.journal,
		Publisher:    app.hub,
		Logger:       logger.Named("DataWorker"),
		Interval:     cfg.RefreshInterval,
		Horizon:      cfg.ForecastHorizon,
		Production:   cfg.Production,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// initStorage создает кеш артефактов и журнал обновлений
func (a *App) initStorage() error {
	var artifacts cache.Store
	if a.db == nil {
		a.logger.Info("База данных не настроена, кеш и журнал хранятся в памяти")
		artifacts = cache.NewMemoryStore()
		a.journal = journal.NewMemoryRepository()
	} else {
		mysqlStore := cache.NewMySQLStore(a.db)
		if err := mysqlStore.CreateTable(); err != nil {
			return fmt.Errorf("ошибка при создании таблицы кеша: %w", err)
		}
		repo := journal.NewMySQLRepository(a.db)
		if err := repo.CreateTable(); err != nil {
			return fmt.Errorf("ошибка при создании таблицы журнала: %w", err)
		}
		artifacts = mysqlStore
		a.journal = repo
	}

	a.artifacts = cache.WithVersion(artifacts, a.config.CacheVersion)
	return nil
}

// Close закрывает соединение с базой данных
func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Ошибка закрытия соединения с БД: %v", err)
		return
	}
	a.logger.Info("Соединение с БД закрыто")
}
