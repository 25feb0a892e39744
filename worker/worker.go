package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/LilVoxy/sales_program/cache"
	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/utils"
)

// Publisher рассылает события о завершении обновления
type Publisher interface {
	Publish(event interface{})
}

// Options - зависимости фонового обновления, создаваемые один раз при старте процесса
type Options struct {
	Store        *history.Store
	Capabilities *forecast.Capabilities
	Artifacts    cache.Store
	Journal      journal.Repository
	Publisher    Publisher
	Logger       *utils.Logger

	Interval   time.Duration
	Horizon    int
	Production bool

	// Now и NewID подменяются в тестах
	Now   func() time.Time
	NewID func() string
}

// Worker владеет историей продаж и реестром моделей.
// Реестр строится заново в каждом цикле и подменяется одной атомарной записью.
type Worker struct {
	store     *history.Store
	caps      *forecast.Capabilities
	artifacts cache.Store
	journal   journal.Repository
	publisher Publisher
	logger    *utils.Logger

	interval   time.Duration
	horizon    int
	production bool
	now        func() time.Time
	newID      func() string

	registry atomic.Pointer[forecast.Registry]
	job      atomic.Pointer[gocron.Job]

	// cycle упорядочивает циклы обновления: запуск по расписанию и ручной не пересекаются
	cycle sync.Mutex
}

// New создает фоновое обновление; до вызова Start реестр пуст
func New(opts Options) (*Worker, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("не задано хранилище истории")
	}
	if opts.Capabilities == nil {
		return nil, fmt.Errorf("%w: реестр алгоритмов пуст", forecast.ErrNotConfigured)
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDiscardLogger()
	}
	if opts.Journal == nil {
		opts.Journal = journal.NewMemoryRepository()
	}
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	if opts.Horizon <= 0 {
		opts.Horizon = forecast.DefaultHorizon
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	w := &Worker{
		store:      opts.Store,
		caps:       opts.Capabilities,
		artifacts:  opts.Artifacts,
		journal:    opts.Journal,
		publisher:  opts.Publisher,
		logger:     opts.Logger,
		interval:   opts.Interval,
		horizon:    opts.Horizon,
		production: opts.Production,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	w.registry.Store(w.newRegistry())
	return w, nil
}

func (w *Worker) newRegistry() *forecast.Registry {
	return forecast.NewRegistry(w.caps, w.horizon, w.now, w.logger.Named("Models"))
}

// Registry возвращает текущий опубликованный реестр моделей
func (w *Worker) Registry() *forecast.Registry {
	return w.registry.Load()
}

// CleanSnapshot возвращает копию очищенной истории
func (w *Worker) CleanSnapshot() []history.Observation {
	return w.store.ReadCleanSnapshot()
}

// Store возвращает хранилище истории
func (w *Worker) Store() *history.Store {
	return w.store
}

// Journal возвращает журнал циклов обновления
func (w *Worker) Journal() journal.Repository {
	return w.journal
}
