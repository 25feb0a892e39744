package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/sales_program/erp"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/notify"
	"github.com/LilVoxy/sales_program/query"
)

// fitDimensions - проходы обучения в каждом цикле: в целом по группам и по подразделениям
var fitDimensions = []history.Dimension{
	history.DimensionNone,
	history.DimensionSubdivision,
}

// Start выполняет стартовый цикл: локальный снимок, очистка, обучение.
// Обучение выполняется и на пустой истории, чтобы реестр был опубликован сразу.
func (w *Worker) Start(ctx context.Context) error {
	w.cycle.Lock()
	defer w.cycle.Unlock()

	runID, start := w.begin(journal.TriggerStartup)

	if err := w.store.LoadFromLocalCache(); err != nil {
		w.logger.Error("Локальный снимок не загружен, старт с пустой историей: %v", err)
	}
	w.store.DeriveCleanView()

	models, err := w.fit(ctx, runID)
	if err != nil {
		w.fail(runID, err)
		return err
	}

	w.succeed(runID, start, models)
	return nil
}

// RefreshIfStale выполняет цикл обновления, если история отстала от текущего момента.
// Временные сбои 1С логируются, и цикл пропускается; возвращаются только фатальные ошибки.
func (w *Worker) RefreshIfStale(ctx context.Context, trigger journal.Trigger) error {
	w.cycle.Lock()
	defer w.cycle.Unlock()

	runID, start := w.begin(trigger)

	if latest, ok := w.store.LatestPeriod(); ok && !latest.Before(w.now()) {
		reason := fmt.Sprintf("история актуальна на %s", latest.Format("02.01.2006"))
		w.logger.Info("Цикл %s пропущен: %s", runID, reason)
		if err := w.journal.Skip(runID, w.now(), reason); err != nil {
			w.logger.Error("Ошибка при обновлении записи в журнале: %v", err)
		}
		return nil
	}

	return w.refresh(ctx, runID, start)
}

// Refresh выполняет цикл обновления без проверки актуальности
func (w *Worker) Refresh(ctx context.Context, trigger journal.Trigger) error {
	w.cycle.Lock()
	defer w.cycle.Unlock()

	runID, start := w.begin(trigger)
	return w.refresh(ctx, runID, start)
}

// refresh: получение, очистка, обучение
func (w *Worker) refresh(ctx context.Context, runID string, start time.Time) error {
	if err := w.store.LoadFromExternalSource(ctx); err != nil {
		w.fail(runID, err)
		if isTransient(err) {
			w.logger.Error("Цикл %s прерван, повтор через %v: %v", runID, w.interval, err)
			return nil
		}
		w.logger.Critical("Непредвиденная ошибка получения истории: %v", err)
		return fmt.Errorf("непредвиденная ошибка получения истории: %w", err)
	}

	w.store.DeriveCleanView()

	models, err := w.fit(ctx, runID)
	if err != nil {
		w.fail(runID, err)
		w.logger.Critical("Ошибка конфигурации моделей: %v", err)
		return err
	}

	w.succeed(runID, start, models)
	return nil
}

// isTransient отделяет известные сбои внешней системы от ошибок программы
func isTransient(err error) bool {
	return erp.IsTransient(err) ||
		errors.Is(err, history.ErrInvalidData) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// fit строит новый реестр по очищенной истории и публикует его.
// При ошибке остается прежний реестр.
func (w *Worker) fit(ctx context.Context, runID string) (int, error) {
	clean := w.store.ReadCleanSnapshot()
	registry := w.newRegistry()

	for _, dim := range fitDimensions {
		series := history.Aggregate(clean, dim)
		if !w.production {
			series = sample(series)
		}
		if err := registry.BulkFitSeries(series); err != nil {
			return 0, fmt.Errorf("ошибка обучения моделей в разрезе %s: %w", dim, err)
		}
	}

	w.registry.Store(registry)
	w.publish(ctx, runID, registry.Len(), clean)
	return registry.Len(), nil
}

// sample оставляет только первый ряд (непродуктивный режим)
func sample(series []history.Series) []history.Series {
	if len(series) > 1 {
		return series[:1]
	}
	return series
}

// publish записывает артефакты в кеш и уведомляет панели
func (w *Worker) publish(ctx context.Context, runID string, models int, clean []history.Observation) {
	if w.artifacts != nil {
		result := query.PublishArtifacts(ctx, w.artifacts, w.Registry(), clean, w.now())
		if result.Failed > 0 {
			w.logger.Error("Не записано артефактов: %d, последняя ошибка: %v", result.Failed, result.LastErr)
		}
		w.logger.Debug("Записано артефактов: %d", result.Written)
	}

	if w.publisher != nil {
		actual, _ := history.LatestPeriod(clean)
		w.publisher.Publish(notify.NewRefreshEvent(runID, models, actual))
	}
}

func (w *Worker) begin(trigger journal.Trigger) (string, time.Time) {
	runID := w.newID()
	start := w.now()
	w.logger.LogCycleStart(runID)
	if err := w.journal.Start(runID, trigger, start); err != nil {
		w.logger.Error("Ошибка при создании записи в журнале: %v", err)
	}
	return runID, start
}

func (w *Worker) succeed(runID string, start time.Time, models int) {
	raw, _ := w.store.Len()
	if err := w.journal.Succeed(runID, w.now(), raw, models); err != nil {
		w.logger.Error("Ошибка при обновлении записи в журнале: %v", err)
	}
	w.logger.LogCycleComplete(runID, start, raw, models)
}

func (w *Worker) fail(runID string, cause error) {
	if err := w.journal.Fail(runID, w.now(), cause.Error()); err != nil {
		w.logger.Error("Ошибка при обновлении записи в журнале: %v", err)
	}
}
