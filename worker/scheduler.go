package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/LilVoxy/sales_program/journal"
)

// Run запускает обновление по расписанию и блокируется до отмены ctx.
// Фатальная ошибка цикла останавливает планировщик и возвращается вызывающему.
func (w *Worker) Run(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	w.logger.Info("Запуск планировщика обновления с интервалом %v", w.interval)

	fatal := make(chan error, 1)
	job, err := scheduler.Every(w.interval).WaitForSchedule().Do(func() {
		w.logger.Info("Запланированный цикл обновления")
		if err := w.RefreshIfStale(ctx, journal.TriggerScheduled); err != nil {
			select {
			case fatal <- err:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}
	w.job.Store(job)

	scheduler.StartAsync()
	defer func() {
		scheduler.Stop()
		w.job.Store(nil)
		w.logger.Info("Планировщик обновления остановлен")
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-fatal:
		w.logger.Critical("Фоновое обновление остановлено: %v", err)
		return err
	}
}

// NextRun возвращает время следующего запланированного цикла
func (w *Worker) NextRun() (time.Time, bool) {
	job := w.job.Load()
	if job == nil {
		return time.Time{}, false
	}
	return job.NextRun(), true
}
