package query

import (
	"context"
	"time"

	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
)

// Reader - операции чтения, которые нужны панели планирования
type Reader interface {
	MainTable(ctx context.Context, period time.Time, filter Filter) []Row
	ForecastCurve(ctx context.Context, segment forecast.Segment) []forecast.ForecastPoint
	FirstForecastPeriod(ctx context.Context) time.Time
	Options(ctx context.Context, dim history.Dimension) []string
}

// Source - живое состояние фонового обновления
type Source interface {
	Registry() *forecast.Registry
	CleanSnapshot() []history.Observation
}

// Service читает таблицы и кривые напрямую из состояния фонового обновления
type Service struct {
	source Source
	now    func() time.Time
}

// NewService создает сервис чтения поверх source
func NewService(source Source, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{source: source, now: now}
}

// MainTable возвращает таблицу факта и прогноза на месяц period
func (s *Service) MainTable(ctx context.Context, period time.Time, filter Filter) []Row {
	return BuildTable(s.source.Registry(), s.source.CleanSnapshot(), period, filter)
}

// ForecastCurve возвращает кривую прогноза сегмента; для неизвестного сегмента - нулевую кривую
func (s *Service) ForecastCurve(ctx context.Context, segment forecast.Segment) []forecast.ForecastPoint {
	return s.source.Registry().GetModel(segment).Curve()
}

// FirstForecastPeriod возвращает первый месяц после последнего месяца факта
func (s *Service) FirstForecastPeriod(ctx context.Context) time.Time {
	if latest, ok := history.LatestPeriod(s.source.CleanSnapshot()); ok {
		return history.AddMonths(latest, 1)
	}
	return history.EndOfMonth(s.now())
}

// Options возвращает значения разреза, присутствующие в истории
func (s *Service) Options(ctx context.Context, dim history.Dimension) []string {
	return history.DistinctValues(s.source.CleanSnapshot(), dim)
}
