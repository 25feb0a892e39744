package query

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/LilVoxy/sales_program/cache"
	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/utils"
)

// TablePayload - основная таблица в кеше
type TablePayload struct {
	Data []Row `json:"data"`
}

// CurvePayload - кривая прогноза в кеше
type CurvePayload struct {
	Segment  forecast.Segment         `json:"segment"`
	Trained  bool                     `json:"trained"`
	Std      float64                  `json:"std"`
	RMSE     float64                  `json:"rmse"`
	Forecast []forecast.ForecastPoint `json:"forecast"`
}

// OptionsPayload - значения разреза в кеше
type OptionsPayload struct {
	Data []string `json:"data"`
}

// CachedReader читает артефакты, опубликованные фоновым обновлением.
// Отсутствующие или поврежденные ключи дают пустой, но корректный результат.
type CachedReader struct {
	store   cache.Store
	horizon int
	now     func() time.Time
	logger  *utils.Logger
}

// NewCachedReader создает читателя артефактов
func NewCachedReader(store cache.Store, horizon int, now func() time.Time, logger *utils.Logger) *CachedReader {
	if now == nil {
		now = time.Now
	}
	return &CachedReader{store: store, horizon: horizon, now: now, logger: logger}
}

// load читает и декодирует ключ; false означает, что нужно вернуть пустой результат
func (r *CachedReader) load(ctx context.Context, key string, target interface{}) bool {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			r.logger.Error("Ошибка чтения ключа %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		r.logger.Error("Поврежденное значение ключа %q: %v", key, err)
		return false
	}
	return true
}

func (r *CachedReader) MainTable(ctx context.Context, period time.Time, filter Filter) []Row {
	var payload TablePayload
	key := cache.TableKey(history.EndOfMonth(period), filter.Subdivision, filter.Region, filter.Manager)
	if !r.load(ctx, key, &payload) || payload.Data == nil {
		return []Row{}
	}
	return payload.Data
}

func (r *CachedReader) ForecastCurve(ctx context.Context, segment forecast.Segment) []forecast.ForecastPoint {
	var payload CurvePayload
	key := cache.CurveKey(segment.Group, segment.Subdivision, segment.Region, segment.Manager)
	if !r.load(ctx, key, &payload) || len(payload.Forecast) == 0 {
		return forecast.NewEmptyModel(segment, r.now(), r.horizon).Curve()
	}
	return payload.Forecast
}

func (r *CachedReader) FirstForecastPeriod(ctx context.Context) time.Time {
	data, err := r.store.Get(ctx, cache.ActualDateKey)
	if err == nil {
		if actual, perr := time.Parse(time.RFC3339, string(data)); perr == nil {
			return history.AddMonths(actual, 1)
		}
	}
	return history.EndOfMonth(r.now())
}

func (r *CachedReader) Options(ctx context.Context, dim history.Dimension) []string {
	var payload OptionsPayload
	if dim == history.DimensionNone || !r.load(ctx, cache.OptionsKey(dim.String()), &payload) {
		return []string{}
	}
	options := make([]string, 0, len(payload.Data))
	for _, v := range payload.Data {
		if v != "" {
			options = append(options, v)
		}
	}
	return options
}
