package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LilVoxy/sales_program/cache"
	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
)

// optionDimensions - разрезы, списки значений которых публикуются в кеш
var optionDimensions = []history.Dimension{
	history.DimensionSubdivision,
	history.DimensionRegion,
	history.DimensionManager,
}

// PublishResult - итог публикации артефактов
type PublishResult struct {
	Written int
	Failed  int
	LastErr error
}

// PublishArtifacts записывает в кеш дату актуальности, списки разрезов,
// основные таблицы на каждый месяц горизонта и кривые всех моделей реестра.
// Ошибка записи одного ключа не прерывает публикацию остальных.
func PublishArtifacts(ctx context.Context, store cache.Store, registry *forecast.Registry,
	clean []history.Observation, now time.Time) PublishResult {

	var result PublishResult
	put := func(key string, value interface{}) {
		var data []byte
		switch v := value.(type) {
		case []byte:
			data = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				result.Failed++
				result.LastErr = fmt.Errorf("ошибка кодирования %q: %w", key, err)
				return
			}
			data = encoded
		}
		if err := store.Set(ctx, key, data); err != nil {
			result.Failed++
			result.LastErr = err
			return
		}
		result.Written++
	}

	if latest, ok := history.LatestPeriod(clean); ok {
		put(cache.ActualDateKey, []byte(latest.Format(time.RFC3339)))
	}

	for _, dim := range optionDimensions {
		put(cache.OptionsKey(dim.String()), OptionsPayload{Data: history.DistinctValues(clean, dim)})
	}

	filters := []Filter{{}}
	for _, sub := range history.DistinctValues(clean, history.DimensionSubdivision) {
		filters = append(filters, Filter{Subdivision: sub})
	}
	for _, option := range PeriodOptions(now, registry.Horizon()) {
		for _, f := range filters {
			key := cache.TableKey(option.Value, f.Subdivision, f.Region, f.Manager)
			put(key, TablePayload{Data: BuildTable(registry, clean, option.Value, f)})
		}
	}

	for _, m := range registry.Models() {
		s := m.Segment
		put(cache.CurveKey(s.Group, s.Subdivision, s.Region, s.Manager), CurvePayload{
			Segment:  s,
			Trained:  m.IsTrained(),
			Std:      m.Std,
			RMSE:     m.RMSE,
			Forecast: m.Curve(),
		})
	}

	return result
}
