package forecast

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/utils"
)

// Registry хранит не более одной модели на сегмент
type Registry struct {
	mu     sync.RWMutex
	models map[Segment]*Model

	caps    *Capabilities
	horizon int
	now     func() time.Time
	logger  *utils.Logger
}

// NewRegistry создает пустой реестр моделей
func NewRegistry(caps *Capabilities, horizon int, now func() time.Time, logger *utils.Logger) *Registry {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return &Registry{
		models:  make(map[Segment]*Model),
		caps:    caps,
		horizon: horizon,
		now:     now,
		logger:  logger,
	}
}

// Horizon возвращает горизонт прогноза реестра
func (r *Registry) Horizon() int {
	return r.horizon
}

// GetModel возвращает модель сегмента; при промахе - новую пустую модель (в реестр не добавляется)
func (r *Registry) GetModel(segment Segment) *Model {
	r.mu.RLock()
	model, ok := r.models[segment]
	r.mu.RUnlock()
	if ok {
		return model
	}
	return NewEmptyModel(segment, r.now(), r.horizon)
}

// Lookup возвращает модель сегмента, если она зарегистрирована
func (r *Registry) Lookup(segment Segment) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.models[segment]
	return model, ok
}

// AddModel добавляет модель; если сегмент уже есть, существующая запись сохраняется.
// Возвращает true, если модель добавлена.
func (r *Registry) AddModel(model *Model) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[model.Segment]; exists {
		return false
	}
	r.models[model.Segment] = model
	return true
}

// Len возвращает количество моделей
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Models возвращает модели, отсортированные по сегменту
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	models := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		models = append(models, m)
	}
	r.mu.RUnlock()

	sort.Slice(models, func(i, j int) bool {
		return models[i].Segment.String() < models[j].Segment.String()
	})
	return models
}

// BulkFit строит модели для каждой пары (группа, значение разреза), присутствующей в данных
func (r *Registry) BulkFit(clean []history.Observation, dim history.Dimension) error {
	return r.BulkFitSeries(history.Aggregate(clean, dim))
}

// BulkFitSeries строит модели по готовым агрегированным рядам.
// Ряд короче двух точек дает пустую модель. Ошибки конфигурации прерывают проход,
// численные ошибки алгоритма по отдельному сегменту дают пустую модель.
func (r *Registry) BulkFitSeries(series []history.Series) error {
	now := r.now()
	trained := 0

	for _, s := range series {
		segment := SegmentFor(s.Group, s.Dimension, s.Value)

		if len(s.Samples) < 2 {
			r.AddModel(NewEmptyModel(segment, now, r.horizon))
			continue
		}

		model, err := r.caps.NewModel(segment, PrimaryCapability, now, r.horizon)
		if err != nil {
			return fmt.Errorf("ошибка создания модели для сегмента %s: %w", segment, err)
		}

		if err := model.FitPredict(s.Samples, r.horizon, Monthly); err != nil {
			if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrUnknownCapability) {
				return err
			}
			r.logger.Error("Сегмент %s не обучен: %v", segment, err)
			r.AddModel(NewEmptyModel(segment, now, r.horizon))
			continue
		}

		r.AddModel(model)
		trained++
	}

	r.logger.Debug("Обработано рядов: %d, обучено моделей: %d", len(series), trained)
	return nil
}
