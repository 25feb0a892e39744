package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LilVoxy/sales_program/utils"
)

// ErrInvalidData - данные не прошли проверку схемы
var ErrInvalidData = errors.New("некорректные данные истории")

// Source - внешний источник истории продаж
type Source interface {
	Fetch(ctx context.Context) ([]Observation, error)
}

// Store хранит сырую и очищенную историю продаж.
// Оба снимка заменяются целиком под одной блокировкой, читатели получают копии.
type Store struct {
	mu    sync.Mutex
	raw   []Observation
	clean []Observation

	source   Source
	snapshot *Snapshot
	logger   *utils.Logger
	now      func() time.Time
}

// NewStore создает хранилище истории; snapshot может быть nil
func NewStore(source Source, snapshot *Snapshot, logger *utils.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	return &Store{
		source:   source,
		snapshot: snapshot,
		logger:   logger,
		now:      now,
	}
}

// LoadFromExternalSource получает свежую историю из 1С и атомарно заменяет снимки.
// При любой ошибке текущие данные остаются нетронутыми.
func (s *Store) LoadFromExternalSource(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("источник истории не настроен")
	}

	observations, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения истории из 1С: %v", err)
		return fmt.Errorf("ошибка получения истории: %w", err)
	}

	for i, o := range observations {
		if err := o.Validate(); err != nil {
			s.logger.Error("Наблюдение %d отклонено: %v", i, err)
			return fmt.Errorf("%w: наблюдение %d: %v", ErrInvalidData, i, err)
		}
	}

	sorted := make([]Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	s.replace(sorted)
	s.logger.Debug("История обновлена: %d наблюдений", len(sorted))

	if s.snapshot != nil {
		if err := s.snapshot.Save(sorted); err != nil {
			s.logger.Error("Не удалось сохранить локальный снимок: %v", err)
		}
	}

	return nil
}

// LoadFromLocalCache загружает последний сохраненный снимок.
// Отсутствующий файл не ошибка: хранилище остается пустым.
func (s *Store) LoadFromLocalCache() error {
	if s.snapshot == nil {
		return nil
	}

	observations, found, err := s.snapshot.Load()
	if err != nil {
		s.logger.Error("Ошибка загрузки локального снимка: %v", err)
		return err
	}
	if !found {
		s.logger.Info("Локальный снимок %s не найден, история пуста", s.snapshot.Path())
		return nil
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Period.Before(observations[j].Period)
	})

	s.replace(observations)
	s.logger.Info("Загружено %d наблюдений из локального снимка", len(observations))
	return nil
}

// DeriveCleanView пересчитывает очищенную историю от текущей сырой
func (s *Store) DeriveCleanView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clean = cleanView(s.raw, s.now())
}

// ReadCleanSnapshot возвращает копию очищенной истории
func (s *Store) ReadCleanSnapshot() []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyObservations(s.clean)
}

// ReadRawSnapshot возвращает копию сырой истории
func (s *Store) ReadRawSnapshot() []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyObservations(s.raw)
}

// LatestPeriod возвращает самый свежий период сырой истории
func (s *Store) LatestPeriod() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LatestPeriod(s.raw)
}

// Len возвращает размеры сырой и очищенной истории
func (s *Store) Len() (raw, clean int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.raw), len(s.clean)
}

// replace заменяет оба снимка в одной критической секции
func (s *Store) replace(raw []Observation) {
	clean := cleanView(raw, s.now())

	s.mu.Lock()
	s.raw = raw
	s.clean = clean
	s.mu.Unlock()
}

// cleanView исключает текущий незавершенный месяц и все более поздние периоды
func cleanView(raw []Observation, now time.Time) []Observation {
	border := MonthStart(now)
	clean := make([]Observation, 0, len(raw))
	for _, o := range raw {
		if o.Period.Before(border) {
			clean = append(clean, o)
		}
	}
	return clean
}

func copyObservations(src []Observation) []Observation {
	dst := make([]Observation, len(src))
	copy(dst, src)
	return dst
}
