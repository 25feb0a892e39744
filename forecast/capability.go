package forecast

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LilVoxy/sales_program/history"
)

var (
	// ErrNotConfigured - обучение или прогноз модели без алгоритма
	ErrNotConfigured = errors.New("алгоритм прогнозирования не задан")

	// ErrUnknownCapability - имя алгоритма не зарегистрировано
	ErrUnknownCapability = errors.New("неизвестный алгоритм прогнозирования")

	// ErrUnsupportedFrequency - алгоритм не умеет прогнозировать с такой частотой
	ErrUnsupportedFrequency = errors.New("неподдерживаемая частота прогноза")
)

// PrimaryCapability - имя алгоритма, которым обучаются сегменты
const PrimaryCapability = "primary"

// Point - точка исторического ряда
type Point = history.Sample

// ForecastPoint представляет точку прогноза
type ForecastPoint struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// Frequency - шаг прогноза
type Frequency int

const (
	Monthly Frequency = iota
)

// Step возвращает конец периода, отстоящего на n шагов от t
func (f Frequency) Step(t time.Time, n int) (time.Time, error) {
	switch f {
	case Monthly:
		return history.AddMonths(t, n), nil
	}
	return time.Time{}, fmt.Errorf("%w: %d", ErrUnsupportedFrequency, int(f))
}

// Forecaster - подключаемый алгоритм прогнозирования.
// Fit принимает ряд, упорядоченный по возрастанию периода.
// Predict возвращает подогнанные значения для истории, за которыми следуют horizon будущих периодов.
type Forecaster interface {
	Fit(series []Point) error
	Predict(horizon int, freq Frequency) ([]ForecastPoint, error)
}

// Factory создает новый необученный экземпляр алгоритма
type Factory func() Forecaster

// Capabilities - реестр именованных алгоритмов, разрешаемых при создании модели
type Capabilities struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCapabilities создает пустой реестр алгоритмов
func NewCapabilities() *Capabilities {
	return &Capabilities{factories: make(map[string]Factory)}
}

// DefaultCapabilities регистрирует встроенные алгоритмы и связывает primary с указанным
func DefaultCapabilities(primary string) (*Capabilities, error) {
	caps := NewCapabilities()
	caps.Register("linear", func() Forecaster { return NewLinearForecaster(DefaultConfidenceLevel) })
	caps.Register("seasonal", func() Forecaster { return NewSeasonalForecaster(DefaultConfidenceLevel) })

	if err := caps.Alias(PrimaryCapability, primary); err != nil {
		return nil, err
	}
	return caps, nil
}

// Register добавляет или заменяет алгоритм
func (c *Capabilities) Register(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

// Alias связывает имя alias с уже зарегистрированным алгоритмом target
func (c *Capabilities) Alias(alias, target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	factory, ok := c.factories[target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, target)
	}
	c.factories[alias] = factory
	return nil
}

// Resolve возвращает новый экземпляр алгоритма по имени
func (c *Capabilities) Resolve(name string) (Forecaster, error) {
	c.mu.RLock()
	factory, ok := c.factories[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}
	return factory(), nil
}

// Names возвращает отсортированный список имен алгоритмов
func (c *Capabilities) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
