package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/LilVoxy/sales_program/history"
)

const (
	// SentinelMax означает "нет обученной модели / неизвестная точность"
	SentinelMax = 999999

	// DefaultHorizon - горизонт прогноза в месяцах
	DefaultHorizon = 6
)

// Model - прогноз одного сегмента или пустая заглушка
type Model struct {
	Segment    Segment
	Capability string
	Forecast   []ForecastPoint
	Std        float64
	RMSE       float64
	Periods    int

	forecaster Forecaster
	series     []Point
	trained    bool
}

// NewEmptyModel создает необученную модель: нулевой прогноз на periods месяцев начиная с now,
// Std и RMSE равны SentinelMax
func NewEmptyModel(segment Segment, now time.Time, periods int) *Model {
	if periods <= 0 {
		periods = DefaultHorizon
	}

	forecast := make([]ForecastPoint, periods)
	for i := 0; i < periods; i++ {
		forecast[i] = ForecastPoint{Period: history.AddMonths(now, i)}
	}

	return &Model{
		Segment:  segment,
		Forecast: forecast,
		Std:      SentinelMax,
		RMSE:     SentinelMax,
		Periods:  periods,
	}
}

// NewModel создает модель, обучаемую алгоритмом name из реестра.
// Пока модель не обучена, она ведет себя как пустая.
func (c *Capabilities) NewModel(segment Segment, name string, now time.Time, periods int) (*Model, error) {
	forecaster, err := c.Resolve(name)
	if err != nil {
		return nil, err
	}
	model := NewEmptyModel(segment, now, periods)
	model.Capability = name
	model.forecaster = forecaster
	return model, nil
}

// IsTrained сообщает, построен ли прогноз обученным алгоритмом
func (m *Model) IsTrained() bool {
	return m.trained
}

// Fit обучает модель на ряде; ряд сортируется по возрастанию периода
func (m *Model) Fit(series []Point) error {
	if m.forecaster == nil {
		return fmt.Errorf("%w: сегмент %s", ErrNotConfigured, m.Segment)
	}

	sorted := make([]Point, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	if err := m.forecaster.Fit(sorted); err != nil {
		return fmt.Errorf("ошибка обучения сегмента %s: %w", m.Segment, err)
	}
	m.series = sorted
	return nil
}

// Predict строит прогноз на horizon периодов после последней точки истории.
// Std пересчитывается как половина ширины интервала последнего периода.
func (m *Model) Predict(horizon int, freq Frequency) error {
	if m.forecaster == nil {
		return fmt.Errorf("%w: сегмент %s", ErrNotConfigured, m.Segment)
	}

	points, err := m.forecaster.Predict(horizon, freq)
	if err != nil {
		return fmt.Errorf("ошибка прогноза сегмента %s: %w", m.Segment, err)
	}
	if len(points) == 0 {
		return fmt.Errorf("пустой прогноз для сегмента %s", m.Segment)
	}

	last := points[len(points)-1]
	m.Forecast = points
	m.Std = RoundToThousandth((last.Upper - last.Lower) / 2)
	m.RMSE = inSampleRMSE(m.series, points)
	m.Periods = horizon
	m.trained = true
	return nil
}

// FitPredict обучает модель и строит прогноз
func (m *Model) FitPredict(series []Point, horizon int, freq Frequency) error {
	if err := m.Fit(series); err != nil {
		return err
	}
	return m.Predict(horizon, freq)
}

// Equal сравнивает модели только по сегменту
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Segment == other.Segment
}

// PointFor возвращает точку прогноза для месяца period
func (m *Model) PointFor(period time.Time) (ForecastPoint, bool) {
	for _, p := range m.Forecast {
		if history.SameMonth(p.Period, period) {
			return p, true
		}
	}
	return ForecastPoint{}, false
}

// Curve возвращает копию кривой прогноза
func (m *Model) Curve() []ForecastPoint {
	curve := make([]ForecastPoint, len(m.Forecast))
	copy(curve, m.Forecast)
	return curve
}

// inSampleRMSE считает среднеквадратичную ошибку подгонки по истории
func inSampleRMSE(series []Point, points []ForecastPoint) float64 {
	n := len(series)
	if n == 0 || len(points) < n {
		return SentinelMax
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		diff := series[i].Value - points[i].Value
		sum += diff * diff
	}
	return RoundToThousandth(math.Sqrt(sum / float64(n)))
}
