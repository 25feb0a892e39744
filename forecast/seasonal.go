package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/LilVoxy/sales_program/history"
	"github.com/sajari/regression"
)

// minSeasonalPoints - минимум точек (два полных года) для оценки сезонности
const minSeasonalPoints = 24

// SeasonalForecaster - аддитивная модель: линейный тренд плюс поправка на месяц года.
// Коэффициенты оцениваются методом наименьших квадратов (sajari/regression).
// При коротком ряде модель вырождается в линейный тренд.
type SeasonalForecaster struct {
	confidenceLevel float64
	series          []Point
	base            int

	reg      *regression.Regression
	sigma    float64
	fallback *LinearForecaster
}

// NewSeasonalForecaster создает сезонный алгоритм с заданным уровнем доверия
func NewSeasonalForecaster(confidenceLevel float64) *SeasonalForecaster {
	return &SeasonalForecaster{confidenceLevel: confidenceLevel}
}

// features возвращает [номер месяца, признаки февраля..декабря]; январь - базовый месяц
func (f *SeasonalForecaster) features(t time.Time) []float64 {
	vars := make([]float64, 12)
	vars[0] = float64(history.MonthIndex(t) - f.base)
	if m := int(t.Month()); m > 1 {
		vars[m-1] = 1
	}
	return vars
}

// Fit обучает модель на ряде
func (f *SeasonalForecaster) Fit(series []Point) error {
	if len(series) < 2 {
		return fmt.Errorf("для сезонной модели требуется минимум 2 точки, получено: %d", len(series))
	}

	f.series = series
	f.base = history.MonthIndex(series[0].Period)
	f.reg = nil
	f.fallback = nil

	if !coversAllMonths(series) {
		return f.fitFallback(series)
	}

	r := new(regression.Regression)
	r.SetObserved("value")
	r.SetVar(0, "trend")
	for m := 2; m <= 12; m++ {
		r.SetVar(m-1, time.Month(m).String())
	}
	for _, p := range series {
		r.Train(regression.DataPoint(p.Value, f.features(p.Period)))
	}

	if err := r.Run(); err != nil {
		return f.fitFallback(series)
	}
	for _, c := range r.GetCoeffs() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return f.fitFallback(series)
		}
	}

	sse := 0.0
	for _, p := range series {
		predicted, err := r.Predict(f.features(p.Period))
		if err != nil {
			return fmt.Errorf("ошибка расчета сезонной модели: %w", err)
		}
		sse += (p.Value - predicted) * (p.Value - predicted)
	}

	dof := float64(len(series) - 13)
	if dof < 1 {
		dof = 1
	}
	f.sigma = math.Sqrt(sse / dof)
	f.reg = r
	return nil
}

func (f *SeasonalForecaster) fitFallback(series []Point) error {
	f.fallback = NewLinearForecaster(f.confidenceLevel)
	return f.fallback.Fit(series)
}

// Predict возвращает подогнанную историю и horizon будущих периодов
func (f *SeasonalForecaster) Predict(horizon int, freq Frequency) ([]ForecastPoint, error) {
	if f.fallback != nil {
		return f.fallback.Predict(horizon, freq)
	}
	if f.reg == nil {
		return nil, fmt.Errorf("сезонная модель не обучена")
	}

	z := 1.96
	if f.confidenceLevel >= 0.99 {
		z = 2.576
	} else if f.confidenceLevel <= 0.90 {
		z = 1.645
	}

	points := make([]ForecastPoint, 0, len(f.series)+horizon)
	for _, p := range f.series {
		point, err := f.point(p.Period, z*f.sigma)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	n := float64(len(f.series))
	last := f.series[len(f.series)-1].Period
	for h := 1; h <= horizon; h++ {
		period, err := freq.Step(last, h)
		if err != nil {
			return nil, err
		}
		// Интервал расширяется с удалением от истории
		point, err := f.point(period, z*f.sigma*math.Sqrt(1+float64(h)/n))
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return points, nil
}

func (f *SeasonalForecaster) point(period time.Time, margin float64) (ForecastPoint, error) {
	value, err := f.reg.Predict(f.features(period))
	if err != nil {
		return ForecastPoint{}, fmt.Errorf("ошибка прогноза сезонной модели: %w", err)
	}
	return ForecastPoint{
		Period: period,
		Value:  RoundToThousandth(value),
		Lower:  RoundToThousandth(value - margin),
		Upper:  RoundToThousandth(value + margin),
	}, nil
}

func coversAllMonths(series []Point) bool {
	if len(series) < minSeasonalPoints {
		return false
	}
	var seen [12]bool
	for _, p := range series {
		seen[p.Period.Month()-1] = true
	}
	for _, ok := range seen {
		if !ok {
			return false
		}
	}
	return true
}
