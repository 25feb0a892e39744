package forecast

import (
	"fmt"
	"math"

	"github.com/LilVoxy/sales_program/history"
)

// DefaultConfidenceLevel - уровень доверия для интервала прогноза
const DefaultConfidenceLevel = 0.95

// RoundToThousandth округляет число до тысячных (3 знака после запятой)
func RoundToThousandth(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// regressionResult содержит коэффициенты линейной регрессии y = a*x + b
type regressionResult struct {
	a, b   float64
	r2     float64
	xs, ys []float64
}

// fitLine выполняет расчет линейной регрессии методом наименьших квадратов
//
//	a = (n*sum(x*y) - sum(x)*sum(y)) / (n*sum(x^2) - (sum(x))^2)
//	b = (sum(y) - a*sum(x)) / n
func fitLine(xs, ys []float64) (*regressionResult, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("для расчета линейной регрессии требуется минимум 2 точки, получено: %d", len(xs))
	}

	n := float64(len(xs))
	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return nil, fmt.Errorf("все X одинаковы, невозможно вычислить наклон")
	}

	a := (n*sumXY - sumX*sumY) / denominator
	b := (sumY - a*sumX) / n

	var r float64
	corrDenominator := math.Sqrt(denominator * (n*sumY2 - sumY*sumY))
	if corrDenominator >= 1e-10 {
		r = (n*sumXY - sumX*sumY) / corrDenominator
	}

	return &regressionResult{a: a, b: b, r2: r * r, xs: xs, ys: ys}, nil
}

func (r *regressionResult) predict(x float64) float64 {
	return r.a*x + r.b
}

// interval вычисляет границы интервала прогноза в точке x
func (r *regressionResult) interval(x, confidenceLevel float64) (float64, float64) {
	n := float64(len(r.xs))

	meanX := 0.0
	for _, v := range r.xs {
		meanX += v
	}
	meanX /= n

	sumSqDevX := 0.0
	sumSqResiduals := 0.0
	for i := range r.xs {
		sumSqDevX += (r.xs[i] - meanX) * (r.xs[i] - meanX)
		residual := r.ys[i] - r.predict(r.xs[i])
		sumSqResiduals += residual * residual
	}

	// По двум точкам прямая проходит точно, остаточной ошибки нет
	standardError := 0.0
	if n > 2 {
		standardError = math.Sqrt(sumSqResiduals / (n - 2))
	}

	// Приближение t-статистики для малых выборок
	tStat := 2.0
	if confidenceLevel >= 0.99 {
		tStat = 2.58
	} else if confidenceLevel <= 0.90 {
		tStat = 1.64
	}

	predictionStdError := standardError * math.Sqrt(1+1/n+(x-meanX)*(x-meanX)/sumSqDevX)
	margin := tStat * predictionStdError
	y := r.predict(x)
	return y - margin, y + margin
}

// LinearForecaster строит линейный тренд по номерам месяцев
type LinearForecaster struct {
	confidenceLevel float64
	series          []Point
	model           *regressionResult
}

// NewLinearForecaster создает линейный алгоритм с заданным уровнем доверия
func NewLinearForecaster(confidenceLevel float64) *LinearForecaster {
	return &LinearForecaster{confidenceLevel: confidenceLevel}
}

// Fit обучает тренд на ряде
func (f *LinearForecaster) Fit(series []Point) error {
	if len(series) < 2 {
		return fmt.Errorf("для линейного тренда требуется минимум 2 точки, получено: %d", len(series))
	}

	base := history.MonthIndex(series[0].Period)
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = float64(history.MonthIndex(p.Period) - base)
		ys[i] = p.Value
	}

	model, err := fitLine(xs, ys)
	if err != nil {
		return fmt.Errorf("ошибка при построении линейной регрессии: %w", err)
	}

	f.series = series
	f.model = model
	return nil
}

// Predict возвращает подогнанную историю и horizon будущих периодов
func (f *LinearForecaster) Predict(horizon int, freq Frequency) ([]ForecastPoint, error) {
	if f.model == nil {
		return nil, fmt.Errorf("линейная модель не обучена")
	}

	points := make([]ForecastPoint, 0, len(f.series)+horizon)
	for i, p := range f.series {
		x := f.model.xs[i]
		lower, upper := f.model.interval(x, f.confidenceLevel)
		points = append(points, ForecastPoint{
			Period: p.Period,
			Value:  RoundToThousandth(f.model.predict(x)),
			Lower:  RoundToThousandth(lower),
			Upper:  RoundToThousandth(upper),
		})
	}

	last := f.series[len(f.series)-1].Period
	maxX := f.model.xs[len(f.model.xs)-1]
	for h := 1; h <= horizon; h++ {
		period, err := freq.Step(last, h)
		if err != nil {
			return nil, err
		}
		x := maxX + float64(h)
		lower, upper := f.model.interval(x, f.confidenceLevel)
		points = append(points, ForecastPoint{
			Period: period,
			Value:  RoundToThousandth(f.model.predict(x)),
			Lower:  RoundToThousandth(lower),
			Upper:  RoundToThousandth(upper),
		})
	}

	return points, nil
}
