package query

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LilVoxy/sales_program/history"
)

// RoundForecast округляет прогноз для показа и отправки в 1С:
// отрицательные значения обнуляются, чем больше число, тем меньше знаков после запятой
func RoundForecast(x float64) float64 {
	var places int32
	switch {
	case x < 0:
		return 0
	case x == 0:
		return 0
	case x < 5:
		places = 3
	case x < 10:
		places = 2
	case x < 100:
		places = 1
	default:
		places = 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// EndOfMonth возвращает последний момент месяца
func EndOfMonth(t time.Time) time.Time {
	return history.EndOfMonth(t)
}

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// MonthLabel возвращает подпись месяца вида "Январь 24"
func MonthLabel(t time.Time) string {
	return monthNames[t.Month()-1] + " " + t.Format("06")
}

// PeriodOption - месяц, доступный для выбора периода прогноза
type PeriodOption struct {
	Label string    `json:"label"`
	Value time.Time `json:"value"`
}

// PeriodOptions возвращает count месяцев начиная с текущего
func PeriodOptions(now time.Time, count int) []PeriodOption {
	options := make([]PeriodOption, count)
	for i := range options {
		period := history.AddMonths(now, i)
		options[i] = PeriodOption{Label: MonthLabel(period), Value: period}
	}
	return options
}
