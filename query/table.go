package query

import (
	"sort"
	"time"

	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
)

// ActualMonths - сколько месяцев факта перед периодом прогноза показывается в таблице
const ActualMonths = 3

// Filter - разрез основной таблицы; пустые поля означают "в целом по компании"
type Filter struct {
	Subdivision string `json:"subdivision,omitempty"`
	Region      string `json:"region,omitempty"`
	Manager     string `json:"manager,omitempty"`
}

// FilterFor строит фильтр по разрезу и его значению
func FilterFor(dim history.Dimension, value string) Filter {
	seg := forecast.SegmentFor("", dim, value)
	return Filter{Subdivision: seg.Subdivision, Region: seg.Region, Manager: seg.Manager}
}

// Segment возвращает сегмент группы в этом разрезе
func (f Filter) Segment(group string) forecast.Segment {
	return forecast.Segment{Group: group, Subdivision: f.Subdivision, Region: f.Region, Manager: f.Manager}
}

// Dimension возвращает разрез фильтра и его значение
func (f Filter) Dimension() (history.Dimension, string) {
	return f.Segment("").Dimension()
}

// Actual - фактическое значение за месяц
type Actual struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Row - строка основной таблицы: факт последних месяцев, прогноз и его точность
type Row struct {
	Group    string   `json:"group"`
	Actuals  []Actual `json:"actuals"`
	Forecast float64  `json:"forecast"`
	Std      float64  `json:"std"`
	RMSE     float64  `json:"rmse"`
}

// BuildTable собирает основную таблицу на месяц period по очищенной истории и реестру моделей.
// Для групп без модели используется пустая модель, поэтому строка всегда заполнена.
func BuildTable(registry *forecast.Registry, clean []history.Observation, period time.Time, filter Filter) []Row {
	period = history.EndOfMonth(period)
	dim, value := filter.Dimension()

	months := make([]time.Time, ActualMonths)
	for i := range months {
		months[i] = history.AddMonths(period, i-ActualMonths)
	}

	sums := make(map[string][]float64)
	for _, o := range clean {
		if dim != history.DimensionNone && dim.ValueOf(o) != value {
			continue
		}
		if _, ok := sums[o.Group]; !ok {
			sums[o.Group] = make([]float64, ActualMonths)
		}
		for i, m := range months {
			if history.SameMonth(o.Period, m) {
				sums[o.Group][i] += o.Value
			}
		}
	}

	groups := make([]string, 0, len(sums))
	for g := range sums {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		actuals := make([]Actual, ActualMonths)
		for i, m := range months {
			actuals[i] = Actual{Period: m, Value: sums[g][i]}
		}

		model := registry.GetModel(filter.Segment(g))
		row := Row{Group: g, Actuals: actuals, Std: model.Std, RMSE: model.RMSE}
		if point, ok := model.PointFor(period); ok {
			row.Forecast = point.Value
		}
		rows = append(rows, row)
	}
	return rows
}
