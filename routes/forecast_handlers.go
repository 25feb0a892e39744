// routes/forecast_handlers.go
package routes

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/query"
	"github.com/LilVoxy/sales_program/utils"
)

// PeriodLayout - формат параметра period
const PeriodLayout = "2006-01-02"

// TableResponse структура ответа API для основной таблицы
type TableResponse struct {
	Period time.Time    `json:"period"`
	Filter query.Filter `json:"filter"`
	Rows   []query.Row  `json:"rows"`
}

// ForecastResponse структура ответа API для кривой прогноза
type ForecastResponse struct {
	Segment  forecast.Segment         `json:"segment"`
	Forecast []forecast.ForecastPoint `json:"forecast"`
}

// OptionsResponse структура ответа API для значений разреза
type OptionsResponse struct {
	Dimension string   `json:"dimension"`
	Options   []string `json:"options"`
}

// PeriodsResponse структура ответа API для списка периодов
type PeriodsResponse struct {
	Periods []query.PeriodOption `json:"periods"`
}

// filterFromQuery читает разрез из параметров запроса
func filterFromQuery(values url.Values) query.Filter {
	return query.Filter{
		Subdivision: values.Get("subdivision"),
		Region:      values.Get("region"),
		Manager:     values.Get("manager"),
	}
}

// parsePeriod разбирает параметр period; пустой означает первый месяц прогноза
func parsePeriod(r *http.Request, reader query.Reader, raw string) (time.Time, error) {
	if raw == "" {
		return reader.FirstForecastPeriod(r.Context()), nil
	}
	period, err := time.Parse(PeriodLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return query.EndOfMonth(period), nil
}

// TableHandler обрабатывает запросы основной таблицы факта и прогноза
func TableHandler(reader query.Reader, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		period, err := parsePeriod(r, reader, params.Get("period"))
		if err != nil {
			http.Error(w, "Неверный формат периода, ожидается ГГГГ-ММ-ДД", http.StatusBadRequest)
			return
		}

		filter := filterFromQuery(params)
		rows := reader.MainTable(r.Context(), period, filter)

		writeJSON(w, logger, http.StatusOK, TableResponse{Period: period, Filter: filter, Rows: rows})
		logger.Debug("Отправлена таблица на %s: %d строк", period.Format("01.2006"), len(rows))
	}
}

// ForecastHandler обрабатывает запросы кривой прогноза сегмента
func ForecastHandler(reader query.Reader, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		group := params.Get("group")
		if group == "" {
			http.Error(w, "Отсутствует обязательный параметр group", http.StatusBadRequest)
			return
		}

		segment := filterFromQuery(params).Segment(group)
		writeJSON(w, logger, http.StatusOK, ForecastResponse{
			Segment:  segment,
			Forecast: reader.ForecastCurve(r.Context(), segment),
		})
	}
}

// OptionsHandler обрабатывает запросы значений разреза
func OptionsHandler(reader query.Reader, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dim, err := history.ParseDimension(mux.Vars(r)["dimension"])
		if err != nil || dim == history.DimensionNone {
			http.Error(w, "Неизвестный разрез", http.StatusNotFound)
			return
		}

		writeJSON(w, logger, http.StatusOK, OptionsResponse{
			Dimension: dim.String(),
			Options:   reader.Options(r.Context(), dim),
		})
	}
}

// PeriodsHandler возвращает месяцы, доступные для выбора периода прогноза
func PeriodsHandler(horizon int, now func() time.Time, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, PeriodsResponse{Periods: query.PeriodOptions(now(), horizon)})
	}
}
