// routes/program_handlers.go
package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/LilVoxy/sales_program/erp"
	"github.com/LilVoxy/sales_program/query"
	"github.com/LilVoxy/sales_program/utils"
)

// ProgramResponse структура ответа API для плана продаж
type ProgramResponse struct {
	Period  time.Time         `json:"period"`
	Filter  query.Filter      `json:"filter"`
	Program []erp.ProgramLine `json:"program"`
}

// ProgramRequest - тело запроса на установку плана
type ProgramRequest struct {
	Period      string            `json:"period"`
	Subdivision string            `json:"subdivision,omitempty"`
	Region      string            `json:"region,omitempty"`
	Manager     string            `json:"manager,omitempty"`
	Program     []erp.ProgramLine `json:"program"`
}

// GetProgramHandler возвращает строки плана: прогноз и установленный в 1С план.
// replace=true подставляет прогноз вместо плана.
func GetProgramHandler(planner *query.Planner, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		period, err := time.Parse(PeriodLayout, params.Get("period"))
		if err != nil {
			http.Error(w, "Отсутствует или неверен параметр period (ГГГГ-ММ-ДД)", http.StatusBadRequest)
			return
		}

		replace := false
		if raw := params.Get("replace"); raw != "" {
			replace, err = strconv.ParseBool(raw)
			if err != nil {
				http.Error(w, "Неверный формат параметра replace", http.StatusBadRequest)
				return
			}
		}

		filter := filterFromQuery(params)
		lines, err := planner.Program(r.Context(), period, filter, replace)
		if err != nil {
			logger.Error("Ошибка при получении плана: %v", err)
			http.Error(w, "Ошибка при получении плана из 1С", http.StatusBadGateway)
			return
		}

		writeJSON(w, logger, http.StatusOK, ProgramResponse{Period: period, Filter: filter, Program: lines})
	}
}

// SetProgramHandler отправляет строки плана разреза в 1С
func SetProgramHandler(planner *query.Planner, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProgramRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный формат тела запроса", http.StatusBadRequest)
			return
		}

		period, err := time.Parse(PeriodLayout, req.Period)
		if err != nil {
			http.Error(w, "Неверный формат периода, ожидается ГГГГ-ММ-ДД", http.StatusBadRequest)
			return
		}
		if len(req.Program) == 0 {
			http.Error(w, "Пустой план", http.StatusBadRequest)
			return
		}

		filter := query.Filter{Subdivision: req.Subdivision, Region: req.Region, Manager: req.Manager}
		if err := planner.Submit(r.Context(), period, filter, req.Program); err != nil {
			logger.Error("Ошибка при установке плана: %v", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		logger.Info("Установлен план на %s: %d строк", period.Format("01.2006"), len(req.Program))
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetAllProgramsHandler устанавливает прогноз планом во всех разрезах.
// Без параметра period используется первый месяц прогноза.
func SetAllProgramsHandler(planner *query.Planner, reader query.Reader, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := parsePeriod(r, reader, r.URL.Query().Get("period"))
		if err != nil {
			http.Error(w, "Неверный формат периода, ожидается ГГГГ-ММ-ДД", http.StatusBadRequest)
			return
		}

		if err := planner.SubmitAll(r.Context(), period); err != nil {
			logger.Error("Ошибка при установке планов: %v", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
