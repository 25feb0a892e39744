// routes/status_handlers.go
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/utils"
)

// recentRuns - сколько последних циклов показывает /api/status
const recentRuns = 10

// StatusResponse структура ответа API состояния фонового обновления
type StatusResponse struct {
	State   *journal.State `json:"state"`
	Recent  []journal.Run  `json:"recent"`
	Models  int            `json:"models"`
	NextRun *time.Time     `json:"next_run,omitempty"`
}

// StatusHandler возвращает сводку журнала обновлений и размер реестра моделей
func StatusHandler(status StatusSource, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := status.Journal().State()
		if err != nil {
			logger.Error("Ошибка при чтении журнала обновлений: %v", err)
			http.Error(w, "Ошибка при чтении журнала обновлений", http.StatusInternalServerError)
			return
		}

		recent, err := status.Journal().Recent(recentRuns)
		if err != nil {
			logger.Error("Ошибка при чтении журнала обновлений: %v", err)
			http.Error(w, "Ошибка при чтении журнала обновлений", http.StatusInternalServerError)
			return
		}

		response := StatusResponse{
			State:  state,
			Recent: recent,
			Models: status.Registry().Len(),
		}
		if next, ok := status.NextRun(); ok {
			response.NextRun = &next
		}

		writeJSON(w, logger, http.StatusOK, response)
	}
}

// RefreshHandler запускает внеочередной цикл обновления в фоне
func RefreshHandler(refresher Refresher, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := refresher.Refresh(context.Background(), journal.TriggerManual); err != nil {
				logger.Error("Ручное обновление завершилось ошибкой: %v", err)
			}
		}()

		logger.Info("Запущено ручное обновление прогнозов")
		w.WriteHeader(http.StatusAccepted)
	}
}
