// routes/api_routes.go
package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/LilVoxy/sales_program/forecast"
	"github.com/LilVoxy/sales_program/journal"
	"github.com/LilVoxy/sales_program/notify"
	"github.com/LilVoxy/sales_program/query"
	"github.com/LilVoxy/sales_program/utils"
)

// StatusSource - состояние фонового обновления для мониторинга
type StatusSource interface {
	Journal() journal.Repository
	Registry() *forecast.Registry
	NextRun() (time.Time, bool)
}

// Refresher запускает внеочередной цикл обновления
type Refresher interface {
	Refresh(ctx context.Context, trigger journal.Trigger) error
}

// Deps - зависимости HTTP API, создаваемые в main
type Deps struct {
	Reader    query.Reader
	Planner   *query.Planner
	Status    StatusSource
	Refresher Refresher
	Hub       *notify.Hub
	Logger    *utils.Logger

	// Горизонт прогноза для списка периодов
	Horizon int
	Now     func() time.Time
}

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = utils.NewDiscardLogger()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Horizon <= 0 {
		deps.Horizon = forecast.DefaultHorizon
	}

	// Применяем CORS middleware
	router.Use(CORSMiddleware)

	// Уведомления об обновлении прогнозов
	if deps.Hub != nil {
		router.HandleFunc("/ws", deps.Hub.ServeWS)
	}

	// API таблиц и прогнозов
	router.HandleFunc("/api/table", TableHandler(deps.Reader, deps.Logger)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/forecast", ForecastHandler(deps.Reader, deps.Logger)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/options/{dimension}", OptionsHandler(deps.Reader, deps.Logger)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/periods", PeriodsHandler(deps.Horizon, deps.Now, deps.Logger)).Methods("GET", "OPTIONS")

	// API планов продаж
	if deps.Planner != nil {
		router.HandleFunc("/api/program", GetProgramHandler(deps.Planner, deps.Logger)).Methods("GET", "OPTIONS")
		router.HandleFunc("/api/program", SetProgramHandler(deps.Planner, deps.Logger)).Methods("POST")
		router.HandleFunc("/api/program/all", SetAllProgramsHandler(deps.Planner, deps.Reader, deps.Logger)).Methods("POST", "OPTIONS")
	}

	// API состояния фонового обновления
	if deps.Status != nil {
		router.HandleFunc("/api/status", StatusHandler(deps.Status, deps.Logger)).Methods("GET", "OPTIONS")
	}
	if deps.Refresher != nil {
		router.HandleFunc("/api/refresh", RefreshHandler(deps.Refresher, deps.Logger)).Methods("POST", "OPTIONS")
	}
}

// CORSMiddleware разрешает запросы панели с любого источника
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler оборачивает маршрутизатор журналом запросов и перехватом паник
func NewHandler(router *mux.Router, accessLog io.Writer, logger *utils.Logger) http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
	)(router)
	return handlers.LoggingHandler(accessLog, recovered)
}

// recoveryLogger передает паники обработчиков в логгер сервиса
type recoveryLogger struct {
	logger *utils.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Critical("Паника в обработчике HTTP: %s", fmt.Sprint(v...))
}

// writeJSON кодирует ответ в JSON
func writeJSON(w http.ResponseWriter, logger *utils.Logger, status int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Ошибка при кодировании JSON: %v", err)
	}
}
