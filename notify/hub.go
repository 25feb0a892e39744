package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LilVoxy/sales_program/utils"
)

// Параметры websocket-соединения
const (
	// Время ожидания записи сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания сообщения от клиента
	pongWait = 60 * time.Second

	// Период отправки пинг-сообщений
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 4 * 1024

	// Размер очереди исходящих сообщений клиента
	sendBufferSize = 16
)

// RefreshEvent сообщает панели, что прогнозы пересчитаны
type RefreshEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Models     int       `json:"models"`
	ActualDate time.Time `json:"actual_date"`
}

// NewRefreshEvent создает событие завершения цикла обновления
func NewRefreshEvent(runID string, models int, actualDate time.Time) RefreshEvent {
	return RefreshEvent{Type: "refresh", RunID: runID, Models: models, ActualDate: actualDate}
}

// Hub рассылает события всем подключенным панелям
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
	count      chan int
	done       chan struct{}
	logger     *utils.Logger
}

// NewHub создает хаб; рассылка начинается после запуска Run
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBufferSize),
		clients:    make(map[*client]bool),
		count:      make(chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run обслуживает подключения до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("Панель подключилась: %s", c.remote)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("Панель отключилась: %s", c.remote)
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Медленный клиент отключается
					delete(h.clients, c)
					close(c.send)
				}
			}

		case h.count <- len(h.clients):
		}
	}
}

// Clients возвращает число подключенных панелей
func (h *Hub) Clients(ctx context.Context) int {
	select {
	case n := <-h.count:
		return n
	case <-ctx.Done():
		return 0
	case <-h.done:
		return 0
	}
}

// Publish ставит событие в очередь рассылки; при переполненной очереди событие отбрасывается
func (h *Hub) Publish(event interface{}) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Ошибка кодирования события: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Error("Очередь событий переполнена, событие отброшено")
	}
}
