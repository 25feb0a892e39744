package journal

import (
	"time"
)

// Status - состояние цикла обновления
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Trigger - причина запуска цикла
type Trigger string

const (
	TriggerStartup   Trigger = "startup"
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Run представляет запись об одном цикле обновления прогнозов
type Run struct {
	ID                   string     `json:"id"`
	Trigger              Trigger    `json:"trigger"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	Status               Status     `json:"status"`
	Observations         int        `json:"observations"`
	Models               int        `json:"models"`
	ErrorMessage         string     `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64    `json:"execution_time_seconds"`
}

// State - сводка для мониторинга фонового обновления
type State struct {
	LastSuccessful *Run `json:"last_successful_run"`
	LastFailed     *Run `json:"last_failed_run,omitempty"`
	Current        *Run `json:"current_run,omitempty"`
}

// Repository - журнал циклов обновления
type Repository interface {
	// Start создает запись о начале цикла
	Start(id string, trigger Trigger, startTime time.Time) error

	// Succeed отмечает успешное завершение цикла
	Succeed(id string, endTime time.Time, observations, models int) error

	// Fail отмечает неудачное завершение цикла
	Fail(id string, endTime time.Time, errorMessage string) error

	// Skip отмечает цикл, пропущенный проверкой актуальности
	Skip(id string, endTime time.Time, reason string) error

	// LastSuccessful возвращает последний успешный цикл или nil
	LastSuccessful() (*Run, error)

	// Recent возвращает последние limit циклов, новые первыми
	Recent(limit int) ([]Run, error)

	// State возвращает сводку состояния
	State() (*State, error)
}
