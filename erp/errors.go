package erp

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrUnavailable - 1С недоступна: таймаут, отказ соединения, ответ 5xx
	ErrUnavailable = errors.New("сервер 1С недоступен")

	// ErrMalformed - ответ 1С не удалось разобрать или в нем нет обязательных полей
	ErrMalformed = errors.New("некорректный ответ 1С")
)

// IsTransient сообщает, относится ли ошибка к временным сбоям внешней системы
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrMalformed)
}

// classify приводит ошибку транспорта к ErrUnavailable.
// Ошибки, не похожие на сетевые, возвращаются как есть.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
