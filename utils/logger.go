package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger представляет логгер с уровнями для компонентов сервиса
type Logger struct {
	name           string
	infoLogger     *log.Logger
	errorLogger    *log.Logger
	debugLogger    *log.Logger
	criticalLogger *log.Logger
	isVerbose      bool
}

// NewLogger создает логгер, пишущий в stdout и, если задан logDir, в дневной файл
func NewLogger(name, logDir string, verbose bool) (*Logger, error) {
	var out io.Writer = os.Stdout

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог логов: %w", err)
		}

		logFileName := filepath.Join(logDir, fmt.Sprintf("sales_program_%s.log", time.Now().Format("2006-01-02")))
		file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	return newLogger(name, out, verbose), nil
}

// NewDiscardLogger возвращает логгер, который ничего не пишет
func NewDiscardLogger() *Logger {
	return newLogger("", io.Discard, true)
}

func newLogger(name string, out io.Writer, verbose bool) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		name:           name,
		infoLogger:     log.New(out, "INFO: ", flags),
		errorLogger:    log.New(out, "ERROR: ", flags),
		debugLogger:    log.New(out, "DEBUG: ", flags),
		criticalLogger: log.New(out, "CRITICAL: ", flags),
		isVerbose:      verbose,
	}
}

// Named возвращает логгер с тем же выводом, но другим именем компонента
func (l *Logger) Named(name string) *Logger {
	clone := *l
	clone.name = name
	return &clone
}

func (l *Logger) format(format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)
	if l.name == "" {
		return msg
	}
	return l.name + ": " + msg
}

// Info логирует информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLogger.Println(l.format(format, v...))
}

// Error логирует сообщение об ошибке
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLogger.Println(l.format(format, v...))
}

// Critical логирует ошибку, после которой фоновая работа прекращается
func (l *Logger) Critical(format string, v ...interface{}) {
	l.criticalLogger.Println(l.format(format, v...))
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *Logger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.debugLogger.Println(l.format(format, v...))
}

// LogCycleStart логирует начало цикла обновления
func (l *Logger) LogCycleStart(runID string) {
	l.Info("Начало цикла обновления %s", runID)
}

// LogCycleComplete логирует завершение цикла обновления
func (l *Logger) LogCycleComplete(runID string, startTime time.Time, observations, models int) {
	l.Info("Цикл обновления %s завершён. Длительность: %v", runID, time.Since(startTime))
	l.Info("Обработано: %d наблюдений, %d моделей", observations, models)
}
