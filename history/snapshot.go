package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Формат периода в локальном снимке
const snapshotPeriodLayout = "2006-01-02 15:04:05"

var snapshotHeader = []string{"Группа", "Период", "Показатель", "Подразделение", "Регион", "Менеджер"}

// legacyHeader - снимок без колонок региона и менеджера
var legacyHeader = snapshotHeader[:4]

// Snapshot - локальная копия истории продаж для быстрого старта
type Snapshot struct {
	path     string
	location *time.Location
}

// NewSnapshot создает снимок в указанном файле; loc - часовой пояс периодов (nil - Local)
func NewSnapshot(path string, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.Local
	}
	return &Snapshot{path: path, location: loc}
}

// Path возвращает путь к файлу снимка
func (s *Snapshot) Path() string {
	return s.path
}

// Save записывает наблюдения в файл через временный файл и переименование
func (s *Snapshot) Save(observations []Observation) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог снимка: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл снимка: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(snapshotHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи заголовка снимка: %w", err)
	}

	for _, o := range observations {
		record := []string{
			o.Group,
			o.Period.In(s.location).Format(snapshotPeriodLayout),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
			o.Subdivision,
			o.Region,
			o.Manager,
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("ошибка записи строки снимка: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи снимка: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия снимка: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("не удалось сохранить снимок %s: %w", s.path, err)
	}
	return nil
}

// Load читает наблюдения из файла. Отсутствие файла не ошибка: возвращается (nil, false, nil).
func (s *Snapshot) Load() ([]Observation, bool, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("не удалось открыть снимок %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения снимка: %w", err)
	}

	if len(records) == 0 {
		return nil, true, nil
	}

	header := records[0]
	if !validateHeader(header, snapshotHeader) && !validateHeader(header, legacyHeader) {
		return nil, false, fmt.Errorf("%w: заголовок снимка не совпадает. Ожидается: %v, получено: %v",
			ErrInvalidData, snapshotHeader, header)
	}

	observations := make([]Observation, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, false, fmt.Errorf("%w: строка снимка %d: ожидается %d колонок, получено %d",
				ErrInvalidData, i+2, len(header), len(record))
		}

		period, err := time.ParseInLocation(snapshotPeriodLayout, record[1], s.location)
		if err != nil {
			return nil, false, fmt.Errorf("%w: строка снимка %d: неверный период %q", ErrInvalidData, i+2, record[1])
		}

		value, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: строка снимка %d: неверный показатель %q", ErrInvalidData, i+2, record[2])
		}

		o := Observation{
			Group:       record[0],
			Period:      period,
			Value:       value,
			Subdivision: record[3],
		}
		if len(record) == len(snapshotHeader) {
			o.Region = record[4]
			o.Manager = record[5]
		}
		observations = append(observations, o)
	}

	return observations, true, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range expected {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
