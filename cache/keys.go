package cache

import (
	"fmt"
	"time"
)

// Ключи артефактов. Отсутствующий разрез записывается как None.
const (
	ActualDateKey = "actual_date"
)

func orNone(v string) string {
	if v == "" {
		return "None"
	}
	return v
}

// OptionsKey - ключ списка значений разреза (subdivision, region, manager)
func OptionsKey(dimension string) string {
	return dimension
}

// TableKey - ключ основной таблицы на месяц period
func TableKey(period time.Time, subdivision, region, manager string) string {
	return fmt.Sprintf("%s,%s,%s,%s", period.Format("02.01.2006"), orNone(subdivision), orNone(region), orNone(manager))
}

// CurveKey - ключ кривой прогноза сегмента
func CurveKey(group, subdivision, region, manager string) string {
	return fmt.Sprintf("curve,%s,%s,%s,%s", group, orNone(subdivision), orNone(region), orNone(manager))
}
