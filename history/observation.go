package history

import (
	"fmt"
	"time"
)

// Observation представляет одну строку истории продаж из 1С
type Observation struct {
	Group       string    // Группа номенклатуры
	Period      time.Time // Период (месяц)
	Value       float64   // Показатель
	Subdivision string    // Подразделение, пустое - нет
	Region      string    // Регион, пустое - нет
	Manager     string    // Менеджер, пустое - нет
}

// Validate проверяет обязательные поля наблюдения
func (o Observation) Validate() error {
	if o.Group == "" {
		return fmt.Errorf("пустая группа")
	}
	if o.Period.IsZero() {
		return fmt.Errorf("пустой период для группы %q", o.Group)
	}
	return nil
}

// Dimension определяет разрез, по которому строятся сегменты
type Dimension int

const (
	// DimensionNone - в целом по компании
	DimensionNone Dimension = iota
	DimensionSubdivision
	DimensionRegion
	DimensionManager
)

// ParseDimension разбирает имя разреза ("subdivision", "region", "manager", пустое - в целом)
func ParseDimension(name string) (Dimension, error) {
	switch name {
	case "", "none", "general":
		return DimensionNone, nil
	case "subdivision":
		return DimensionSubdivision, nil
	case "region":
		return DimensionRegion, nil
	case "manager":
		return DimensionManager, nil
	}
	return DimensionNone, fmt.Errorf("неизвестный разрез: %q", name)
}

// String возвращает имя разреза
func (d Dimension) String() string {
	switch d {
	case DimensionSubdivision:
		return "subdivision"
	case DimensionRegion:
		return "region"
	case DimensionManager:
		return "manager"
	default:
		return "none"
	}
}

// Layer возвращает имя разреза планирования, как его ожидает 1С
func (d Dimension) Layer() string {
	switch d {
	case DimensionSubdivision:
		return "Подразделение"
	case DimensionRegion:
		return "Регион"
	case DimensionManager:
		return "Менеджер"
	default:
		return "В целом по компании"
	}
}

// ValueOf возвращает значение разреза для наблюдения
func (d Dimension) ValueOf(o Observation) string {
	switch d {
	case DimensionSubdivision:
		return o.Subdivision
	case DimensionRegion:
		return o.Region
	case DimensionManager:
		return o.Manager
	default:
		return ""
	}
}
