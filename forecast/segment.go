package forecast

import (
	"fmt"

	"github.com/LilVoxy/sales_program/history"
)

// Segment определяет единицу прогнозирования: группа и, по соглашению, не более одного разреза.
// Пустая строка означает отсутствие разреза. Сравнение структурное по всем полям.
type Segment struct {
	Group       string `json:"group"`
	Subdivision string `json:"subdivision,omitempty"`
	Region      string `json:"region,omitempty"`
	Manager     string `json:"manager,omitempty"`
}

// SegmentFor строит сегмент для группы и значения разреза
func SegmentFor(group string, dim history.Dimension, value string) Segment {
	seg := Segment{Group: group}
	switch dim {
	case history.DimensionSubdivision:
		seg.Subdivision = value
	case history.DimensionRegion:
		seg.Region = value
	case history.DimensionManager:
		seg.Manager = value
	}
	return seg
}

// Dimension возвращает первый заполненный разрез сегмента и его значение
func (s Segment) Dimension() (history.Dimension, string) {
	switch {
	case s.Subdivision != "":
		return history.DimensionSubdivision, s.Subdivision
	case s.Region != "":
		return history.DimensionRegion, s.Region
	case s.Manager != "":
		return history.DimensionManager, s.Manager
	}
	return history.DimensionNone, ""
}

func (s Segment) String() string {
	return fmt.Sprintf("%s,%s,%s,%s", s.Group, orNone(s.Subdivision), orNone(s.Region), orNone(s.Manager))
}

func orNone(v string) string {
	if v == "" {
		return "None"
	}
	return v
}
