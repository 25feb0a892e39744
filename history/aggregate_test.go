package history

import (
	"testing"
	"time"
)

func TestAggregate_ByGroup(t *testing.T) {
	observations := []Observation{
		{Group: "B", Period: month(2024, time.February), Value: 1, Subdivision: "X"},
		{Group: "A", Period: month(2024, time.February), Value: 2, Subdivision: "X"},
		{Group: "A", Period: month(2024, time.January), Value: 3, Subdivision: "Y"},
		{Group: "A", Period: month(2024, time.February), Value: 4, Subdivision: "Y"},
	}

	series := Aggregate(observations, DimensionNone)
	if len(series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(series))
	}

	a := series[0]
	if a.Group != "A" || a.Value != "" {
		t.Fatalf("Expected first series for group A, got %+v", a)
	}
	if len(a.Samples) != 2 {
		t.Fatalf("Expected 2 samples for A, got %d", len(a.Samples))
	}
	if !a.Samples[0].Period.Equal(month(2024, time.January)) || a.Samples[0].Value != 3 {
		t.Errorf("Unexpected first sample: %+v", a.Samples[0])
	}
	if a.Samples[1].Value != 6 {
		t.Errorf("Expected February sum 6, got %v", a.Samples[1].Value)
	}
}

func TestAggregate_BySubdivisionSkipsEmpty(t *testing.T) {
	observations := []Observation{
		{Group: "A", Period: month(2024, time.January), Value: 1, Subdivision: "X"},
		{Group: "A", Period: month(2024, time.January), Value: 1, Subdivision: ""},
		{Group: "A", Period: month(2024, time.February), Value: 2, Subdivision: "Y"},
	}

	series := Aggregate(observations, DimensionSubdivision)
	if len(series) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(series))
	}
	if series[0].Value != "X" || series[1].Value != "Y" {
		t.Errorf("Unexpected series order: %s, %s", series[0].Value, series[1].Value)
	}
	for _, s := range series {
		if s.Dimension != DimensionSubdivision {
			t.Errorf("Expected subdivision dimension, got %v", s.Dimension)
		}
	}
}

func TestDistinctValues(t *testing.T) {
	observations := []Observation{
		{Group: "A", Subdivision: "Сочи"},
		{Group: "B", Subdivision: "Краснодар"},
		{Group: "C", Subdivision: "Сочи"},
		{Group: "D"},
	}

	values := DistinctValues(observations, DimensionSubdivision)
	if len(values) != 2 || values[0] != "Краснодар" || values[1] != "Сочи" {
		t.Errorf("Unexpected distinct values: %v", values)
	}
}

func TestParseDimension(t *testing.T) {
	for _, dim := range []Dimension{DimensionNone, DimensionSubdivision, DimensionRegion, DimensionManager} {
		parsed, err := ParseDimension(dim.String())
		if err != nil {
			t.Fatalf("ParseDimension(%s) failed: %v", dim, err)
		}
		if parsed != dim {
			t.Errorf("Expected %v, got %v", dim, parsed)
		}
	}
	if _, err := ParseDimension("warehouse"); err == nil {
		t.Error("Expected error for unknown dimension")
	}
}

func TestPeriodHelpers(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)

	feb := AddMonths(jan31, 1)
	if feb.Month() != time.February || feb.Day() != 29 {
		t.Errorf("Expected end of February 2024, got %v", feb)
	}

	end := EndOfMonth(jan31)
	if end.Day() != 31 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("Unexpected end of month: %v", end)
	}

	if !SameMonth(jan31, MonthStart(jan31)) {
		t.Error("Expected same month")
	}
	if MonthIndex(feb)-MonthIndex(jan31) != 1 {
		t.Error("Expected consecutive month indexes")
	}
}
