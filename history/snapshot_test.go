package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshot_RoundTripPreservesPeriods(t *testing.T) {
	snapshot := NewSnapshot(filepath.Join(t.TempDir(), "history.csv"), time.Local)
	original := []Observation{
		{Group: "Трубы", Period: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.Local), Value: 10.5, Subdivision: "Краснодар, Тополиная, 27/1"},
		{Group: "Трубы", Period: time.Date(2023, time.February, 28, 23, 59, 59, 0, time.Local), Value: 0, Subdivision: ""},
		{Group: "Фитинги", Period: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.Local), Value: 1234567.125, Subdivision: "Сочи"},
	}

	if err := snapshot.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, found, err := snapshot.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("Expected snapshot to be found")
	}
	if len(loaded) != len(original) {
		t.Fatalf("Expected %d rows, got %d", len(original), len(loaded))
	}

	for i := range original {
		if !loaded[i].Period.Equal(original[i].Period) {
			t.Errorf("Row %d: expected period %v, got %v", i, original[i].Period, loaded[i].Period)
		}
		if loaded[i].Group != original[i].Group {
			t.Errorf("Row %d: expected group %s, got %s", i, original[i].Group, loaded[i].Group)
		}
		if loaded[i].Value != original[i].Value {
			t.Errorf("Row %d: expected value %v, got %v", i, original[i].Value, loaded[i].Value)
		}
		if loaded[i].Subdivision != original[i].Subdivision {
			t.Errorf("Row %d: expected subdivision %q, got %q", i, original[i].Subdivision, loaded[i].Subdivision)
		}
	}
}

func TestSnapshot_MissingFile(t *testing.T) {
	snapshot := NewSnapshot(filepath.Join(t.TempDir(), "absent.csv"), nil)

	loaded, found, err := snapshot.Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if found || loaded != nil {
		t.Errorf("Expected nothing found, got found=%v rows=%d", found, len(loaded))
	}
}

func TestSnapshot_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte("group,period,value,subdivision\nA,2024-01-01 00:00:00,1,\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, _, err := NewSnapshot(path, nil).Load()
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("Expected ErrInvalidData, got %v", err)
	}
}

func TestSnapshot_BadPeriod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "Группа,Период,Показатель,Подразделение\nA,01.01.2024,1,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, _, err := NewSnapshot(path, nil).Load()
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("Expected ErrInvalidData, got %v", err)
	}
}

func TestSnapshot_RoundTripRegionAndManager(t *testing.T) {
	snapshot := NewSnapshot(filepath.Join(t.TempDir(), "history.csv"), time.UTC)
	original := []Observation{
		{Group: "A", Period: time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), Value: 3, Subdivision: "N", Region: "R1", Manager: "M1"},
		{Group: "B", Period: time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), Value: 4, Subdivision: "N"},
	}

	if err := snapshot.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, _, err := snapshot.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(loaded))
	}
	if loaded[0].Region != "R1" || loaded[0].Manager != "M1" {
		t.Errorf("Expected region R1 and manager M1, got %+v", loaded[0])
	}
	if loaded[1].Region != "" || loaded[1].Manager != "" {
		t.Errorf("Expected empty region and manager, got %+v", loaded[1])
	}

	regions := DistinctValues(loaded, DimensionRegion)
	if len(regions) != 1 || regions[0] != "R1" {
		t.Errorf("Expected region options [R1] after reload, got %v", regions)
	}
}

func TestSnapshot_LoadsFourColumnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "Группа,Период,Показатель,Подразделение\nA,2024-01-31 00:00:00,1.5,N\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	loaded, found, err := NewSnapshot(path, time.UTC).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found || len(loaded) != 1 {
		t.Fatalf("Expected 1 row, got found=%v rows=%d", found, len(loaded))
	}
	if loaded[0].Subdivision != "N" || loaded[0].Value != 1.5 || loaded[0].Region != "" {
		t.Errorf("Unexpected row %+v", loaded[0])
	}
}

func TestSnapshot_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cache", "history.csv")
	snapshot := NewSnapshot(path, time.UTC)

	observations := []Observation{{Group: "A", Period: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), Value: 1}}
	if err := snapshot.Save(observations); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected snapshot file to exist, got %v", err)
	}
}
