package forecast

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultCapabilities_Names(t *testing.T) {
	caps, err := DefaultCapabilities("seasonal")
	if err != nil {
		t.Fatalf("DefaultCapabilities failed: %v", err)
	}

	names := caps.Names()
	expected := []string{"linear", "primary", "seasonal"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected %s at %d, got %s", expected[i], i, names[i])
		}
	}

	forecaster, err := caps.Resolve(PrimaryCapability)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := forecaster.(*SeasonalForecaster); !ok {
		t.Errorf("Expected primary to resolve to seasonal, got %T", forecaster)
	}
}

func TestDefaultCapabilities_UnknownPrimary(t *testing.T) {
	_, err := DefaultCapabilities("prophet")
	if !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("Expected ErrUnknownCapability, got %v", err)
	}
}

func TestCapabilities_ResolveReturnsFreshInstances(t *testing.T) {
	caps, _ := DefaultCapabilities("linear")

	a, _ := caps.Resolve("linear")
	b, _ := caps.Resolve("linear")
	if a == b {
		t.Error("Expected a new forecaster per Resolve call")
	}
}

func TestCapabilities_NewModelUnknownName(t *testing.T) {
	caps := NewCapabilities()
	_, err := caps.NewModel(Segment{Group: "A"}, "missing", time.Now(), DefaultHorizon)
	if !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("Expected ErrUnknownCapability, got %v", err)
	}
}

func TestFrequency_Step(t *testing.T) {
	start := monthEnd(2024, time.January)

	next, err := Monthly.Step(start, 1)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !next.Equal(monthEnd(2024, time.February)) {
		t.Errorf("Expected end of February, got %v", next)
	}

	if _, err := Frequency(7).Step(start, 1); !errors.Is(err, ErrUnsupportedFrequency) {
		t.Errorf("Expected ErrUnsupportedFrequency, got %v", err)
	}
}
