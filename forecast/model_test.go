package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/LilVoxy/sales_program/history"
)

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func monthEnd(year int, m time.Month) time.Time {
	return history.EndOfMonth(time.Date(year, m, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewEmptyModel(t *testing.T) {
	seg := Segment{Group: "A"}
	model := NewEmptyModel(seg, fixedNow(), DefaultHorizon)

	if model.IsTrained() {
		t.Error("Expected empty model to be untrained")
	}
	if len(model.Forecast) != DefaultHorizon {
		t.Fatalf("Expected %d forecast points, got %d", DefaultHorizon, len(model.Forecast))
	}
	if model.Std != SentinelMax || model.RMSE != SentinelMax {
		t.Errorf("Expected std and rmse %d, got %v and %v", SentinelMax, model.Std, model.RMSE)
	}
	for i, p := range model.Forecast {
		if p.Value != 0 || p.Lower != 0 || p.Upper != 0 {
			t.Errorf("Expected zero point %d, got %+v", i, p)
		}
		expected := history.AddMonths(fixedNow(), i)
		if !p.Period.Equal(expected) {
			t.Errorf("Expected period %v at %d, got %v", expected, i, p.Period)
		}
	}
}

func TestNewEmptyModel_DefaultPeriods(t *testing.T) {
	model := NewEmptyModel(Segment{Group: "A"}, fixedNow(), 0)
	if len(model.Forecast) != DefaultHorizon {
		t.Errorf("Expected default horizon %d, got %d", DefaultHorizon, len(model.Forecast))
	}
}

func TestModel_FitWithoutCapability(t *testing.T) {
	model := NewEmptyModel(Segment{Group: "A"}, fixedNow(), DefaultHorizon)

	err := model.Fit([]Point{{Period: monthEnd(2024, time.April), Value: 10}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured from Fit, got %v", err)
	}
	if err := model.Predict(DefaultHorizon, Monthly); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured from Predict, got %v", err)
	}
}

func TestModel_FitPredictLinear(t *testing.T) {
	caps, err := DefaultCapabilities("linear")
	if err != nil {
		t.Fatalf("DefaultCapabilities failed: %v", err)
	}
	model, err := caps.NewModel(Segment{Group: "A"}, PrimaryCapability, fixedNow(), DefaultHorizon)
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}

	// Ряд подается в обратном порядке, модель должна отсортировать его сама
	series := []Point{
		{Period: monthEnd(2024, time.May), Value: 12},
		{Period: monthEnd(2024, time.April), Value: 10},
	}
	if err := model.FitPredict(series, DefaultHorizon, Monthly); err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}

	if !model.IsTrained() {
		t.Fatal("Expected trained model")
	}
	if len(model.Forecast) < DefaultHorizon {
		t.Errorf("Expected at least %d points, got %d", DefaultHorizon, len(model.Forecast))
	}

	june, ok := model.PointFor(fixedNow())
	if !ok {
		t.Fatal("Expected forecast point for June")
	}
	if june.Value != 14 {
		t.Errorf("Expected June forecast 14, got %v", june.Value)
	}
	if model.Std < 0 {
		t.Errorf("Expected non-negative std, got %v", model.Std)
	}
	if model.RMSE != 0 {
		t.Errorf("Expected zero in-sample rmse for two points, got %v", model.RMSE)
	}

	last := model.Forecast[len(model.Forecast)-1]
	if !history.SameMonth(last.Period, monthEnd(2024, time.November)) {
		t.Errorf("Expected last point in November, got %v", last.Period)
	}
}

func TestModel_StdIsHalfOfLastInterval(t *testing.T) {
	caps, _ := DefaultCapabilities("linear")
	model, _ := caps.NewModel(Segment{Group: "A"}, PrimaryCapability, fixedNow(), 3)

	series := []Point{
		{Period: monthEnd(2024, time.January), Value: 10},
		{Period: monthEnd(2024, time.February), Value: 14},
		{Period: monthEnd(2024, time.March), Value: 11},
		{Period: monthEnd(2024, time.April), Value: 17},
	}
	if err := model.FitPredict(series, 3, Monthly); err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}

	last := model.Forecast[len(model.Forecast)-1]
	expected := RoundToThousandth((last.Upper - last.Lower) / 2)
	if model.Std != expected {
		t.Errorf("Expected std %v, got %v", expected, model.Std)
	}
	if model.Std <= 0 {
		t.Errorf("Expected positive std for noisy series, got %v", model.Std)
	}
	if model.RMSE <= 0 || model.RMSE == SentinelMax {
		t.Errorf("Expected finite positive rmse, got %v", model.RMSE)
	}
}

func TestModel_Equal(t *testing.T) {
	caps, _ := DefaultCapabilities("linear")
	trained, _ := caps.NewModel(Segment{Group: "A", Subdivision: "North"}, PrimaryCapability, fixedNow(), 6)
	empty := NewEmptyModel(Segment{Group: "A", Subdivision: "North"}, fixedNow(), 3)
	other := NewEmptyModel(Segment{Group: "A"}, fixedNow(), 6)

	if !trained.Equal(empty) {
		t.Error("Expected models with equal segments to be equal")
	}
	if trained.Equal(other) {
		t.Error("Expected models with different segments to differ")
	}
}

func TestModel_CurveIsCopy(t *testing.T) {
	model := NewEmptyModel(Segment{Group: "A"}, fixedNow(), 2)
	curve := model.Curve()
	curve[0].Value = 42

	if model.Forecast[0].Value != 0 {
		t.Error("Expected Curve to return a copy")
	}
}
