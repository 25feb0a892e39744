package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LilVoxy/sales_program/utils"
)

type fakeSource struct {
	mu           sync.Mutex
	observations []Observation
	err          error
	calls        int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.observations, nil
}

func (f *fakeSource) set(observations []Observation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observations = observations
	f.err = err
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.Local)
}

func fixedNow() time.Time {
	return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.Local)
}

func newTestStore(t *testing.T, source Source) *Store {
	t.Helper()
	snapshot := NewSnapshot(filepath.Join(t.TempDir(), "history.csv"), time.Local)
	return NewStore(source, snapshot, utils.NewDiscardLogger(), fixedNow)
}

func TestStore_EmptyByDefault(t *testing.T) {
	store := newTestStore(t, &fakeSource{})

	if raw, clean := store.Len(); raw != 0 || clean != 0 {
		t.Errorf("Expected empty store, got raw=%d clean=%d", raw, clean)
	}
	if _, ok := store.LatestPeriod(); ok {
		t.Error("Expected no latest period for empty store")
	}
}

func TestStore_LoadFromExternalSource_ExcludesCurrentMonth(t *testing.T) {
	source := &fakeSource{observations: []Observation{
		{Group: "A", Period: month(2024, time.June), Value: 5},
		{Group: "A", Period: month(2024, time.April), Value: 10},
		{Group: "A", Period: month(2024, time.May), Value: 12},
	}}
	store := newTestStore(t, source)

	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("LoadFromExternalSource failed: %v", err)
	}

	raw := store.ReadRawSnapshot()
	if len(raw) != 3 {
		t.Fatalf("Expected 3 raw observations, got %d", len(raw))
	}
	if !raw[0].Period.Equal(month(2024, time.April)) {
		t.Errorf("Expected raw sorted by period, first is %v", raw[0].Period)
	}

	clean := store.ReadCleanSnapshot()
	if len(clean) != 2 {
		t.Fatalf("Expected 2 clean observations, got %d", len(clean))
	}
	for _, o := range clean {
		if !o.Period.Before(month(2024, time.June)) {
			t.Errorf("Clean view contains current month: %v", o.Period)
		}
	}
}

func TestStore_FetchErrorKeepsState(t *testing.T) {
	source := &fakeSource{observations: []Observation{
		{Group: "A", Period: month(2024, time.April), Value: 10},
	}}
	store := newTestStore(t, source)
	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	connErr := errors.New("connection refused")
	source.set(nil, connErr)

	err := store.LoadFromExternalSource(context.Background())
	if !errors.Is(err, connErr) {
		t.Fatalf("Expected wrapped connection error, got %v", err)
	}

	raw := store.ReadRawSnapshot()
	if len(raw) != 1 || raw[0].Value != 10 {
		t.Errorf("Expected previous raw snapshot to survive, got %+v", raw)
	}
	if clean := store.ReadCleanSnapshot(); len(clean) != 1 {
		t.Errorf("Expected previous clean snapshot to survive, got %d rows", len(clean))
	}
}

func TestStore_InvalidObservationRejected(t *testing.T) {
	source := &fakeSource{observations: []Observation{
		{Group: "A", Period: month(2024, time.April), Value: 10},
	}}
	store := newTestStore(t, source)
	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	source.set([]Observation{
		{Group: "B", Period: month(2024, time.April), Value: 1},
		{Group: "", Period: month(2024, time.May), Value: 2},
	}, nil)

	err := store.LoadFromExternalSource(context.Background())
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("Expected ErrInvalidData, got %v", err)
	}

	raw := store.ReadRawSnapshot()
	if len(raw) != 1 || raw[0].Group != "A" {
		t.Errorf("Partial fetch must not replace raw snapshot, got %+v", raw)
	}
}

func TestStore_LocalCacheMissingIsNotError(t *testing.T) {
	store := newTestStore(t, nil)

	if err := store.LoadFromLocalCache(); err != nil {
		t.Fatalf("Missing snapshot should not be an error: %v", err)
	}
	if raw, _ := store.Len(); raw != 0 {
		t.Errorf("Expected empty store, got %d rows", raw)
	}
}

func TestStore_WarmStartFromSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	source := &fakeSource{observations: []Observation{
		{Group: "A", Period: month(2024, time.March), Value: 7, Subdivision: "Краснодар"},
		{Group: "A", Period: month(2024, time.April), Value: 8, Subdivision: "Краснодар"},
	}}

	first := NewStore(source, NewSnapshot(path, time.Local), utils.NewDiscardLogger(), fixedNow)
	if err := first.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("LoadFromExternalSource failed: %v", err)
	}

	second := NewStore(nil, NewSnapshot(path, time.Local), utils.NewDiscardLogger(), fixedNow)
	if err := second.LoadFromLocalCache(); err != nil {
		t.Fatalf("LoadFromLocalCache failed: %v", err)
	}

	raw := second.ReadRawSnapshot()
	if len(raw) != 2 {
		t.Fatalf("Expected 2 observations after warm start, got %d", len(raw))
	}
	if raw[1].Subdivision != "Краснодар" || raw[1].Value != 8 {
		t.Errorf("Unexpected observation after warm start: %+v", raw[1])
	}
	if clean := second.ReadCleanSnapshot(); len(clean) != 2 {
		t.Errorf("Expected clean view derived on warm start, got %d rows", len(clean))
	}
}

func TestStore_DeriveCleanViewFollowsClock(t *testing.T) {
	now := fixedNow()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	source := &fakeSource{observations: []Observation{
		{Group: "A", Period: month(2024, time.May), Value: 1},
		{Group: "A", Period: month(2024, time.June), Value: 2},
	}}
	store := NewStore(source, nil, utils.NewDiscardLogger(), clock)
	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("LoadFromExternalSource failed: %v", err)
	}
	if _, clean := store.Len(); clean != 1 {
		t.Fatalf("Expected 1 clean row in June, got %d", clean)
	}

	mu.Lock()
	now = time.Date(2024, time.July, 2, 0, 0, 0, 0, time.Local)
	mu.Unlock()

	store.DeriveCleanView()
	if _, clean := store.Len(); clean != 2 {
		t.Errorf("Expected 2 clean rows after month rollover, got %d", clean)
	}
}

// Читатель всегда видит либо старый, либо новый снимок целиком
func TestStore_ConcurrentReadSeesWholeSnapshot(t *testing.T) {
	oldRows := make([]Observation, 50)
	newRows := make([]Observation, 80)
	for i := range oldRows {
		oldRows[i] = Observation{Group: "old", Period: month(2023, time.Month(i%12+1)), Value: 1}
	}
	for i := range newRows {
		newRows[i] = Observation{Group: "new", Period: month(2022, time.Month(i%12+1)), Value: 2}
	}

	source := &fakeSource{observations: oldRows}
	store := NewStore(source, nil, utils.NewDiscardLogger(), fixedNow)
	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 16)

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snapshot := store.ReadCleanSnapshot()
				if len(snapshot) != len(oldRows) && len(snapshot) != len(newRows) {
					errs <- "torn snapshot length"
					return
				}
				group := snapshot[0].Group
				for _, o := range snapshot {
					if o.Group != group {
						errs <- "mixed snapshot rows"
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			source.set(newRows, nil)
		} else {
			source.set(oldRows, nil)
		}
		if err := store.LoadFromExternalSource(context.Background()); err != nil {
			t.Fatalf("Load %d failed: %v", i, err)
		}
	}

	close(stop)
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestStore_NilLogger(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	store := NewStore(source, nil, nil, fixedNow)

	if err := store.LoadFromExternalSource(context.Background()); err == nil {
		t.Fatal("Expected fetch error")
	}

	source.set([]Observation{{Group: "A", Period: month(2024, time.May), Value: 1}}, nil)
	if err := store.LoadFromExternalSource(context.Background()); err != nil {
		t.Fatalf("LoadFromExternalSource failed: %v", err)
	}
}
