package journal

import (
	"fmt"
	"sync"
	"time"
)

// MemoryRepository хранит журнал в памяти процесса
type MemoryRepository struct {
	mu   sync.Mutex
	runs []Run
}

// NewMemoryRepository создает пустой журнал в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Start(id string, trigger Trigger, startTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, Run{ID: id, Trigger: trigger, StartTime: startTime, Status: StatusInProgress})
	return nil
}

func (r *MemoryRepository) Succeed(id string, endTime time.Time, observations, models int) error {
	return r.finish(id, endTime, StatusSuccess, func(run *Run) {
		run.Observations = observations
		run.Models = models
	})
}

func (r *MemoryRepository) Fail(id string, endTime time.Time, errorMessage string) error {
	return r.finish(id, endTime, StatusFailed, func(run *Run) {
		run.ErrorMessage = errorMessage
	})
}

func (r *MemoryRepository) Skip(id string, endTime time.Time, reason string) error {
	return r.finish(id, endTime, StatusSkipped, func(run *Run) {
		run.ErrorMessage = reason
	})
}

func (r *MemoryRepository) finish(id string, endTime time.Time, status Status, update func(*Run)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID != id {
			continue
		}
		run := &r.runs[i]
		end := endTime
		run.EndTime = &end
		run.Status = status
		run.ExecutionTimeSeconds = endTime.Sub(run.StartTime).Seconds()
		update(run)
		return nil
	}
	return fmt.Errorf("запись о цикле %s не найдена", id)
}

func (r *MemoryRepository) LastSuccessful() (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastWith(StatusSuccess), nil
}

func (r *MemoryRepository) Recent(limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runs := make([]Run, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, r.runs[i])
	}
	return runs, nil
}

func (r *MemoryRepository) State() (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &State{
		LastSuccessful: r.lastWith(StatusSuccess),
		LastFailed:     r.lastWith(StatusFailed),
		Current:        r.lastWith(StatusInProgress),
	}, nil
}

func (r *MemoryRepository) lastWith(status Status) *Run {
	for i := len(r.runs) - 1; i >= 0; i-- {
		if r.runs[i].Status == status {
			run := r.runs[i]
			return &run
		}
	}
	return nil
}
