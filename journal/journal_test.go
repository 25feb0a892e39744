package journal

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var runColumns = []string{
	"id", "run_trigger", "start_time", "end_time", "status",
	"observations", "models", "error_message", "execution_time_seconds",
}

func TestMemoryRepository_Lifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	start := time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC)

	if run, _ := repo.LastSuccessful(); run != nil {
		t.Fatalf("Expected no successful run, got %+v", run)
	}

	repo.Start("a", TriggerStartup, start)
	if err := repo.Succeed("a", start.Add(2*time.Second), 120, 8); err != nil {
		t.Fatalf("Succeed failed: %v", err)
	}
	repo.Start("b", TriggerScheduled, start.Add(time.Hour))
	repo.Fail("b", start.Add(time.Hour+time.Second), "сервер 1С недоступен")
	repo.Start("c", TriggerScheduled, start.Add(2*time.Hour))

	last, _ := repo.LastSuccessful()
	if last == nil || last.ID != "a" || last.Observations != 120 || last.Models != 8 {
		t.Errorf("Unexpected last successful run %+v", last)
	}
	if last.ExecutionTimeSeconds != 2 {
		t.Errorf("Expected execution time 2s, got %v", last.ExecutionTimeSeconds)
	}

	recent, _ := repo.Recent(2)
	if len(recent) != 2 || recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("Expected recent runs c, b, got %+v", recent)
	}

	state, _ := repo.State()
	if state.Current == nil || state.Current.ID != "c" {
		t.Errorf("Expected current run c, got %+v", state.Current)
	}
	if state.LastFailed == nil || state.LastFailed.ErrorMessage == "" {
		t.Errorf("Expected failed run with message, got %+v", state.LastFailed)
	}
}

func TestMemoryRepository_FinishUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	if err := repo.Skip("missing", time.Now(), "актуально"); err == nil {
		t.Error("Expected error for unknown run")
	}
}

func TestMySQLRepository_StartAndSucceed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer db.Close()

	repo := NewMySQLRepository(db)
	start := time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)

	mock.ExpectExec("INSERT INTO refresh_run_log").
		WithArgs("run-1", "scheduled", start).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT start_time FROM refresh_run_log WHERE id = ?").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"start_time"}).AddRow(start))
	mock.ExpectExec("UPDATE refresh_run_log").
		WithArgs(end, 100, 4, 5.0, "run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Start("run-1", TriggerScheduled, start); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := repo.Succeed("run-1", end, 100, 4); err != nil {
		t.Fatalf("Succeed failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMySQLRepository_Skip(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := NewMySQLRepository(db)
	start := time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT start_time").
		WithArgs("run-2").
		WillReturnRows(sqlmock.NewRows([]string{"start_time"}).AddRow(start))
	mock.ExpectExec("UPDATE refresh_run_log").
		WithArgs(start, "skipped", "данные актуальны", 0.0, "run-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Skip("run-2", start, "данные актуальны"); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMySQLRepository_LastSuccessfulEmpty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("FROM refresh_run_log").
		WithArgs("success").
		WillReturnRows(sqlmock.NewRows(runColumns))

	run, err := NewMySQLRepository(db).LastSuccessful()
	if err != nil {
		t.Fatalf("LastSuccessful failed: %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil run, got %+v", run)
	}
}

func TestMySQLRepository_Recent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	start := time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC)
	end := start.Add(time.Second)
	mock.ExpectQuery("FROM refresh_run_log").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(runColumns).
			AddRow("b", "scheduled", start, nil, "in_progress", 0, 0, "", 0.0).
			AddRow("a", "startup", start, end, "success", 10, 2, "", 1.0))

	runs, err := NewMySQLRepository(db).Recent(5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].EndTime != nil || runs[0].Status != StatusInProgress {
		t.Errorf("Expected in-progress run without end time, got %+v", runs[0])
	}
	if runs[1].EndTime == nil || !runs[1].EndTime.Equal(end) || runs[1].Trigger != TriggerStartup {
		t.Errorf("Unexpected finished run %+v", runs[1])
	}
}
