package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MySQLRepository реализация Repository для MySQL
type MySQLRepository struct {
	db *sql.DB
}

// NewMySQLRepository создает новый экземпляр MySQLRepository
func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const selectRunColumns = `
	SELECT
		id, run_trigger, start_time, end_time, status,
		observations, models, IFNULL(error_message, ''), IFNULL(execution_time_seconds, 0)
	FROM refresh_run_log`

// CreateTable создает таблицу журнала обновлений, если она не существует
func (r *MySQLRepository) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS refresh_run_log (
		id CHAR(36) PRIMARY KEY,
		run_trigger VARCHAR(16) NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status ENUM('in_progress', 'success', 'failed', 'skipped') NOT NULL DEFAULT 'in_progress',
		observations INT DEFAULT 0,
		models INT DEFAULT 0,
		error_message TEXT,
		execution_time_seconds FLOAT
	);
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы refresh_run_log: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Start(id string, trigger Trigger, startTime time.Time) error {
	query := `
	INSERT INTO refresh_run_log (id, run_trigger, start_time, status)
	VALUES (?, ?, ?, 'in_progress')
	`

	if _, err := r.db.Exec(query, id, string(trigger), startTime); err != nil {
		return fmt.Errorf("ошибка при создании записи о цикле обновления: %w", err)
	}
	return nil
}

// executionTime рассчитывает длительность цикла по сохраненному времени начала
func (r *MySQLRepository) executionTime(id string, endTime time.Time) (float64, error) {
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM refresh_run_log WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении времени начала цикла %s: %w", id, err)
	}
	return endTime.Sub(startTime).Seconds(), nil
}

func (r *MySQLRepository) Succeed(id string, endTime time.Time, observations, models int) error {
	seconds, err := r.executionTime(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE refresh_run_log
	SET
		end_time = ?,
		status = 'success',
		observations = ?,
		models = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	if _, err := r.db.Exec(query, endTime, observations, models, seconds, id); err != nil {
		return fmt.Errorf("ошибка при обновлении записи о цикле обновления: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Fail(id string, endTime time.Time, errorMessage string) error {
	return r.finishWithMessage(id, endTime, StatusFailed, errorMessage)
}

func (r *MySQLRepository) Skip(id string, endTime time.Time, reason string) error {
	return r.finishWithMessage(id, endTime, StatusSkipped, reason)
}

func (r *MySQLRepository) finishWithMessage(id string, endTime time.Time, status Status, message string) error {
	seconds, err := r.executionTime(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE refresh_run_log
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	if _, err := r.db.Exec(query, endTime, string(status), message, seconds, id); err != nil {
		return fmt.Errorf("ошибка при обновлении записи о цикле обновления: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var trigger, status string
	var endTime sql.NullTime
	err := row.Scan(
		&run.ID, &trigger, &run.StartTime, &endTime, &status,
		&run.Observations, &run.Models, &run.ErrorMessage, &run.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	run.Trigger = Trigger(trigger)
	run.Status = Status(status)
	if endTime.Valid {
		end := endTime.Time
		run.EndTime = &end
	}
	return &run, nil
}

// lastWith возвращает последний цикл со статусом status или nil
func (r *MySQLRepository) lastWith(status Status) (*Run, error) {
	query := selectRunColumns + `
	WHERE status = ?
	ORDER BY start_time DESC
	LIMIT 1
	`

	run, err := scanRun(r.db.QueryRow(query, string(status)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении последнего цикла со статусом %s: %w", status, err)
	}
	return run, nil
}

func (r *MySQLRepository) LastSuccessful() (*Run, error) {
	return r.lastWith(StatusSuccess)
}

func (r *MySQLRepository) Recent(limit int) ([]Run, error) {
	query := selectRunColumns + `
	ORDER BY start_time DESC
	LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала обновлений: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи журнала: %w", err)
		}
		runs = append(runs, *run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по журналу обновлений: %w", err)
	}
	return runs, nil
}

func (r *MySQLRepository) State() (*State, error) {
	var state State
	var err error

	if state.LastSuccessful, err = r.lastWith(StatusSuccess); err != nil {
		return nil, err
	}
	if state.LastFailed, err = r.lastWith(StatusFailed); err != nil {
		return nil, err
	}
	if state.Current, err = r.lastWith(StatusInProgress); err != nil {
		return nil, err
	}
	return &state, nil
}
