package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LilVoxy/sales_program/history"
)

// ProgramRow - установленный план группы
type ProgramRow struct {
	Group     string  `json:"Группа"`
	Program   float64 `json:"План"`
	Deviation float64 `json:"Отклонение"`
}

// ProgramLine - строка плана, отправляемая в 1С
type ProgramLine struct {
	Group       string  `json:"group"`
	Forecast    float64 `json:"forecast"`
	RMSE        float64 `json:"rmse"`
	Program     float64 `json:"program"`
	Deviation   float64 `json:"deviation"`
	Subdivision string  `json:"subdivision,omitempty"`
	Region      string  `json:"region,omitempty"`
	Manager     string  `json:"manager,omitempty"`
}

type programRequest struct {
	Layer   string        `json:"layer"`
	Period  string        `json:"period"`
	Program []ProgramLine `json:"program"`
}

// programPeriod форматирует начало месяца как литерал ДАТАВРЕМЯ языка запросов 1С
func programPeriod(period time.Time) string {
	return fmt.Sprintf("ДАТАВРЕМЯ(%d, %d, 1, 0, 0, 0)", period.Year(), int(period.Month()))
}

// programQuery подставляет период и значение разреза в текст запроса планов
func programQuery(period time.Time, dim history.Dimension, value string) string {
	var text string
	switch dim {
	case history.DimensionSubdivision:
		text = strings.ReplaceAll(subdivisionProgramQuery, "&Подразделение", value)
	case history.DimensionRegion:
		text = strings.ReplaceAll(regionProgramQuery, "&Регион", value)
	case history.DimensionManager:
		text = strings.ReplaceAll(managerProgramQuery, "&Менеджер", value)
	default:
		text = generalProgramQuery
	}
	return strings.ReplaceAll(text, "&Период", programPeriod(period))
}

// GetProgram возвращает установленные планы на период в разрезе dim.
// Временные сбои 1С логируются, результатом в этом случае будет пустой список.
func (c *Client) GetProgram(ctx context.Context, period time.Time, dim history.Dimension, value string) ([]ProgramRow, error) {
	body, err := c.query(ctx, programQuery(period, dim, value))
	if err == nil {
		var rows []ProgramRow
		if err = decodeData(body, &rows); err == nil {
			return rows, nil
		}
	}

	if IsTransient(err) {
		c.logger.Error("Не удалось получить планы на %s: %v", period.Format("01.2006"), err)
		return []ProgramRow{}, nil
	}
	return nil, err
}

// SetProgram отправляет планы разреза layer на период.
// Ответ с кодом, отличным от 200, возвращается как ошибка с текстом ответа.
func (c *Client) SetProgram(ctx context.Context, layer string, period time.Time, lines []ProgramLine) error {
	if lines == nil {
		lines = []ProgramLine{}
	}
	payload, err := json.MarshalIndent(programRequest{
		Layer:   layer,
		Period:  period.Format("02.01.2006"),
		Program: lines,
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("ошибка кодирования планов: %w", err)
	}

	resp, err := c.post(ctx, c.cfg.ProgramRoute, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("1С отклонила планы (http %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Info("Планы разреза %q на %s установлены: %d строк", layer, period.Format("01.2006"), len(lines))
	return nil
}
