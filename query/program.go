package query

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/sales_program/erp"
	"github.com/LilVoxy/sales_program/history"
	"github.com/LilVoxy/sales_program/utils"
)

// programDimensions - разрезы планов, для которых обучаются модели (кроме "в целом")
var programDimensions = []history.Dimension{
	history.DimensionSubdivision,
}

// ProgramClient - чтение и установка планов в 1С
type ProgramClient interface {
	GetProgram(ctx context.Context, period time.Time, dim history.Dimension, value string) ([]erp.ProgramRow, error)
	SetProgram(ctx context.Context, layer string, period time.Time, lines []erp.ProgramLine) error
}

// BuildProgram соединяет строки таблицы с планами из 1С.
// При replace план и отклонение заменяются прогнозом и RMSE.
func BuildProgram(rows []Row, programs []erp.ProgramRow, filter Filter, replace bool) []erp.ProgramLine {
	byGroup := make(map[string]erp.ProgramRow, len(programs))
	for _, p := range programs {
		byGroup[p.Group] = p
	}

	lines := make([]erp.ProgramLine, 0, len(rows))
	for _, r := range rows {
		line := erp.ProgramLine{
			Group:       r.Group,
			Forecast:    RoundForecast(r.Forecast),
			RMSE:        RoundForecast(r.RMSE),
			Subdivision: filter.Subdivision,
			Region:      filter.Region,
			Manager:     filter.Manager,
		}
		if replace {
			line.Program = line.Forecast
			line.Deviation = line.RMSE
		} else if p, ok := byGroup[r.Group]; ok {
			line.Program = p.Program
			line.Deviation = p.Deviation
		}
		lines = append(lines, line)
	}
	return lines
}

// Planner реализует работу с планами продаж поверх таблиц прогноза
type Planner struct {
	reader Reader
	client ProgramClient
	logger *utils.Logger
}

// NewPlanner создает планировщик
func NewPlanner(reader Reader, client ProgramClient, logger *utils.Logger) *Planner {
	return &Planner{reader: reader, client: client, logger: logger}
}

// Program возвращает строки плана на период: прогноз из таблицы и установленный план из 1С
func (p *Planner) Program(ctx context.Context, period time.Time, filter Filter, replace bool) ([]erp.ProgramLine, error) {
	period = history.EndOfMonth(period)
	rows := p.reader.MainTable(ctx, period, filter)

	var programs []erp.ProgramRow
	if !replace {
		dim, value := filter.Dimension()
		var err error
		programs, err = p.client.GetProgram(ctx, period, dim, value)
		if err != nil {
			return nil, err
		}
	}
	return BuildProgram(rows, programs, filter, replace), nil
}

// Submit отправляет строки плана разреза filter в 1С
func (p *Planner) Submit(ctx context.Context, period time.Time, filter Filter, lines []erp.ProgramLine) error {
	dim, _ := filter.Dimension()
	return p.client.SetProgram(ctx, dim.Layer(), history.EndOfMonth(period), lines)
}

// SubmitAll устанавливает прогноз в качестве плана в целом по компании и по подразделениям.
// Останавливается на первой ошибке 1С.
func (p *Planner) SubmitAll(ctx context.Context, period time.Time) error {
	if period.IsZero() {
		period = p.reader.FirstForecastPeriod(ctx)
	}
	period = history.EndOfMonth(period)

	filters := []Filter{{}}
	for _, dim := range programDimensions {
		for _, option := range p.reader.Options(ctx, dim) {
			filters = append(filters, FilterFor(dim, option))
		}
	}

	for _, f := range filters {
		lines, err := p.Program(ctx, period, f, true)
		if err != nil {
			return err
		}
		if err := p.Submit(ctx, period, f, lines); err != nil {
			dim, value := f.Dimension()
			return fmt.Errorf("разрез %s %q: %w", dim.Layer(), value, err)
		}
	}

	p.logger.Info("Прогноз на %s установлен планом в %d разрезах", period.Format("01.2006"), len(filters))
	return nil
}
