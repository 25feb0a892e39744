package erp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/LilVoxy/sales_program/history"
)

// PeriodLayout - формат даты и времени в ответах 1С
const PeriodLayout = "02.01.2006 15:04:05"

// salesRecord - строка истории продаж в ответе 1С.
// Указатели отличают отсутствующее поле от пустого значения.
type salesRecord struct {
	Group       *string  `json:"Группа"`
	Period      *string  `json:"Период"`
	Value       *float64 `json:"Показатель"`
	Subdivision *string  `json:"Подразделение"`
	Region      *string  `json:"Регион"`
	Manager     *string  `json:"Менеджер"`
}

type envelope struct {
	Data *json.RawMessage `json:"data"`
}

// decodeData извлекает массив data из ответа 1С
func decodeData(body []byte, target interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Data == nil {
		return fmt.Errorf("%w: нет поля data", ErrMalformed)
	}
	if err := json.Unmarshal(*env.Data, target); err != nil {
		return fmt.Errorf("%w: поле data: %v", ErrMalformed, err)
	}
	return nil
}

// parseSales разбирает ответ с историей продаж. Любая некорректная строка отклоняет весь ответ.
func parseSales(body []byte, loc *time.Location) ([]history.Observation, error) {
	var records []salesRecord
	if err := decodeData(body, &records); err != nil {
		return nil, err
	}

	observations := make([]history.Observation, 0, len(records))
	for i, r := range records {
		if r.Group == nil || r.Period == nil || r.Value == nil || r.Subdivision == nil {
			return nil, fmt.Errorf("%w: строка %d: отсутствуют обязательные поля", ErrMalformed, i)
		}
		period, err := time.ParseInLocation(PeriodLayout, *r.Period, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: строка %d: период %q: %v", ErrMalformed, i, *r.Period, err)
		}

		o := history.Observation{
			Group:       *r.Group,
			Period:      period,
			Value:       *r.Value,
			Subdivision: *r.Subdivision,
		}
		if r.Region != nil {
			o.Region = *r.Region
		}
		if r.Manager != nil {
			o.Manager = *r.Manager
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("%w: строка %d: %v", ErrMalformed, i, err)
		}
		observations = append(observations, o)
	}
	return observations, nil
}
