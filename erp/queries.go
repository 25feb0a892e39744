package erp

// Тексты запросов к 1С. Параметры подставляются заменой &Имя.
const (
	salesDataQuery = `ВЫБРАТЬ
	Продажи.Номенклатура.ГруппаЛК.Наименование КАК Группа,
	НАЧАЛОПЕРИОДА(Продажи.Период, МЕСЯЦ) КАК Период,
	СУММА(Продажи.Количество) КАК Показатель,
	Продажи.Подразделение.Наименование КАК Подразделение,
	Продажи.Подразделение.Регион.Наименование КАК Регион,
	Продажи.ЗаказКлиента.Менеджер.Наименование КАК Менеджер
ИЗ
	РегистрНакопления.Продажи КАК Продажи
СГРУППИРОВАТЬ ПО
	Продажи.Номенклатура.ГруппаЛК.Наименование,
	НАЧАЛОПЕРИОДА(Продажи.Период, МЕСЯЦ),
	Продажи.Подразделение.Наименование,
	Продажи.Подразделение.Регион.Наименование,
	Продажи.ЗаказКлиента.Менеджер.Наименование`

	generalProgramQuery = `ВЫБРАТЬ
	Планы.Группа.Наименование КАК Группа,
	Планы.План КАК План,
	Планы.Отклонение КАК Отклонение
ИЗ
	РегистрСведений.ПланыПродаж КАК Планы
ГДЕ
	Планы.Период = &Период
	И Планы.Разрез = "В целом по компании"`

	subdivisionProgramQuery = `ВЫБРАТЬ
	Планы.Группа.Наименование КАК Группа,
	Планы.План КАК План,
	Планы.Отклонение КАК Отклонение
ИЗ
	РегистрСведений.ПланыПродаж КАК Планы
ГДЕ
	Планы.Период = &Период
	И Планы.Подразделение.Наименование = "&Подразделение"`

	regionProgramQuery = `ВЫБРАТЬ
	Планы.Группа.Наименование КАК Группа,
	Планы.План КАК План,
	Планы.Отклонение КАК Отклонение
ИЗ
	РегистрСведений.ПланыПродаж КАК Планы
ГДЕ
	Планы.Период = &Период
	И Планы.Регион.Наименование = "&Регион"`

	managerProgramQuery = `ВЫБРАТЬ
	Планы.Группа.Наименование КАК Группа,
	Планы.План КАК План,
	Планы.Отклонение КАК Отклонение
ИЗ
	РегистрСведений.ПланыПродаж КАК Планы
ГДЕ
	Планы.Период = &Период
	И Планы.Менеджер.Наименование = "&Менеджер"`
)
