package history

import "time"

// MonthStart возвращает начало месяца для t
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth возвращает последний момент месяца для t
func EndOfMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// AddMonths сдвигает t на n месяцев и возвращает конец получившегося месяца.
// В отличие от time.AddDate не переносит 31-е число в следующий месяц.
func AddMonths(t time.Time, n int) time.Time {
	return EndOfMonth(time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location()))
}

// SameMonth сообщает, относятся ли a и b к одному месяцу
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthIndex возвращает порядковый номер месяца (год*12 + месяц)
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
