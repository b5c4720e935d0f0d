package domain

import "time"

// Форматы дат, принимаемые в seed (startDate).
var startDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02T15:04:05",
}

// ParseStartDate разбирает дату старта в одном из поддерживаемых форматов.
func ParseStartDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysUntil возвращает количество календарных дней от now до даты старта.
// ok == false, если дата отсутствует или не разбирается — в этом случае
// проверки, зависящие от даты, должны отключаться (fail-open).
func DaysUntil(startDate string, now time.Time) (int, bool) {
	t, ok := ParseStartDate(startDate)
	if !ok {
		return 0, false
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	ref := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(start.Sub(ref).Hours() / 24), true
}
