package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime     = errors.New("time must be HH:MM")
	ErrInvalidDuration = errors.New("duration must not be negative")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// ParseSlot собирает интервал сеанса из даты, времени начала и длительности
// в минутах. Дата и время трактуются в поясе loc (nil: UTC).
func ParseSlot(date, clock string, durationMin int, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	if durationMin < 0 {
		return TimeRange{}, ErrInvalidDuration
	}

	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	hm, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
	return TimeRange{
		Start: start,
		End:   start.Add(time.Duration(durationMin) * time.Minute),
	}, nil
}

var frWeekdays = map[time.Weekday]string{
	time.Monday:    "lundi",
	time.Tuesday:   "mardi",
	time.Wednesday: "mercredi",
	time.Thursday:  "jeudi",
	time.Friday:    "vendredi",
	time.Saturday:  "samedi",
	time.Sunday:    "dimanche",
}

// FormatSlot форматирует интервал для писем и SMS клиенту, например
// "lundi 02/11/2026, 10:00–11:00". Если loc != nil, время переводится в loc.
func FormatSlot(tr TimeRange, loc *time.Location) string {
	start, end := tr.Start, tr.End
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	base := fmt.Sprintf("%s %s, %s", frWeekdays[start.Weekday()], start.Format("02/01/2006"), start.Format(TimeLayout))
	if end.After(start) {
		return base + "–" + end.Format(TimeLayout)
	}
	return base
}
