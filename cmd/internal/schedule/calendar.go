package schedule

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// DisabledDays lists, in ascending order, the days of month that cannot be
// picked: every Saturday and Sunday plus every day flagged unavailable.
// Items pointing outside the month are ignored.
func DisabledDays(items []MonthAvailabilityItem, month YearMonth) []Date {
	unavailable := make(map[int]bool, len(items))
	for _, item := range items {
		if !item.Available {
			unavailable[item.Day] = true
		}
	}

	var days []Date
	for day := 1; day <= month.Days(); day++ {
		d := Date{Year: month.Year, Month: month.Month, Day: day}
		if IsWeekend(d.Weekday()) || unavailable[day] {
			days = append(days, d)
		}
	}
	return days
}

type DisabledSet map[Date]struct{}

func NewDisabledSet(days []Date) DisabledSet {
	set := make(DisabledSet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

func (s DisabledSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Selectable reports whether d may be picked on the calendar. Weekends are
// never selectable regardless of the set.
func Selectable(d Date, disabled DisabledSet) bool {
	return !IsWeekend(d.Weekday()) && !disabled.Contains(d)
}

// MonthSelectable reports whether the calendar may navigate to m. Months
// before the current one are out of reach.
func MonthSelectable(m YearMonth, now time.Time) bool {
	return !m.Before(MonthOf(now))
}

func IsToday(d Date, now time.Time, loc *time.Location) bool {
	return DateOf(now.In(loc)) == d
}

// DayText renders d the way the dashboard header shows it, e.g. "Dia 08 de Janeiro".
func DayText(d Date) string {
	return fmt.Sprintf("Dia %02d de %s", d.Day, monthNames[d.Month-1])
}

func WeekdayName(d Date) string {
	return weekdayNames[d.Weekday()]
}
