package dashboard

import (
	"context"
	"errors"
	"time"

	"gobarber/cmd/internal/integration/gobarber"
	"gobarber/cmd/internal/schedule"
)

type UserSummary struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type AppointmentView struct {
	ID            string      `json:"id"`
	Date          string      `json:"date"`
	HourFormatted string      `json:"hour_formatted"`
	User          UserSummary `json:"user"`
}

type FetchState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

type View struct {
	User            UserSummary       `json:"user"`
	SelectedDate    string            `json:"selected_date"`
	SelectedDayText string            `json:"selected_day_text"`
	SelectedWeekDay string            `json:"selected_week_day"`
	IsToday         bool              `json:"is_today"`
	Month           string            `json:"month"`
	NextAppointment *AppointmentView  `json:"next_appointment"`
	Morning         []AppointmentView `json:"morning"`
	Afternoon       []AppointmentView `json:"afternoon"`
	DisabledDays    []string          `json:"disabled_days"`
	Appointments    FetchState        `json:"appointments"`
	Availability    FetchState        `json:"availability"`
}

// View assembles what the dashboard shows right now. Data is only used when
// it was fetched for the day and month currently selected.
func (b *Board) View() *View {
	// Selection and snapshots are read together so they always agree.
	b.mu.Lock()
	selected, month := b.selected, b.month
	appts := b.appointments.Snapshot()
	avail := b.availability.Snapshot()
	b.mu.Unlock()

	now := b.now().In(b.loc)
	v := &View{
		User:            UserSummary{Name: b.who.Name, AvatarURL: b.who.AvatarURL},
		SelectedDate:    selected.String(),
		SelectedDayText: schedule.DayText(selected),
		SelectedWeekDay: schedule.WeekdayName(selected),
		IsToday:         schedule.IsToday(selected, now, b.loc),
		Month:           month.String(),
		Morning:         []AppointmentView{},
		Afternoon:       []AppointmentView{},
	}

	v.Appointments = stateOf(appts.Loading, appts.Err)
	if appts.Ready && appts.Err == nil && appts.Key == selected {
		morning, afternoon := schedule.Partition(appts.Value, b.loc)
		v.Morning = b.appointmentViews(morning)
		v.Afternoon = b.appointmentViews(afternoon)

		if v.IsToday {
			if next, ok := schedule.NextAppointment(now, appts.Value); ok {
				nv := b.appointmentView(next)
				v.NextAppointment = &nv
			}
		}
	}

	v.Availability = stateOf(avail.Loading, avail.Err)
	var items []schedule.MonthAvailabilityItem
	if avail.Ready && avail.Err == nil && avail.Key == month {
		items = avail.Value
	}
	// Weekends are known without the fetch, so they are always reported.
	disabled := schedule.DisabledDays(items, month)
	v.DisabledDays = make([]string, len(disabled))
	for i, d := range disabled {
		v.DisabledDays[i] = d.String()
	}
	return v
}

func (b *Board) appointmentViews(appts []schedule.Appointment) []AppointmentView {
	out := make([]AppointmentView, len(appts))
	for i, appt := range appts {
		out[i] = b.appointmentView(appt)
	}
	return out
}

func (b *Board) appointmentView(appt schedule.Appointment) AppointmentView {
	return AppointmentView{
		ID:            appt.ID,
		Date:          appt.Date.In(b.loc).Format(time.RFC3339),
		HourFormatted: schedule.FormatHour(appt.Date, b.loc),
		User:          UserSummary{Name: appt.User.Name, AvatarURL: appt.User.AvatarURL},
	}
}

func stateOf(loading bool, err error) FetchState {
	return FetchState{Loading: loading, Error: fetchError(err)}
}

// fetchError turns a failed fetch into a message the client can show next
// to a retry action.
func fetchError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "the scheduling service took too long to answer"
	case errors.Is(err, context.Canceled):
		return "the request was cancelled"
	case gobarber.IsUnauthorized(err):
		return "the scheduling service rejected the session"
	default:
		return "could not load data from the scheduling service"
	}
}
