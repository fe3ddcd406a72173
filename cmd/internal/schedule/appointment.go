package schedule

import "time"

const afternoonHour = 12

// Customer is the person who booked an appointment.
type Customer struct {
	Name      string
	AvatarURL string
}

type Appointment struct {
	ID   string
	Date time.Time
	User Customer
}

// MonthAvailabilityItem flags whether the provider takes bookings on a day of the month.
type MonthAvailabilityItem struct {
	Day       int
	Available bool
}

// FormatHour renders t as HH:mm in loc.
func FormatHour(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// Partition splits appts into those starting before noon and those starting at
// or after noon, local to loc. Input order is kept in both halves.
func Partition(appts []Appointment, loc *time.Location) (morning, afternoon []Appointment) {
	morning = make([]Appointment, 0, len(appts))
	afternoon = make([]Appointment, 0, len(appts))
	for _, appt := range appts {
		if isMorning(appt, loc) {
			morning = append(morning, appt)
		} else {
			afternoon = append(afternoon, appt)
		}
	}
	return morning, afternoon
}

func Morning(appts []Appointment, loc *time.Location) []Appointment {
	return filter(appts, func(a Appointment) bool { return isMorning(a, loc) })
}

func Afternoon(appts []Appointment, loc *time.Location) []Appointment {
	return filter(appts, func(a Appointment) bool { return !isMorning(a, loc) })
}

// NextAppointment returns the first appointment in appts, in the given order,
// that starts strictly after now.
func NextAppointment(now time.Time, appts []Appointment) (Appointment, bool) {
	for _, appt := range appts {
		if appt.Date.After(now) {
			return appt, true
		}
	}
	return Appointment{}, false
}

func isMorning(appt Appointment, loc *time.Location) bool {
	return appt.Date.In(loc).Hour() < afternoonHour
}

func filter(appts []Appointment, keep func(Appointment) bool) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, appt := range appts {
		if keep(appt) {
			out = append(out, appt)
		}
	}
	return out
}
