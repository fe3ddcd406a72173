// Package dashboard keeps the per-provider dashboard state: which day and
// month are on screen and the data fetched for them.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"gobarber/cmd/internal/fetch"
	"gobarber/cmd/internal/integration/gobarber"
	"gobarber/cmd/internal/schedule"

	"github.com/labstack/gommon/log"
)

var (
	ErrDayUnavailable  = errors.New("day is not available for selection")
	ErrMonthOutOfRange = errors.New("month is before the current month")
)

// Identity is who a board fetches data for.
type Identity struct {
	ProviderID  string
	Name        string
	AvatarURL   string
	AccessToken string
}

type Options struct {
	Location     *time.Location
	FetchTimeout time.Duration
	Now          func() time.Time
}

type Board struct {
	who    Identity
	loc    *time.Location
	now    func() time.Time
	api    gobarber.ClientInterface
	cancel context.CancelFunc

	mu       sync.Mutex
	selected schedule.Date
	month    schedule.YearMonth

	appointments *fetch.Latest[schedule.Date, []schedule.Appointment]
	availability *fetch.Latest[schedule.YearMonth, []schedule.MonthAvailabilityItem]
}

// NewBoard opens a board on the next workday after today and starts loading
// that day and its month. Fetches run under ctx.
func NewBoard(ctx context.Context, api gobarber.ClientInterface, who Identity, opts Options) *Board {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	b := &Board{who: who, loc: opts.Location, now: opts.Now, api: api, cancel: cancel}
	b.appointments = fetch.NewLatest(ctx, b.loadAppointments, opts.FetchTimeout)
	b.availability = fetch.NewLatest(ctx, b.loadAvailability, opts.FetchTimeout)

	start := schedule.DateOf(schedule.NextWorkday(b.now().In(b.loc)))
	b.selected = start
	b.month = start.YearMonth()
	b.appointments.Load(b.selected)
	b.availability.Load(b.month)
	return b
}

func (b *Board) loadAppointments(ctx context.Context, day schedule.Date) ([]schedule.Appointment, error) {
	appts, err := b.api.DayAppointments(ctx, b.who.AccessToken, day)
	if err != nil && ctx.Err() == nil {
		log.Warnf("failed to fetch appointments of %s for provider %s: %v", day, b.who.ProviderID, err)
	}
	return appts, err
}

func (b *Board) loadAvailability(ctx context.Context, month schedule.YearMonth) ([]schedule.MonthAvailabilityItem, error) {
	items, err := b.api.MonthAvailability(ctx, b.who.AccessToken, b.who.ProviderID, month)
	if err != nil && ctx.Err() == nil {
		log.Warnf("failed to fetch availability of %s for provider %s: %v", month, b.who.ProviderID, err)
	}
	return items, err
}

// SelectDay moves the selection to day and starts fetching its appointments.
// Weekends and days the provider marked unavailable are refused.
func (b *Board) SelectDay(day schedule.Date) (<-chan struct{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !schedule.Selectable(day, b.disabledFor(day.YearMonth())) {
		return nil, ErrDayUnavailable
	}
	b.selected = day
	return b.appointments.Load(day), nil
}

// ChangeMonth moves the calendar to month and starts fetching its availability.
func (b *Board) ChangeMonth(month schedule.YearMonth) (<-chan struct{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !schedule.MonthSelectable(month, b.now().In(b.loc)) {
		return nil, ErrMonthOutOfRange
	}
	b.month = month
	return b.availability.Load(month), nil
}

// Refresh refetches both the selected day and the displayed month.
func (b *Board) Refresh() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	appts := b.appointments.Reload()
	avail := b.availability.Reload()

	done := make(chan struct{})
	go func() {
		<-appts
		<-avail
		close(done)
	}()
	return done
}

// disabledFor returns the disabled set of month when its availability is
// loaded, and only the weekends of month otherwise.
func (b *Board) disabledFor(month schedule.YearMonth) schedule.DisabledSet {
	snap := b.availability.Snapshot()
	if snap.Ready && snap.Err == nil && snap.Key == month {
		return schedule.NewDisabledSet(schedule.DisabledDays(snap.Value, month))
	}
	return schedule.NewDisabledSet(schedule.DisabledDays(nil, month))
}

// Close stops any fetch still in flight.
func (b *Board) Close() {
	b.cancel()
}
