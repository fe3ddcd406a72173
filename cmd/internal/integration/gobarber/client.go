package gobarber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gobarber/cmd/internal/schedule"

	"golang.org/x/time/rate"
)

const maxErrorBody = 4 << 10

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gobarber api: unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err means the forwarded token was refused.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden)
}

type ClientInterface interface {
	MonthAvailability(ctx context.Context, token, providerID string, month schedule.YearMonth) ([]schedule.MonthAvailabilityItem, error)
	DayAppointments(ctx context.Context, token string, day schedule.Date) ([]schedule.Appointment, error)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps outbound requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type monthAvailabilityDTO struct {
	Day       int  `json:"day"`
	Available bool `json:"available"`
}

type appointmentUserDTO struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type appointmentDTO struct {
	ID   string             `json:"id"`
	Date string             `json:"date"`
	User appointmentUserDTO `json:"user"`
}

// MonthAvailability fetches the per-day availability of a provider for month.
func (c *Client) MonthAvailability(ctx context.Context, token, providerID string, month schedule.YearMonth) ([]schedule.MonthAvailabilityItem, error) {
	query := url.Values{
		"year":  {strconv.Itoa(month.Year)},
		"month": {strconv.Itoa(int(month.Month))},
	}

	var dtos []monthAvailabilityDTO
	path := "/providers/" + url.PathEscape(providerID) + "/month-availability"
	if err := c.get(ctx, token, path, query, &dtos); err != nil {
		return nil, err
	}

	items := make([]schedule.MonthAvailabilityItem, len(dtos))
	for i, dto := range dtos {
		items[i] = schedule.MonthAvailabilityItem{Day: dto.Day, Available: dto.Available}
	}
	return items, nil
}

// DayAppointments fetches the signed-in provider's appointments on day.
func (c *Client) DayAppointments(ctx context.Context, token string, day schedule.Date) ([]schedule.Appointment, error) {
	query := url.Values{
		"year":  {strconv.Itoa(day.Year)},
		"month": {strconv.Itoa(int(day.Month))},
		"day":   {strconv.Itoa(day.Day)},
	}

	var dtos []appointmentDTO
	if err := c.get(ctx, token, "/appointments/me", query, &dtos); err != nil {
		return nil, err
	}

	appts := make([]schedule.Appointment, len(dtos))
	for i, dto := range dtos {
		date, err := parseISO(dto.Date)
		if err != nil {
			return nil, fmt.Errorf("gobarber api: appointment %s: invalid date: %w", dto.ID, err)
		}
		appts[i] = schedule.Appointment{
			ID:   dto.ID,
			Date: date,
			User: schedule.Customer{Name: dto.User.Name, AvatarURL: dto.User.AvatarURL},
		}
	}
	return appts, nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gobarber api: wait for rate limiter: %w", err)
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("gobarber api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gobarber api: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gobarber api: decode %s: %w", path, err)
	}
	return nil
}

// parseISO accepts RFC 3339 timestamps with or without fractional seconds,
// which is what the API's JSON serializer emits.
func parseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
