package service

import (
	"context"
	"errors"

	"gobarber/cmd/internal/dashboard"
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/schedule"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
)

type BoardRegistry interface {
	Get(sessionID string, who dashboard.Identity) *dashboard.Board
}

type SelectDayRequest struct {
	Date string `json:"date" validate:"required,isodate"`
}

type ChangeMonthRequest struct {
	Month string `json:"month" validate:"required,yearmonth"`
}

type DefaultDashboardService struct {
	Boards   BoardRegistry
	Validate *validator.Validate
}

func NewDashboardService(boards BoardRegistry, validate *validator.Validate) *DefaultDashboardService {
	return &DefaultDashboardService{Boards: boards, Validate: validate}
}

func (d *DefaultDashboardService) GetDashboard(sess *entity.Session) (*dashboard.View, apierror.ErrorResponse) {
	return d.board(sess).View(), nil
}

// SelectDay changes the selected day and waits for its appointments, or for
// ctx to end, before returning the view.
func (d *DefaultDashboardService) SelectDay(ctx context.Context, sess *entity.Session, req *SelectDayRequest) (*dashboard.View, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	day, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("date", "YYYY-MM-DD")
	}

	b := d.board(sess)
	done, err := b.SelectDay(day)
	if errors.Is(err, dashboard.ErrDayUnavailable) {
		return nil, apierror.DayUnavailableError
	}
	if err != nil {
		return nil, apierror.InternalServerError
	}
	return awaitView(ctx, b, done)
}

func (d *DefaultDashboardService) ChangeMonth(ctx context.Context, sess *entity.Session, req *ChangeMonthRequest) (*dashboard.View, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	month, err := schedule.ParseYearMonth(req.Month)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("month", "YYYY-MM")
	}

	b := d.board(sess)
	done, err := b.ChangeMonth(month)
	if errors.Is(err, dashboard.ErrMonthOutOfRange) {
		return nil, apierror.MonthOutOfRangeError
	}
	if err != nil {
		return nil, apierror.InternalServerError
	}
	return awaitView(ctx, b, done)
}

func (d *DefaultDashboardService) Refresh(ctx context.Context, sess *entity.Session) (*dashboard.View, apierror.ErrorResponse) {
	b := d.board(sess)
	return awaitView(ctx, b, b.Refresh())
}

func (d *DefaultDashboardService) board(sess *entity.Session) *dashboard.Board {
	return d.Boards.Get(sess.ID, dashboard.Identity{
		ProviderID:  sess.User.Sub,
		Name:        sess.User.Name,
		AvatarURL:   sess.User.AvatarURL,
		AccessToken: sess.AccessToken,
	})
}

// awaitView returns the board's view once done is closed. A request that
// gives up first gets a cancellation error; the fetch carries on for the
// next view.
func awaitView(ctx context.Context, b *dashboard.Board, done <-chan struct{}) (*dashboard.View, apierror.ErrorResponse) {
	select {
	case <-done:
		return b.View(), nil
	case <-ctx.Done():
		return nil, apierror.RequestCancelledError
	}
}
