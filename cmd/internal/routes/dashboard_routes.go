package routes

import (
	"context"
	"net/http"

	"gobarber/cmd/internal/dashboard"
	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type DashboardService interface {
	GetDashboard(sess *entity.Session) (*dashboard.View, apierror.ErrorResponse)
	SelectDay(ctx context.Context, sess *entity.Session, req *service.SelectDayRequest) (*dashboard.View, apierror.ErrorResponse)
	ChangeMonth(ctx context.Context, sess *entity.Session, req *service.ChangeMonthRequest) (*dashboard.View, apierror.ErrorResponse)
	Refresh(ctx context.Context, sess *entity.Session) (*dashboard.View, apierror.ErrorResponse)
}

type DefaultDashboardRoute struct {
	DashboardService DashboardService
}

func NewDashboardDefault(dashboardService DashboardService) *DefaultDashboardRoute {
	return &DefaultDashboardRoute{DashboardService: dashboardService}
}

func (d *DefaultDashboardRoute) GetDashboard(c echo.Context) error {
	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	view, apierr := d.DashboardService.GetDashboard(sess)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (d *DefaultDashboardRoute) SelectDay(c echo.Context) error {
	var req service.SelectDayRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	view, apierr := d.DashboardService.SelectDay(c.Request().Context(), sess, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (d *DefaultDashboardRoute) ChangeMonth(c echo.Context) error {
	var req service.ChangeMonthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	view, apierr := d.DashboardService.ChangeMonth(c.Request().Context(), sess, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (d *DefaultDashboardRoute) Refresh(c echo.Context) error {
	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	view, apierr := d.DashboardService.Refresh(c.Request().Context(), sess)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}
