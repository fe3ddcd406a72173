package routes

import (
	"context"
	"net/http"

	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/guard"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type SessionService interface {
	SignIn(ctx context.Context, req *service.SignInRequest) (*service.SignInResponse, apierror.ErrorResponse)
	SignOut(ctx context.Context, sess *entity.Session) apierror.ErrorResponse
	GetProfile(sess *entity.Session) (*service.UserResponse, apierror.ErrorResponse)
}

type DefaultSessionRoute struct {
	SessionService SessionService
	SecureCookie   bool
}

func NewSessionDefault(sessionService SessionService, secureCookie bool) *DefaultSessionRoute {
	return &DefaultSessionRoute{SessionService: sessionService, SecureCookie: secureCookie}
}

// EntryPage describes the sign-in page, carrying where to go once signed in.
func (s *DefaultSessionRoute) EntryPage(c echo.Context) error {
	resp := echo.Map{
		"page": "signin",
		"from": guard.SafeReturn(c.QueryParam("from")),
	}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultSessionRoute) CreateSession(c echo.Context) error {
	var req service.SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := s.SessionService.SignIn(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.SetCookie(utils.SessionCookie(resp.Token, resp.Expires, s.SecureCookie))
	return c.JSON(http.StatusCreated, resp)
}

func (s *DefaultSessionRoute) DeleteSession(c echo.Context) error {
	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	apierr := s.SessionService.SignOut(c.Request().Context(), sess)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.SetCookie(utils.ExpiredSessionCookie(s.SecureCookie))
	return c.NoContent(http.StatusNoContent)
}

func (s *DefaultSessionRoute) GetProfile(c echo.Context) error {
	sess := SessionFrom(c)
	if sess == nil {
		return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
	}

	user, apierr := s.SessionService.GetProfile(sess)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, user)
}
