package routes

import (
	"context"
	"net/http"
	"strings"

	"gobarber/cmd/internal/domain/entity"
	"gobarber/cmd/internal/guard"
	"gobarber/cmd/internal/utils"
	"gobarber/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const sessionCtxKey = "gobarber.session"

type SessionResolver interface {
	Resolve(ctx context.Context, rawToken string) (*entity.Session, error)
}

// SessionContext resolves the caller's session once per request and stores
// it on the echo context; a request without a usable token gets none.
func SessionContext(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := utils.SessionTokenCtx(c)
			if err != nil {
				return next(c)
			}

			sess, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil {
				log.Errorf("failed to resolve session: %v", err)
				return c.JSON(apierror.InternalServerError.Code(), apierror.InternalServerError)
			}
			if sess != nil {
				c.Set(sessionCtxKey, sess)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session SessionContext attached to c, if any.
func SessionFrom(c echo.Context) *entity.Session {
	sess, _ := c.Get(sessionCtxKey).(*entity.Session)
	return sess
}

// Private lets a request through only with a session.
func Private() echo.MiddlewareFunc { return requireAccess(true) }

// Public lets a request through only without a session.
func Public() echo.MiddlewareFunc { return requireAccess(false) }

func requireAccess(private bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := guard.Route{Path: c.Path(), Private: private}

			decision := guard.Evaluate(route, SessionFrom(c), req.URL.RequestURI())
			if decision.Allowed {
				return next(c)
			}

			if !wantsJSON(req) {
				return c.Redirect(http.StatusFound, decision.RedirectURL())
			}

			if private {
				apierr := apierror.NewRedirect(http.StatusUnauthorized, "Sign in to continue", decision.RedirectURL())
				return c.JSON(apierr.Code(), apierr)
			}
			apierr := apierror.NewRedirect(http.StatusForbidden, "Already signed in", decision.RedirectURL())
			return c.JSON(apierr.Code(), apierr)
		}
	}
}

// wantsJSON tells API calls apart from page navigations, which get a
// redirect instead of an error body.
func wantsJSON(req *http.Request) bool {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
