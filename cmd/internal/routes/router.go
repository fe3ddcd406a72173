package routes

import (
	"net/http"

	"gobarber/cmd/internal/guard"

	"github.com/labstack/echo/v4"
)

// Mount registers every route on e. Each route declares whether it is
// public or private, and the guard settles access before the handler runs.
func Mount(e *echo.Echo, resolver SessionResolver, sessions *DefaultSessionRoute, dash *DefaultDashboardRoute) {
	withSession := SessionContext(resolver)
	public := []echo.MiddlewareFunc{withSession, Public()}
	private := []echo.MiddlewareFunc{withSession, Private()}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Sessions
	e.GET(guard.EntryPath, sessions.EntryPage, public...)
	e.POST("/sessions", sessions.CreateSession, public...)
	e.DELETE("/sessions", sessions.DeleteSession, private...)
	e.GET(guard.ProfilePath, sessions.GetProfile, private...)

	// Dashboard
	e.GET(guard.DashboardPath, dash.GetDashboard, private...)
	e.PUT(guard.DashboardPath+"/day", dash.SelectDay, private...)
	e.PUT(guard.DashboardPath+"/month", dash.ChangeMonth, private...)
	e.POST(guard.DashboardPath+"/refresh", dash.Refresh, private...)
}
