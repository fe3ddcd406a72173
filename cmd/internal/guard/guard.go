package guard

import (
	"net/url"
	"strings"

	"gobarber/cmd/internal/domain/entity"
)

const (
	EntryPath     = "/"
	DashboardPath = "/dashboard"
	ProfilePath   = "/profile"
)

// Route describes a navigable path. Private routes need a signed-in session,
// public ones are only meant for visitors without one.
type Route struct {
	Path    string
	Private bool
}

// Decision is the outcome of evaluating a route against a session. When
// Allowed is false, Target is where the caller should be sent and From is
// the location that was originally requested.
type Decision struct {
	Allowed bool
	Target  string
	From    string
}

// Evaluate grants access only when the route's privacy matches whether sess
// is present. from is the request URI being navigated to.
func Evaluate(route Route, sess *entity.Session, from string) Decision {
	authenticated := sess != nil
	if route.Private == authenticated {
		return Decision{Allowed: true}
	}

	if route.Private {
		return Decision{Target: EntryPath, From: from}
	}
	return Decision{Target: DashboardPath, From: from}
}

// RedirectURL is the location to send a denied request to. Only the entry
// page keeps the original target, for use after sign-in.
func (d Decision) RedirectURL() string {
	if d.Target == EntryPath {
		return EntryURL(d.From)
	}
	return d.Target
}

func EntryURL(from string) string {
	if from == "" || from == EntryPath {
		return EntryPath
	}
	return EntryPath + "?" + url.Values{"from": {from}}.Encode()
}

// SafeReturn picks where to go after a successful sign-in. Anything that is
// not a local absolute path falls back to the dashboard.
func SafeReturn(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, `\`) {
		return DashboardPath
	}

	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DashboardPath
	}

	if u.Path == EntryPath {
		return DashboardPath
	}
	return u.RequestURI()
}
