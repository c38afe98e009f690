// Package route parses location fragments into views.
package route

import (
	"strconv"
	"strings"
)

// View identifies one of the application's screens.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
	ViewDetails
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewDashboard:
		return "dashboard"
	case ViewDetails:
		return "ngo-details"
	}
	return "unknown"
}

// Fragments used by the application.
const (
	Root          = ""
	Dashboard     = "dashboard"
	detailsPrefix = "ngo-details/"
)

// Guard messages shown when an unauthenticated user reaches a protected view.
const (
	MsgLoginForDashboard = "Please log in to access the dashboard."
	MsgLoginForDetails   = "Please log in first to view NGO details."
)

// Route is the parsed form of a location fragment.
type Route struct {
	View View
	// OrganizationID is set for ViewDetails.
	OrganizationID int
	// Invalid marks an ngo-details fragment whose id did not parse. It is
	// treated like an unauthenticated details request.
	Invalid bool
}

// Protected reports whether the route needs a logged-in identity.
func (r Route) Protected() bool {
	return r.View != ViewLogin
}

// GuardMessage is the text shown when the guard turns the route away.
func (r Route) GuardMessage() string {
	switch r.View {
	case ViewDashboard:
		return MsgLoginForDashboard
	case ViewDetails:
		return MsgLoginForDetails
	}
	return ""
}

// Normalize strips a leading '#' and surrounding whitespace.
func Normalize(fragment string) string {
	return strings.TrimPrefix(strings.TrimSpace(fragment), "#")
}

// Parse maps a fragment to a route. Unknown fragments fall back to the login
// view.
func Parse(fragment string) Route {
	fragment = Normalize(fragment)
	switch {
	case fragment == Dashboard:
		return Route{View: ViewDashboard}
	case strings.HasPrefix(fragment, detailsPrefix):
		id, ok := parseID(strings.TrimPrefix(fragment, detailsPrefix))
		if !ok {
			return Route{View: ViewDetails, Invalid: true}
		}
		return Route{View: ViewDetails, OrganizationID: id}
	}
	return Route{View: ViewLogin}
}

// parseID accepts a leading run of digits, like parseInt does for
// "ngo-details/12/extra". Anything without leading digits is rejected.
func parseID(s string) (int, bool) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return id, true
}

// Details builds the fragment for an organization's page.
func Details(organizationID int) string {
	return detailsPrefix + strconv.Itoa(organizationID)
}
