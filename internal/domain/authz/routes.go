package authz

import (
	"sort"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// Route is a navigable page and the role it requires.
type Route struct {
	Path  string
	Title string
	Role  shared.Role
}

var routes = []Route{
	{Path: "/student/home", Title: "Home", Role: shared.RoleStudent},
	{Path: "/student/leaderboards", Title: "Leaderboards", Role: shared.RoleStudent},
	{Path: "/student/redemption", Title: "Redemption", Role: shared.RoleStudent},
	{Path: "/student/scanItem", Title: "Scan Item", Role: shared.RoleStudent},

	{Path: "/teachers", Title: "Classes", Role: shared.RoleTeacher},
	{Path: "/teachers/class", Title: "Class Dashboard", Role: shared.RoleTeacher},
	{Path: "/teachers/leaderboards", Title: "Class Leaderboards", Role: shared.RoleTeacher},

	{Path: "/admin/dashboard", Title: "Dashboard", Role: shared.RoleAdmin},
	{Path: "/admin/userManagement", Title: "User Management", Role: shared.RoleAdmin},
	{Path: "/admin/inventoryManagement", Title: "Inventory Management", Role: shared.RoleAdmin},
	{Path: "/admin/contactManagement", Title: "Contact Management", Role: shared.RoleAdmin},

	{Path: "/parents", Title: "Parent Home", Role: shared.RoleParent},

	{Path: "/ecopilot", Title: "EcoPilot", Role: shared.RoleAny},
	{Path: "/auth/contactVerification", Title: "Contact Verification", Role: shared.RoleAny},
	{Path: "/account/delete", Title: "Delete Account", Role: shared.RoleAny},

	{Path: "/contact", Title: "Contact Us", Role: shared.RolePublic},
	{Path: "/auth/register", Title: "Register", Role: shared.RolePublic},
	{Path: LoginPath, Title: "Log In", Role: shared.RolePublic},
}

// Routes returns the route table in navigation order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds a route by path. Trailing slashes are ignored.
func Lookup(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Navigate evaluates opening path with the session. Unknown paths are not
// found; known paths go through Authorize.
func Navigate(s session.Session, path string) (Route, Decision, error) {
	r, ok := Lookup(path)
	if !ok {
		return Route{}, Decision{}, shared.NewDomainError("authz", "Navigate", shared.ErrNotFound, "no such page: "+path)
	}
	return r, Authorize(s, r.Role), nil
}

// Visible returns the routes the session may open, sorted by path.
// Used for the navigation menu.
func Visible(s session.Session) []Route {
	var out []Route
	for _, r := range routes {
		if Authorize(s, r.Role).Allowed() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
