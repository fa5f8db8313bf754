// Package pages holds the view models behind each route: they guard
// access, fetch what the route shows and keep its loading state.
package pages

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	default:
		return "public"
	}
}

const (
	PathHome               = "/"
	PathLogin              = "/login"
	PathRegister           = "/register"
	PathContests           = "/contests"
	PathContest            = "/contests/{id}"
	PathContestParticipate = "/contests/{id}/participate"
	PathContestResults     = "/contests/{id}/results"
	PathContestLeaderboard = "/contests/{id}/leaderboard"
	PathChallenges         = "/challenges"
	PathChallenge          = "/challenges/{id}"
	PathChallengeSolve     = "/challenges/{id}/solve"
	PathProfile            = "/profile"
	PathLeaderboard        = "/leaderboard"
	PathAdmin              = "/admin"
	PathAdminChallenges    = "/admin/challenges"
	PathAdminChallengeNew  = "/admin/challenges/new"
	PathAdminChallengeEdit = "/admin/challenges/{id}/edit"
	PathAdminContests      = "/admin/contests"
	PathAdminContestNew    = "/admin/contests/new"
	PathAdminContestEdit   = "/admin/contests/{id}/edit"
)

type Route struct {
	Pattern string
	Name    string
	Access  Access
}

var Routes = []Route{
	{PathHome, "home", Public},
	{PathLogin, "login", Public},
	{PathRegister, "register", Public},
	{PathContests, "contests", Authenticated},
	{PathContest, "contest", Authenticated},
	{PathContestParticipate, "contest participate", Authenticated},
	{PathContestResults, "contest results", Authenticated},
	{PathContestLeaderboard, "contest leaderboard", Authenticated},
	{PathChallenges, "challenges", Authenticated},
	{PathChallenge, "challenge", Authenticated},
	{PathChallengeSolve, "solve challenge", Authenticated},
	{PathProfile, "profile", Authenticated},
	{PathLeaderboard, "leaderboard", Authenticated},
	{PathAdmin, "admin dashboard", AdminOnly},
	{PathAdminChallenges, "admin challenges", AdminOnly},
	{PathAdminChallengeNew, "new challenge", AdminOnly},
	{PathAdminChallengeEdit, "edit challenge", AdminOnly},
	{PathAdminContests, "admin contests", AdminOnly},
	{PathAdminContestNew, "new contest", AdminOnly},
	{PathAdminContestEdit, "edit contest", AdminOnly},
}

var router = newRouter()

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, route := range Routes {
		r.Get(route.Pattern, noop)
	}
	return r
}

// Match resolves a concrete path such as /contests/7 to its route and
// path parameters.
func Match(path string) (Route, map[string]string, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	rctx := chi.NewRouteContext()
	if !router.Match(rctx, http.MethodGet, path) {
		return Route{}, nil, false
	}
	pattern := rctx.RoutePattern()
	for _, route := range Routes {
		if route.Pattern != pattern {
			continue
		}
		params := map[string]string{}
		for i, key := range rctx.URLParams.Keys {
			params[key] = rctx.URLParams.Values[i]
		}
		return route, params, true
	}
	return Route{}, nil, false
}

// AccessFor returns the access level of path. Unknown paths under /admin
// are admin-only, other unknown paths need a signed-in user.
func AccessFor(path string) Access {
	if route, _, ok := Match(path); ok {
		return route.Access
	}
	if path == PathAdmin || strings.HasPrefix(path, PathAdmin+"/") {
		return AdminOnly
	}
	return Authenticated
}

// Path fills the {id} parameter of a pattern.
func Path(pattern, id string) string {
	return strings.Replace(pattern, "{id}", id, 1)
}
