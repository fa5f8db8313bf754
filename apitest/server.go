// Package apitest provides an in-memory fake of the platform backend for
// tests. It speaks the same envelope and routes as the real API.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-jwt/jwt/v5/request"
	"github.com/google/uuid"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/httpjson"
)

var jwtKey = []byte("apitest")

type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	UUID     string `json:"uuid,omitempty"`
	jwt.RegisteredClaims
}

type claimsKeyType string

const ctxClaimsKey claimsKeyType = "claims"

type failure struct {
	status int
	code   string
	msg    string
}

// ExecFunc answers code execution requests.
type ExecFunc func(req apiclient.ExecuteRequest) (apiclient.ExecutionResult, error)

type storedUser struct {
	user     apiclient.User
	password string
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	users        map[string]*storedUser
	contests     map[string]apiclient.Contest
	contestOrder []string
	challenges   map[string]apiclient.Challenge
	chOrder      []string
	testCases    map[string]apiclient.TestCase
	tcOrder      []string
	templates    map[string]apiclient.FunctionTemplate
	links        map[string][]apiclient.ContestChallenge
	joined       map[string]map[string]bool
	leaderboards map[string][]apiclient.Participant
	submissions  []apiclient.Submission

	failures map[string]failure
	calls    map[string]int
	holds    map[string][]chan struct{}
	exec     ExecFunc
}

func NewServer() *Server {
	s := &Server{
		users:        map[string]*storedUser{},
		contests:     map[string]apiclient.Contest{},
		challenges:   map[string]apiclient.Challenge{},
		testCases:    map[string]apiclient.TestCase{},
		templates:    map[string]apiclient.FunctionTemplate{},
		links:        map[string][]apiclient.ContestChallenge{},
		joined:       map[string]map[string]bool{},
		leaderboards: map[string][]apiclient.Participant{},
		failures:     map[string]failure{},
		calls:        map[string]int{},
		holds:        map[string][]chan struct{}{},
		exec: func(req apiclient.ExecuteRequest) (apiclient.ExecutionResult, error) {
			return apiclient.ExecutionResult{Output: req.Stdin}, nil
		},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	s.handle(r, http.MethodPost, "/auth/login", s.login)
	s.handle(r, http.MethodPost, "/auth/register", s.register)
	s.handle(r, http.MethodGet, "/auth/profile", s.authed(s.profile))

	s.handle(r, http.MethodGet, "/contests", s.authed(s.listContests))
	s.handle(r, http.MethodPost, "/contests", s.admin(s.createContest))
	s.handle(r, http.MethodGet, "/contests/{id}", s.authed(s.getContest))
	s.handle(r, http.MethodPut, "/contests/{id}", s.admin(s.updateContest))
	s.handle(r, http.MethodDelete, "/contests/{id}", s.admin(s.deleteContest))
	s.handle(r, http.MethodPost, "/contests/{id}/register", s.authed(s.joinContest))
	s.handle(r, http.MethodGet, "/contests/{id}/challenges", s.authed(s.contestChallenges))
	s.handle(r, http.MethodPost, "/contests/{id}/challenges", s.admin(s.linkChallenge))
	s.handle(r, http.MethodGet, "/contests/{id}/leaderboard", s.authed(s.leaderboard))
	s.handle(r, http.MethodGet, "/leaderboard", s.authed(s.globalLeaderboard))

	s.handle(r, http.MethodGet, "/challenges", s.authed(s.listChallenges))
	s.handle(r, http.MethodPost, "/challenges", s.admin(s.createChallenge))
	s.handle(r, http.MethodGet, "/challenges/{id}", s.authed(s.getChallenge))
	s.handle(r, http.MethodPut, "/challenges/{id}", s.admin(s.updateChallenge))
	s.handle(r, http.MethodDelete, "/challenges/{id}", s.admin(s.deleteChallenge))
	s.handle(r, http.MethodGet, "/challenges/{id}/test-cases", s.authed(s.listTestCases))
	s.handle(r, http.MethodPost, "/challenges/{id}/test-cases", s.admin(s.createTestCase))
	s.handle(r, http.MethodDelete, "/test-cases/{id}", s.admin(s.deleteTestCase))
	s.handle(r, http.MethodGet, "/challenges/{id}/templates", s.authed(s.listTemplates))
	s.handle(r, http.MethodPost, "/challenges/{id}/templates", s.admin(s.createTemplate))
	s.handle(r, http.MethodDelete, "/templates/{id}", s.admin(s.deleteTemplate))

	s.handle(r, http.MethodPost, "/execute", s.authed(s.execute))
	s.handle(r, http.MethodPost, "/submissions", s.authed(s.createSubmission))
	s.handle(r, http.MethodGet, "/submissions", s.authed(s.listSubmissions))
	return r
}

// handle registers a route that counts its calls and honours injected
// failures keyed by "METHOD /pattern".
func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.calls[key]++
		f, failing := s.failures[key]
		var hold chan struct{}
		if q := s.holds[key]; len(q) > 0 {
			hold, s.holds[key] = q[0], q[1:]
		}
		s.mu.Unlock()
		if hold != nil {
			<-hold
		}
		if failing {
			httpjson.WriteErrorJson(w, f.msg, f.status, f.code)
			return
		}
		h(w, req)
	}))
}

// Fail makes every later call to the route answer with an error envelope.
func (s *Server) Fail(route string, status int, code, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, code: code, msg: msg}
}

func (s *Server) Heal(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Calls returns how many times the route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// HoldNext blocks the next call to the route until release is called.
func (s *Server) HoldNext(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = append(s.holds[route], ch)
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *Server) SetExec(f ExecFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exec = f
}

// Client returns an api client pointed at the fake.
func (s *Server) Client() *apiclient.Client {
	return apiclient.NewClient(s.URL,
		apiclient.WithHTTPClient(s.Server.Client()),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// seeding

func (s *Server) AddUser(username, password string, role apiclient.Role) apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := apiclient.User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       username + "@example.com",
		Role:        role,
		MemberSince: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.users[username] = &storedUser{user: u, password: password}
	return u
}

// Token signs a token for a seeded user.
func (s *Server) Token(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	su, ok := s.users[username]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown user %q", username))
	}
	return signToken(su.user)
}

func (s *Server) AddContest(c apiclient.Contest) apiclient.Contest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.contests[c.ID] = c
	s.contestOrder = append(s.contestOrder, c.ID)
	return c
}

func (s *Server) AddChallenge(ch apiclient.Challenge) apiclient.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	s.challenges[ch.ID] = ch
	s.chOrder = append(s.chOrder, ch.ID)
	return ch
}

func (s *Server) AddTestCase(tc apiclient.TestCase) apiclient.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tc.ID == "" {
		tc.ID = uuid.NewString()
	}
	s.testCases[tc.ID] = tc
	s.tcOrder = append(s.tcOrder, tc.ID)
	return tc
}

func (s *Server) AddTemplate(t apiclient.FunctionTemplate) apiclient.FunctionTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.templates[t.ID] = t
	return t
}

func (s *Server) LinkChallenge(contestID string, link apiclient.ContestChallenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[contestID] = append(s.links[contestID], link)
}

func (s *Server) SetLeaderboard(contestID string, rows []apiclient.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboards[contestID] = rows
}

// inspection

func (s *Server) HasChallenge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.challenges[id]
	return ok
}

func (s *Server) HasContest(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contests[id]
	return ok
}

// Contest returns the stored contest.
func (s *Server) Contest(id string) (apiclient.Contest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contests[id]
	return c, ok
}

// LinksOf lists the challenges linked to a contest, in link order.
func (s *Server) LinksOf(contestID string) []apiclient.ContestChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.ContestChallenge(nil), s.links[contestID]...)
}

func (s *Server) ChallengeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

func (s *Server) TestCasesOf(challengeID string) []apiclient.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testCasesOfLocked(challengeID)
}

func (s *Server) TemplatesOf(challengeID string) []apiclient.FunctionTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []apiclient.FunctionTemplate
	for _, t := range s.templates {
		if t.ChallengeID == challengeID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Language < res[j].Language })
	return res
}

func (s *Server) Submissions() []apiclient.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.Submission(nil), s.submissions...)
}

func (s *Server) testCasesOfLocked(challengeID string) []apiclient.TestCase {
	var res []apiclient.TestCase
	for _, id := range s.tcOrder {
		tc, ok := s.testCases[id]
		if ok && tc.ChallengeID == challengeID {
			res = append(res, tc)
		}
	}
	return res
}

// auth

func signToken(u apiclient.User) string {
	claims := &Claims{
		Username: u.Username,
		Role:     string(u.Role),
		UUID:     u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := request.BearerExtractor{}.ExtractToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		claims := &Claims{}
		_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})
		if err != nil {
			httpjson.WriteErrorJson(w, "invalid token", http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(r *http.Request) *Claims {
	c, _ := r.Context().Value(ctxClaimsKey).(*Claims)
	return c
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r) == nil {
			httpjson.WriteErrorJson(w, "authentication required", http.StatusUnauthorized, "unauthorized")
			return
		}
		h(w, r)
	}
}

func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r).Role != string(apiclient.RoleAdmin) {
			httpjson.WriteErrorJson(w, "admin access required", http.StatusForbidden, "forbidden")
			return
		}
		h(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpjson.WriteErrorJson(w, "malformed json", http.StatusBadRequest, "bad_request")
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, what string) {
	httpjson.WriteErrorJson(w, what+" not found", http.StatusNotFound, "not_found")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
