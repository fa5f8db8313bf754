package apitest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/httpjson"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var p apiclient.LoginParams
	if !decode(w, r, &p) {
		return
	}
	s.mu.Lock()
	su, ok := s.users[p.Username]
	s.mu.Unlock()
	if !ok || su.password != p.Password {
		httpjson.WriteErrorJson(w, "invalid username or password", http.StatusUnauthorized, "invalid_credentials")
		return
	}
	u := su.user
	httpjson.WriteSuccessJson(w, apiclient.AuthPayload{Token: signToken(u), User: &u})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var p apiclient.RegisterParams
	if !decode(w, r, &p) {
		return
	}
	if isBlank(p.Username) || isBlank(p.Password) {
		httpjson.WriteErrorJson(w, "username and password are required", http.StatusBadRequest, "validation_failed")
		return
	}
	s.mu.Lock()
	_, exists := s.users[p.Username]
	s.mu.Unlock()
	if exists {
		httpjson.WriteErrorJson(w, "username already taken", http.StatusConflict, "username_exists")
		return
	}
	u := s.AddUser(p.Username, p.Password, apiclient.RoleUser)
	u.Email = p.Email
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, apiclient.AuthPayload{Token: signToken(u), User: &u})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	s.mu.Lock()
	su, ok := s.users[claims.Username]
	s.mu.Unlock()
	if !ok {
		httpjson.WriteErrorJson(w, "user no longer exists", http.StatusUnauthorized, "unauthorized")
		return
	}
	httpjson.WriteSuccessJson(w, su.user)
}

// contests

func (s *Server) listContests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := make([]apiclient.Contest, 0, len(s.contestOrder))
	for _, id := range s.contestOrder {
		if c, ok := s.contests[id]; ok {
			res = append(res, c)
		}
	}
	s.mu.Unlock()
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) getContest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.contests[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		notFound(w, "contest")
		return
	}
	httpjson.WriteSuccessJson(w, c)
}

func (s *Server) createContest(w http.ResponseWriter, r *http.Request) {
	var c apiclient.Contest
	if !decode(w, r, &c) {
		return
	}
	if isBlank(c.Title) {
		httpjson.WriteErrorJson(w, "title is required", http.StatusBadRequest, "validation_failed")
		return
	}
	c.ID = ""
	c = s.AddContest(c)
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, c)
}

func (s *Server) updateContest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var c apiclient.Contest
	if !decode(w, r, &c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[id]; !ok {
		notFound(w, "contest")
		return
	}
	c.ID = id
	s.contests[id] = c
	httpjson.WriteSuccessJson(w, c)
}

func (s *Server) deleteContest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[id]; !ok {
		notFound(w, "contest")
		return
	}
	delete(s.contests, id)
	delete(s.links, id)
	httpjson.WriteSuccessJson(w, nil)
}

func (s *Server) joinContest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := claimsFrom(r).Username
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contests[id]
	if !ok {
		notFound(w, "contest")
		return
	}
	if s.joined[id] == nil {
		s.joined[id] = map[string]bool{}
	}
	if !s.joined[id][user] {
		s.joined[id][user] = true
		c.Participants++
		s.contests[id] = c
	}
	httpjson.WriteSuccessJson(w, nil)
}

func (s *Server) contestChallenges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[id]; !ok {
		notFound(w, "contest")
		return
	}
	res := []apiclient.Challenge{}
	for _, link := range s.links[id] {
		if ch, ok := s.challenges[link.ChallengeID]; ok {
			ch.Points = link.Points
			res = append(res, ch)
		}
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) linkChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var link apiclient.ContestChallenge
	if !decode(w, r, &link) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[id]; !ok {
		notFound(w, "contest")
		return
	}
	if _, ok := s.challenges[link.ChallengeID]; !ok {
		notFound(w, "challenge")
		return
	}
	s.links[id] = append(s.links[id], link)
	httpjson.WriteSuccessJson(w, nil)
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rows := s.leaderboards[id]
	s.mu.Unlock()
	if rows == nil {
		rows = []apiclient.Participant{}
	}
	httpjson.WriteSuccessJson(w, rows)
}

func (s *Server) globalLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := s.leaderboards[""]
	s.mu.Unlock()
	if rows == nil {
		rows = []apiclient.Participant{}
	}
	httpjson.WriteSuccessJson(w, rows)
}

// challenges

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := make([]apiclient.Challenge, 0, len(s.chOrder))
	for _, id := range s.chOrder {
		if ch, ok := s.challenges[id]; ok {
			res = append(res, ch)
		}
	}
	s.mu.Unlock()
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) getChallenge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ch, ok := s.challenges[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		notFound(w, "challenge")
		return
	}
	httpjson.WriteSuccessJson(w, ch)
}

func (s *Server) createChallenge(w http.ResponseWriter, r *http.Request) {
	var ch apiclient.Challenge
	if !decode(w, r, &ch) {
		return
	}
	if isBlank(ch.Title) || isBlank(ch.Description) {
		httpjson.WriteErrorJson(w, "title and description are required", http.StatusBadRequest, "validation_failed")
		return
	}
	ch.ID = ""
	ch = s.AddChallenge(ch)
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, ch)
}

func (s *Server) updateChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var ch apiclient.Challenge
	if !decode(w, r, &ch) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[id]; !ok {
		notFound(w, "challenge")
		return
	}
	ch.ID = id
	s.challenges[id] = ch
	httpjson.WriteSuccessJson(w, ch)
}

func (s *Server) deleteChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[id]; !ok {
		notFound(w, "challenge")
		return
	}
	delete(s.challenges, id)
	for tcID, tc := range s.testCases {
		if tc.ChallengeID == id {
			delete(s.testCases, tcID)
		}
	}
	for tID, t := range s.templates {
		if t.ChallengeID == id {
			delete(s.templates, tID)
		}
	}
	httpjson.WriteSuccessJson(w, nil)
}

func (s *Server) listTestCases(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	res := s.testCasesOfLocked(id)
	s.mu.Unlock()
	if res == nil {
		res = []apiclient.TestCase{}
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) createTestCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var tc apiclient.TestCase
	if !decode(w, r, &tc) {
		return
	}
	if !s.HasChallenge(id) {
		notFound(w, "challenge")
		return
	}
	tc.ID = ""
	tc.ChallengeID = id
	tc = s.AddTestCase(tc)
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, tc)
}

func (s *Server) deleteTestCase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testCases[id]; !ok {
		notFound(w, "test case")
		return
	}
	delete(s.testCases, id)
	httpjson.WriteSuccessJson(w, nil)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	res := s.TemplatesOf(chi.URLParam(r, "id"))
	if res == nil {
		res = []apiclient.FunctionTemplate{}
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var t apiclient.FunctionTemplate
	if !decode(w, r, &t) {
		return
	}
	if !s.HasChallenge(id) {
		notFound(w, "challenge")
		return
	}
	t.ID = ""
	t.ChallengeID = id
	t = s.AddTemplate(t)
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, t)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		notFound(w, "template")
		return
	}
	delete(s.templates, id)
	httpjson.WriteSuccessJson(w, nil)
}

// execution and submissions

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	var req apiclient.ExecuteRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	exec := s.exec
	s.mu.Unlock()
	res, err := exec(req)
	if err != nil {
		httpjson.WriteErrorJson(w, err.Error(), http.StatusBadGateway, "execution_failed")
		return
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	var sub apiclient.Submission
	if !decode(w, r, &sub) {
		return
	}
	sub.ID = uuid.NewString()
	sub.SubmittedAt = time.Now().UTC()
	s.mu.Lock()
	s.submissions = append(s.submissions, sub)
	s.mu.Unlock()
	httpjson.WriteSuccessJsonStatus(w, http.StatusCreated, sub)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	challengeID := r.URL.Query().Get("challengeId")
	contestID := r.URL.Query().Get("contestId")
	s.mu.Lock()
	res := []apiclient.Submission{}
	for _, sub := range s.submissions {
		if challengeID != "" && sub.ChallengeID != challengeID {
			continue
		}
		if contestID != "" && sub.ContestID != contestID {
			continue
		}
		res = append(res, sub)
	}
	s.mu.Unlock()
	httpjson.WriteSuccessJson(w, res)
}
