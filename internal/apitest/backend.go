// Package apitest provides an in-memory emotion poll backend for tests. It
// answers the same routes, bodies and status codes as the real service.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jask/emotionpoll/internal/api"
)

// SessionCookie is the name of the cookie carrying the session id.
const SessionCookie = "session"

// Backend is a fake poll service. The zero value is not usable; call New.
type Backend struct {
	mu       sync.Mutex
	users    map[string][]byte // email -> bcrypt hash
	sessions map[string]string // session id -> email
	votes    []Vote
	requests map[string]int

	omitVoteStats bool
	broken        bool
}

// Vote is one recorded ballot.
type Vote struct {
	Email    string
	Emotions []string
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		users:    map[string][]byte{},
		sessions: map[string]string{},
		requests: map[string]int{},
	}
}

// Start serves the backend on a local listener closed at test cleanup.
func Start(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return b, srv
}

// Router returns the HTTP handler.
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count)
	r.Get("/check-auth", b.checkAuth)
	r.Post("/signup", b.signup)
	r.Post("/login", b.login)
	r.Post("/logout", b.logout)
	r.Post("/vote", b.vote)
	r.Get("/stats", b.stats)
	return r
}

// AddUser registers an account directly.
func (b *Backend) AddUser(email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	b.users[email] = hash
	b.mu.Unlock()
}

// AddVote records a ballot without going through HTTP.
func (b *Backend) AddVote(email string, emotions ...string) {
	b.mu.Lock()
	b.votes = append(b.votes, Vote{Email: email, Emotions: emotions})
	b.mu.Unlock()
}

// OmitVoteStats drops the stats object from /vote answers.
func (b *Backend) OmitVoteStats(omit bool) {
	b.mu.Lock()
	b.omitVoteStats = omit
	b.mu.Unlock()
}

// SetBroken makes every route answer with a non-JSON body.
func (b *Backend) SetBroken(broken bool) {
	b.mu.Lock()
	b.broken = broken
	b.mu.Unlock()
}

// Votes returns a copy of the recorded ballots.
func (b *Backend) Votes() []Vote {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Vote(nil), b.votes...)
}

// Requests returns how many times path was hit.
func (b *Backend) Requests(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

// Stats aggregates the ballots, ordered by first appearance.
func (b *Backend) Stats() api.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statsLocked()
}

func (b *Backend) statsLocked() api.Stats {
	out := api.Stats{}
	index := map[string]int{}
	for _, v := range b.votes {
		for _, e := range v.Emotions {
			if i, ok := index[e]; ok {
				out[i].Votes++
				continue
			}
			index[e] = len(out)
			out = append(out, api.Count{Label: e, Votes: 1})
		}
	}
	return out
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[r.URL.Path]++
		broken := b.broken
		b.mu.Unlock()
		if broken {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.sessions[c.Value]
	return email, ok
}

func (b *Backend) checkAuth(w http.ResponseWriter, r *http.Request) {
	_, ok := b.sessionUser(r)
	render.JSON(w, r, map[string]bool{"loggedIn": ok})
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	b.mu.Lock()
	_, exists := b.users[creds.Email]
	b.mu.Unlock()
	if exists {
		reply(w, r, http.StatusBadRequest, "User already exists")
		return
	}
	b.AddUser(creds.Email, creds.Password)
	reply(w, r, http.StatusCreated, api.MsgSignupOK)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	b.mu.Lock()
	hash, ok := b.users[creds.Email]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		reply(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	id := uuid.NewString()
	b.mu.Lock()
	b.sessions[id] = creds.Email
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true})
	reply(w, r, http.StatusOK, api.MsgLoginOK)
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, c.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	reply(w, r, http.StatusOK, api.MsgLogoutOK)
}

func (b *Backend) vote(w http.ResponseWriter, r *http.Request) {
	email, ok := b.sessionUser(r)
	if !ok {
		reply(w, r, http.StatusForbidden, "Please log in to vote")
		return
	}
	var req api.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	b.mu.Lock()
	b.votes = append(b.votes, Vote{Email: email, Emotions: req.Emotions})
	res := api.VoteResult{Message: api.MsgVoteOK}
	if !b.omitVoteStats {
		res.Stats = b.statsLocked()
	}
	b.mu.Unlock()
	render.JSON(w, r, res)
}

func (b *Backend) stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, b.Stats())
}

func reply(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, api.Message{Message: message})
}
