// Package apitest runs an in-process activities API for tests. It follows the
// real server's behaviour for the three endpoints the portal consumes and
// lets a test replace any route to inject failures.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/gorilla/mux"

	"mergington-portal/internal/models"
)

// Route keys accepted by Override and Hits.
const (
	RouteActivities = "GET /activities"
	RouteRegister   = "POST /register"
	RouteSignup     = "POST /activities/{id}/signup"
)

// Request is a recorded inbound request.
type Request struct {
	Route       string
	EscapedPath string
	RawQuery    string
	Header      http.Header
	Body        []byte
}

type activityRecord struct {
	activity models.Activity
	emails   map[string]bool
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	activities []*activityRecord
	users      map[string]models.RegistrationRequest
	overrides  map[string]http.HandlerFunc
	requests   []Request
}

// NewServer starts a server seeded with activities. Seed order is the order
// GET /activities returns.
func NewServer(seed ...models.Activity) *Server {
	s := &Server{
		users:     make(map[string]models.RegistrationRequest),
		overrides: make(map[string]http.HandlerFunc),
	}
	for _, a := range seed {
		s.activities = append(s.activities, &activityRecord{activity: a, emails: make(map[string]bool)})
	}

	router := mux.NewRouter()
	router.UseEncodedPath()
	router.HandleFunc("/activities", s.route(RouteActivities, s.handleActivities)).Methods(http.MethodGet)
	router.HandleFunc("/register", s.route(RouteRegister, s.handleRegister)).Methods(http.MethodPost)
	router.HandleFunc("/activities/{id}/signup", s.route(RouteSignup, s.handleSignup)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(router)
	return s
}

// SampleActivities mirrors part of the catalogue the real server seeds.
func SampleActivities() []models.Activity {
	return []models.Activity{
		{ID: "1", Name: "Chess Club", Description: "Learn strategies and compete in chess tournaments", Schedule: "Fridays, 3:30 PM - 5:00 PM", MaxParticipants: 12, CurrentParticipants: 2},
		{ID: "2", Name: "Programming Class", Description: "Learn programming fundamentals and build software projects", Schedule: "Tuesdays and Thursdays, 3:30 PM - 4:30 PM", MaxParticipants: 20, CurrentParticipants: 0},
		{ID: "3", Name: "Math Club", Description: "Solve challenging problems and participate in math competitions", Schedule: "Tuesdays, 3:30 PM - 4:30 PM", MaxParticipants: 1, CurrentParticipants: 1},
	}
}

// Override replaces the handler for route. Requests are still recorded.
func (s *Server) Override(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = h
}

// AddUser registers a user directly, bypassing POST /register.
func (s *Server) AddUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = models.RegistrationRequest{Email: email}
}

// Hits counts requests received on route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// Requests returns a copy of every recorded request, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:       name,
			EscapedPath: r.URL.EscapedPath(),
			RawQuery:    r.URL.RawQuery,
			Header:      r.Header.Clone(),
			Body:        body,
		})
		override := s.overrides[name]
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Activity, 0, len(s.activities))
	for _, rec := range s.activities {
		a := rec.activity
		a.CurrentParticipants += len(rec.emails)
		out = append(out, a)
	}
	s.mu.Unlock()

	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]string{{"msg": "invalid body"}},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	s.users[req.Email] = req
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":         len(s.users),
		"email":      req.Email,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"is_active":  true,
		"role":       "student",
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid activity id"})
		return
	}
	email := r.URL.Query().Get("email")

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *activityRecord
	for _, candidate := range s.activities {
		if string(candidate.activity.ID) == id {
			rec = candidate
			break
		}
	}
	if rec == nil {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
		return
	}
	if _, ok := s.users[email]; !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	if rec.emails[email] {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "Already signed up"})
		return
	}
	if rec.activity.CurrentParticipants+len(rec.emails) >= rec.activity.MaxParticipants {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "Activity is full"})
		return
	}

	rec.emails[email] = true
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Signed up %s for %s", email, rec.activity.Name),
	})
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
