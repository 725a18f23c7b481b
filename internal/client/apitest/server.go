// Package apitest runs an in-process WILT backend for tests. It speaks the
// same JSON as the real API, issues HS256 JWTs and lets a test expire every
// issued token at once.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const titleMaxLen = 200

type user struct {
	id       int64
	username string
	password string
	email    string
}

type entry struct {
	models.Entry
	ownerID int64
}

// Server is a fake WILT backend.
type Server struct {
	URL string

	srv    *httptest.Server
	secret []byte
	now    func() time.Time

	mu          sync.Mutex
	users       map[string]*user
	entries     []*entry
	nextUserID  int64
	nextEntryID int64
	generation  int
	logins      int
	hits        map[string]int
	down        bool
	rejecting   bool
	accessTTL   time.Duration
}

// New starts a server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:    []byte("apitest-secret"),
		now:       time.Now,
		users:     make(map[string]*user),
		hits:      make(map[string]int),
		accessTTL: 5 * time.Minute,
	}
	s.srv = httptest.NewServer(s.routes())
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.count)
	r.Use(s.availability)

	r.Post("/api/login/", s.login)
	r.Post("/wilt/register/", s.register)

	r.Route("/api/entries", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.listEntries)
		r.Post("/", s.createEntry)
		r.Get("/{id}/", s.getEntry)
		r.Put("/{id}/", s.updateEntry)
		r.Delete("/{id}/", s.deleteEntry)
	})

	return r
}

// AddUser registers username directly and returns its id.
func (s *Server) AddUser(username, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, "")
}

func (s *Server) addUserLocked(username, password, email string) int64 {
	s.nextUserID++
	s.users[username] = &user{id: s.nextUserID, username: username, password: password, email: email}
	return s.nextUserID
}

// SetPassword changes the password of an existing user, so stored
// credentials stop working.
func (s *Server) SetPassword(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.password = password
	}
}

// ExpireTokens invalidates every token issued so far.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// RejectTokens makes the entry endpoints answer 401 to every token, fresh
// ones included, while reject is true. Login keeps working.
func (s *Server) RejectTokens(reject bool) {
	s.mu.Lock()
	s.rejecting = reject
	s.mu.Unlock()
}

// SetDown makes every endpoint answer 503 while down is true.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// Logins counts successful and failed login calls.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Hits counts requests for a method and path, e.g. "GET /api/entries/".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits counts every request the server received.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// Token mints a currently valid access token for username.
func (s *Server) Token(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown user %q", username))
	}
	pair, err := s.issueLocked(u)
	if err != nil {
		panic(err)
	}
	return pair.Access
}

// Entries returns username's entries, newest first.
func (s *Server) Entries(username string) []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil
	}
	return s.entriesLocked(u.id)
}

// AddEntry stores an entry for username as if it had been created at created.
func (s *Server) AddEntry(username, title, content string, created time.Time) models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	return s.addEntryLocked(u, title, content, created)
}

func (s *Server) addEntryLocked(u *user, title, content string, created time.Time) models.Entry {
	s.nextEntryID++
	e := &entry{
		Entry: models.Entry{
			ID:        s.nextEntryID,
			Title:     title,
			Content:   content,
			CreatedAt: created.UTC(),
			User:      &models.User{ID: u.id, Username: u.username},
		},
		ownerID: u.id,
	}
	s.entries = append(s.entries, e)
	return e.Entry
}

func (s *Server) entriesLocked(ownerID int64) []models.Entry {
	out := []models.Entry{}
	for _, e := range s.entries {
		if e.ownerID == ownerID {
			out = append(out, e.Entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.down
		s.mu.Unlock()
		if down {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Service unavailable"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func entryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("bad id")
	}
	return id, nil
}

func validateDraft(d models.EntryDraft) map[string][]string {
	problems := make(map[string][]string)
	if strings.TrimSpace(d.Title) == "" {
		problems["title"] = []string{"This field may not be blank."}
	} else if len([]rune(d.Title)) > titleMaxLen {
		problems["title"] = []string{fmt.Sprintf("Ensure this field has no more than %d characters.", titleMaxLen)}
	}
	if strings.TrimSpace(d.Content) == "" {
		problems["content"] = []string{"This field may not be blank."}
	}
	return problems
}
