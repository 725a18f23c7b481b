package apitest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/wilt/internal/client/models"
)

var notFound = map[string]string{"detail": "Not found."}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.Lock()
	list := s.entriesLocked(u.id)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var d models.EntryDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if problems := validateDraft(d); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, problems)
		return
	}

	s.mu.Lock()
	e := s.addEntryLocked(u, d.Title, d.Content, s.now())
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

// lookupLocked finds an entry owned by the caller.
func (s *Server) lookupLocked(r *http.Request) (*entry, int) {
	id, err := entryID(r)
	if err != nil {
		return nil, -1
	}
	u := currentUser(r)
	for i, e := range s.entries {
		if e.ID == id && e.ownerID == u.id {
			return e, i
		}
	}
	return nil, -1
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	e, _ := s.lookupLocked(r)
	s.mu.Unlock()

	if e == nil {
		writeJSON(w, http.StatusNotFound, notFound)
		return
	}
	writeJSON(w, http.StatusOK, e.Entry)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	var d models.EntryDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.lookupLocked(r)
	if e == nil {
		writeJSON(w, http.StatusNotFound, notFound)
		return
	}
	if problems := validateDraft(d); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, problems)
		return
	}

	e.Title = d.Title
	e.Content = d.Content
	writeJSON(w, http.StatusOK, e.Entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, i := s.lookupLocked(r)
	if e == nil {
		writeJSON(w, http.StatusNotFound, notFound)
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
