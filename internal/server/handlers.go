package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chainlens/chainlens/pkg/errors"
	"github.com/chainlens/chainlens/pkg/txgraph"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddressDetails(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	limit, offset, refresh, err := pageParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	details, err := s.fetcher.FetchAddress(r.Context(), addr, limit, offset, refresh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleAddressGraph(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	limit, offset, refresh, err := pageParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	details, err := s.fetcher.FetchAddress(r.Context(), addr, limit, offset, refresh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := txgraph.Build(details)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCallsList(w http.ResponseWriter, r *http.Request) {
	entries := s.calls.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"calls":    entries,
		"capacity": s.calls.Capacity(),
	})
}

func (s *Server) handleCallsClear(w http.ResponseWriter, r *http.Request) {
	s.calls.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type addressRequest struct {
	Address string `json:"address"`
}

func decodeAddress(r *http.Request) (string, error) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	if req.Address == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "address is required")
	}
	return req.Address, nil
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	addr, err := decodeAddress(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.Create(r.Context(), addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionExpand(w http.ResponseWriter, r *http.Request) {
	addr, err := decodeAddress(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.Expand(r.Context(), chi.URLParam(r, "id"), addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionMore(w http.ResponseWriter, r *http.Request) {
	addr, err := decodeAddress(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.sessions.LoadMore(r.Context(), chi.URLParam(r, "id"), addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageParams parses limit, offset, and refresh from the query string.
// Bounds are enforced by the fetcher; only syntax is checked here.
func pageParams(r *http.Request) (limit, offset int, refresh bool, err error) {
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, false, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer, got %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, false, errors.New(errors.ErrCodeInvalidInput, "offset must be an integer, got %q", v)
		}
	}
	switch v := q.Get("refresh"); v {
	case "", "0", "false":
	case "1", "true":
		refresh = true
	default:
		return 0, 0, false, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
	}
	return limit, offset, refresh, nil
}
