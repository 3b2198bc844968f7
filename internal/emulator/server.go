package emulator

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultPerPage = 100

// Server serves fixtures in the shape of the MOCO API.
type Server struct {
	fixtures *Fixtures
	token    string
}

// NewServer creates a new Server. Requests must carry token.
func NewServer(fixtures *Fixtures, token string) *Server {
	return &Server{fixtures: fixtures, token: token}
}

// Router returns the HTTP handler for the emulated API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/invoices", s.listInvoices)
		r.Get("/projects/{id}", s.getProject)
		r.Get("/customers/{id}", s.getCustomer)
	})

	return r
}

// authMiddleware validates the `Token token="..."` authorization header.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Token token=")
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		if strings.Trim(token, `"`) != s.token {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// listInvoices handles GET /invoices with status filter and pagination.
func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := query.Get("status")

	page, err := positiveIntParam(query.Get("page"), 1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid page")
		return
	}
	perPage, err := positiveIntParam(query.Get("per_page"), defaultPerPage)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid per_page")
		return
	}

	matching := []Invoice{}
	for _, inv := range s.fixtures.Invoices {
		if status == "" || inv.Status == status {
			matching = append(matching, inv)
		}
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}

	w.Header().Set("X-Page", strconv.Itoa(page))
	w.Header().Set("X-Per-Page", strconv.Itoa(perPage))
	w.Header().Set("X-Total", strconv.Itoa(len(matching)))
	writeJSON(w, http.StatusOK, matching[start:end])
}

// getProject handles GET /projects/{id}.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	for _, p := range s.fixtures.Projects {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "Not found")
}

// getCustomer handles GET /customers/{id}.
func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}

	for _, c := range s.fixtures.Customers {
		if c.ID == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "Not found")
}

func positiveIntParam(value string, defaultValue int) (int, error) {
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
