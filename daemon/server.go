// Package daemon exposes a loaded book over HTTP: schema retrieval for
// agent frameworks and non-interactive batch dispatch.
package daemon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/robopages/robopages"
	"github.com/robopages/robopages/dialect"
	"github.com/robopages/robopages/dispatch"
)

// ServerConfig controls daemon HTTP server dependencies. The book is
// injected explicitly; the server never reaches for global state.
type ServerConfig struct {
	Book       *robopages.Book
	Dispatcher *dispatch.Dispatcher
	Logger     *slog.Logger

	// Workers and CallTimeout configure the dispatcher built when no
	// Dispatcher is injected.
	Workers     int
	CallTimeout time.Duration
}

// Server answers schema and dispatch requests for one immutable book.
type Server struct {
	book   *robopages.Book
	disp   *dispatch.Dispatcher
	logger *slog.Logger
}

// NewServer constructs the HTTP facade. Calls dispatched through it are
// always non-interactive: there is no operator on the other side of an
// HTTP request to approve them.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Book == nil {
		return nil, errors.New("daemon: a book is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	disp := cfg.Dispatcher
	if disp == nil {
		opts := []dispatch.Option{
			dispatch.WithConfirmer(dispatch.AcceptAll{}),
			dispatch.WithLogger(logger),
		}
		if cfg.Workers > 0 {
			opts = append(opts, dispatch.WithWorkers(cfg.Workers))
		}
		if cfg.CallTimeout > 0 {
			opts = append(opts, dispatch.WithTimeout(cfg.CallTimeout))
		}
		disp = dispatch.New(cfg.Book, opts...)
	}

	return &Server{
		book:   cfg.Book,
		disp:   disp,
		logger: logger,
	}, nil
}

// Handler returns an http.Handler exposing the daemon API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleSchema)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

type apiErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

// handleSchema serves the book as tool declarations in the requested
// flavor, optionally narrowed by a page filter.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	flavor := dialect.Flavor(strings.TrimSpace(r.URL.Query().Get("flavor")))
	if flavor == "" {
		flavor = dialect.OpenAI
	}

	book := s.book
	if filter := strings.TrimSpace(r.URL.Query().Get("filter")); filter != "" {
		book = book.Filtered(filter)
	}

	tools, err := dialect.Render(book, flavor)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "UNKNOWN_FLAVOR", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// handleProcess dispatches an ordered call batch and answers with one
// result per call, in input order. Per-call failures are reported inside
// the results, never as an HTTP error.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var calls []dispatch.Call
	if err := decodeJSONBody(r, &calls); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_JSON", err.Error(), nil)
		return
	}

	results := s.disp.Process(r.Context(), calls, false)

	s.logger.Info("batch processed",
		"calls", len(calls),
		"failed", countFailed(results),
	)
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"functions": s.book.Len(),
	})
}

func countFailed(results []dispatch.Result) int {
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	return failed
}

func decodeJSONBody(r *http.Request, target any) error {
	if target == nil {
		return errors.New("decode target is nil")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
