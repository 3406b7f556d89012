package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/PabloGalante/gemini-relay/internal/app/conversation"
	"github.com/PabloGalante/gemini-relay/internal/app/journal"
	"github.com/PabloGalante/gemini-relay/internal/domain"
	"github.com/PabloGalante/gemini-relay/internal/observability"
)

const (
	defaultMaxUploadBytes = 20 << 20
	multipartMemory       = 8 << 20
)

type Options struct {
	MaxUploadBytes int64
	// StaticDir is served at "/" when it exists.
	StaticDir string
}

type Server struct {
	conv    *conversation.Service
	journal *journal.Service
	opts    Options
}

func NewServer(conv *conversation.Service, journalSvc *journal.Service, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{conv: conv, journal: journalSvc, opts: opts}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)

	// /api/generate → multipart or JSON prompt (+ optional file)
	// /api/chat     → same lifecycle, JSON body used by older front-ends
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/chat", s.handleGenerate)

	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/journal", s.handleJournal)

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
		}
	}

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type generateJSONRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type partResponse struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	URI      string `json:"uri,omitempty"`
}

type turnResponse struct {
	Role  string         `json:"role"`
	Parts []partResponse `json:"parts"`
}

type historyResponse struct {
	Turns []turnResponse `json:"turns"`
}

type journalResponse struct {
	Exchanges []*domain.ExchangeRecord `json:"exchanges"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	in, cleanup, err := parseGenerateInput(r)
	defer cleanup()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "request too large",
			})
			return
		}
		badRequest(w, err.Error())
		return
	}

	out, err := s.conv.Generate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Response: out.Text})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	s.conv.Reset(r.Context())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Conversation history cleared."})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Turns: toTurnsResponse(s.conv.History(r.Context()))})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := s.journal.RecentExchanges(r.Context(), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, journalResponse{Exchanges: recs})
}

// ─────────────────────────────────────────────
// Request parsing
// ─────────────────────────────────────────────

// parseGenerateInput reads the prompt and optional file. The returned
// cleanup removes any temporary files created by multipart parsing and must
// always be called.
func parseGenerateInput(r *http.Request) (conversation.GenerateInput, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req generateJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return conversation.GenerateInput{}, noop, err
			}
			return conversation.GenerateInput{}, noop, errors.New("invalid JSON body")
		}
		return conversation.GenerateInput{Prompt: req.Prompt}, noop, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return conversation.GenerateInput{}, noop, err
		}
		cleanup := func() { _ = r.MultipartForm.RemoveAll() }

		in := conversation.GenerateInput{Prompt: r.FormValue("prompt")}

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return in, cleanup, nil
		case err != nil:
			return conversation.GenerateInput{}, cleanup, err
		}

		in.File = &conversation.FileInput{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Body:     file,
		}
		return in, func() {
			_ = file.Close()
			cleanup()
		}, nil

	default:
		if err := r.ParseForm(); err != nil {
			return conversation.GenerateInput{}, noop, err
		}
		return conversation.GenerateInput{Prompt: r.FormValue("prompt")}, noop, nil
	}
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toTurnsResponse(turns []domain.Turn) []turnResponse {
	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		parts := make([]partResponse, 0, len(t.Parts))
		for _, p := range t.Parts {
			switch p.Kind {
			case domain.PartFile:
				parts = append(parts, partResponse{Type: string(p.Kind), MIMEType: p.File.MIMEType, URI: p.File.URI})
			default:
				parts = append(parts, partResponse{Type: string(p.Kind), Text: p.Text})
			}
		}
		out = append(out, turnResponse{Role: string(t.Role), Parts: parts})
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPromptRequired):
		badRequest(w, "Prompt is required")
	case errors.Is(err, domain.ErrValidation):
		badRequest(w, err.Error())
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
