package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"focus_group_generator/config"
	"focus_group_generator/generator"
	"focus_group_generator/provider"
)

// maxBodyBytes bounds request bodies; prompts are the largest payload.
const maxBodyBytes = 1 << 20

type Server struct {
	cfg     *config.Config
	gateway *provider.Gateway
	tables  *generator.Tables
	store   *sessionStore
	logger  *slog.Logger
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// New builds a server. Nil tables selects the embedded ones; a nil logger uses slog.Default.
func New(cfg *config.Config, gw *provider.Gateway, tables *generator.Tables, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if gw == nil {
		return nil, errors.New("provider gateway required")
	}
	if tables == nil {
		tables = generator.DefaultTables()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		gateway: gw,
		tables:  tables,
		store:   newStore(),
		logger:  logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/providers", s.handleProviders)
	mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("PUT /api/sessions/{id}/prompt", s.handlePromptUpdate)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	return logMiddleware(s.logger, mux)
}

// --- Handlers ---

type providerView struct {
	provider.Descriptor
	RateLimit provider.RateLimit `json:"rate_limit"`
}

type recommendReq struct {
	Languages []string `json:"languages"`
}

type coverage struct {
	Provider  provider.Kind `json:"provider"`
	Supported int           `json:"supported"`
	Total     int           `json:"total"`
}

type recommendResp struct {
	Recommended provider.Kind `json:"recommended"`
	Coverage    []coverage    `json:"coverage"`
}

type sessionCreateReq struct {
	Study    json.RawMessage `json:"study"`
	Provider string          `json:"provider,omitempty"`
	Model    string          `json:"model,omitempty"`
}

type promptReq struct {
	Prompt string `json:"prompt"`
}

type generateReq struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

type generateResp struct {
	SessionID      string                  `json:"session_id"`
	Transcript     string                  `json:"transcript"`
	HTML           string                  `json:"html"`
	Report         generator.QualityReport `json:"report"`
	Source         provider.Source         `json:"source"`
	Provider       provider.Kind           `json:"provider"`
	Model          string                  `json:"model"`
	FallbackReason string                  `json:"fallback_reason,omitempty"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	list := provider.List()
	out := make([]providerView, 0, len(list))
	for _, d := range list {
		rl, _ := provider.RateLimitFor(d.ID)
		out = append(out, providerView{Descriptor: d, RateLimit: rl})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Languages) == 0 {
		writeError(w, http.StatusBadRequest, "languages must not be empty")
		return
	}
	resp := recommendResp{Recommended: provider.Recommend(req.Languages)}
	for _, d := range provider.List() {
		sup, total := provider.LanguageCoverage(d.ID, req.Languages)
		resp.Coverage = append(resp.Coverage, coverage{Provider: d.ID, Supported: sup, Total: total})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Study) == 0 {
		writeError(w, http.StatusBadRequest, "study is required")
		return
	}
	study, err := generator.ParseStudy(req.Study)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	id := newSessionID()
	sess, err := generator.NewSession(id, study, generator.NewComposer(s.tables))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if req.Provider != "" {
		kind, err := provider.ParseKind(req.Provider)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sess.Provider = kind
	}
	sess.Model = strings.TrimSpace(req.Model)
	s.store.set(id, sess)
	s.logger.Info("Session created", "session", id, "topic", study.Topic, "recommended", sess.Recommended)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePromptUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req promptReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := sess.SetPrompt(req.Prompt); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req generateReq
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	kind, err := s.resolveProvider(sess, req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, model := sess.Target()

	credential := req.APIKey
	if credential == "" {
		credential = s.cfg.Credential(kind)
	}
	if req.Model != "" {
		model = req.Model
	}
	if model == "" {
		model = s.cfg.ProviderSettings(kind).Model
	}

	handle, err := s.gateway.Initialize(kind, credential, model)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	agent, err := generator.NewAgent(s.gateway.Bind(handle),
		generator.WithTables(s.tables),
		generator.WithAgentLogger(s.logger),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	if d := s.cfg.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	out, err := sess.Generate(ctx, agent)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	html, err := transcriptHTML(out.Transcript)
	if err != nil {
		s.logger.Warn("Rendering preview failed", "session", sess.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, generateResp{
		SessionID:      sess.ID,
		Transcript:     out.Transcript.Text(),
		HTML:           html,
		Report:         out.Report,
		Source:         out.Source,
		Provider:       out.Provider,
		Model:          out.Model,
		FallbackReason: out.FallbackReason,
	})
}

// --- Helpers ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	id := r.PathValue("id")
	sess, ok := s.store.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

// resolveProvider picks the request's provider, then the session's pinned one,
// then the configured default, then the language recommendation.
func (s *Server) resolveProvider(sess *generator.Session, requested string) (provider.Kind, error) {
	if requested != "" {
		return provider.ParseKind(requested)
	}
	view := sess.Snapshot()
	switch {
	case view.Provider != "":
		return view.Provider, nil
	case s.cfg.Provider != "":
		return provider.ParseKind(s.cfg.Provider)
	}
	return view.Recommended, nil
}

// writeFailure maps pipeline errors onto status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		cfgErr  *generator.ConfigurationError
		initErr *provider.InitError
		genErr  *provider.GenerationError
	)
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorResp{Error: cfgErr.Error(), Problems: cfgErr.Problems})
	case errors.As(err, &initErr):
		writeError(w, http.StatusUnauthorized, initErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, genErr.Error())
	default:
		s.logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type errorResp struct {
	Error    string              `json:"error"`
	Problems []generator.Problem `json:"problems,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON that also accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func newSessionID() string {
	return strings.ReplaceAll(time.Now().Format("20060102T150405.000000000"), ".", "")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}
