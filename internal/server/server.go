package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/output"
	"github.com/iwvelando/proforma/pkg/validation"
	"go.uber.org/zap"
)

// newSession asks the server to open a session and return its identifier.
const newSession = "new"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	sessions      *sessionStore
}

// NewHandler constructs the HTTP handler that serves the preview API.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: cfg.UploadSizeBytes(),
		version:       trimmedVersion,
		sessions:      newSessionStore(logger, cfg.SessionLimit),
	}

	mux := http.NewServeMux()

	// Live preview of a plan, incremental when a session header is sent
	mux.HandleFunc("/api/preview", h.handlePreview)

	// Rendered exports of the same preview
	mux.HandleFunc("/api/preview/html", h.handlePreviewHTML)
	mux.HandleFunc("/api/preview/xlsx", h.handlePreviewXLSX)

	// Normalization of extracted financial statements
	mux.HandleFunc("/api/documents", h.handleDocuments)

	// Catalog and defaults for editor forms
	mux.HandleFunc("/api/catalog", h.handleCatalog)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type previewResponse struct {
	Session    string          `json:"session,omitempty"`
	Result     forecast.Result `json:"result"`
	Recomputed []forecast.Node `json:"recomputed,omitempty"`
	Changed    []forecast.Node `json:"changed,omitempty"`
	Duration   string          `json:"duration"`
}

type documentsResponse struct {
	Records []baseline.Record  `json:"records"`
	Year0   *baseline.Snapshot `json:"year0,omitempty"`
}

type catalogResponse struct {
	Categories       []assets.Category `json:"categories"`
	FixedInvestments []assets.Entry    `json:"fixedInvestments"`
	CostItems        []costs.Item      `json:"operatingCostItems"`
	OutputFormats    []string          `json:"outputFormats"`
}

func (h *handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreview"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	plan, ok := h.readPlan(w, r, op)
	if !ok {
		return
	}

	resp := previewResponse{}
	if id := strings.TrimSpace(r.Header.Get(constants.SessionHeader)); id != "" {
		if id == newSession {
			id = uuid.NewString()
		}
		update := h.sessions.recompute(id, *plan)
		resp.Session = id
		resp.Result = update.Result
		resp.Recomputed = update.Recomputed
		resp.Changed = update.Changed
	} else {
		resp.Result = forecast.Compute(h.logger, *plan)
	}
	resp.Duration = time.Since(start).String()

	h.logger.Debug("served preview",
		zap.String("op", op),
		zap.String("session", resp.Session),
		zap.Int("recomputed", len(resp.Recomputed)),
		zap.String("duration", resp.Duration),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handlePreviewHTML(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreviewHTML"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	plan, ok := h.readPlan(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.HTMLFormat(&buf, forecast.Compute(h.logger, *plan)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.writeBody(w, buf.Bytes(), op)
}

func (h *handler) handlePreviewXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreviewXLSX"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	plan, ok := h.readPlan(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.XlsxFormat(&buf, forecast.Compute(h.logger, *plan)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="proforma.xlsx"`)
	h.writeBody(w, buf.Bytes(), op)
}

func (h *handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDocuments"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	data, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	records, err := baseline.DecodeRecords(data)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode documents: %v", err), op)
		return
	}
	if records == nil {
		records = []baseline.Record{}
	}
	h.writeJSON(w, http.StatusOK, documentsResponse{Records: records, Year0: baseline.Parse(records)})
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, catalogResponse{
		Categories:       assets.Catalog(),
		FixedInvestments: assets.DefaultEntries(),
		CostItems:        costs.DefaultItems(),
		OutputFormats:    validation.OutputFormats,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// readPlan decodes the request body as a JSON or YAML plan and writes the
// error response itself when it cannot.
func (h *handler) readPlan(w http.ResponseWriter, r *http.Request, op string) (*config.Plan, bool) {
	data, ok := h.readBody(w, r, op)
	if !ok {
		return nil, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing plan", op)
		return nil, false
	}
	plan, err := config.ParsePlan(data, r.Header.Get("Content-Type"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse plan: %v", err), op)
		return nil, false
	}
	return plan, true
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	body := io.Reader(r.Body)
	if h.maxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return data, true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Warn("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *handler) writeBody(w http.ResponseWriter, body []byte, op string) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("failed to write response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

// sessionStore keeps one forecast.Session per editing client. Each session
// is guarded by its own lock since a Session is not safe for concurrent use.
type sessionStore struct {
	logger   *zap.Logger
	limit    int
	mu       sync.Mutex
	sessions map[string]*lockedSession
	order    []string
}

type lockedSession struct {
	mu      sync.Mutex
	session *forecast.Session
}

func newSessionStore(logger *zap.Logger, limit int) *sessionStore {
	if limit <= 0 {
		limit = constants.DefaultSessionLimit
	}
	return &sessionStore{logger: logger, limit: limit, sessions: map[string]*lockedSession{}}
}

func (s *sessionStore) recompute(id string, plan config.Plan) forecast.Update {
	ls := s.get(id)
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.session.Recompute(plan)
}

// get returns the session for id, creating it when needed. The oldest
// session is dropped once the limit is reached.
func (s *sessionStore) get(id string) *lockedSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.sessions[id]; ok {
		return ls
	}
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
		s.logger.Debug("evicted preview session",
			zap.String("op", "server.sessionStore"),
			zap.String("session", oldest),
		)
	}
	ls := &lockedSession{session: forecast.NewSession(s.logger)}
	s.sessions[id] = ls
	s.order = append(s.order, id)
	return ls
}

func (s *sessionStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

