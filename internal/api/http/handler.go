// Package http exposes the lifecycle engine over JSON/HTTP.
//
// The caller identity is taken from the X-Actor header set by the CRUD front end.
//
// Routes:
//
//	GET  /health
//	GET  /candidates/{id}/transitions          → allowed targets from the current status
//	POST /candidates/{id}/transitions          → attempt a status change
//	POST /candidates/{id}/reactivate           → returned → new
//	GET  /candidates/{id}/status-logs
//	GET  /candidates/{id}/gates/{gate}         → evaluate one gate
//	POST /candidates/{id}/visa-stage           → advance the visa stage
//	POST /screenings/{id}/call-attempts        → record a call screening attempt
//	GET  /complaints/{id}/sla
//	POST /complaints/{id}/escalate
//	GET  /complaints/{id}/escalations
//	GET  /departures/{id}/compliance
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const actorHeader = "X-Actor"

var validate = validator.New()

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies.
type Handler struct {
	lifecycle  service.LifecycleService
	complaints service.ComplaintService
	compliance service.ComplianceService
	health     Pinger
}

func NewHandler(lifecycle service.LifecycleService, complaints service.ComplaintService, compliance service.ComplianceService, health Pinger) *Handler {
	return &Handler{lifecycle: lifecycle, complaints: complaints, compliance: compliance, health: health}
}

// NewRouter builds the router with every route and the request middleware.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware, loggingMiddleware)
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts all engine routes on router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	c := router.PathPrefix("/candidates/{id:[0-9]+}").Subrouter()
	c.HandleFunc("/transitions", h.handleAllowedTransitions).Methods(http.MethodGet)
	c.HandleFunc("/transitions", h.handleAttemptTransition).Methods(http.MethodPost)
	c.HandleFunc("/reactivate", h.handleReactivate).Methods(http.MethodPost)
	c.HandleFunc("/status-logs", h.handleStatusLogs).Methods(http.MethodGet)
	c.HandleFunc("/gates/{gate}", h.handleEvaluateGate).Methods(http.MethodGet)
	c.HandleFunc("/visa-stage", h.handleAdvanceVisaStage).Methods(http.MethodPost)

	router.HandleFunc("/screenings/{id:[0-9]+}/call-attempts", h.handleCallAttempt).Methods(http.MethodPost)

	router.HandleFunc("/complaints/{id:[0-9]+}/sla", h.handleComplaintSLA).Methods(http.MethodGet)
	router.HandleFunc("/complaints/{id:[0-9]+}/escalate", h.handleEscalate).Methods(http.MethodPost)
	router.HandleFunc("/complaints/{id:[0-9]+}/escalations", h.handleEscalations).Methods(http.MethodGet)

	router.HandleFunc("/departures/{id:[0-9]+}/compliance", h.handleCompliance).Methods(http.MethodGet)
}

// ─── Request types ───────────────────────────────────────────────────────────

type transitionRequest struct {
	Target        string `json:"target" validate:"required"`
	Justification string `json:"justification" validate:"max=2000"`
}

type reactivateRequest struct {
	Justification string `json:"justification" validate:"max=2000"`
}

type visaStageRequest struct {
	Stage int `json:"stage" validate:"min=1,max=8"`
}

type escalateRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// ─── Candidates ──────────────────────────────────────────────────────────────

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			jsonError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handler) handleAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cand, targets, err := h.lifecycle.AllowedTransitions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"status": cand.Status, "allowed": targets})
}

func (h *Handler) handleAttemptTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !decode(w, r, &req) {
		return
	}
	target, err := lifecycle.ParseStatus(req.Target)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.lifecycle.AttemptTransition(r.Context(), id, target, transitionContext(r, req.Justification))
	writeTransition(w, res, err)
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req reactivateRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.lifecycle.Reactivate(r.Context(), id, transitionContext(r, req.Justification))
	writeTransition(w, res, err)
}

func (h *Handler) handleStatusLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	logs, err := h.lifecycle.ListStatusLogs(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"logs": logs})
}

func (h *Handler) handleEvaluateGate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	gate, err := lifecycle.ParseGate(mux.Vars(r)["gate"])
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.lifecycle.EvaluateGate(r.Context(), id, gate)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, res)
}

func (h *Handler) handleAdvanceVisaStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req visaStageRequest
	if !decode(w, r, &req) {
		return
	}
	visa, err := h.lifecycle.AdvanceVisaStage(r.Context(), id, req.Stage)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, visa)
}

func (h *Handler) handleCallAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.lifecycle.RecordCallAttempt(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, rec)
}

// ─── Complaints ──────────────────────────────────────────────────────────────

func (h *Handler) handleComplaintSLA(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.complaints.EvaluateSLA(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, res)
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req escalateRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.complaints.Escalate(r.Context(), id, r.Header.Get(actorHeader), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, res)
}

func (h *Handler) handleEscalations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	history, err := h.complaints.ListEscalations(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"escalations": history})
}

// ─── Departures ──────────────────────────────────────────────────────────────

func (h *Handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	dep, st, err := h.compliance.EvaluateCompliance(r.Context(), id)
	if errors.Is(err, domain.ErrNotApplicable) {
		jsonOK(w, map[string]any{"departure": dep, "state": map[string]any{"status": domain.ComplianceStatusNotApplicable}})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{"departure": dep, "state": st})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func transitionContext(r *http.Request, justification string) lifecycle.TransitionContext {
	return lifecycle.TransitionContext{
		Actor:         strings.TrimSpace(r.Header.Get(actorHeader)),
		Justification: justification,
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decode reads an optional JSON body into v and validates its struct tags.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return false
		}
	}
	if err := validate.Struct(v); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeTransition renders a transition outcome. Denials carry the decision so callers can
// show what is missing.
func writeTransition(w http.ResponseWriter, res *service.TransitionResult, err error) {
	if err == nil {
		jsonOK(w, res)
		return
	}
	var te *domain.TransitionError
	if res == nil || !errors.As(err, &te) {
		writeError(w, err)
		return
	}
	jsonWrite(w, statusFor(err), map[string]any{
		"error":         err.Error(),
		"kind":          te.Kind,
		"missing":       te.Missing,
		"decision":      res.Decision,
		"candidate":     res.Candidate,
		"auto_rejected": res.AutoRejected,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	}
	switch domain.KindOf(err) {
	case domain.ErrKindInvalidTransition, domain.ErrKindGateNotSatisfied, domain.ErrKindNotApplicable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		jsonWrite(w, code, map[string]string{"error": "internal error"})
		return
	}
	jsonWrite(w, code, map[string]any{"error": err.Error(), "kind": domain.KindOf(err)})
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonWrite(w, http.StatusOK, v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonWrite(w, code, map[string]string{"error": msg})
}

func jsonWrite(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
