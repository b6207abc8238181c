package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/landscape-hq/underwriter/internal/app"
	apperrors "github.com/landscape-hq/underwriter/internal/errors"
	"github.com/landscape-hq/underwriter/internal/logging"
	"github.com/landscape-hq/underwriter/internal/middleware"
)

// Options tunes the HTTP layer. The zero value is usable.
type Options struct {
	// AuditMax bounds the in-memory audit ring. Zero means the default.
	AuditMax int
	// AuditFile, when set, appends audit entries as JSONL to this path.
	AuditFile string
	// ReadyCheck, when set, backs the /readyz endpoint. Typically a
	// database ping.
	ReadyCheck func(ctx context.Context) error
}

type handler struct {
	app   *app.Application
	audit *auditLog
	ready func(ctx context.Context) error
}

// NewHandler returns the REST API router.
func NewHandler(application *app.Application, opts Options) (http.Handler, error) {
	sink, err := newFileAuditSink(opts.AuditFile)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}
	h := &handler{
		app:   application,
		audit: newAuditLog(opts.AuditMax, sink),
		ready: opts.ReadyCheck,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	adminOnly := middleware.RequireRole(middleware.RoleAdmin, nil)

	api.HandleFunc("/projects", h.createProject).Methods(http.MethodPost)
	api.HandleFunc("/projects", h.listProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", h.getProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", h.updateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", h.deleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/restore", h.restoreProject).Methods(http.MethodPost)
	api.Handle("/projects/{id}/purge", adminOnly(http.HandlerFunc(h.purgeProject))).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/parcels", h.addParcel).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/parcels", h.listParcels).Methods(http.MethodGet)
	api.HandleFunc("/parcels/{id}", h.updateParcel).Methods(http.MethodPut)
	api.HandleFunc("/parcels/{id}", h.removeParcel).Methods(http.MethodDelete)

	api.HandleFunc("/projects/{id}/leases", h.createLease).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/leases", h.listLeases).Methods(http.MethodGet)
	api.HandleFunc("/leases/{id}", h.getLease).Methods(http.MethodGet)
	api.HandleFunc("/leases/{id}", h.updateLease).Methods(http.MethodPut)
	api.HandleFunc("/leases/{id}", h.deleteLease).Methods(http.MethodDelete)
	api.HandleFunc("/leases/{id}/terminate", h.terminateLease).Methods(http.MethodPost)
	api.HandleFunc("/leases/{id}/schedule", h.leaseSchedule).Methods(http.MethodGet)

	api.HandleFunc("/benchmarks/unit-costs", h.createUnitCost).Methods(http.MethodPost)
	api.HandleFunc("/benchmarks/unit-costs", h.listUnitCosts).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/unit-costs/{id}", h.getUnitCost).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/unit-costs/{id}", h.updateUnitCost).Methods(http.MethodPut)
	api.HandleFunc("/benchmarks/unit-costs/{id}", h.deleteUnitCost).Methods(http.MethodDelete)
	api.HandleFunc("/benchmarks/growth-sets", h.createGrowthSet).Methods(http.MethodPost)
	api.HandleFunc("/benchmarks/growth-sets", h.listGrowthSets).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/growth-sets/{id}", h.getGrowthSet).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/growth-sets/{id}", h.updateGrowthSet).Methods(http.MethodPut)
	api.HandleFunc("/benchmarks/growth-sets/{id}", h.deleteGrowthSet).Methods(http.MethodDelete)
	api.HandleFunc("/benchmarks/suggestions", h.createSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/benchmarks/suggestions", h.listSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/suggestions/{id}", h.getSuggestion).Methods(http.MethodGet)
	api.HandleFunc("/benchmarks/suggestions/{id}/approve", h.approveSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/benchmarks/suggestions/{id}/reject", h.rejectSuggestion).Methods(http.MethodPost)

	api.HandleFunc("/opex/fields", h.opexFields).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/opex", h.upsertOpex).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}/opex", h.listOpex).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/opex/summary", h.opexSummary).Methods(http.MethodGet)
	api.HandleFunc("/opex/{id}", h.deleteOpex).Methods(http.MethodDelete)

	api.HandleFunc("/comps", h.createComp).Methods(http.MethodPost)
	api.HandleFunc("/comps", h.listComps).Methods(http.MethodGet)
	api.HandleFunc("/comps/summary", h.compSummary).Methods(http.MethodGet)
	api.HandleFunc("/comps/{id}", h.getComp).Methods(http.MethodGet)
	api.HandleFunc("/comps/{id}", h.updateComp).Methods(http.MethodPut)
	api.HandleFunc("/comps/{id}", h.deleteComp).Methods(http.MethodDelete)

	api.HandleFunc("/cost-templates", h.createTemplate).Methods(http.MethodPost)
	api.HandleFunc("/cost-templates", h.listTemplates).Methods(http.MethodGet)
	api.HandleFunc("/cost-templates/{id}", h.getTemplate).Methods(http.MethodGet)
	api.HandleFunc("/cost-templates/{id}", h.deleteTemplate).Methods(http.MethodDelete)
	api.HandleFunc("/cost-templates/{id}/lines", h.replaceTemplateLines).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}/budget", h.listBudget).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/budget/clone", h.cloneBudget).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/budget/summary", h.budgetSummary).Methods(http.MethodGet)
	api.HandleFunc("/budget-lines/{id}", h.updateBudgetLine).Methods(http.MethodPut)
	api.HandleFunc("/budget-lines/{id}", h.deleteBudgetLine).Methods(http.MethodDelete)

	api.HandleFunc("/documents", h.uploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents", h.listDocuments).Methods(http.MethodGet)
	api.Handle("/documents/process", adminOnly(http.HandlerFunc(h.processDocuments))).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}", h.getDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.deleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/content", h.documentContent).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/reclassify", h.reclassifyDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/extraction", h.documentExtraction).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/promote", h.promoteDocument).Methods(http.MethodPost)

	api.HandleFunc("/projects/{id}/reports/cashflow", h.reportCashFlow).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/reports/returns", h.reportReturns).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/reports/valuation", h.reportValuation).Methods(http.MethodPost)

	api.PathPrefix("/backend/").HandlerFunc(h.backendProxy)

	api.Handle("/admin/audit", adminOnly(http.HandlerFunc(h.listAudit))).Methods(http.MethodGet)

	return h.auditMiddleware(r), nil
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func isAdmin(ctx context.Context) bool {
	return logging.GetRole(ctx) == "admin"
}

// statusFor maps service errors onto HTTP statuses. Stores surface missing
// rows as sql.ErrNoRows; typed service errors carry their own status;
// everything else is treated as a bad request.
func statusFor(err error) int {
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound
	}
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.HTTPStatus
	}
	return http.StatusBadRequest
}

func decodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["id"])
}
