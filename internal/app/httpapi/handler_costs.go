package httpapi

import (
	"net/http"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/costs"
)

func (h *handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var in costs.Template
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := h.app.Costs.CreateTemplate(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Costs.ListTemplates(r.Context(), strings.TrimSpace(r.URL.Query().Get("project_type")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Costs.GetTemplate(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Costs.DeleteTemplate(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) replaceTemplateLines(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Lines []costs.TemplateLine `json:"lines"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := h.app.Costs.ReplaceLines(r.Context(), pathID(r), payload.Lines)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) cloneBudget(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TemplateID string `json:"template_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	projectID := pathID(r)
	lines, err := h.app.Costs.CloneToBudget(r.Context(), payload.TemplateID, projectID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), projectID)
	writeJSON(w, http.StatusCreated, lines)
}

func (h *handler) listBudget(w http.ResponseWriter, r *http.Request) {
	lines, err := h.app.Costs.ListBudget(r.Context(), pathID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *handler) budgetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Costs.BudgetSummary(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) updateBudgetLine(w http.ResponseWriter, r *http.Request) {
	var in costs.BudgetLine
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ID = pathID(r)
	l, err := h.app.Costs.UpdateBudgetLine(r.Context(), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	writeJSON(w, http.StatusOK, l)
}

func (h *handler) deleteBudgetLine(w http.ResponseWriter, r *http.Request) {
	l, err := h.app.Costs.GetBudgetLine(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.app.Costs.DeleteBudgetLine(r.Context(), l.ID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	w.WriteHeader(http.StatusNoContent)
}
