package httpapi

import (
	"net/http"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/benchmark"
)

func (h *handler) createUnitCost(w http.ResponseWriter, r *http.Request) {
	var in benchmark.UnitCost
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	uc, err := h.app.Benchmarks.CreateUnitCost(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, uc)
}

func (h *handler) listUnitCosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.app.Benchmarks.ListUnitCosts(r.Context(), strings.TrimSpace(q.Get("category")), strings.TrimSpace(q.Get("search")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getUnitCost(w http.ResponseWriter, r *http.Request) {
	uc, err := h.app.Benchmarks.GetUnitCost(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

func (h *handler) updateUnitCost(w http.ResponseWriter, r *http.Request) {
	var in benchmark.UnitCost
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	uc, err := h.app.Benchmarks.UpdateUnitCost(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, uc)
}

func (h *handler) deleteUnitCost(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Benchmarks.DeleteUnitCost(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createGrowthSet(w http.ResponseWriter, r *http.Request) {
	var in benchmark.GrowthRateSet
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ID = ""
	set, err := h.app.Benchmarks.SaveGrowthRateSet(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (h *handler) listGrowthSets(w http.ResponseWriter, r *http.Request) {
	kind := benchmark.GrowthKind(r.URL.Query().Get("kind"))
	list, err := h.app.Benchmarks.ListGrowthRateSets(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getGrowthSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.app.Benchmarks.GetGrowthRateSet(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *handler) updateGrowthSet(w http.ResponseWriter, r *http.Request) {
	var in benchmark.GrowthRateSet
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ID = pathID(r)
	set, err := h.app.Benchmarks.SaveGrowthRateSet(r.Context(), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *handler) deleteGrowthSet(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Benchmarks.DeleteGrowthRateSet(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createSuggestion(w http.ResponseWriter, r *http.Request) {
	var in benchmark.Suggestion
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sg, err := h.app.Benchmarks.CreateSuggestion(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, sg)
}

func (h *handler) listSuggestions(w http.ResponseWriter, r *http.Request) {
	status := benchmark.SuggestionStatus(r.URL.Query().Get("status"))
	list, err := h.app.Benchmarks.ListSuggestions(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getSuggestion(w http.ResponseWriter, r *http.Request) {
	sg, err := h.app.Benchmarks.GetSuggestion(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

func (h *handler) approveSuggestion(w http.ResponseWriter, r *http.Request) {
	sg, uc, err := h.app.Benchmarks.ApproveSuggestion(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": sg, "unit_cost": uc})
}

func (h *handler) rejectSuggestion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sg, err := h.app.Benchmarks.RejectSuggestion(r.Context(), pathID(r), payload.Reason)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}
