package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/marketcomp"
	"github.com/landscape-hq/underwriter/internal/app/domain/opex"
	opexsvc "github.com/landscape-hq/underwriter/internal/app/services/opex"
)

func (h *handler) opexFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Opex.Fields())
}

func (h *handler) upsertOpex(w http.ResponseWriter, r *http.Request) {
	var in opex.Entry
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := h.app.Opex.Upsert(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), e.ProjectID)
	writeJSON(w, http.StatusOK, e)
}

func (h *handler) listOpex(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Opex.List(r.Context(), pathID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) deleteOpex(w http.ResponseWriter, r *http.Request) {
	e, err := h.app.Opex.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.app.Opex.Delete(r.Context(), e.ID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), e.ProjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) opexSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	units, _ := strconv.Atoi(q.Get("units"))
	sf, _ := strconv.ParseFloat(q.Get("rentable_sf"), 64)
	egi, _ := strconv.ParseFloat(q.Get("egi"), 64)
	summary, err := h.app.Opex.Summary(r.Context(), pathID(r), opexsvc.SummaryInput{
		Units:      units,
		RentableSF: sf,
		EGI:        egi,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) createComp(w http.ResponseWriter, r *http.Request) {
	var in marketcomp.Comp
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.app.Comps.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) listComps(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Comps.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("market")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getComp(w http.ResponseWriter, r *http.Request) {
	c, err := h.app.Comps.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) updateComp(w http.ResponseWriter, r *http.Request) {
	var in marketcomp.Comp
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.app.Comps.Update(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) deleteComp(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Comps.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) compSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Comps.Summarize(r.Context(), strings.TrimSpace(r.URL.Query().Get("market")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
