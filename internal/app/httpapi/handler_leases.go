package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/services/leases"
)

func (h *handler) createLease(w http.ResponseWriter, r *http.Request) {
	var in lease.Lease
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := h.app.Leases.Create(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	writeJSON(w, http.StatusCreated, l)
}

func (h *handler) listLeases(w http.ResponseWriter, r *http.Request) {
	projectID := pathID(r)
	if raw := r.URL.Query().Get("expiring_months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		list, err := h.app.Leases.ExpiringWithin(r.Context(), projectID, months)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	list, err := h.app.Leases.List(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getLease(w http.ResponseWriter, r *http.Request) {
	l, err := h.app.Leases.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *handler) updateLease(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TenantName     *string    `json:"tenant_name"`
		Suite          *string    `json:"suite"`
		RentableSF     *float64   `json:"rentable_sf"`
		Commencement   *time.Time `json:"commencement"`
		Expiration     *time.Time `json:"expiration"`
		BaseRentPSF    *float64   `json:"base_rent_psf"`
		EscalationPct  *float64   `json:"escalation_pct"`
		RecoveryType   *string    `json:"recovery_type"`
		FreeRentMonths *int       `json:"free_rent_months"`
		Status         *string    `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := h.app.Leases.Update(r.Context(), pathID(r), leases.UpdateInput{
		TenantName:     payload.TenantName,
		Suite:          payload.Suite,
		RentableSF:     payload.RentableSF,
		Commencement:   payload.Commencement,
		Expiration:     payload.Expiration,
		BaseRentPSF:    payload.BaseRentPSF,
		EscalationPct:  payload.EscalationPct,
		RecoveryType:   payload.RecoveryType,
		FreeRentMonths: payload.FreeRentMonths,
		Status:         payload.Status,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	writeJSON(w, http.StatusOK, l)
}

func (h *handler) deleteLease(w http.ResponseWriter, r *http.Request) {
	l, err := h.app.Leases.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.app.Leases.Delete(r.Context(), l.ID); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) terminateLease(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EffectiveDate time.Time `json:"effective_date"`
		Reason        string    `json:"reason"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := h.app.Leases.Terminate(r.Context(), pathID(r), payload.EffectiveDate, payload.Reason)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.app.Reports.Invalidate(r.Context(), l.ProjectID)
	writeJSON(w, http.StatusOK, l)
}

func (h *handler) leaseSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.app.Leases.Schedule(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}
