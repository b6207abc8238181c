package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/domain/parcel"
	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/services/projects"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

func (h *handler) createProject(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner           string    `json:"owner"`
		Name            string    `json:"name"`
		Type            string    `json:"type"`
		Address         string    `json:"address"`
		City            string    `json:"city"`
		State           string    `json:"state"`
		Zip             string    `json:"zip"`
		AnalysisStart   time.Time `json:"analysis_start"`
		HoldPeriodYears int       `json:"hold_period_years"`
		Notes           string    `json:"notes"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	owner := payload.Owner
	if owner == "" {
		owner = logging.GetUserID(r.Context())
	}
	p, err := h.app.Projects.Create(r.Context(), projects.CreateInput{
		Owner:           owner,
		Name:            payload.Name,
		Type:            payload.Type,
		Address:         payload.Address,
		City:            payload.City,
		State:           payload.State,
		Zip:             payload.Zip,
		AnalysisStart:   payload.AnalysisStart,
		HoldPeriodYears: payload.HoldPeriodYears,
		Notes:           payload.Notes,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ProjectFilter{
		Owner:          strings.TrimSpace(q.Get("owner")),
		Status:         project.Status(q.Get("status")),
		Type:           project.Type(q.Get("type")),
		IncludeDeleted: q.Get("include_deleted") == "true",
	}
	list, err := h.app.Projects.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Projects.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name            *string    `json:"name"`
		Status          *string    `json:"status"`
		Address         *string    `json:"address"`
		City            *string    `json:"city"`
		State           *string    `json:"state"`
		Zip             *string    `json:"zip"`
		AnalysisStart   *time.Time `json:"analysis_start"`
		HoldPeriodYears *int       `json:"hold_period_years"`
		Notes           *string    `json:"notes"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.app.Projects.Update(r.Context(), pathID(r), projects.UpdateInput{
		Name:            payload.Name,
		Status:          payload.Status,
		Address:         payload.Address,
		City:            payload.City,
		State:           payload.State,
		Zip:             payload.Zip,
		AnalysisStart:   payload.AnalysisStart,
		HoldPeriodYears: payload.HoldPeriodYears,
		Notes:           payload.Notes,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Projects.SoftDelete(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) restoreProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Projects.Restore(r.Context(), pathID(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// purgeProject permanently removes a soft-deleted project. The route is
// gated behind the admin role.
func (h *handler) purgeProject(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Projects.HardDelete(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addParcel(w http.ResponseWriter, r *http.Request) {
	var in parcel.Parcel
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.app.Projects.AddParcel(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) listParcels(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Projects.ListParcels(r.Context(), pathID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) updateParcel(w http.ResponseWriter, r *http.Request) {
	var in parcel.Parcel
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.app.Projects.UpdateParcel(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) removeParcel(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Projects.RemoveParcel(r.Context(), pathID(r)); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
