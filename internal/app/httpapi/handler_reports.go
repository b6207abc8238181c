package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/landscape-hq/underwriter/internal/app/domain/report"
	"github.com/landscape-hq/underwriter/internal/app/services/backendproxy"
)

func (h *handler) reportCashFlow(w http.ResponseWriter, r *http.Request) {
	var a report.Assumptions
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cf, err := h.app.Reports.CashFlow(r.Context(), pathID(r), a)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cf)
}

func (h *handler) reportReturns(w http.ResponseWriter, r *http.Request) {
	var a report.Assumptions
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ret, err := h.app.Reports.Returns(r.Context(), pathID(r), a)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ret)
}

func (h *handler) reportValuation(w http.ResponseWriter, r *http.Request) {
	var a report.Assumptions
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	val, err := h.app.Reports.Valuation(r.Context(), pathID(r), a)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, val)
}

// backendProxy relays whitelisted paths to the Django backend, preserving
// method, query, and JSON body.
func (h *handler) backendProxy(w http.ResponseWriter, r *http.Request) {
	path := "/api" + strings.TrimPrefix(r.URL.Path, "/api/backend")
	ok, adminOnly := backendproxy.Allowed(path)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("path is not proxied"))
		return
	}
	if adminOnly && !isAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, errors.New("admin role required"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.app.Backend.Forward(r.Context(), r.Method, path, r.URL.RawQuery, body)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
