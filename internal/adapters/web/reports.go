package web

import (
	"net/http"
	"strings"

	"invoizo/internal/app"
	"invoizo/internal/core"
)

// ── Dashboard and reports ─────────────────────────────────────────────────────

// dashboard defaults to the current calendar year when year is absent.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	m, err := h.svc.Dashboard(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

func (h *Handler) projections(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	kind := core.ProjectionType(r.URL.Query().Get("type"))
	if kind == "" {
		kind = core.ProjectionModerate
	}
	p, err := h.svc.Projections(r.Context(), year, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) audit(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Audit(r.Context(), period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.SalesSummary(r.Context(), period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

func (h *Handler) purchaseReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.PurchaseSummary(r.Context(), period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

// ── Notifications ─────────────────────────────────────────────────────────────

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListNotifications(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) checkNotifications(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.CheckNotifications(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, created)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkAllNotificationsRead(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearNotifications(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Settings ──────────────────────────────────────────────────────────────────

func (h *Handler) getBusiness(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.GetBusiness(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, b)
}

func (h *Handler) updateBusiness(w http.ResponseWriter, r *http.Request) {
	var req core.BusinessInput
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.UpdateBusiness(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, b)
}

func (h *Handler) getPrinterSettings(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.GetPrinterSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ps)
}

func (h *Handler) updatePrinterSettings(w http.ResponseWriter, r *http.Request) {
	var req core.PrinterSettings
	if !decodeJSON(w, r, &req) {
		return
	}
	ps, err := h.svc.UpdatePrinterSettings(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ps)
}

func (h *Handler) getAuditSettings(w http.ResponseWriter, r *http.Request) {
	as, err := h.svc.GetAuditSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, as)
}

func (h *Handler) updateAuditSettings(w http.ResponseWriter, r *http.Request) {
	var req core.AuditSettings
	if !decodeJSON(w, r, &req) {
		return
	}
	as, err := h.svc.UpdateAuditSettings(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, as)
}

// ── CFO ───────────────────────────────────────────────────────────────────────

func (h *Handler) cfoMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.BusinessMetrics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, m)
}

func (h *Handler) cfoQuery(w http.ResponseWriter, r *http.Request) {
	var req app.CFOQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.AskCFO(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, a)
}

// cfoReport takes the format from ?format= when the body leaves it empty.
func (h *Handler) cfoReport(w http.ResponseWriter, r *http.Request) {
	var req app.CFOReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = strings.ToLower(r.URL.Query().Get("format"))
	}
	f, err := h.svc.CFOReport(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeFile(w, f)
}

// ── Backup ────────────────────────────────────────────────────────────────────

// backup uploads a snapshot when object storage is configured. With
// ?download=true the snapshot is streamed back instead.
func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	download, ok := queryBool(w, r, "download")
	if !ok {
		return
	}
	if download {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="backup.json"`)
		if err := h.svc.WriteBackup(r.Context(), w); err != nil {
			h.writeServiceError(w, r, err)
		}
		return
	}
	key, err := h.svc.Backup(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"key": key})
}
