package web

import (
	"net/http"

	"invoizo/internal/app"

	"github.com/go-chi/chi/v5"
)

// ── Book-keeping ──────────────────────────────────────────────────────────────

// loadDay returns the saved day with the cash-sales entry recomputed from
// that day's cash bills.
func (h *Handler) loadDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.LoadDay(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, day)
}

// saveDay replaces the whole day. The date in the path wins over any date in
// the body.
func (h *Handler) saveDay(w http.ResponseWriter, r *http.Request) {
	var req app.SaveDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Date = chi.URLParam(r, "date")
	day, err := h.svc.SaveDay(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, day)
}

// ── Ledgers ───────────────────────────────────────────────────────────────────

func (h *Handler) accountStatement(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if r.URL.Query().Get("format") == "csv" {
		f, err := h.svc.ExportAccountStatement(r.Context(), code, period(r))
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeFile(w, f)
		return
	}
	st, err := h.svc.AccountStatement(r.Context(), code, period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

func (h *Handler) ledgerBalance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.LedgerBalanceRequest{
		Preset: q.Get("preset"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Search: q.Get("search"),
	}
	if q.Get("format") == "xlsx" {
		f, err := h.svc.ExportLedgerBalances(r.Context(), req)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeFile(w, f)
		return
	}
	report, err := h.svc.LedgerBalances(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) cashLedger(w http.ResponseWriter, r *http.Request) {
	debitOnly, ok := queryBool(w, r, "debitOnly")
	if !ok {
		return
	}
	days, err := h.svc.CashLedger(r.Context(), period(r), debitOnly)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, days)
}

func (h *Handler) customerLedger(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CustomerLedger(r.Context(), period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

func (h *Handler) supplierLedger(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.SupplierLedger(r.Context(), period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}
