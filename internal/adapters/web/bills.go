package web

import (
	"net/http"

	"invoizo/internal/app"
	"invoizo/internal/core"
)

func billFilter(r *http.Request) app.BillListRequest {
	q := r.URL.Query()
	return app.BillListRequest{From: q.Get("from"), To: q.Get("to"), Search: q.Get("search")}
}

// ── Sales bills ───────────────────────────────────────────────────────────────

func (h *Handler) listSalesBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListSalesBills(r.Context(), billFilter(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bills)
}

func (h *Handler) nextSalesInvoice(w http.ResponseWriter, r *http.Request) {
	h.nextInvoice(w, r, core.BillSales)
}

func (h *Handler) nextPurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	h.nextInvoice(w, r, core.BillPurchase)
}

func (h *Handler) nextInvoice(w http.ResponseWriter, r *http.Request, kind core.BillKind) {
	no, err := h.svc.NextInvoiceNo(r.Context(), kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"invoiceNo": no})
}

func (h *Handler) getSalesBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.GetSalesBill(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

// createSalesBill answers 422 with the product name when stock runs short;
// nothing is written in that case.
func (h *Handler) createSalesBill(w http.ResponseWriter, r *http.Request) {
	var req core.SalesBillInput
	if !decodeJSON(w, r, &req) {
		return
	}
	bill, err := h.svc.CreateSalesBill(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, bill)
}

func (h *Handler) updateSalesBill(w http.ResponseWriter, r *http.Request) {
	var req core.SalesBillInput
	if !decodeJSON(w, r, &req) {
		return
	}
	bill, err := h.svc.UpdateSalesBill(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) deleteSalesBill(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSalesBill(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelSalesBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.CancelSalesBill(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) restoreSalesBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.RestoreSalesBill(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) returnSalesBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.MarkSalesBillReturned(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) salesBillPDF(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.SalesBillPDF(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeFile(w, f)
}

// ── Purchase bills ────────────────────────────────────────────────────────────

func (h *Handler) listPurchaseBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListPurchaseBills(r.Context(), billFilter(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bills)
}

func (h *Handler) getPurchaseBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.GetPurchaseBill(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) createPurchaseBill(w http.ResponseWriter, r *http.Request) {
	var req core.PurchaseBillInput
	if !decodeJSON(w, r, &req) {
		return
	}
	bill, err := h.svc.CreatePurchaseBill(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, bill)
}

func (h *Handler) updatePurchaseBill(w http.ResponseWriter, r *http.Request) {
	var req core.PurchaseBillInput
	if !decodeJSON(w, r, &req) {
		return
	}
	bill, err := h.svc.UpdatePurchaseBill(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bill)
}

func (h *Handler) deletePurchaseBill(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePurchaseBill(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
