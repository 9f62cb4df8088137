package web

import (
	"net/http"

	"invoizo/internal/core"
)

// ── Customers ─────────────────────────────────────────────────────────────────

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListCustomers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCustomer(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req core.CustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateCustomer(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomer(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSuppliers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSupplier(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req core.SupplierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.CreateSupplier(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, s)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req core.SupplierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.UpdateSupplier(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSupplier(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ──────────────────────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), idParam(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Groups ────────────────────────────────────────────────────────────────────

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListGroups(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req core.GroupInput
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.CreateGroup(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, g)
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	var req core.GroupInput
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.UpdateGroup(r.Context(), idParam(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, g)
}

// deleteGroup answers 409 while products still reference the group.
func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), idParam(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Inventory ─────────────────────────────────────────────────────────────────

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInventory(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

func (h *Handler) exportInventory(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ExportInventory(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeFile(w, f)
}
