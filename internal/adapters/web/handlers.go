package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoizo/internal/app"
	"invoizo/internal/logging"
	"invoizo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Options configures NewHandler. Zero values get usable defaults.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	TokenTTL       time.Duration
	BodyLimit      int64
	// SecureCookie marks the auth cookie Secure; disable only for plain-HTTP dev.
	SecureCookie bool
	Logger       logrus.FieldLogger
}

// Handler holds the ApplicationService and the settings the routes need.
type Handler struct {
	svc          app.ApplicationService
	jwtSecret    string
	tokenTTL     time.Duration
	secureCookie bool
	logger       logrus.FieldLogger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	h := &Handler{
		svc:          svc,
		jwtSecret:    opts.JWTSecret,
		tokenTTL:     opts.TokenTTL,
		secureCookie: opts.SecureCookie,
		logger:       opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(Metrics)
	r.Use(CORS(opts.AllowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(opts.BodyLimit))
		r.Post("/api/auth/signup", h.signup)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/logout", h.logout)
	})

	// ── Protected API routes (return 401 JSON if unauthenticated) ─────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(opts.BodyLimit))

		r.Get("/api/auth/me", h.me)
		r.Get("/api/users", h.listUsers)
		r.With(h.RequireAdmin).Post("/api/users", h.addUser)
		r.Post("/api/users/password", h.changePassword)

		// Master data
		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Get("/{id}", h.getCustomer)
			r.Put("/{id}", h.updateCustomer)
			r.Delete("/{id}", h.deleteCustomer)
		})
		r.Route("/api/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Put("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
		})
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", h.listGroups)
			r.Post("/", h.createGroup)
			r.Put("/{id}", h.updateGroup)
			r.Delete("/{id}", h.deleteGroup)
		})
		r.Get("/api/inventory", h.listInventory)
		r.Get("/api/inventory/export", h.exportInventory)

		// Bills
		r.Route("/api/sales-bills", func(r chi.Router) {
			r.Get("/", h.listSalesBills)
			r.Post("/", h.createSalesBill)
			r.Get("/next-invoice", h.nextSalesInvoice)
			r.Get("/{id}", h.getSalesBill)
			r.Put("/{id}", h.updateSalesBill)
			r.Delete("/{id}", h.deleteSalesBill)
			r.Post("/{id}/cancel", h.cancelSalesBill)
			r.Post("/{id}/restore", h.restoreSalesBill)
			r.Post("/{id}/return", h.returnSalesBill)
			r.Get("/{id}/pdf", h.salesBillPDF)
		})
		r.Route("/api/purchase-bills", func(r chi.Router) {
			r.Get("/", h.listPurchaseBills)
			r.Post("/", h.createPurchaseBill)
			r.Get("/next-invoice", h.nextPurchaseInvoice)
			r.Get("/{id}", h.getPurchaseBill)
			r.Put("/{id}", h.updatePurchaseBill)
			r.Delete("/{id}", h.deletePurchaseBill)
		})

		// Book-keeping and ledgers
		r.Get("/api/book-keeping/{date}", h.loadDay)
		r.Put("/api/book-keeping/{date}", h.saveDay)
		r.Get("/api/accounts/{code}/statement", h.accountStatement)
		r.Get("/api/ledger-balance", h.ledgerBalance)
		r.Get("/api/cash-ledger", h.cashLedger)
		r.Get("/api/customer-ledger", h.customerLedger)
		r.Get("/api/supplier-ledger", h.supplierLedger)

		// Dashboard and reports
		r.Get("/api/dashboard", h.dashboard)
		r.Get("/api/dashboard/projections", h.projections)
		r.Get("/api/dashboard/audit", h.audit)
		r.Get("/api/reports/sales", h.salesReport)
		r.Get("/api/reports/purchases", h.purchaseReport)

		// Notifications
		r.Get("/api/notifications", h.listNotifications)
		r.Delete("/api/notifications", h.clearNotifications)
		r.Post("/api/notifications/check", h.checkNotifications)
		r.Post("/api/notifications/read-all", h.markAllNotificationsRead)
		r.Post("/api/notifications/{id}/read", h.markNotificationRead)

		// Settings
		r.Get("/api/settings/business", h.getBusiness)
		r.Put("/api/settings/business", h.updateBusiness)
		r.Get("/api/settings/printer", h.getPrinterSettings)
		r.Put("/api/settings/printer", h.updatePrinterSettings)
		r.Get("/api/settings/audit", h.getAuditSettings)
		r.Put("/api/settings/audit", h.updateAuditSettings)

		// CFO
		r.Get("/api/cfo/metrics", h.cfoMetrics)
		r.Post("/api/cfo/query", h.cfoQuery)
		r.Post("/api/cfo/report", h.cfoReport)

		r.With(h.RequireAdmin).Post("/api/backup", h.backup)
	})

	return r
}

// health reports liveness; it never touches the store.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// ── Query helpers ─────────────────────────────────────────────────────────────

func period(r *http.Request) app.PeriodRequest {
	q := r.URL.Query()
	return app.PeriodRequest{From: q.Get("from"), To: q.Get("to")}
}

// queryInt reads an optional integer parameter; absent is 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, name+" must be a whole number", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func queryBool(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, r, name+" must be true or false", "BAD_REQUEST", http.StatusBadRequest)
		return false, false
	}
	return b, true
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
