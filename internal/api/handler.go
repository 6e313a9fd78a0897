package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"westernpos/m/domain"
	"westernpos/m/internal/apperror"
	"westernpos/m/internal/auth"
	"westernpos/m/internal/cart"
	"westernpos/m/internal/catalog"
	"westernpos/m/internal/receipt"
	"westernpos/m/internal/sale"
)

type ctxKey string

const ctxSession ctxKey = "session"

// Options are the collaborators the HTTP handlers depend on.
type Options struct {
	Catalog        *catalog.Catalog
	Index          *catalog.Index
	Sales          *sale.Service
	Auth           *auth.Service
	Receipts       *receipt.Presenter
	AllowedOrigins []string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	catalog  *catalog.Catalog
	index    *catalog.Index
	sales    *sale.Service
	auth     *auth.Service
	receipts *receipt.Presenter
	screens  *screenRegistry
	origins  []string
}

// New constructs a Handler.
func New(opts Options) *Handler {
	return &Handler{
		catalog:  opts.Catalog,
		index:    opts.Index,
		sales:    opts.Sales,
		auth:     opts.Auth,
		receipts: opts.Receipts,
		screens:  newScreenRegistry(),
		origins:  opts.AllowedOrigins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.searchProducts)
			r.Get("/details", h.productDetails)
			r.Post("/refresh", h.refreshProducts)
		})

		pr.Route("/screens", func(r chi.Router) {
			r.Post("/", h.openScreen)
			r.Route("/{screenID}", func(r chi.Router) {
				r.Get("/", h.getScreen)
				r.Delete("/", h.discardScreen)
				r.Post("/lines", h.addLine)
				r.Patch("/lines/{lineID}", h.updateLine)
				r.Delete("/lines/{lineID}", h.removeLine)
				r.Put("/vat", h.setVAT)
				r.Post("/complete", h.completeSale)
			})
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Get("/{id}", h.getSale)
			r.Post("/{id}/print", h.printSale)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string          `json:"token"`
	Operator domain.Operator `json:"operator"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, op, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Operator: op})
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		session, err := h.auth.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			respondAppError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) domain.Session {
	session, _ := r.Context().Value(ctxSession).(domain.Session)
	return session
}

// Products

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	respondJSON(w, http.StatusOK, h.index.Search(r.URL.Query().Get("query"), limit))
}

func (h *Handler) productDetails(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := h.catalog.GetProductDetails(r.Context(), name)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) refreshProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.index.Refresh(r.Context()); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"products": len(h.index.Names())})
}

// Screens

func (h *Handler) openScreen(w http.ResponseWriter, r *http.Request) {
	s := h.screens.open(sessionFrom(r).OperatorID)
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusCreated, s.view())
}

// screenFor resolves the screen in the URL and locks it. The caller must
// unlock it when ok is true.
func (h *Handler) screenFor(w http.ResponseWriter, r *http.Request) (*screen, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "screenID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screen id")
		return nil, false
	}
	s, ok := h.screens.get(id)
	if !ok {
		respondAppError(w, apperror.NewNotFoundError("screen"))
		return nil, false
	}
	if s.operatorID != sessionFrom(r).OperatorID {
		respondAppError(w, apperror.NewForbiddenError("screen belongs to another operator"))
		return nil, false
	}
	s.mu.Lock()
	return s, true
}

func (h *Handler) getScreen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.view())
}

func (h *Handler) discardScreen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	s.cart.Clear()
	s.mu.Unlock()
	h.screens.close(s.id)
	w.WriteHeader(http.StatusNoContent)
}

type addLineRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	// A missing product comes back as the zero value, which the cart refuses.
	p, err := h.catalog.GetProductDetails(r.Context(), req.ProductName)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		respondAppError(w, err)
		return
	}
	if _, err := s.cart.AddLine(p, req.Quantity); err != nil {
		respondAppError(w, cartError(err))
		return
	}
	respondJSON(w, http.StatusCreated, s.view())
}

type updateLineRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid line id")
		return
	}
	var req updateLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if _, err := s.cart.SetQuantity(lineID, req.Quantity); err != nil {
		respondAppError(w, cartError(err))
		return
	}
	respondJSON(w, http.StatusOK, s.view())
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid line id")
		return
	}
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	if err := s.cart.RemoveLine(lineID); err != nil {
		respondAppError(w, cartError(err))
		return
	}
	respondJSON(w, http.StatusOK, s.view())
}

func (h *Handler) setVAT(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IncludeVAT bool `json:"include_vat"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	s.cart.SetIncludeVAT(payload.IncludeVAT)
	respondJSON(w, http.StatusOK, s.view())
}

type completeResponse struct {
	Sale       *sale.Completed `json:"sale"`
	Receipt    receipt.Receipt `json:"receipt"`
	PrintError string          `json:"print_error,omitempty"`
}

func (h *Handler) completeSale(w http.ResponseWriter, r *http.Request) {
	var req sale.Request
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := h.screenFor(w, r)
	if !ok {
		return
	}
	defer s.mu.Unlock()

	done, err := h.sales.Complete(r.Context(), sessionFrom(r), req, s.cart)
	if err != nil {
		respondAppError(w, err)
		return
	}
	s.cart.Clear()

	resp := completeResponse{Sale: done, Receipt: h.receipts.Build(done.Sale, done.Items, done.Cashier)}
	// The sale is committed at this point; a printer fault is reported, not fatal.
	if err := h.receipts.Print(resp.Receipt); err != nil {
		log.Printf("[api] sale %d: print failed: %v", done.ID, err)
		resp.PrintError = err.Error()
	}
	respondJSON(w, http.StatusCreated, resp)
}

func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrNotSellable):
		return apperror.NewValidationError([]apperror.FieldError{{Field: "product_name", Message: "product cannot be sold"}})
	case errors.Is(err, cart.ErrOutOfStock):
		return apperror.NewValidationError([]apperror.FieldError{{Field: "quantity", Message: err.Error()}})
	case errors.Is(err, cart.ErrInvalidQuantity):
		return apperror.NewValidationError([]apperror.FieldError{{Field: "quantity", Message: err.Error()}})
	case errors.Is(err, cart.ErrLineNotFound):
		return apperror.NewNotFoundError("cart line")
	default:
		return err
	}
}

// Sales

type saleResponse struct {
	Sale    *sale.Record    `json:"sale"`
	Receipt receipt.Receipt `json:"receipt"`
}

func (h *Handler) loadSale(w http.ResponseWriter, r *http.Request) (*sale.Record, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return nil, false
	}
	rec, err := h.sales.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return nil, false
	}
	session := sessionFrom(r)
	if !session.IsAdmin && rec.SalesRep != session.OperatorID {
		respondAppError(w, apperror.NewForbiddenError("sale belongs to another operator"))
		return nil, false
	}
	return rec, true
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, saleResponse{Sale: rec, Receipt: h.receipts.Build(rec.Sale, rec.Items, rec.Cashier)})
}

func (h *Handler) printSale(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadSale(w, r)
	if !ok {
		return
	}
	rcpt := h.receipts.Build(rec.Sale, rec.Items, rec.Cashier)
	if err := h.receipts.Print(rcpt); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "printed"})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	filter := sale.Filter{
		StartDate: strings.TrimSpace(r.URL.Query().Get("start_date")),
		EndDate:   strings.TrimSpace(r.URL.Query().Get("end_date")),
	}
	if operator := strings.TrimSpace(r.URL.Query().Get("operator_id")); operator != "" {
		id, err := strconv.ParseInt(operator, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid operator_id")
			return
		}
		filter.OperatorID = id
	}
	// Operators other than admins only see their own sales.
	if !session.IsAdmin {
		filter.OperatorID = session.OperatorID
	}

	records, err := h.sales.List(r.Context(), filter)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, apperror.AppError{Code: status, Message: message})
}

func respondAppError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindStorage {
		log.Printf("[api] storage error: %v", err)
	}
	respondJSON(w, appErr.Code, apperror.AppError{
		Kind:    appErr.Kind,
		Code:    appErr.Code,
		Message: appErr.Error(),
		Errors:  appErr.Errors,
	})
}
