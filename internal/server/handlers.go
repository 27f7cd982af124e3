package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"paketomat/internal/cache"
	"paketomat/internal/label"
	"paketomat/internal/portal"
)

const maxRequestBody = 1 << 20

const sendersCacheKey = "senders"

// Handlers serves the label service API over one portal session
type Handlers struct {
	session    *Session
	rasterizer label.Rasterizer
	senders    *cache.Manager[string, []portal.Sender]
	weights    *cache.Manager[string, decimal.Decimal]
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandlers creates the API handlers. Sender lists and measured parcel
// weights are cached for cacheTTL; zero disables caching.
func NewHandlers(session *Session, rasterizer label.Rasterizer, cacheTTL time.Duration, logger *slog.Logger) *Handlers {
	if rasterizer == nil {
		rasterizer = label.Passthrough{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		session:    session,
		rasterizer: rasterizer,
		senders:    cache.NewManager[string, []portal.Sender](false, cacheTTL, logger),
		weights:    cache.NewManager[string, decimal.Decimal](false, cacheTTL, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Close stops the cache cleanup goroutines
func (h *Handlers) Close() {
	h.senders.Close()
	h.weights.Close()
}

// NewRouter builds the HTTP handler with middleware. When apiKey is set,
// every route except the health check requires it as a bearer token.
func NewRouter(h *Handlers, apiKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)
	r.Use(SecurityMiddleware)

	h.RegisterChiRoutes(r, apiKey)
	return r
}

// RegisterChiRoutes registers all routes with a chi router
func (h *Handlers) RegisterChiRoutes(r chi.Router, apiKey string) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)

		r.Group(func(r chi.Router) {
			if apiKey != "" {
				r.Use(AuthMiddleware(apiKey, h.logger))
			}

			r.Get("/senders", h.GetSenders)
			r.Post("/recipients", h.CreateRecipient)
			r.Post("/routes", h.FindRoute)
			r.Post("/parcels", h.CreateParcel)
			r.Get("/parcels/tracking", h.GetTrackingNumber)
			r.Get("/parcels/{tracking}/weight", h.GetParcelWeight)
			r.Delete("/parcels/{tracking}", h.CancelParcel)
		})
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                      `json:"status"`
	Rasterizer string                      `json:"rasterizer"`
	Cache      map[string]cache.CacheStats `json:"cache"`
}

// HealthCheck handles GET /api/health. It does not contact the portal.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rasterizer := "ghostscript"
	if _, ok := h.rasterizer.(label.Passthrough); ok {
		rasterizer = "passthrough"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Rasterizer: rasterizer,
		Cache: map[string]cache.CacheStats{
			"senders": h.senders.GetStats(),
			"weights": h.weights.GetStats(),
		},
	})
}

// GetSenders handles GET /api/senders
func (h *Handlers) GetSenders(w http.ResponseWriter, r *http.Request) {
	senders, err := h.senders.GetOrLoad(r.Context(), sendersCacheKey, func(ctx context.Context) ([]portal.Sender, error) {
		var senders []portal.Sender
		err := h.session.Do(ctx, func(p Portal) error {
			var err error
			senders, err = p.Senders(ctx)
			return err
		})
		return senders, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if senders == nil {
		senders = []portal.Sender{}
	}
	writeJSON(w, http.StatusOK, senders)
}

// CreateRecipient handles POST /api/recipients
func (h *Handlers) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var recipient portal.Recipient
	if err := decodeBody(w, r, &recipient); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := validateRecipient(&recipient); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var created portal.Recipient
	err := h.session.Do(r.Context(), func(p Portal) error {
		created = recipient
		return p.CreateRecipient(r.Context(), &created)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// RouteRequest is the body of POST /api/routes
type RouteRequest struct {
	SenderID  int              `json:"sender_id"`
	Recipient portal.Recipient `json:"recipient"`
	Weight    decimal.Decimal  `json:"weight"`
}

func (req *RouteRequest) validate(requireCustomer bool) error {
	if req.SenderID <= 0 {
		return fmt.Errorf("sender_id is required")
	}
	if !req.Weight.IsPositive() {
		return fmt.Errorf("weight must be positive")
	}
	if requireCustomer && req.Recipient.CustomerID <= 0 {
		return fmt.Errorf("recipient.customer_id is required")
	}
	return validateRecipient(&req.Recipient)
}

// FindRoute handles POST /api/routes
func (h *Handlers) FindRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := req.validate(true); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	var route portal.Route
	err := h.session.Do(r.Context(), func(p Portal) error {
		var err error
		route, err = p.FindRoute(r.Context(), req.SenderID, req.Recipient, req.Weight)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// ParcelRequest is the body of POST /api/parcels. A recipient without
// customer number is registered first; a missing route is resolved.
type ParcelRequest struct {
	RouteRequest
	Date             string        `json:"date,omitempty"`
	ReferenceNumbers []string      `json:"reference_numbers,omitempty"`
	InvoiceNumbers   []string      `json:"invoice_numbers,omitempty"`
	Route            *portal.Route `json:"route,omitempty"`
}

// CreateParcel handles POST /api/parcels. The label is returned as PDF, or
// as PNG with ?format=png when a rasterizer is available.
func (h *Handlers) CreateParcel(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "pdf" && format != "png" {
		writeJSONError(w, http.StatusBadRequest, "format must be pdf or png", "")
		return
	}

	var req ParcelRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := req.validate(false); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	date := h.now()
	if req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "")
			return
		}
		date = parsed
	}

	parcel := portal.ParcelRequest{
		Date:             date,
		SenderID:         req.SenderID,
		Recipient:        req.Recipient,
		Weight:           req.Weight,
		ReferenceNumbers: req.ReferenceNumbers,
		InvoiceNumbers:   req.InvoiceNumbers,
	}

	var pdf []byte
	err := h.session.Do(r.Context(), func(p Portal) error {
		return h.createParcel(r.Context(), p, &parcel, req.Route, &pdf)
	})
	if err != nil {
		// A recipient registered before the failure must be reused on retry
		if registered := parcel.Recipient.CustomerID; registered != 0 && req.Recipient.CustomerID == 0 {
			w.Header().Set("X-Customer-Number", strconv.Itoa(registered))
			writeJSON(w, statusForError(err), ErrorResponse{
				Error:          err.Error(),
				Kind:           portal.KindOf(err),
				CustomerNumber: registered,
			})
			return
		}
		writeError(w, err)
		return
	}

	body := pdf
	if format == "png" {
		body, err = h.rasterizer.Rasterize(r.Context(), pdf)
		if err != nil {
			h.logger.Error("Label rasterization failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "label rasterization failed", "")
			return
		}
	}

	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Customer-Number", strconv.Itoa(parcel.Recipient.CustomerID))
	w.Header().Set("X-Route-Code", parcel.Route.Code)
	w.WriteHeader(http.StatusCreated)
	w.Write(body)
}

func (h *Handlers) createParcel(ctx context.Context, p Portal, parcel *portal.ParcelRequest, route *portal.Route, pdf *[]byte) error {
	if parcel.Recipient.CustomerID == 0 {
		// The customer number is only kept once the portal saved the recipient
		recipient := parcel.Recipient
		if err := p.CreateRecipient(ctx, &recipient); err != nil {
			return err
		}
		parcel.Recipient = recipient
	}

	if route != nil {
		parcel.Route = portal.NewRoute(*route)
	} else {
		resolved, err := p.FindRoute(ctx, parcel.SenderID, parcel.Recipient, parcel.Weight)
		if err != nil {
			return err
		}
		parcel.Route = resolved
	}

	out, err := p.CreateParcel(ctx, *parcel)
	if err != nil {
		return err
	}
	*pdf = out
	return nil
}

// TrackingResponse maps a reference number to a tracking number
type TrackingResponse struct {
	ReferenceNumber string `json:"reference_number"`
	TrackingNumber  string `json:"tracking_number"`
}

// GetTrackingNumber handles GET /api/parcels/tracking?reference=
func (h *Handlers) GetTrackingNumber(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if reference == "" {
		writeJSONError(w, http.StatusBadRequest, "reference is required", "")
		return
	}

	var number string
	err := h.session.Do(r.Context(), func(p Portal) error {
		var err error
		number, err = p.TrackingNumber(r.Context(), reference)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TrackingResponse{ReferenceNumber: reference, TrackingNumber: number})
}

// WeightResponse reports the carrier-measured parcel weight
type WeightResponse struct {
	TrackingNumber string          `json:"tracking_number"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
}

// GetParcelWeight handles GET /api/parcels/{tracking}/weight
func (h *Handlers) GetParcelWeight(w http.ResponseWriter, r *http.Request) {
	tracking := chi.URLParam(r, "tracking")

	weight, err := h.weights.GetOrLoad(r.Context(), tracking, func(ctx context.Context) (decimal.Decimal, error) {
		var weight decimal.Decimal
		err := h.session.Do(ctx, func(p Portal) error {
			var err error
			weight, err = p.ParcelWeight(ctx, tracking)
			return err
		})
		return weight, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WeightResponse{TrackingNumber: tracking, WeightKg: weight})
}

// CancelParcel handles DELETE /api/parcels/{tracking}
func (h *Handlers) CancelParcel(w http.ResponseWriter, r *http.Request) {
	tracking := chi.URLParam(r, "tracking")

	err := h.session.Do(r.Context(), func(p Portal) error {
		return p.CancelParcel(r.Context(), tracking)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.weights.Delete(tracking)
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func validateRecipient(r *portal.Recipient) error {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(r.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(r.City) == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return fmt.Errorf("recipient is missing %s", strings.Join(missing, ", "))
	}
	if len(r.CountryCode) != 2 {
		return fmt.Errorf("recipient country_code must be a two letter code")
	}
	r.CountryCode = strings.ToUpper(r.CountryCode)
	return nil
}
