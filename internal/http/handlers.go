package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	mongoadapter "github.com/bbqaffair/catering-booking-and-orders/internal/adapters/mongo"
	"github.com/bbqaffair/catering-booking-and-orders/internal/adapters/rabbit"
	"github.com/bbqaffair/catering-booking-and-orders/internal/auth"
	"github.com/bbqaffair/catering-booking-and-orders/internal/booking"
	"github.com/bbqaffair/catering-booking-and-orders/internal/catalog"
	"github.com/bbqaffair/catering-booking-and-orders/internal/config"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
	"github.com/bbqaffair/catering-booking-and-orders/internal/idempotency"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
	"github.com/bbqaffair/catering-booking-and-orders/internal/orders"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	cfg         *config.Config
	svc         *orders.Service
	drafts      booking.DraftStore
	menuCatalog *mongoadapter.CatalogRepository
	audit       *mongoadapter.AuditLogger
	idemp       *idempotency.Idempotency
	sessions    *auth.Manager
	rabbitPub   *rabbit.Publisher
	logger      observability.Logger
	now         func() time.Time
}

func NewHandlers(cfg *config.Config, svc *orders.Service, drafts booking.DraftStore, menuCatalog *mongoadapter.CatalogRepository, audit *mongoadapter.AuditLogger, idemp *idempotency.Idempotency, sessions *auth.Manager, rabbitPub *rabbit.Publisher, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:         cfg,
		svc:         svc,
		drafts:      drafts,
		menuCatalog: menuCatalog,
		audit:       audit,
		idemp:       idemp,
		sessions:    sessions,
		rabbitPub:   rabbitPub,
		logger:      logger,
		now:         time.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) []byte {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
	return data
}

// writeError maps domain errors onto HTTP statuses. Validation errors
// carry their field details so clients can render inline feedback.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not found"})
	case errors.Is(err, domain.ErrSerializationFailure):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "conflict, try again"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "conflict"})
	case errors.Is(err, domain.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"error": "temporarily unavailable, retry shortly"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !auth.CheckCredentials(req.Email, req.Password, h.cfg.AdminEmail, h.cfg.AdminPassword) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "invalid credentials"})
		return
	}
	token, err := h.sessions.Issue(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": int(h.cfg.SessionTTL.Seconds()),
	})
}

func (h *Handlers) draftView(d *booking.Draft) map[string]interface{} {
	return map[string]interface{}{
		"draft":             d,
		"step":              d.Step,
		"can_advance":       d.CanAdvance(d.Step),
		"complete":          d.Complete(),
		"estimate":          domain.Round2(d.Estimate()),
		"estimate_with_tax": d.EstimateWithTax(),
		"packages":          d.EligiblePackages(),
	}
}

func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	draft := booking.NewDraft(h.now())
	if err := h.drafts.Save(r.Context(), draft); err != nil {
		writeError(w, err)
		return
	}
	observability.DraftsStarted.Inc()
	resp := h.draftView(draft)
	resp["min_event_date"] = booking.MinEventDate(h.now()).Format(dateLayout)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) loadDraft(w http.ResponseWriter, r *http.Request) (*booking.Draft, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}
	draft, err := h.drafts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return draft, true
}

func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.draftView(draft))
}

// UpdateDraft applies partial field updates. The draft is saved only
// when every update is valid; a rejected update leaves the stored
// draft untouched.
func (h *Handlers) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}

	var req struct {
		EventDate       *string `json:"event_date"`
		EventTime       *string `json:"event_time"`
		GuestCount      *int    `json:"guest_count"`
		PackageID       *string `json:"package_id"`
		VenueType       *string `json:"venue_type"`
		Address         *string `json:"address"`
		Name            *string `json:"name"`
		Email           *string `json:"email"`
		Phone           *string `json:"phone"`
		SpecialRequests *string `json:"special_requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.EventDate != nil {
		date, err := time.Parse(dateLayout, *req.EventDate)
		if err != nil {
			ve := &domain.ValidationError{}
			ve.Add("event_date", "expected YYYY-MM-DD")
			writeError(w, ve)
			return
		}
		if err := draft.SetEventDate(date, h.now()); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.EventTime != nil {
		if err := draft.SetEventTime(*req.EventTime); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.GuestCount != nil {
		if err := draft.SetGuestCount(*req.GuestCount); err != nil {
			writeError(w, err)
			return
		}
	}
	venueType, address := "", ""
	if req.VenueType != nil {
		venueType = *req.VenueType
	}
	if req.Address != nil {
		address = *req.Address
	}
	if venueType != "" || address != "" {
		if err := draft.SetVenue(catalog.VenueType(venueType), address); err != nil {
			writeError(w, err)
			return
		}
	}
	name, email, phone := "", "", ""
	if req.Name != nil {
		name = *req.Name
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	draft.SetContact(name, email, phone)
	if req.SpecialRequests != nil {
		draft.SpecialRequests = *req.SpecialRequests
	}
	// Package selection last: eligibility depends on the guest count
	// applied above.
	if req.PackageID != nil {
		if err := draft.SelectPackage(*req.PackageID); err != nil {
			writeError(w, err)
			return
		}
	}

	draft.UpdatedAt = h.now()
	if err := h.drafts.Save(r.Context(), draft); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.draftView(draft))
}

func (h *Handlers) DraftNext(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}
	advanced := draft.Next()
	if advanced {
		draft.UpdatedAt = h.now()
		if err := h.drafts.Save(r.Context(), draft); err != nil {
			writeError(w, err)
			return
		}
	}
	resp := h.draftView(draft)
	resp["advanced"] = advanced
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) DraftPrev(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}
	moved := draft.Prev()
	if moved {
		draft.UpdatedAt = h.now()
		if err := h.drafts.Save(r.Context(), draft); err != nil {
			writeError(w, err)
			return
		}
	}
	resp := h.draftView(draft)
	resp["moved"] = moved
	writeJSON(w, http.StatusOK, resp)
}

// DraftQuote renders the WhatsApp hand-off for the current draft state.
// Reading a quote never mutates the draft.
func (h *Handlers) DraftQuote(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}
	message := draft.QuoteMessage()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"link":    booking.WhatsAppLink(h.cfg.WhatsAppPhone, message),
	})
}

// SubmitDraft converts a completed draft into an order. On failure the
// draft stays stored, so the client can retry with the same
// Idempotency-Key; the draft is deleted only after a successful create.
func (h *Handlers) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	draft, ok := h.loadDraft(w, r)
	if !ok {
		return
	}

	order, err := h.svc.SubmitDraft(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.drafts.Delete(r.Context(), draft.ID); err != nil {
		h.logger.WithField("draft_id", draft.ID.String()).Warn("failed to delete submitted draft", err)
	}

	data := writeJSON(w, http.StatusCreated, orderResponse(order))
	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func orderResponse(order *domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"order_id":       order.ID,
		"order_status":   order.OrderStatus,
		"payment_status": order.PaymentStatus,
		"subtotal":       order.Subtotal,
		"tax_amount":     order.TaxAmount,
		"total_amount":   order.TotalAmount,
		"items":          order.Items,
	}
}

// CreateOrder is the itemized flow: explicit line items with unit
// prices snapshotted from the menu.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		Customer orders.CustomerInfo `json:"customer"`
		Event    struct {
			Date            string `json:"date"`
			Time            string `json:"time"`
			GuestCount      int    `json:"guest_count"`
			Location        string `json:"location"`
			SpecialRequests string `json:"special_requests"`
		} `json:"event"`
		Items []orders.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event := domain.EventDetails{
		Time:         req.Event.Time,
		GuestCount:   req.Event.GuestCount,
		VenueAddress: req.Event.Location,
		SpecialNotes: req.Event.SpecialRequests,
	}
	if req.Event.Date != "" {
		date, err := time.Parse(dateLayout, req.Event.Date)
		if err != nil {
			ve := &domain.ValidationError{}
			ve.Add("event.date", "expected YYYY-MM-DD")
			writeError(w, ve)
			return
		}
		event.Date = date
	}

	order, err := h.svc.CreateOrder(r.Context(), req.Customer, event, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}

	data := writeJSON(w, http.StatusCreated, orderResponse(order))
	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(order))
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	list, err := h.svc.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": list})
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.svc.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.audit != nil {
		actor := SessionFromContext(r.Context()).PrincipalID()
		if err := h.audit.LogStatusChange(r.Context(), order, actor); err != nil {
			h.logger.WithField("order_id", order.ID.String()).Warn("failed to audit status change", err)
		}
	}
	h.publishOrderEvent(r, order, "order."+string(order.OrderStatus))
	writeJSON(w, http.StatusOK, orderResponse(order))
}

func (h *Handlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       uuid.UUID `json:"order_id"`
		Status        string    `json:"status"`
		TransactionID string    `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var newStatus domain.PaymentStatus
	switch req.Status {
	case "SUCCEEDED":
		newStatus = domain.PaymentPaid
	case "REFUNDED":
		newStatus = domain.PaymentRefunded
	default:
		newStatus = domain.PaymentFailed
	}
	order, err := h.svc.UpdatePaymentStatus(r.Context(), req.OrderID, newStatus, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.audit != nil {
		if err := h.audit.LogPayment(r.Context(), order, req.TransactionID); err != nil {
			h.logger.WithField("order_id", order.ID.String()).Warn("failed to audit payment update", err)
		}
	}
	h.publishOrderEvent(r, order, "order.payment_"+string(newStatus))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	})
}

func (h *Handlers) publishOrderEvent(r *http.Request, order *domain.Order, eventType string) {
	if h.rabbitPub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"order_status":   order.OrderStatus,
		"payment_status": order.PaymentStatus,
	})
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        payload,
	}
	if err := h.rabbitPub.Publish(r.Context(), eventType, msg); err != nil {
		h.logger.WithField("order_id", order.ID.String()).Error("failed to publish order event", err)
	}
}

func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"packages":   catalog.Packages(),
		"time_slots": catalog.TimeSlots,
		"venues":     catalog.VenueTypes,
	})
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.menuCatalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handlers) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	var filter mongoadapter.ItemFilter
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		filter.CategoryID = id
	}
	filter.AvailableOnly = r.URL.Query().Get("available") == "true"

	items, err := h.menuCatalog.ListMenuItems(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	item, err := h.menuCatalog.GetMenuItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

func (h *Handlers) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID   uuid.UUID `json:"category_id"`
		Name         string    `json:"name"`
		Description  string    `json:"description"`
		Price        float64   `json:"price"`
		Available    bool      `json:"available"`
		DisplayOrder int       `json:"display_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.Name == "" {
		ve.Add("name", "required")
	}
	if req.Price < 0 {
		ve.Add("price", "must not be negative")
	}
	if err := ve.Err(); err != nil {
		writeError(w, err)
		return
	}

	item := domain.MenuItem{
		ID:           uuid.New(),
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Available:    req.Available,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.menuCatalog.CreateMenuItem(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"item": item})
}

func (h *Handlers) SetItemAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.menuCatalog.SetItemAvailability(r.Context(), id, req.Available); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"available": req.Available,
	})
}

func (h *Handlers) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_revenue":       stats.TotalRevenue,
		"order_counts":        stats.OrderCounts,
		"average_order_value": stats.AverageOrderValue,
	})
}

func (h *Handlers) AnalyticsTopItems(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	items, err := h.svc.TopMenuItems(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
