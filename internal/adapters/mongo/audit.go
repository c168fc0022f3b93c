package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
)

// AuditLogger records who changed an order and how. Status changes and
// payment callbacks are the only writes that mutate an order after
// creation, so they are the ones that leave a trail.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditEntry struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	Actor     string    `bson:"actor"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, actor string, data map[string]interface{}) error {
	entry := AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, entry)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

// LogStatusChange records an admin moving an order through its
// lifecycle.
func (a *AuditLogger) LogStatusChange(ctx context.Context, order *domain.Order, actor string) error {
	data := map[string]interface{}{
		"order_id": order.ID,
		"status":   order.OrderStatus,
		"total":    order.TotalAmount,
	}
	return a.LogEvent(ctx, "order.status_changed", actor, data)
}

// LogPayment records a payment gateway callback against an order.
func (a *AuditLogger) LogPayment(ctx context.Context, order *domain.Order, transactionID string) error {
	data := map[string]interface{}{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
		"payment_ref":    transactionID,
		"total":          order.TotalAmount,
	}
	return a.LogEvent(ctx, "order.payment_updated", "payment-gateway", data)
}
