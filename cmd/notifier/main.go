package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bbqaffair/catering-booking-and-orders/internal/adapters/rabbit"
	"github.com/bbqaffair/catering-booking-and-orders/internal/config"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn, "notifications.q", "order.*")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := NewNotifier(consumer, logger)
	go worker.Run(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notifier")
}

// Notifier turns order lifecycle events into customer-facing
// notification log lines. Actual message delivery (email, WhatsApp) is
// a downstream concern; this worker owns the consumption loop and the
// message text.
type Notifier struct {
	consumer *rabbit.Consumer
	logger   observability.Logger
}

func NewNotifier(consumer *rabbit.Consumer, logger observability.Logger) *Notifier {
	return &Notifier{consumer: consumer, logger: logger}
}

type orderEvent struct {
	OrderID     string  `json:"order_id"`
	OrderStatus string  `json:"order_status"`
	EventDate   string  `json:"event_date"`
	EventTime   string  `json:"event_time"`
	GuestCount  int     `json:"guest_count"`
	TotalAmount float64 `json:"total_amount"`
}

func (n *Notifier) Run(ctx context.Context) {
	deliveries, err := n.consumer.Consume(ctx)
	if err != nil {
		n.logger.Error("failed to start consuming", err)
		return
	}
	n.logger.Info("Notifier started")

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			n.handle(d)
		}
	}
}

func (n *Notifier) handle(d amqp.Delivery) {
	var evt orderEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		n.logger.Error("failed to decode order event", err)
		d.Nack(false, false)
		return
	}

	n.logger.
		WithField("order_id", evt.OrderID).
		WithField("routing_key", d.RoutingKey).
		WithField("guest_count", evt.GuestCount).
		WithField("event_date", evt.EventDate).
		Info("order notification")

	d.Ack(false)
}
