package notifications

import (
	"context"
	"time"

	"wayfare/pkg/kafka"
	"wayfare/pkg/logger"
)

const eventTypeBookingConfirmed = "booking.confirmed"

// Confirmation is the per-participant payload sent after a checkout lands.
type Confirmation struct {
	CustomerEmail     string    `json:"customerEmail"`
	CustomerName      string    `json:"customerName"`
	ExperienceTitle   string    `json:"experienceTitle"`
	BookingDate       time.Time `json:"bookingDate"`
	TimeSlot          string    `json:"timeSlot"`
	TotalParticipants int       `json:"totalParticipants"`
	TotalAmount       float64   `json:"totalAmount"`
	Currency          string    `json:"currency"`
	Participants      []string  `json:"participants"`
	BookingID         string    `json:"bookingId"`
	NoteForGuide      string    `json:"noteForGuide,omitempty"`
	PaymentID         string    `json:"paymentId,omitempty"`
}

// Dispatcher sends one confirmation per participant. Callers treat errors as
// best-effort signals: a failed send never undoes the booking it belongs to.
type Dispatcher interface {
	Send(ctx context.Context, confirmation Confirmation) error
}

type kafkaDispatcher struct {
	producer *kafka.Producer
	source   string
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaDispatcher(producer *kafka.Producer, source string, timeout time.Duration, log *logger.Logger) Dispatcher {
	return &kafkaDispatcher{
		producer: producer,
		source:   source,
		timeout:  timeout,
		log:      log,
	}
}

// Send keys the message by booking id so all confirmations for one booking
// land on one partition in order.
func (d *kafkaDispatcher) Send(ctx context.Context, confirmation Confirmation) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(confirmation.BookingID).
		WithValue(confirmation).
		WithEventType(eventTypeBookingConfirmed).
		WithSource(d.source).
		Build()

	if err := d.producer.Publish(ctx, msg); err != nil {
		return err
	}

	d.log.Info("Confirmation dispatched",
		"booking_id", confirmation.BookingID,
		"customer_email", confirmation.CustomerEmail,
	)
	return nil
}

// NopDispatcher drops every confirmation. Used when notifications are
// disabled by configuration.
type NopDispatcher struct {
	log *logger.Logger
}

func NewNopDispatcher(log *logger.Logger) *NopDispatcher {
	return &NopDispatcher{log: log}
}

func (d *NopDispatcher) Send(_ context.Context, confirmation Confirmation) error {
	d.log.Debug("Notifications disabled, dropping confirmation",
		"booking_id", confirmation.BookingID,
	)
	return nil
}
