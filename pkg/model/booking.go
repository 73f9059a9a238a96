package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is one reservation for one time slot of one experience. A bulk
// checkout produces several rows sharing a batch id.
type Booking struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID            string    `json:"user_id" bson:"user_id" validate:"required"`
	ExperienceID      string    `json:"experience_id" bson:"experience_id" validate:"required"`
	TimeSlotID        string    `json:"time_slot_id" bson:"time_slot_id" validate:"required"`
	BookingDate       time.Time `json:"booking_date" bson:"booking_date" validate:"required"`
	TotalParticipants int       `json:"total_participants" bson:"total_participants" validate:"required,min=1"`
	NoteForGuide      string    `json:"note_for_guide,omitempty" bson:"note_for_guide,omitempty"`
	Status            string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentRef        string    `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	BatchID           string    `json:"batch_id" bson:"batch_id"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Participant enriches a booking with attendee contact details. Every booking
// carries at least one.
type Participant struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id" validate:"required"`
	Name      string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
