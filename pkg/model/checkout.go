package model

import "time"

// BookingDraft is one prospective booking row in a checkout batch. Ref ties
// participant drafts to it and is local to the request.
type BookingDraft struct {
	Ref               string `json:"ref" validate:"required"`
	TotalParticipants int    `json:"total_participants" validate:"required,min=1"`
	NoteForGuide      string `json:"note_for_guide,omitempty" validate:"omitempty,max=500"`
}

// ParticipantDraft references a booking draft in the same batch by ref.
type ParticipantDraft struct {
	BookingRef string `json:"booking_ref" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// CheckoutRequest is the staged input of one checkout attempt.
type CheckoutRequest struct {
	UserID        string             `json:"user_id" validate:"required"`
	ExperienceID  string             `json:"experience_id" validate:"required"`
	TimeSlotID    string             `json:"time_slot_id" validate:"required"`
	BookingDate   time.Time          `json:"booking_date" validate:"required"`
	Bookings      []BookingDraft     `json:"bookings" validate:"required,min=1,dive"`
	Participants  []ParticipantDraft `json:"participants" validate:"required,min=1,dive"`
	CouponCode    string             `json:"coupon_code,omitempty"`
	BypassPayment bool               `json:"bypass_payment,omitempty"`
}

// NotificationReport aggregates per-participant dispatch results. Failures
// never change the checkout outcome.
type NotificationReport struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// CheckoutResult is the terminal success payload of a checkout.
type CheckoutResult struct {
	BatchID       string               `json:"batch_id"`
	BookingIDs    []string             `json:"booking_ids"`
	Created       int                  `json:"created"`
	Paid          bool                 `json:"paid"`
	PaymentRef    string               `json:"payment_ref,omitempty"`
	Total         float64              `json:"total"`
	Currency      string               `json:"currency"`
	Discount      *DiscountCalculation `json:"discount,omitempty"`
	Notifications NotificationReport   `json:"notifications"`
}
