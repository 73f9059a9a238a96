package model

import "time"

// Experience is a bookable tour or activity. Coupon and checkout flows read
// it, never write it.
type Experience struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title     string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Price     float64   `json:"price" bson:"price" validate:"gte=0"`
	Currency  string    `json:"currency" bson:"currency" validate:"required,len=3"`
	VendorID  string    `json:"vendor_id" bson:"vendor_id" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ExperienceSummary is the snapshot returned alongside coupon and checkout
// responses.
type ExperienceSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

func (e *Experience) Summary() ExperienceSummary {
	return ExperienceSummary{
		ID:       e.ID,
		Title:    e.Title,
		Price:    e.Price,
		Currency: e.Currency,
	}
}
