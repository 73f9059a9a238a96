package model

import "time"

const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

// Coupon is an experience-scoped discount code. Codes are stored upper-cased
// and are unique per experience; deactivation is a soft delete.
type Coupon struct {
	ID           string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	ExperienceID string     `json:"experience_id" bson:"experience_id" validate:"required"`
	Code         string     `json:"coupon_code" bson:"code" validate:"required,min=2,max=50"`
	Kind         string     `json:"type" bson:"kind" validate:"required,oneof=flat percentage"`
	Value        float64    `json:"discount_value" bson:"value" validate:"gt=0"`
	MaxUses      *int       `json:"max_uses,omitempty" bson:"max_uses,omitempty" validate:"omitempty,gt=0"`
	UsedCount    int        `json:"used_count" bson:"used_count"`
	ValidFrom    *time.Time `json:"valid_from,omitempty" bson:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
	Active       bool       `json:"is_active" bson:"active"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CouponCreate is the vendor-facing creation payload.
type CouponCreate struct {
	Code         string     `json:"coupon_code" validate:"required,min=2,max=50"`
	ExperienceID string     `json:"experience_id" validate:"required"`
	Kind         string     `json:"type" validate:"required"`
	Value        float64    `json:"discount_value" validate:"required"`
	MaxUses      *int       `json:"max_uses,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// DiscountCalculation is the result of applying a coupon to an amount.
// FinalAmount is never negative; a flat discount never exceeds the amount.
type DiscountCalculation struct {
	OriginalAmount    float64 `json:"original_amount"`
	DiscountAmount    float64 `json:"discount_amount"`
	FinalAmount       float64 `json:"final_amount"`
	SavingsPercentage float64 `json:"savings_percentage"`
}

// CouponValidation is the outcome of a read-only validation call. Calculation
// is nil when no booking amount was supplied.
type CouponValidation struct {
	Valid       bool                 `json:"valid"`
	Coupon      *Coupon              `json:"coupon,omitempty"`
	Experience  *ExperienceSummary   `json:"experience,omitempty"`
	Calculation *DiscountCalculation `json:"discount_calculation"`
	Message     string               `json:"message,omitempty"`
}
