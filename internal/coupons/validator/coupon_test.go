package validator

import (
	"testing"
	"time"

	"wayfare/pkg/logger"
	"wayfare/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.FormatJSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestValidateCreate(t *testing.T) {
	v := NewCouponValidator(testLogger())
	maxUsesZero := 0
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(24 * time.Hour)

	tests := []struct {
		name      string
		create    *model.CouponCreate
		wantError bool
	}{
		{
			name: "valid percentage coupon",
			create: &model.CouponCreate{
				Code:         "SAVE20",
				ExperienceID: "E1",
				Kind:         model.DiscountPercentage,
				Value:        20,
			},
			wantError: false,
		},
		{
			name: "valid flat coupon",
			create: &model.CouponCreate{
				Code:         "FLAT100",
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        100,
			},
			wantError: false,
		},
		{
			name: "missing code",
			create: &model.CouponCreate{
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        100,
			},
			wantError: true,
		},
		{
			name: "missing experience",
			create: &model.CouponCreate{
				Code:  "SAVE20",
				Kind:  model.DiscountFlat,
				Value: 100,
			},
			wantError: true,
		},
		{
			name: "unknown kind",
			create: &model.CouponCreate{
				Code:         "SAVE20",
				ExperienceID: "E1",
				Kind:         "bogo",
				Value:        20,
			},
			wantError: true,
		},
		{
			name: "percentage over 100",
			create: &model.CouponCreate{
				Code:         "SAVE150",
				ExperienceID: "E1",
				Kind:         model.DiscountPercentage,
				Value:        150,
			},
			wantError: true,
		},
		{
			name: "percentage exactly 100 allowed",
			create: &model.CouponCreate{
				Code:         "FREE",
				ExperienceID: "E1",
				Kind:         model.DiscountPercentage,
				Value:        100,
			},
			wantError: false,
		},
		{
			name: "negative value",
			create: &model.CouponCreate{
				Code:         "NEG",
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        -5,
			},
			wantError: true,
		},
		{
			name: "flat over 100 allowed",
			create: &model.CouponCreate{
				Code:         "BIGFLAT",
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        5000,
			},
			wantError: false,
		},
		{
			name: "zero max uses",
			create: &model.CouponCreate{
				Code:         "NONE",
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        10,
				MaxUses:      &maxUsesZero,
			},
			wantError: true,
		},
		{
			name: "window reversed",
			create: &model.CouponCreate{
				Code:         "WINDOW",
				ExperienceID: "E1",
				Kind:         model.DiscountFlat,
				Value:        10,
				ValidFrom:    &later,
				ValidUntil:   &earlier,
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(tt.create)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateCreate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateCreate_ValueCheckedBeforeKindSpecificRule(t *testing.T) {
	v := NewCouponValidator(testLogger())

	// value <= 0 on a percentage coupon must report the generic value rule,
	// not the percentage cap
	err := v.ValidateCreate(&model.CouponCreate{
		Code:         "ZERO",
		ExperienceID: "E1",
		Kind:         model.DiscountPercentage,
		Value:        -1,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	validationErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if validationErrs[0].Message != "discount_value must be greater than 0" {
		t.Errorf("unexpected first violation: %s", validationErrs[0].Message)
	}
}
