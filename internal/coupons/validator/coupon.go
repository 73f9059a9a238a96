package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"wayfare/pkg/logger"
	"wayfare/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CouponValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCouponValidator(log *logger.Logger) *CouponValidator {
	v := validator.New()

	log.Info("Coupon validator initialized successfully")

	return &CouponValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateCreate runs the creation checks in a fixed order so the first
// failure reported is always the same for the same payload: presence, then
// kind, then value range.
func (v *CouponValidator) ValidateCreate(create *model.CouponCreate) error {
	if err := v.validate.Struct(create); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if create.Kind != model.DiscountFlat && create.Kind != model.DiscountPercentage {
		return ValidationErrors{
			ValidationError{
				Field:   "Kind",
				Message: fmt.Sprintf("type must be one of: %s %s", model.DiscountFlat, model.DiscountPercentage),
			},
		}
	}

	if create.Value <= 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "Value",
				Message: "discount_value must be greater than 0",
			},
		}
	}

	if create.Kind == model.DiscountPercentage && create.Value > 100 {
		return ValidationErrors{
			ValidationError{
				Field:   "Value",
				Message: "discount_value cannot exceed 100 for percentage coupons",
			},
		}
	}

	if create.MaxUses != nil && *create.MaxUses <= 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "MaxUses",
				Message: "max_uses must be greater than 0",
			},
		}
	}

	if create.ValidFrom != nil && create.ValidUntil != nil && !create.ValidUntil.After(*create.ValidFrom) {
		return ValidationErrors{
			ValidationError{
				Field:   "ValidUntil",
				Message: "valid_until must be after valid_from",
			},
		}
	}

	return nil
}

func (v *CouponValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
