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

type CheckoutValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCheckoutValidator(log *logger.Logger) *CheckoutValidator {
	v := validator.New()

	log.Info("Checkout validator initialized successfully")

	return &CheckoutValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks the batch shape beyond struct tags: refs are unique, every
// participant points at a draft in the batch, and every draft has at least
// one participant.
func (v *CheckoutValidator) Validate(req *model.CheckoutRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	refs := make(map[string]bool, len(req.Bookings))
	for _, draft := range req.Bookings {
		if refs[draft.Ref] {
			return ValidationErrors{
				ValidationError{
					Field:   "Bookings",
					Message: fmt.Sprintf("duplicate booking ref %q in batch", draft.Ref),
				},
			}
		}
		refs[draft.Ref] = true
	}

	participantsPerRef := make(map[string]int, len(refs))
	for _, participant := range req.Participants {
		if !refs[participant.BookingRef] {
			return ValidationErrors{
				ValidationError{
					Field:   "Participants",
					Message: fmt.Sprintf("participant references unknown booking ref %q", participant.BookingRef),
				},
			}
		}
		participantsPerRef[participant.BookingRef]++
	}

	for _, draft := range req.Bookings {
		if participantsPerRef[draft.Ref] == 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "Participants",
					Message: fmt.Sprintf("booking ref %q has no participants", draft.Ref),
				},
			}
		}
	}

	return nil
}

func (v *CheckoutValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155550123)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
