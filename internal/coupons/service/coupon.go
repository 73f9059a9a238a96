package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	couponerrors "wayfare/internal/coupons/errors"
	"wayfare/internal/coupons/repository"
	"wayfare/internal/coupons/validator"
	experrors "wayfare/internal/experiences/errors"
	exprepository "wayfare/internal/experiences/repository"
	"wayfare/pkg/config"
	apperrors "wayfare/pkg/errors"
	"wayfare/pkg/metrics"
	"wayfare/pkg/model"
	"wayfare/pkg/sanitizer"
)

const (
	validationResultValid        = "valid"
	validationResultNotFound     = "not_found"
	validationResultExpired      = "expired"
	validationResultNotYetValid  = "not_yet_valid"
	validationResultLimitReached = "limit_reached"
	validationResultInvalidInput = "invalid_input"
)

type CouponService interface {
	Create(ctx context.Context, create *model.CouponCreate) (*model.Coupon, *model.ExperienceSummary, error)
	Validate(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error)
	Redeem(ctx context.Context, couponID string) error
	Deactivate(ctx context.Context, id string) error
	GetByExperience(ctx context.Context, experienceID string, limit int, offset int64) ([]*model.Coupon, int64, error)
}

type couponService struct {
	repo      repository.CouponRepository
	expRepo   exprepository.ExperienceRepository
	validator *validator.CouponValidator
	cfg       *config.Config
}

func NewCouponService(
	repo repository.CouponRepository,
	expRepo exprepository.ExperienceRepository,
	validator *validator.CouponValidator,
	cfg *config.Config,
) CouponService {
	return &couponService{
		repo:      repo,
		expRepo:   expRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *couponService) Create(ctx context.Context, create *model.CouponCreate) (*model.Coupon, *model.ExperienceSummary, error) {
	create.Code = sanitizer.NormalizeCouponCode(create.Code)

	if err := s.validator.ValidateCreate(create); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, nil, apperrors.InvalidInput(validationErrs.Error())
		}
		return nil, nil, apperrors.Internal("Failed to validate coupon", err)
	}

	experience, err := s.expRepo.FindByID(ctx, create.ExperienceID)
	if err != nil {
		if errors.Is(err, experrors.ErrNotFound) || errors.Is(err, experrors.ErrInvalidID) {
			return nil, nil, apperrors.NotFoundWithID("Experience", create.ExperienceID)
		}
		return nil, nil, apperrors.Internal("Failed to look up experience", err)
	}

	// Pre-checking duplicates (active or soft-deleted) gives vendors a clean
	// conflict message; the unique index still backs the race window.
	exists, err := s.repo.ExistsByCode(ctx, create.ExperienceID, create.Code)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to check coupon code", err)
	}
	if exists {
		return nil, nil, apperrors.Conflict("A coupon with this code already exists for this experience")
	}

	coupon := &model.Coupon{
		ID:           uuid.NewString(),
		ExperienceID: create.ExperienceID,
		Code:         create.Code,
		Kind:         create.Kind,
		Value:        create.Value,
		MaxUses:      create.MaxUses,
		UsedCount:    0,
		ValidFrom:    create.ValidFrom,
		ValidUntil:   create.ValidUntil,
		Active:       true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		if errors.Is(err, couponerrors.ErrDuplicateCode) {
			return nil, nil, apperrors.Conflict("A coupon with this code already exists for this experience")
		}
		return nil, nil, apperrors.Internal("Failed to create coupon", err)
	}

	s.cfg.Log.Info("Coupon created successfully",
		"id", coupon.ID,
		"code", coupon.Code,
		"experience_id", coupon.ExperienceID,
		"kind", coupon.Kind,
	)

	summary := experience.Summary()
	return coupon, &summary, nil
}

// Validate is read-only: it never touches used_count. The usage-limit check
// here is advisory only, the authoritative check happens again at redemption.
func (s *couponService) Validate(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error) {
	normalized := sanitizer.NormalizeCouponCode(code)
	if normalized == "" || experienceID == "" {
		metrics.RecordCouponValidation(validationResultInvalidInput)
		return nil, apperrors.InvalidInput("coupon_code and experience_id are required")
	}
	if amount != nil && *amount < 0 {
		metrics.RecordCouponValidation(validationResultInvalidInput)
		return nil, apperrors.InvalidInput("booking_amount cannot be negative")
	}

	experience, err := s.expRepo.FindByID(ctx, experienceID)
	if err != nil {
		if errors.Is(err, experrors.ErrNotFound) || errors.Is(err, experrors.ErrInvalidID) {
			metrics.RecordCouponValidation(validationResultNotFound)
			return nil, apperrors.NotFoundWithID("Experience", experienceID)
		}
		return nil, apperrors.Internal("Failed to look up experience", err)
	}

	coupon, err := s.repo.FindActiveByCode(ctx, experienceID, normalized)
	if err != nil {
		if errors.Is(err, couponerrors.ErrNotFound) {
			metrics.RecordCouponValidation(validationResultNotFound)
			return nil, apperrors.NotFound("Coupon")
		}
		return nil, apperrors.Internal("Failed to look up coupon", err)
	}

	now := time.Now()
	if coupon.ValidUntil != nil && coupon.ValidUntil.Before(now) {
		metrics.RecordCouponValidation(validationResultExpired)
		return nil, apperrors.CouponExpired()
	}
	if coupon.ValidFrom != nil && coupon.ValidFrom.After(now) {
		metrics.RecordCouponValidation(validationResultNotYetValid)
		return nil, apperrors.CouponNotYetValid()
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		metrics.RecordCouponValidation(validationResultLimitReached)
		return nil, apperrors.CouponLimitReached()
	}

	result := &model.CouponValidation{
		Valid:   true,
		Coupon:  coupon,
		Message: "Coupon is valid",
	}
	summary := experience.Summary()
	result.Experience = &summary

	if amount != nil {
		result.Calculation = CalculateDiscount(coupon, *amount)
	}

	metrics.RecordCouponValidation(validationResultValid)
	return result, nil
}

// CalculateDiscount applies a coupon to a pre-discount amount. The final
// amount never goes below zero and a flat discount never exceeds the amount.
func CalculateDiscount(coupon *model.Coupon, amount float64) *model.DiscountCalculation {
	var discount float64
	switch coupon.Kind {
	case model.DiscountPercentage:
		discount = amount * coupon.Value / 100
	case model.DiscountFlat:
		discount = coupon.Value
		if discount > amount {
			discount = amount
		}
	}

	final := amount - discount
	if final < 0 {
		final = 0
	}

	var savings float64
	if amount > 0 {
		savings = discount / amount * 100
	}

	return &model.DiscountCalculation{
		OriginalAmount:    amount,
		DiscountAmount:    discount,
		FinalAmount:       final,
		SavingsPercentage: savings,
	}
}

// Redeem increments the usage counter exactly once. Limit enforcement lives
// in the repository's guarded update; a zero-row update is disambiguated here
// into limit-reached versus vanished-coupon.
func (s *couponService) Redeem(ctx context.Context, couponID string) error {
	if couponID == "" {
		return apperrors.InvalidInput("Coupon ID cannot be empty")
	}

	err := s.repo.RedeemOnce(ctx, couponID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, couponerrors.ErrLimitReached) {
		return apperrors.Internal("Failed to redeem coupon", err)
	}

	if _, findErr := s.repo.FindByID(ctx, couponID); findErr != nil {
		if errors.Is(findErr, couponerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Coupon", couponID)
		}
		return apperrors.Internal("Failed to redeem coupon", findErr)
	}

	return apperrors.CouponLimitReached()
}

// Deactivate is idempotent: re-deactivating an already inactive coupon is a
// no-op success.
func (s *couponService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Coupon ID cannot be empty")
	}

	err := s.repo.Deactivate(ctx, id)
	if err != nil {
		if errors.Is(err, couponerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Coupon", id)
		}
		if errors.Is(err, couponerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid coupon ID format")
		}
		return apperrors.Internal("Failed to deactivate coupon", err)
	}

	s.cfg.Log.Info("Coupon deactivated", "id", id)
	return nil
}

func (s *couponService) GetByExperience(ctx context.Context, experienceID string, limit int, offset int64) ([]*model.Coupon, int64, error) {
	if experienceID == "" {
		return nil, 0, apperrors.InvalidInput("Experience ID cannot be empty")
	}

	var count int64
	var coupons []*model.Coupon
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByExperience(ctx, experienceID)
	}()
	go func() {
		defer wg.Done()
		coupons, errFind = s.repo.FindByExperience(ctx, experienceID, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list coupons", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count coupons", errCount)
	}

	return coupons, count, nil
}
