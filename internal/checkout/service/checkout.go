package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	checkouterrors "wayfare/internal/checkout/errors"
	"wayfare/internal/checkout/repository"
	"wayfare/internal/checkout/validator"
	couponservice "wayfare/internal/coupons/service"
	experrors "wayfare/internal/experiences/errors"
	exprepository "wayfare/internal/experiences/repository"
	"wayfare/internal/notifications"
	"wayfare/internal/payments"
	"wayfare/pkg/config"
	apperrors "wayfare/pkg/errors"
	"wayfare/pkg/metrics"
	"wayfare/pkg/model"
	"wayfare/pkg/sanitizer"
)

const (
	outcomeDone             = "done"
	outcomeCancelled        = "cancelled"
	outcomePaymentSetup     = "payment_setup_error"
	outcomeValidationFailed = "validation_failed"
	outcomePersistence      = "persistence_error"
)

// BeginResult is the outcome of starting a checkout. A bypassed checkout
// completes immediately and carries Result; a paid checkout carries the
// payment order the client must settle before calling Confirm.
type BeginResult struct {
	Status     string                     `json:"status"`
	Order      *payments.Order            `json:"order,omitempty"`
	PaymentKey string                     `json:"payment_key,omitempty"`
	Total      float64                    `json:"total"`
	Currency   string                     `json:"currency"`
	Discount   *model.DiscountCalculation `json:"discount,omitempty"`
	Result     *model.CheckoutResult      `json:"result,omitempty"`
}

const (
	StatusRequiresPayment = "requires_payment"
	StatusCompleted       = "completed"
)

// BookingDetail pairs a booking with its participant rows.
type BookingDetail struct {
	Booking      *model.Booking       `json:"booking"`
	Participants []*model.Participant `json:"participants"`
}

type CheckoutService interface {
	Begin(ctx context.Context, req *model.CheckoutRequest) (*BeginResult, error)
	Confirm(ctx context.Context, orderID, paymentRef string) (*model.CheckoutResult, error)
	Cancel(ctx context.Context, orderID string) error
	GetBooking(ctx context.Context, id string) (*BookingDetail, error)
	ListBookings(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Stop()
}

type checkoutService struct {
	repo       repository.BookingRepository
	expRepo    exprepository.ExperienceRepository
	coupons    couponservice.CouponService
	validator  *validator.CheckoutValidator
	gateway    payments.Gateway
	dispatcher notifications.Dispatcher
	staging    *stagingStore
	cfg        *config.Config
}

func NewCheckoutService(
	repo repository.BookingRepository,
	expRepo exprepository.ExperienceRepository,
	coupons couponservice.CouponService,
	validator *validator.CheckoutValidator,
	gateway payments.Gateway,
	dispatcher notifications.Dispatcher,
	cfg *config.Config,
) CheckoutService {
	return &checkoutService{
		repo:       repo,
		expRepo:    expRepo,
		coupons:    coupons,
		validator:  validator,
		gateway:    gateway,
		dispatcher: dispatcher,
		staging:    newStagingStore(cfg.CheckoutStagingTTL, cfg.CheckoutStagingMaxOpen),
		cfg:        cfg,
	}
}

// Begin validates and prices the batch. With bypass_payment set the batch is
// persisted immediately; otherwise a payment order is created and the batch
// is staged until Confirm or Cancel arrives for that order.
func (s *checkoutService) Begin(ctx context.Context, req *model.CheckoutRequest) (*BeginResult, error) {
	start := time.Now()

	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		metrics.RecordCheckoutDuration(outcomeValidationFailed, time.Since(start).Seconds())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Checkout request is invalid", map[string]any{
				"errors": validationErrs,
			})
		}
		return nil, apperrors.Internal("Failed to validate checkout request", err)
	}

	experience, err := s.expRepo.FindByID(ctx, req.ExperienceID)
	if err != nil {
		if errors.Is(err, experrors.ErrNotFound) || errors.Is(err, experrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Experience", req.ExperienceID)
		}
		return nil, apperrors.Internal("Failed to look up experience", err)
	}

	total := 0.0
	for _, draft := range req.Bookings {
		total += experience.Price * float64(draft.TotalParticipants)
	}

	var discount *model.DiscountCalculation
	var couponID string
	if req.CouponCode != "" {
		validation, err := s.coupons.Validate(ctx, req.CouponCode, req.ExperienceID, &total)
		if err != nil {
			metrics.RecordCheckoutDuration(outcomeValidationFailed, time.Since(start).Seconds())
			return nil, err
		}
		discount = validation.Calculation
		couponID = validation.Coupon.ID
		total = discount.FinalAmount
	}

	staged := &stagedCheckout{
		request:  req,
		total:    total,
		currency: experience.Currency,
		discount: discount,
		couponID: couponID,
	}

	if req.BypassPayment {
		result, err := s.persistAndFinish(ctx, staged, "", false)
		if err != nil {
			metrics.RecordCheckoutDuration(outcomePersistence, time.Since(start).Seconds())
			return nil, err
		}
		metrics.RecordCheckoutDuration(outcomeDone, time.Since(start).Seconds())
		return &BeginResult{
			Status:   StatusCompleted,
			Total:    total,
			Currency: experience.Currency,
			Discount: discount,
			Result:   result,
		}, nil
	}

	receipt := "checkout_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, total, experience.Currency, receipt, map[string]any{
		"experience_id":    req.ExperienceID,
		"experience_title": experience.Title,
		"time_slot_id":     req.TimeSlotID,
		"user_id":          req.UserID,
		"bookings":         len(req.Bookings),
	})
	if err != nil {
		metrics.RecordCheckoutDuration(outcomePaymentSetup, time.Since(start).Seconds())
		return nil, err
	}

	if err := s.staging.Put(order.ID, staged); err != nil {
		if errors.Is(err, ErrStagingFull) {
			return nil, apperrors.Unavailable("Checkout")
		}
		return nil, apperrors.Internal("Failed to stage checkout", err)
	}

	s.cfg.Log.Info("Checkout awaiting payment confirmation",
		"order_id", order.ID,
		"experience_id", req.ExperienceID,
		"bookings", len(req.Bookings),
		"total", total,
		"currency", experience.Currency,
	)

	return &BeginResult{
		Status:     StatusRequiresPayment,
		Order:      order,
		PaymentKey: s.cfg.PaymentKeyID,
		Total:      total,
		Currency:   experience.Currency,
		Discount:   discount,
	}, nil
}

// Confirm completes a staged checkout after the payment provider reported
// success. Payment has been captured by the time this runs, so persistence
// failures here are surfaced as reconciliation-worthy.
func (s *checkoutService) Confirm(ctx context.Context, orderID, paymentRef string) (*model.CheckoutResult, error) {
	start := time.Now()

	if orderID == "" || paymentRef == "" {
		return nil, apperrors.InvalidInput("order_id and payment_ref are required")
	}

	staged, err := s.staging.Take(orderID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Pending checkout", orderID)
	}

	result, err := s.persistAndFinish(ctx, staged, paymentRef, true)
	if err != nil {
		metrics.RecordCheckoutDuration(outcomePersistence, time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordCheckoutDuration(outcomeDone, time.Since(start).Seconds())
	return result, nil
}

// Cancel drops a staged checkout after the user dismissed the payment step.
// Nothing was persisted, so this only discards the staging entry.
func (s *checkoutService) Cancel(ctx context.Context, orderID string) error {
	if orderID == "" {
		return apperrors.InvalidInput("order_id is required")
	}

	staged, err := s.staging.Take(orderID)
	if err != nil {
		return apperrors.NotFoundWithID("Pending checkout", orderID)
	}

	metrics.RecordCheckoutDuration(outcomeCancelled, 0)
	s.cfg.Log.Info("Checkout cancelled before payment",
		"order_id", orderID,
		"experience_id", staged.request.ExperienceID,
		"bookings", len(staged.request.Bookings),
	)
	return nil
}

func (s *checkoutService) persistAndFinish(ctx context.Context, staged *stagedCheckout, paymentRef string, paid bool) (*model.CheckoutResult, error) {
	req := staged.request
	batchID := uuid.NewString()

	status := model.BookingConfirmed
	if !paid {
		status = model.BookingPending
	}

	bookings := make([]*model.Booking, 0, len(req.Bookings))
	bookingIDByRef := make(map[string]string, len(req.Bookings))
	for _, draft := range req.Bookings {
		id := uuid.NewString()
		bookingIDByRef[draft.Ref] = id
		bookings = append(bookings, &model.Booking{
			ID:                id,
			UserID:            req.UserID,
			ExperienceID:      req.ExperienceID,
			TimeSlotID:        req.TimeSlotID,
			BookingDate:       req.BookingDate,
			TotalParticipants: draft.TotalParticipants,
			NoteForGuide:      draft.NoteForGuide,
			Status:            status,
			PaymentRef:        paymentRef,
			BatchID:           batchID,
		})
	}

	participants := make([]*model.Participant, 0, len(req.Participants))
	for _, draft := range req.Participants {
		participants = append(participants, &model.Participant{
			ID:        uuid.NewString(),
			BookingID: bookingIDByRef[draft.BookingRef],
			Name:      draft.Name,
			Email:     draft.Email,
			Phone:     draft.Phone,
		})
	}

	if err := s.repo.InsertBookings(ctx, bookings); err != nil {
		if paid {
			// Money has moved but no booking row exists. This must never be
			// reported like an ordinary failure.
			metrics.ReconciliationRequired.Inc()
			s.cfg.Log.Error("Payment captured but booking persistence failed",
				"batch_id", batchID,
				"payment_ref", paymentRef,
				"experience_id", req.ExperienceID,
				"bookings", len(bookings),
				"error", err,
			)
			return nil, apperrors.Persistence("Failed to persist bookings after payment capture", err, map[string]any{
				"batch_id":    batchID,
				"payment_ref": paymentRef,
			})
		}
		return nil, apperrors.Internal("Failed to persist bookings", err)
	}

	bookingIDs := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		bookingIDs = append(bookingIDs, booking.ID)
	}

	if err := s.repo.InsertParticipants(ctx, participants); err != nil {
		// Bookings are the billable unit of record; participants are
		// enrichment. No rollback and no automatic retry.
		s.cfg.Log.Error("Participant persistence failed after bookings were created",
			"batch_id", batchID,
			"booking_ids", bookingIDs,
			"error", err,
		)
		return nil, apperrors.PartialPersistence("Bookings were created but participants could not be saved", err, bookingIDs)
	}

	report := s.notifyParticipants(ctx, staged, bookings, participants, paymentRef)

	if staged.couponID != "" {
		s.redeemCoupon(ctx, staged.couponID, batchID)
	}

	s.cfg.Log.Info("Checkout completed",
		"batch_id", batchID,
		"bookings", len(bookings),
		"participants", len(participants),
		"paid", paid,
		"notifications_sent", report.Sent,
		"notifications_failed", report.Failed,
	)

	return &model.CheckoutResult{
		BatchID:       batchID,
		BookingIDs:    bookingIDs,
		Created:       len(bookings),
		Paid:          paid,
		PaymentRef:    paymentRef,
		Total:         staged.total,
		Currency:      staged.currency,
		Discount:      staged.discount,
		Notifications: report,
	}, nil
}

// notifyParticipants sends one confirmation per (booking, participant) pair.
// Sends run concurrently and every failure is swallowed after logging: a
// persisted checkout is never failed by its notifications.
func (s *checkoutService) notifyParticipants(ctx context.Context, staged *stagedCheckout, bookings []*model.Booking, participants []*model.Participant, paymentRef string) model.NotificationReport {
	req := staged.request

	experienceTitle := ""
	if exp, err := s.expRepo.FindByID(ctx, req.ExperienceID); err == nil {
		experienceTitle = exp.Title
	}

	bookingByID := make(map[string]*model.Booking, len(bookings))
	for _, booking := range bookings {
		bookingByID[booking.ID] = booking
	}
	namesByBooking := make(map[string][]string, len(bookings))
	for _, participant := range participants {
		namesByBooking[participant.BookingID] = append(namesByBooking[participant.BookingID], participant.Name)
	}

	var sent, failed int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, participant := range participants {
		booking := bookingByID[participant.BookingID]
		if booking == nil {
			continue
		}

		wg.Add(1)
		go func(participant *model.Participant, booking *model.Booking) {
			defer wg.Done()

			confirmation := notifications.Confirmation{
				CustomerEmail:     participant.Email,
				CustomerName:      participant.Name,
				ExperienceTitle:   experienceTitle,
				BookingDate:       booking.BookingDate,
				TimeSlot:          booking.TimeSlotID,
				TotalParticipants: booking.TotalParticipants,
				TotalAmount:       staged.total,
				Currency:          staged.currency,
				Participants:      namesByBooking[booking.ID],
				BookingID:         booking.ID,
				NoteForGuide:      booking.NoteForGuide,
				PaymentID:         paymentRef,
			}

			err := s.dispatcher.Send(ctx, confirmation)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				metrics.NotificationFailures.Inc()
				s.cfg.Log.Error("Failed to send booking confirmation",
					"booking_id", booking.ID,
					"customer_email", participant.Email,
					"error", err,
				)
				return
			}
			sent++
		}(participant, booking)
	}
	wg.Wait()

	return model.NotificationReport{
		Attempted: len(participants),
		Sent:      int(sent),
		Failed:    int(failed),
	}
}

// redeemCoupon runs after the batch is durable. A limit overage at this
// point is honored, not rolled back: payment was already captured, so the
// overage is logged instead of voiding a paid booking.
func (s *checkoutService) redeemCoupon(ctx context.Context, couponID, batchID string) {
	err := s.coupons.Redeem(ctx, couponID)
	if err == nil {
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeCouponLimitReached {
		s.cfg.Log.Warn("Coupon limit reached after payment capture, honoring booking",
			"coupon_id", couponID,
			"batch_id", batchID,
		)
		return
	}

	s.cfg.Log.Error("Failed to redeem coupon for completed checkout",
		"coupon_id", couponID,
		"batch_id", batchID,
		"error", err,
	)
}

func (s *checkoutService) GetBooking(ctx context.Context, id string) (*BookingDetail, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, checkouterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, checkouterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	participants, err := s.repo.FindParticipantsByBooking(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve booking participants", err)
	}

	return &BookingDetail{Booking: booking, Participants: participants}, nil
}

func (s *checkoutService) ListBookings(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
	}()
	wg.Wait()

	if errFind != nil {
		return nil, 0, apperrors.Internal("Failed to list bookings", errFind)
	}
	if errCount != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}

	return bookings, count, nil
}

func (s *checkoutService) Stop() {
	s.staging.Stop()
}

func (s *checkoutService) sanitize(req *model.CheckoutRequest) {
	req.CouponCode = sanitizer.NormalizeCouponCode(req.CouponCode)
	for i := range req.Bookings {
		req.Bookings[i].NoteForGuide = sanitizer.NormalizeGuideNote(req.Bookings[i].NoteForGuide)
	}
	for i := range req.Participants {
		req.Participants[i].Name = sanitizer.NormalizeName(req.Participants[i].Name)
		req.Participants[i].Email = sanitizer.NormalizeEmail(req.Participants[i].Email)
	}
}
