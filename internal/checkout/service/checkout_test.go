package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	checkouterrors "wayfare/internal/checkout/errors"
	"wayfare/internal/checkout/validator"
	"wayfare/internal/notifications"
	"wayfare/internal/payments"
	"wayfare/pkg/config"
	apperrors "wayfare/pkg/errors"
	"wayfare/pkg/logger"
	"wayfare/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu           sync.Mutex
	bookings     []*model.Booking
	participants []*model.Participant

	insertBookingsErr     error
	insertParticipantsErr error
}

func (m *mockBookingRepository) InsertBookings(ctx context.Context, bookings []*model.Booking) error {
	if m.insertBookingsErr != nil {
		return m.insertBookingsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, bookings...)
	return nil
}

func (m *mockBookingRepository) InsertParticipants(ctx context.Context, participants []*model.Participant) error {
	if m.insertParticipantsErr != nil {
		return m.insertParticipantsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants = append(m.participants, participants...)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, booking := range m.bookings {
		if booking.ID == id {
			return booking, nil
		}
	}
	return nil, checkouterrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bookings)), nil
}

func (m *mockBookingRepository) FindParticipantsByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Participant
	for _, participant := range m.participants {
		if participant.BookingID == bookingID {
			out = append(out, participant)
		}
	}
	return out, nil
}

type mockExperienceRepository struct {
	experience *model.Experience
}

func (m *mockExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	if m.experience != nil {
		return m.experience, nil
	}
	return &model.Experience{ID: id, Title: "River Kayaking", Price: 500, Currency: "INR"}, nil
}

type mockCouponService struct {
	validateFunc func(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error)
	redeemed     []string
	redeemErr    error
	mu           sync.Mutex
}

func (m *mockCouponService) Create(ctx context.Context, create *model.CouponCreate) (*model.Coupon, *model.ExperienceSummary, error) {
	return nil, nil, nil
}

func (m *mockCouponService) Validate(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, code, experienceID, amount)
	}
	return nil, apperrors.NotFound("Coupon")
}

func (m *mockCouponService) Redeem(ctx context.Context, couponID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redeemed = append(m.redeemed, couponID)
	return m.redeemErr
}

func (m *mockCouponService) Deactivate(ctx context.Context, id string) error {
	return nil
}

func (m *mockCouponService) GetByExperience(ctx context.Context, experienceID string, limit int, offset int64) ([]*model.Coupon, int64, error) {
	return nil, 0, nil
}

type mockGateway struct {
	createOrderFunc func(ctx context.Context, amount float64, currency, receipt string, notes map[string]any) (*payments.Order, error)
	orders          int
	mu              sync.Mutex
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]any) (*payments.Order, error) {
	m.mu.Lock()
	m.orders++
	m.mu.Unlock()
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, amount, currency, receipt, notes)
	}
	return &payments.Order{
		ID:       "order_1",
		Amount:   payments.MinorUnits(amount),
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type mockDispatcher struct {
	mu       sync.Mutex
	sent     []notifications.Confirmation
	failFunc func(confirmation notifications.Confirmation) error
}

func (m *mockDispatcher) Send(ctx context.Context, confirmation notifications.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFunc != nil {
		if err := m.failFunc(confirmation); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, confirmation)
	return nil
}

func newTestCheckoutService(
	repo *mockBookingRepository,
	coupons *mockCouponService,
	gateway *mockGateway,
	dispatcher *mockDispatcher,
) CheckoutService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.FormatJSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:                    log,
		CheckoutStagingTTL:     time.Minute,
		CheckoutStagingMaxOpen: 16,
	}
	return NewCheckoutService(
		repo,
		&mockExperienceRepository{},
		coupons,
		validator.NewCheckoutValidator(log),
		gateway,
		dispatcher,
		cfg,
	)
}

func bulkRequest(bookings int, bypass bool) *model.CheckoutRequest {
	req := &model.CheckoutRequest{
		UserID:        "u1",
		ExperienceID:  "E1",
		TimeSlotID:    "slot-9am",
		BookingDate:   time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		BypassPayment: bypass,
	}
	refs := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < bookings; i++ {
		req.Bookings = append(req.Bookings, model.BookingDraft{
			Ref:               refs[i],
			TotalParticipants: 1,
		})
		req.Participants = append(req.Participants, model.ParticipantDraft{
			BookingRef: refs[i],
			Name:       "Guest " + refs[i],
			Email:      "guest-" + refs[i] + "@example.com",
		})
	}
	return req
}

// ────────────────────────────────────────────────
// Bypass path
// ────────────────────────────────────────────────

func TestBegin_BypassPersistsAndSurvivesNotificationFailure(t *testing.T) {
	repo := &mockBookingRepository{}
	dispatcher := &mockDispatcher{
		failFunc: func(confirmation notifications.Confirmation) error {
			// fail exactly one of the three sends
			if confirmation.CustomerEmail == "guest-b@example.com" {
				return errors.New("smtp relay down")
			}
			return nil
		},
	}
	gateway := &mockGateway{}
	svc := newTestCheckoutService(repo, &mockCouponService{}, gateway, dispatcher)
	defer svc.Stop()

	result, err := svc.Begin(context.Background(), bulkRequest(3, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", result.Status, StatusCompleted)
	}
	done := result.Result
	if done == nil {
		t.Fatal("expected a checkout result")
	}
	if done.Created != 3 || done.Paid {
		t.Errorf("result = created:%d paid:%v, want created:3 paid:false", done.Created, done.Paid)
	}
	if len(repo.bookings) != 3 {
		t.Errorf("persisted %d bookings, want 3", len(repo.bookings))
	}
	if len(repo.participants) != 3 {
		t.Errorf("persisted %d participants, want 3", len(repo.participants))
	}
	if done.Notifications.Attempted != 3 || done.Notifications.Sent != 2 || done.Notifications.Failed != 1 {
		t.Errorf("notification report = %+v, want attempted:3 sent:2 failed:1", done.Notifications)
	}
	if result.Total != 1500 {
		t.Errorf("total = %v, want 1500", result.Total)
	}
	if gateway.orders != 0 {
		t.Errorf("payment gateway was called %d times on the bypass path", gateway.orders)
	}
}

// ────────────────────────────────────────────────
// Paid path
// ────────────────────────────────────────────────

func TestBegin_PaidPathStagesUntilConfirm(t *testing.T) {
	repo := &mockBookingRepository{}
	dispatcher := &mockDispatcher{}
	svc := newTestCheckoutService(repo, &mockCouponService{}, &mockGateway{}, dispatcher)
	defer svc.Stop()

	begin, err := svc.Begin(context.Background(), bulkRequest(2, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if begin.Status != StatusRequiresPayment {
		t.Fatalf("status = %q, want %q", begin.Status, StatusRequiresPayment)
	}
	if begin.Order == nil || begin.Order.ID == "" {
		t.Fatal("expected a payment order")
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("bookings persisted before confirmation: %d", len(repo.bookings))
	}

	result, err := svc.Confirm(context.Background(), begin.Order.ID, "pay_ref_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 2 || !result.Paid {
		t.Errorf("result = created:%d paid:%v, want created:2 paid:true", result.Created, result.Paid)
	}
	if result.PaymentRef != "pay_ref_123" {
		t.Errorf("payment ref = %q", result.PaymentRef)
	}
	for _, booking := range repo.bookings {
		if booking.Status != model.BookingConfirmed {
			t.Errorf("booking %s status = %q, want confirmed", booking.ID, booking.Status)
		}
		if booking.PaymentRef != "pay_ref_123" {
			t.Errorf("booking %s payment ref = %q", booking.ID, booking.PaymentRef)
		}
	}

	// the order can be confirmed at most once
	if _, err := svc.Confirm(context.Background(), begin.Order.ID, "pay_ref_123"); err == nil {
		t.Error("second confirm of the same order should fail")
	}
}

func TestCancel_DropsStagedCheckoutWithoutPersistence(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestCheckoutService(repo, &mockCouponService{}, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	begin, err := svc.Begin(context.Background(), bulkRequest(1, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), begin.Order.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.bookings) != 0 || len(repo.participants) != 0 {
		t.Error("cancelled checkout left persisted rows behind")
	}

	// confirm after cancel must not find the order
	if _, err := svc.Confirm(context.Background(), begin.Order.ID, "pay_ref"); err == nil {
		t.Error("confirm after cancel should fail")
	}
}

func TestBegin_PaymentSetupFailureHasNoSideEffects(t *testing.T) {
	repo := &mockBookingRepository{}
	gateway := &mockGateway{
		createOrderFunc: func(ctx context.Context, amount float64, currency, receipt string, notes map[string]any) (*payments.Order, error) {
			return nil, apperrors.PaymentSetup("Payment provider rejected the order", errors.New("boom"))
		},
	}
	svc := newTestCheckoutService(repo, &mockCouponService{}, gateway, &mockDispatcher{})
	defer svc.Stop()

	_, err := svc.Begin(context.Background(), bulkRequest(1, false))
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := apperrors.AsAppError(err).Code; got != apperrors.CodePaymentSetup {
		t.Errorf("expected %s, got %s", apperrors.CodePaymentSetup, got)
	}
	if len(repo.bookings) != 0 {
		t.Error("bookings persisted despite payment setup failure")
	}
}

// ────────────────────────────────────────────────
// Persistence failure classes
// ────────────────────────────────────────────────

func TestConfirm_BookingInsertFailureFlagsReconciliation(t *testing.T) {
	repo := &mockBookingRepository{insertBookingsErr: errors.New("write concern timeout")}
	svc := newTestCheckoutService(repo, &mockCouponService{}, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	begin, err := svc.Begin(context.Background(), bulkRequest(1, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Confirm(context.Background(), begin.Order.ID, "pay_ref")
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePersistence {
		t.Fatalf("expected %s, got %s", apperrors.CodePersistence, appErr.Code)
	}
	if flagged, _ := appErr.Details["reconciliation_required"].(bool); !flagged {
		t.Error("reconciliation_required not set on post-capture persistence failure")
	}
}

func TestConfirm_ParticipantInsertFailureKeepsBookings(t *testing.T) {
	repo := &mockBookingRepository{insertParticipantsErr: errors.New("collection gone")}
	svc := newTestCheckoutService(repo, &mockCouponService{}, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	begin, err := svc.Begin(context.Background(), bulkRequest(2, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Confirm(context.Background(), begin.Order.ID, "pay_ref")
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodePartialPersistence {
		t.Fatalf("expected %s, got %s", apperrors.CodePartialPersistence, appErr.Code)
	}
	if len(repo.bookings) != 2 {
		t.Errorf("bookings were not kept: %d", len(repo.bookings))
	}
	ids, ok := appErr.Details["booking_ids"].([]string)
	if !ok || len(ids) != 2 {
		t.Errorf("expected 2 booking ids in details, got %v", appErr.Details["booking_ids"])
	}
}

// ────────────────────────────────────────────────
// Coupons in checkout
// ────────────────────────────────────────────────

func TestBegin_CouponAdjustsChargeAndRedeemsAfterPersistence(t *testing.T) {
	maxUses := 10
	coupons := &mockCouponService{
		validateFunc: func(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error) {
			coupon := &model.Coupon{ID: "c1", Code: code, Kind: model.DiscountPercentage, Value: 20, MaxUses: &maxUses, Active: true}
			return &model.CouponValidation{
				Valid:       true,
				Coupon:      coupon,
				Calculation: couponCalc(*amount, 20),
			}, nil
		},
	}
	gateway := &mockGateway{}
	svc := newTestCheckoutService(&mockBookingRepository{}, coupons, gateway, &mockDispatcher{})
	defer svc.Stop()

	req := bulkRequest(2, false)
	req.CouponCode = "SAVE20"
	begin, err := svc.Begin(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 bookings * 500 = 1000, minus 20%
	if begin.Total != 800 {
		t.Errorf("total = %v, want 800", begin.Total)
	}
	if begin.Order.Amount != 80000 {
		t.Errorf("order minor units = %d, want 80000", begin.Order.Amount)
	}

	if _, err := svc.Confirm(context.Background(), begin.Order.ID, "pay_ref"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coupons.redeemed) != 1 || coupons.redeemed[0] != "c1" {
		t.Errorf("redeemed = %v, want [c1]", coupons.redeemed)
	}
}

func TestConfirm_RedeemOverageIsHonored(t *testing.T) {
	coupons := &mockCouponService{
		validateFunc: func(ctx context.Context, code, experienceID string, amount *float64) (*model.CouponValidation, error) {
			coupon := &model.Coupon{ID: "c1", Code: code, Kind: model.DiscountFlat, Value: 100, Active: true}
			return &model.CouponValidation{
				Valid:       true,
				Coupon:      coupon,
				Calculation: &model.DiscountCalculation{OriginalAmount: *amount, DiscountAmount: 100, FinalAmount: *amount - 100},
			}, nil
		},
		redeemErr: apperrors.CouponLimitReached(),
	}
	repo := &mockBookingRepository{}
	svc := newTestCheckoutService(repo, coupons, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	req := bulkRequest(1, false)
	req.CouponCode = "LAST1"
	begin, err := svc.Begin(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Confirm(context.Background(), begin.Order.ID, "pay_ref")
	if err != nil {
		t.Fatalf("redeem overage must not fail a paid checkout: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("created = %d, want 1", result.Created)
	}
	if len(repo.bookings) != 1 {
		t.Errorf("persisted %d bookings, want 1", len(repo.bookings))
	}
}

// ────────────────────────────────────────────────
// Batch validation
// ────────────────────────────────────────────────

func TestBegin_RejectsOrphanParticipantRef(t *testing.T) {
	svc := newTestCheckoutService(&mockBookingRepository{}, &mockCouponService{}, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	req := bulkRequest(1, true)
	req.Participants = append(req.Participants, model.ParticipantDraft{
		BookingRef: "nowhere",
		Name:       "Lost Guest",
		Email:      "lost@example.com",
	})

	_, err := svc.Begin(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := apperrors.AsAppError(err).Code; got != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, got)
	}
}

// ────────────────────────────────────────────────
// Booking reads
// ────────────────────────────────────────────────

func TestGetBooking_ReturnsParticipants(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestCheckoutService(repo, &mockCouponService{}, &mockGateway{}, &mockDispatcher{})
	defer svc.Stop()

	result, err := svc.Begin(context.Background(), bulkRequest(2, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := result.Result.BookingIDs[0]
	detail, err := svc.GetBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Booking.ID != id {
		t.Errorf("booking id = %q, want %q", detail.Booking.ID, id)
	}
	if len(detail.Participants) != 1 {
		t.Errorf("participants = %d, want 1", len(detail.Participants))
	}

	if _, err := svc.GetBooking(context.Background(), "missing"); err == nil {
		t.Error("expected not-found for unknown booking")
	}
}

func couponCalc(amount, percentage float64) *model.DiscountCalculation {
	discount := amount * percentage / 100
	return &model.DiscountCalculation{
		OriginalAmount:    amount,
		DiscountAmount:    discount,
		FinalAmount:       amount - discount,
		SavingsPercentage: percentage,
	}
}
