package service

import (
	"errors"
	"sync"
	"time"

	"wayfare/pkg/model"
)

var (
	ErrStagingNotFound = errors.New("no pending checkout for this order")
	ErrStagingFull     = errors.New("too many pending checkouts")
)

// stagedCheckout holds one checkout between order creation and the user's
// confirm or cancel call. It lives only in memory: an expired entry means the
// user walked away and nothing was persisted.
type stagedCheckout struct {
	request   *model.CheckoutRequest
	total     float64
	currency  string
	discount  *model.DiscountCalculation
	couponID  string
	expiresAt time.Time
}

// stagingStore keys pending checkouts by payment order id. Take removes the
// entry, so each order can be confirmed or cancelled at most once.
type stagingStore struct {
	mu      sync.Mutex
	entries map[string]*stagedCheckout
	ttl     time.Duration
	maxOpen int
	done    chan struct{}
	once    sync.Once
}

func newStagingStore(ttl time.Duration, maxOpen int) *stagingStore {
	s := &stagingStore{
		entries: make(map[string]*stagedCheckout),
		ttl:     ttl,
		maxOpen: maxOpen,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *stagingStore) Put(orderID string, staged *stagedCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxOpen {
		s.evictExpiredLocked()
		if len(s.entries) >= s.maxOpen {
			return ErrStagingFull
		}
	}

	staged.expiresAt = time.Now().Add(s.ttl)
	s.entries[orderID] = staged
	return nil
}

func (s *stagingStore) Take(orderID string) (*stagedCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged, ok := s.entries[orderID]
	if !ok {
		return nil, ErrStagingNotFound
	}
	delete(s.entries, orderID)

	if time.Now().After(staged.expiresAt) {
		return nil, ErrStagingNotFound
	}
	return staged, nil
}

func (s *stagingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *stagingStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.evictExpiredLocked()
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}

func (s *stagingStore) evictExpiredLocked() {
	now := time.Now()
	for orderID, staged := range s.entries {
		if now.After(staged.expiresAt) {
			delete(s.entries, orderID)
		}
	}
}

func (s *stagingStore) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
}
