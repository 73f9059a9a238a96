package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	checkouterrors "wayfare/internal/checkout/errors"
	"wayfare/pkg/config"
	"wayfare/pkg/model"
)

const (
	BookingCollectionName     = "Bookings"
	ParticipantCollectionName = "BookingParticipants"
)

type BookingRepository interface {
	InsertBookings(ctx context.Context, bookings []*model.Booking) error
	InsertParticipants(ctx context.Context, participants []*model.Participant) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	FindParticipantsByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error)
}

type mongoBookingRepository struct {
	cfg          *config.Config
	bookings     *mongo.Collection
	participants *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:          cfg,
		bookings:     db.Collection(BookingCollectionName),
		participants: db.Collection(ParticipantCollectionName),
	}
}

// InsertBookings writes the whole batch in one ordered InsertMany. Booking
// rows are the billable unit of record; callers treat a failure here as a
// hard stop for the checkout.
func (r *mongoBookingRepository) InsertBookings(ctx context.Context, bookings []*model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(bookings))
	for _, booking := range bookings {
		booking.CreatedAt = now
		docs = append(docs, booking)
	}

	if _, err := r.bookings.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert bookings: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) InsertParticipants(ctx context.Context, participants []*model.Participant) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(participants))
	for _, participant := range participants {
		participant.CreatedAt = now
		docs = append(docs, participant)
	}

	if _, err := r.participants.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert participants: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	if id == "" {
		return nil, checkouterrors.ErrInvalidID
	}

	var booking model.Booking
	err := r.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, checkouterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.bookings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindParticipantsByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	if bookingID == "" {
		return nil, checkouterrors.ErrInvalidID
	}

	cursor, err := r.participants.Find(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to find participants: %w", err)
	}
	defer cursor.Close(ctx)

	var participants []*model.Participant
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}

	return participants, nil
}
