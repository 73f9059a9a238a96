package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	couponerrors "wayfare/internal/coupons/errors"
	"wayfare/pkg/config"
	"wayfare/pkg/model"
)

const CollectionName = "Coupons"

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	FindByID(ctx context.Context, id string) (*model.Coupon, error)
	FindActiveByCode(ctx context.Context, experienceID, code string) (*model.Coupon, error)
	ExistsByCode(ctx context.Context, experienceID, code string) (bool, error)
	FindByExperience(ctx context.Context, experienceID string, limit int, offset int64) ([]*model.Coupon, error)
	CountByExperience(ctx context.Context, experienceID string) (int64, error)
	RedeemOnce(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoCouponRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCouponRepository(cfg *config.Config) CouponRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCouponRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique (experience_id, code) index that backs
// per-experience code uniqueness under concurrent creation.
func (r *mongoCouponRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "experience_id", Value: 1},
			{Key: "code", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create coupon code index: %w", err)
	}
	return nil
}

func (r *mongoCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	coupon.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return couponerrors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	if id, ok := result.InsertedID.(string); ok {
		coupon.ID = id
	}
	return nil
}

func (r *mongoCouponRepository) FindByID(ctx context.Context, id string) (*model.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	if id == "" {
		return nil, couponerrors.ErrInvalidID
	}

	var coupon model.Coupon
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, couponerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	return &coupon, nil
}

// FindActiveByCode folds "exists but deactivated" into not-found so callers
// cannot enumerate dormant codes.
func (r *mongoCouponRepository) FindActiveByCode(ctx context.Context, experienceID, code string) (*model.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	filter := bson.M{
		"experience_id": experienceID,
		"code":          code,
		"active":        true,
	}

	var coupon model.Coupon
	err := r.collection.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, couponerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	return &coupon, nil
}

// ExistsByCode checks active and inactive rows alike; creation conflicts
// against soft-deleted codes too.
func (r *mongoCouponRepository) ExistsByCode(ctx context.Context, experienceID, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	filter := bson.M{
		"experience_id": experienceID,
		"code":          code,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check coupon code: %w", err)
	}
	return count > 0, nil
}

func (r *mongoCouponRepository) FindByExperience(ctx context.Context, experienceID string, limit int, offset int64) ([]*model.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"experience_id": experienceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []*model.Coupon
	if err = cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}

	return coupons, nil
}

func (r *mongoCouponRepository) CountByExperience(ctx context.Context, experienceID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"experience_id": experienceID})
	if err != nil {
		return 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	return count, nil
}

// RedeemOnce increments used_count through a single conditionally-guarded
// update. The guard is what keeps two checkouts racing for the last
// remaining use from overshooting max_uses; zero matched documents means the
// limit was hit (or the coupon vanished), which the caller disambiguates.
func (r *mongoCouponRepository) RedeemOnce(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	if id == "" {
		return couponerrors.ErrInvalidID
	}

	filter := bson.M{
		"_id":    id,
		"active": true,
		"$or": []bson.M{
			{"max_uses": nil},
			{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"used_count": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if result.ModifiedCount == 0 {
		return couponerrors.ErrLimitReached
	}
	return nil
}

// Deactivate is the soft delete: idempotent, never removes the row.
func (r *mongoCouponRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeoutDB)
	defer cancel()

	if id == "" {
		return couponerrors.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	if result.MatchedCount == 0 {
		return couponerrors.ErrNotFound
	}
	return nil
}
