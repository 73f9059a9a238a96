package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	experrors "wayfare/internal/experiences/errors"
	"wayfare/pkg/config"
	"wayfare/pkg/model"
)

const CollectionName = "Experiences"

type ExperienceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Experience, error)
}

type mongoExperienceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoExperienceRepository(cfg *config.Config) ExperienceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExperienceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeoutDB)
	defer cancel()

	if id == "" {
		return nil, experrors.ErrInvalidID
	}

	var experience model.Experience
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&experience)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, experrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find experience: %w", err)
	}

	return &experience, nil
}
