package pricingRepo

import (
	"fmt"
	"time"

	"fundihub/database"
	"fundihub/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPricingConfigRepo implements PricingConfigRepository using MongoDB.
type MongoPricingConfigRepo struct {
	coll *mongo.Collection
}

// NewMongoPricingConfigRepo returns a Mongo-backed pricing config repository.
func NewMongoPricingConfigRepo() *MongoPricingConfigRepo {
	return &MongoPricingConfigRepo{coll: database.Collection("pricing_configs")}
}

// GetActive returns the single config flagged active.
func (r *MongoPricingConfigRepo) GetActive() (*models.PricingConfig, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var cfg models.PricingConfig
	if err := r.coll.FindOne(ctx, bson.M{"isActive": true}).Decode(&cfg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoActiveConfig
		}
		return nil, fmt.Errorf("failed to fetch active pricing config: %w", err)
	}
	return &cfg, nil
}

// GetByID fetches a config version by its ID.
func (r *MongoPricingConfigRepo) GetByID(id string) (*models.PricingConfig, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var cfg models.PricingConfig
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&cfg); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("pricing config with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch pricing config with id %s: %w", id, err)
	}
	return &cfg, nil
}

// List returns all config versions, newest first.
func (r *MongoPricingConfigRepo) List() ([]models.PricingConfig, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing configs: %w", err)
	}
	defer cursor.Close(ctx)

	var configs []models.PricingConfig
	if err := cursor.All(ctx, &configs); err != nil {
		return nil, fmt.Errorf("failed to decode pricing configs: %w", err)
	}
	return configs, nil
}

// CreateVersion inserts cfg as a new inactive version with the next version
// number. Activation is a separate, explicit step.
func (r *MongoPricingConfigRepo) CreateVersion(cfg *models.PricingConfig) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}

	// Determine the next version number.
	var latest models.PricingConfig
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&latest)
	switch {
	case err == mongo.ErrNoDocuments:
		cfg.Version = 1
	case err != nil:
		return fmt.Errorf("failed to determine latest config version: %w", err)
	default:
		cfg.Version = latest.Version + 1
	}

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	cfg.IsActive = false
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt

	if _, err := r.coll.InsertOne(ctx, cfg); err != nil {
		return fmt.Errorf("failed to create pricing config version: %w", err)
	}
	return nil
}

// Activate atomically swaps the active flag to the given version. The
// deactivate and activate writes run in one transaction so concurrent
// activations cannot leave two configs active.
func (r *MongoPricingConfigRepo) Activate(id string) error {
	ctx, cancel := newContext(15 * time.Second)
	defer cancel()

	session, err := database.MongoClient.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.UpdateMany(sc,
			bson.M{"isActive": true},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		); err != nil {
			return nil, fmt.Errorf("failed to deactivate current config: %w", err)
		}

		result, err := r.coll.UpdateOne(sc,
			bson.M{"id": id},
			bson.M{"$set": bson.M{"isActive": true, "updatedAt": time.Now()}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to activate config %s: %w", id, err)
		}
		if result.MatchedCount == 0 {
			return nil, fmt.Errorf("pricing config with id %s not found", id)
		}
		return nil, nil
	})
	return err
}
