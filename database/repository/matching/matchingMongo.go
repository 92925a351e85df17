package matchingRepo

import (
	"fmt"
	"time"

	"fundihub/database"
	"fundihub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoMatchingRepo implements MatchingRepository using MongoDB.
type MongoMatchingRepo struct {
	coll *mongo.Collection
}

// NewMongoMatchingRepo returns a Mongo-backed matching repository.
func NewMongoMatchingRepo() *MongoMatchingRepo {
	return &MongoMatchingRepo{coll: database.Collection("matchings")}
}

// Create inserts a new matching record.
func (r *MongoMatchingRepo) Create(match *models.Matching) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, match); err != nil {
		return fmt.Errorf("failed to create matching record: %w", err)
	}
	return nil
}

// GetByID fetches a matching record by its ID.
func (r *MongoMatchingRepo) GetByID(id string) (*models.Matching, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var match models.Matching
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&match); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("match with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch match with id %s: %w", id, err)
	}
	return &match, nil
}

// UpdateStatus transitions a match. The filter excludes terminal states so a
// concurrent accept/reject/expire cannot be overwritten.
func (r *MongoMatchingRepo) UpdateStatus(id, status, selectedTechnician string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"status": bson.M{"$nin": []string{
			models.MatchAccepted, models.MatchRejected, models.MatchExpired,
		}},
	}
	update := bson.M{"status": status}
	if selectedTechnician != "" {
		update["selectedTechnician"] = selectedTechnician
	}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("match %s not found or already finalized", id)
	}
	return nil
}
