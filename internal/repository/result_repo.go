package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gameion/internal/model"
)

// ResultRepo archives finished-game scoreboards. The live game state
// lives in the KV store; this is the durable record that survives room
// expiry.
type ResultRepo interface {
	Save(ctx context.Context, result *model.GameResult) error
	ListByRoom(ctx context.Context, roomID string) ([]model.GameResult, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a result repository on the given database.
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("results"),
	}
}

func (r *resultRepo) Save(ctx context.Context, result *model.GameResult) error {
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *resultRepo) ListByRoom(ctx context.Context, roomID string) ([]model.GameResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "finishedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []model.GameResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
