package db

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algem/liquid-staking-service/internal/db/model"
)

func (db *Database) FindEra(ctx context.Context, era uint64) (*model.EraDocument, error) {
	var doc model.EraDocument
	err := db.collection(model.EraCollection).FindOne(ctx, bson.M{"_id": era}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Key: strconv.FormatUint(era, 10), Message: "era was not synced"}
		}
		return nil, err
	}
	return &doc, nil
}

// FindEraShots returns the shots of user in utility in the order they were
// taken.
func (db *Database) FindEraShots(ctx context.Context, user, utility string) ([]model.EraShotDocument, error) {
	filter := bson.M{"user": user, "utility": utility}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := db.collection(model.EraShotCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shots := make([]model.EraShotDocument, 0)
	if err := cursor.All(ctx, &shots); err != nil {
		return nil, err
	}
	return shots, nil
}
