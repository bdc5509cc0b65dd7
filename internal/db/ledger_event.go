package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/algem/liquid-staking-service/internal/db/model"
)

// FindLedgerEvents returns events in emission order, one page at a time.
func (db *Database) FindLedgerEvents(
	ctx context.Context, filter LedgerEventFilter, paginationToken string,
) (*DbResultMap[model.LedgerEventDocument], error) {
	query := bson.M{}
	if filter.User != "" {
		query["user"] = filter.User
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if paginationToken != "" {
		decodedToken, err := model.DecodeLedgerEventPaginationToken(paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		query["seq"] = bson.M{"$gt": decodedToken.Seq}
	}

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}).SetLimit(db.pageLimit())
	cursor, err := db.collection(model.LedgerEventCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.LedgerEventDocument
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return toResultMapWithPaginationToken(db.cfg, events, model.BuildLedgerEventPaginationToken)
}
